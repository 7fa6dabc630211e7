package diff

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/offchainconfig"
)

func TestFieldTable(t *testing.T) {
	var leaves int
	typ := reflect.TypeOf(offchainconfig.OffchainConfig{})
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).Type.Kind() == reflect.Struct {
			leaves += typ.Field(i).Type.NumField()
			continue
		}
		leaves++
	}
	assert.Equal(t, leaves, len(fields), "every config field needs a diff entry")
	assert.Equal(t, len(fields), len(fieldsByName), "field names are unique")
}

func TestDiff_Identity(t *testing.T) {
	fuzzer := offchainconfig.NewFuzzer(1)
	for i := 0; i < 100; i++ {
		var c offchainconfig.OffchainConfig
		fuzzer.Fuzz(&c)
		assert.True(t, Diff(c, c).Empty())
		assert.True(t, Diff(c, c.Clone()).Empty())
	}
}

func TestDiff_Apply(t *testing.T) {
	fuzzer := offchainconfig.NewFuzzer(2)
	for i := 0; i < 200; i++ {
		var a, b offchainconfig.OffchainConfig
		fuzzer.Fuzz(&a)
		fuzzer.Fuzz(&b)
		orig := a.Clone()

		d := Diff(a, b)
		out, err := Apply(a, d)
		require.NoError(t, err)
		require.Equal(t, b, out)
		require.Equal(t, orig, a, "apply must not modify its input")
		require.True(t, Diff(out, b).Empty())
	}
}

func TestDiff_SingleField(t *testing.T) {
	a := offchainconfig.Fixture(4)
	b := a.Clone()
	b.RMax = 6

	d := Diff(a, b)
	require.Len(t, d, 1)
	assert.Equal(t, Change{Field: "rMax", Index: -1, Kind: Changed, From: int64(5), To: int64(6)}, d[0])
	assert.Equal(t, "~ rMax: 5 -> 6", d[0].String())
}

func TestDiff_RosterChanges(t *testing.T) {
	four, five := offchainconfig.Fixture(4), offchainconfig.Fixture(5)

	grow := Diff(four, five)
	assert.Equal(t, []string{"s[4]", "offchainPublicKeys[4]", "configPublicKeys[4]", "peerIds[4]"}, grow.Paths())
	for _, c := range grow {
		assert.Equal(t, Added, c.Kind)
		assert.Nil(t, c.From)
	}

	shrink := Diff(five, four)
	assert.Equal(t, grow.Paths(), shrink.Paths())
	for _, c := range shrink {
		assert.Equal(t, Removed, c.Kind)
		assert.Nil(t, c.To)
	}

	out, err := Apply(five, shrink)
	require.NoError(t, err)
	assert.Equal(t, four, out)

	// dropping config keys entirely
	noKeys := four.Projection()
	d := Diff(four, noKeys)
	assert.Len(t, d, 4)
	out, err = Apply(four, d)
	require.NoError(t, err)
	assert.Equal(t, noKeys, out)
}

func TestDiff_Elements(t *testing.T) {
	a := offchainconfig.Fixture(4)
	b := a.Clone()
	b.PeerIDs[2] = "12D3KooWReplaced"
	b.OffchainPublicKeys[0][5] ^= 0xff
	b.ReportingPluginConfig.AlphaReportInfinite = true
	b.MaxDurationReport = time.Second

	d := Diff(a, b)
	assert.Equal(t, []string{
		"offchainPublicKeys[0]",
		"peerIds[2]",
		"reportingPluginConfig.alphaReportInfinite",
		"maxDurationReportNanoseconds",
	}, d.Paths())
}

func TestApply_Conflicts(t *testing.T) {
	a := offchainconfig.Fixture(4)
	b := a.Clone()
	b.RMax = 9
	d := Diff(a, b)

	other := a.Clone()
	other.RMax = 7
	_, err := Apply(other, d)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = Apply(a, Delta{{Field: "nope", Index: -1, Kind: Changed}})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = Apply(a, Delta{{Field: "peerIds", Index: 9, Kind: Added, To: "x"}})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = Apply(a, Delta{{Field: "peerIds", Index: 0, Kind: Removed, From: a.PeerIDs[0]}})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = Apply(a, Delta{{Field: "rMax", Index: -1, Kind: Changed, From: int64(5), To: "six"}})
	assert.Error(t, err)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "removed", Removed.String())
	assert.Equal(t, "changed", Changed.String())
	assert.Equal(t, "Kind(0)", Kind(0).String())
}
