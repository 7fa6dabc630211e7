package offchainconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/smartcontractkit/libocr/offchainreporting2/reportingplugin/median"
)

func TestSerialize_RoundTrip(t *testing.T) {
	fuzzer := NewFuzzer(0)
	for i := 0; i < 200; i++ {
		var c OffchainConfig
		fuzzer.Fuzz(&c)
		require.NoError(t, c.Validate())

		b, err := Serialize(c)
		require.NoError(t, err)
		out, err := Deserialize(b)
		require.NoError(t, err)
		require.Equal(t, c, out)

		// canonical: same value, same bytes
		again, err := Serialize(c.Clone())
		require.NoError(t, err)
		require.Equal(t, b, again)
	}
}

func TestSerialize_Layout(t *testing.T) {
	c := Fixture(4)
	b, err := Serialize(c)
	require.NoError(t, err)

	// deltaProgress leads, little endian u64
	assert.Equal(t, []byte{0x00, 0x50, 0xd6, 0xdc, 0x01, 0x00, 0x00, 0x00}, b[:8])
	// rMax sits after the five deltas
	assert.Equal(t, []byte{5, 0, 0, 0}, b[40:44])
	// s: u32 length then elements
	assert.Equal(t, []byte{4, 0, 0, 0, 1, 0, 0, 0}, b[44:52])
}

func TestDeserialize_Malformed(t *testing.T) {
	b, err := Serialize(Fixture(4))
	require.NoError(t, err)

	_, err = Deserialize(append(b, 0))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Deserialize(b[:len(b)-3])
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Deserialize(nil)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestValidate(t *testing.T) {
	for _, tt := range []struct {
		name   string
		modify func(c *OffchainConfig)
		fields []string
	}{
		{"valid", func(c *OffchainConfig) {}, nil},
		{"no config keys", func(c *OffchainConfig) { c.ConfigPublicKeys = nil }, nil},
		{"negative duration", func(c *OffchainConfig) { c.DeltaRound = -1 }, []string{"deltaRoundNanoseconds"}},
		{"negative deltaC", func(c *OffchainConfig) { c.ReportingPluginConfig.DeltaC = -time.Second }, []string{"reportingPluginConfig.deltaCNanoseconds"}},
		{"zero rMax", func(c *OffchainConfig) { c.RMax = 0 }, []string{"rMax"}},
		{"huge rMax", func(c *OffchainConfig) { c.RMax = math.MaxUint32 + 1 }, []string{"rMax"}},
		{"negative s", func(c *OffchainConfig) { c.S[2] = -1 }, []string{"s[2]"}},
		{"short key", func(c *OffchainConfig) { c.OffchainPublicKeys[1] = c.OffchainPublicKeys[1][:31] }, []string{"offchainPublicKeys[1]"}},
		{"missing peer", func(c *OffchainConfig) { c.PeerIDs = c.PeerIDs[:3] }, []string{"peerIds"}},
		{"missing config key", func(c *OffchainConfig) { c.ConfigPublicKeys = c.ConfigPublicKeys[:3] }, []string{"configPublicKeys"}},
		{"duplicate peer", func(c *OffchainConfig) { c.PeerIDs[3] = c.PeerIDs[0] }, []string{"peerIds[3]"}},
		{"empty peer", func(c *OffchainConfig) { c.PeerIDs[0] = "" }, []string{"peerIds[0]"}},
		{"no oracles", func(c *OffchainConfig) { *c = Fixture(0) }, []string{"offchainPublicKeys"}},
		{"everything", func(c *OffchainConfig) {
			c.DeltaGrace = -1
			c.RMax = -1
			c.PeerIDs = nil
		}, []string{"deltaGraceNanoseconds", "rMax", "peerIds"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			c := Fixture(4)
			tt.modify(&c)
			err := c.Validate()
			if tt.fields == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var fields []string
			for _, e := range multierr.Errors(err) {
				var encErr *EncodingError
				require.True(t, errors.As(e, &encErr), e.Error())
				fields = append(fields, encErr.Field)
			}
			assert.Equal(t, tt.fields, fields)

			_, err = Serialize(c)
			assert.Error(t, err, "serialize must reject invalid configs")
		})
	}
}

func TestValidateFor(t *testing.T) {
	c := Fixture(4)
	assert.NoError(t, c.ValidateFor(4))
	assert.Error(t, c.ValidateFor(5))

	assert.NoError(t, c.Projection().Validate())
	err := c.Projection().ValidateFor(4)
	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "configPublicKeys", encErr.Field)
}

func TestProjection(t *testing.T) {
	c := Fixture(4)
	p := c.Projection()
	assert.Nil(t, p.ConfigPublicKeys)
	assert.Len(t, c.ConfigPublicKeys, 4, "original must not be mutated")

	// deep copy
	p.OffchainPublicKeys[0][0] ^= 0xff
	p.S[0] = 42
	assert.NotEqual(t, p.OffchainPublicKeys[0], c.OffchainPublicKeys[0])
	assert.Equal(t, int64(1), c.S[0])

	p = c.Projection()
	c.ConfigPublicKeys = nil
	assert.Equal(t, c, p)
}

func TestPublicKey_JSON(t *testing.T) {
	var keys []PublicKey
	require.NoError(t, json.Unmarshal([]byte(`["ocr2off_starknet_00ff","0x00ff","00FF"]`), &keys))
	for _, k := range keys {
		assert.Equal(t, PublicKey{0x00, 0xff}, k)
	}

	out, err := json.Marshal(keys[:1])
	require.NoError(t, err)
	assert.JSONEq(t, `["0x00ff"]`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`["0xzz"]`), &keys))
}

func TestOffchainConfig_JSON(t *testing.T) {
	c := Fixture(4)
	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, float64(8e9), fields["deltaProgressNanoseconds"])
	assert.Contains(t, fields, "maxDurationShouldTransmitAcceptedReportNanoseconds")

	var out OffchainConfig
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, c, out)
}

func TestSerialize_MedianPluginConfig(t *testing.T) {
	c := Fixture(4)
	c.ReportingPluginConfig = ReportingPluginConfig{
		AlphaReportInfinite: true,
		AlphaAcceptPpb:      1000,
		DeltaC:              90 * time.Second,
	}
	b, err := Serialize(c)
	require.NoError(t, err)

	encoded := c.ReportingPluginConfig.Median().Encode()
	assert.True(t, bytes.Contains(b, encoded))

	decoded, err := median.DecodeOffchainConfig(encoded)
	require.NoError(t, err)
	assert.Equal(t, c.ReportingPluginConfig, FromMedian(decoded))

	out, err := Deserialize(b)
	require.NoError(t, err)
	assert.Equal(t, c.ReportingPluginConfig, out.ReportingPluginConfig)
}
