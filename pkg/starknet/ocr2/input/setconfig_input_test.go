package input

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/offchainconfig"
)

var testContract = felt.MustFromString("0xabc")

func loadTestInput(t *testing.T) SetConfigInput {
	f, err := os.Open("testdata/set_config_input.json")
	require.NoError(t, err)
	defer f.Close()
	in, err := LoadSetConfigInput(f)
	require.NoError(t, err)
	return in
}

func TestSetConfigInput_Request(t *testing.T) {
	in := loadTestInput(t)
	req, err := in.Request(testContract, "ignored")
	require.NoError(t, err)

	assert.Equal(t, testContract, req.Contract)
	assert.Equal(t, uint8(1), req.F)
	assert.Equal(t, []byte(in.Secret), req.Secret)
	assert.Equal(t, offchainconfig.Fixture(4), req.Config)
	require.Len(t, req.Oracles, 4)
	for i, o := range req.Oracles {
		assert.Equal(t, felt.New(uint64(0x200+i)), o.Transmitter)
		assert.Equal(t, felt.MustFromString(fmt.Sprintf("0x04%062x", 0x100+i)), o.Signer)
	}
	// the request owns its config
	req.Config.S[0] = 9
	assert.Equal(t, int64(1), in.OffchainConfig.S[0])
}

func TestSetConfigInput_Secret(t *testing.T) {
	in := loadTestInput(t)
	in.Secret = ""
	req, err := in.Request(testContract, "from env")
	require.NoError(t, err)
	assert.Equal(t, []byte("from env"), req.Secret)

	_, err = in.Request(testContract, "")
	assert.True(t, errors.Is(err, ErrMissingSecret))

	in.RandomSecret = true
	first, err := in.Request(testContract, "")
	require.NoError(t, err)
	assert.Len(t, first.Secret, 2+64)
	assert.True(t, strings.HasPrefix(string(first.Secret), "0x"))

	in.Secret = "configured"
	second, err := in.Request(testContract, "from env")
	require.NoError(t, err)
	assert.NotEqual(t, first.Secret, second.Secret)
	assert.NotEqual(t, []byte("configured"), second.Secret)
}

func TestSetConfigInput_Invalid(t *testing.T) {
	for _, tt := range []struct {
		name   string
		modify func(*SetConfigInput)
		fields []string
	}{
		{"transmitter count", func(in *SetConfigInput) { in.Transmitters = in.Transmitters[:3] }, []string{"transmitters"}},
		{"onchain config", func(in *SetConfigInput) { in.OnchainConfig = OnchainConfig{"0x1"} }, []string{"onchainConfig"}},
		{"version", func(in *SetConfigInput) { in.OffchainConfigVersion = 1 }, []string{"offchainConfigVersion"}},
		{"roster size", func(in *SetConfigInput) {
			in.Signers = in.Signers[:3]
			in.Transmitters = in.Transmitters[:3]
		}, []string{"offchainPublicKeys"}},
		{"several", func(in *SetConfigInput) {
			in.OffchainConfigVersion = 0
			in.OffchainConfig.RMax = 0
		}, []string{"offchainConfigVersion", "rMax"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			in := loadTestInput(t)
			in.OffchainConfig = in.OffchainConfig.Clone()
			tt.modify(&in)
			_, err := in.Request(testContract, "")
			require.Error(t, err)
			var fields []string
			for _, e := range multierr.Errors(err) {
				var encErr *offchainconfig.EncodingError
				require.True(t, errors.As(e, &encErr), e.Error())
				fields = append(fields, encErr.Field)
			}
			assert.ElementsMatch(t, tt.fields, fields)
		})
	}
}

func TestSetConfigInput_BadKeys(t *testing.T) {
	in := loadTestInput(t)
	in.Signers = append([]string(nil), in.Signers...)
	in.Signers[2] = "0xnothex"
	_, err := in.Oracles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signers[2]")
}

func TestOnchainConfig_JSON(t *testing.T) {
	for _, s := range []string{`{"onchainConfig": ""}`, `{"onchainConfig": null}`, `{"onchainConfig": []}`, `{}`} {
		in, err := LoadSetConfigInput(strings.NewReader(s))
		require.NoError(t, err, s)
		assert.Empty(t, in.OnchainConfig, s)
	}
	in, err := LoadSetConfigInput(strings.NewReader(`{"onchainConfig": ["0x1"]}`))
	require.NoError(t, err)
	assert.Equal(t, OnchainConfig{"0x1"}, in.OnchainConfig)

	_, err = LoadSetConfigInput(strings.NewReader(`{"onchainConfig": 5}`))
	assert.Error(t, err)
	_, err = LoadSetConfigInput(strings.NewReader(`{"f": 300}`))
	assert.Error(t, err)
}

func TestRDD_SetConfigInput(t *testing.T) {
	f, err := os.Open("testdata/rdd.json")
	require.NoError(t, err)
	defer f.Close()
	rdd, err := LoadRDD(f)
	require.NoError(t, err)

	got, err := rdd.SetConfigInput("0xabc", "s3cret")
	require.NoError(t, err)
	want := loadTestInput(t)
	want.Secret = "s3cret"
	want.OnchainConfig = nil
	// the RDD keeps node export prefixes on signers
	for i := range want.Signers {
		want.Signers[i] = felt.OnchainKeyPrefix + strings.TrimPrefix(felt.NormalizeHex(want.Signers[i]), "0x")
	}
	assert.Equal(t, want, got)
	assert.Equal(t, time.Minute, got.OffchainConfig.ReportingPluginConfig.DeltaC)

	_, err = rdd.SetConfigInput("0xdef", "s3cret")
	assert.Error(t, err)

	broken := rdd
	broken.Operators = map[string]RDDOperator{}
	_, err = broken.SetConfigInput("0xabc", "s3cret")
	assert.Error(t, err)
}

func TestRDD_BadPpb(t *testing.T) {
	rdd, err := LoadRDD(strings.NewReader(`{
		"contracts": {"0x1": {"config": {"reportingPluginConfig": {"alphaReportPpb": "1.5"}}}},
		"operators": {}
	}`))
	require.NoError(t, err)
	_, err = rdd.SetConfigInput("0x01", "")
	var invalid *InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "1.5", invalid.Value)
}
