package offchainconfig

import (
	"bytes"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"
	"github.com/smartcontractkit/libocr/offchainreporting2/reportingplugin/median"
)

// wireConfig is the Borsh layout. Field order is part of the format and must not change.
type wireConfig struct {
	DeltaProgressNanoseconds uint64
	DeltaResendNanoseconds   uint64
	DeltaRoundNanoseconds    uint64
	DeltaGraceNanoseconds    uint64
	DeltaStageNanoseconds    uint64
	RMax                     uint32
	S                        []uint32
	OffchainPublicKeys       [][]byte
	ConfigPublicKeys         [][]byte
	PeerIDs                  []string

	// ReportingPluginConfig is the libocr median plugin config, protobuf encoded.
	ReportingPluginConfig []byte

	MaxDurationQueryNanoseconds                        uint64
	MaxDurationObservationNanoseconds                  uint64
	MaxDurationReportNanoseconds                       uint64
	MaxDurationShouldAcceptFinalizedReportNanoseconds  uint64
	MaxDurationShouldTransmitAcceptedReportNanoseconds uint64
}

// Serialize validates c and encodes it with Borsh. Logically equal configs always
// produce identical bytes.
func Serialize(c OffchainConfig) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(toWire(c)); err != nil {
		return nil, errors.Wrap(err, "failed to encode offchain config")
	}
	return buf.Bytes(), nil
}

// Deserialize is the inverse of Serialize. Trailing bytes and decoded values that
// fail validation are rejected.
func Deserialize(b []byte) (OffchainConfig, error) {
	var w wireConfig
	dec := bin.NewBorshDecoder(b)
	if err := dec.Decode(&w); err != nil {
		return OffchainConfig{}, errors.Wrapf(ErrMalformed, "borsh decode: %v", err)
	}
	if dec.Remaining() != 0 {
		return OffchainConfig{}, errors.Wrapf(ErrMalformed, "%d trailing bytes", dec.Remaining())
	}
	c, err := fromWire(w)
	if err != nil {
		return OffchainConfig{}, err
	}
	if err := c.Validate(); err != nil {
		return OffchainConfig{}, err
	}
	return c, nil
}

func toWire(c OffchainConfig) wireConfig {
	w := wireConfig{
		DeltaProgressNanoseconds: uint64(c.DeltaProgress),
		DeltaResendNanoseconds:   uint64(c.DeltaResend),
		DeltaRoundNanoseconds:    uint64(c.DeltaRound),
		DeltaGraceNanoseconds:    uint64(c.DeltaGrace),
		DeltaStageNanoseconds:    uint64(c.DeltaStage),
		RMax:                     uint32(c.RMax),
		PeerIDs:                  c.PeerIDs,
		ReportingPluginConfig:    c.ReportingPluginConfig.Median().Encode(),

		MaxDurationQueryNanoseconds:                        uint64(c.MaxDurationQuery),
		MaxDurationObservationNanoseconds:                  uint64(c.MaxDurationObservation),
		MaxDurationReportNanoseconds:                       uint64(c.MaxDurationReport),
		MaxDurationShouldAcceptFinalizedReportNanoseconds:  uint64(c.MaxDurationShouldAcceptFinalizedReport),
		MaxDurationShouldTransmitAcceptedReportNanoseconds: uint64(c.MaxDurationShouldTransmitAcceptedReport),
	}
	for _, s := range c.S {
		w.S = append(w.S, uint32(s))
	}
	for _, k := range c.OffchainPublicKeys {
		w.OffchainPublicKeys = append(w.OffchainPublicKeys, []byte(k))
	}
	for _, k := range c.ConfigPublicKeys {
		w.ConfigPublicKeys = append(w.ConfigPublicKeys, []byte(k))
	}
	return w
}

// fromWire maps empty sequences to nil so Deserialize(Serialize(c)) == c.
func fromWire(w wireConfig) (OffchainConfig, error) {
	plugin, err := median.DecodeOffchainConfig(w.ReportingPluginConfig)
	if err != nil {
		return OffchainConfig{}, errors.Wrapf(ErrMalformed, "reporting plugin config: %v", err)
	}
	c := OffchainConfig{
		DeltaProgress: time.Duration(w.DeltaProgressNanoseconds),
		DeltaResend:   time.Duration(w.DeltaResendNanoseconds),
		DeltaRound:    time.Duration(w.DeltaRoundNanoseconds),
		DeltaGrace:    time.Duration(w.DeltaGraceNanoseconds),
		DeltaStage:    time.Duration(w.DeltaStageNanoseconds),
		RMax:          int64(w.RMax),

		ReportingPluginConfig: FromMedian(plugin),

		MaxDurationQuery:                        time.Duration(w.MaxDurationQueryNanoseconds),
		MaxDurationObservation:                  time.Duration(w.MaxDurationObservationNanoseconds),
		MaxDurationReport:                       time.Duration(w.MaxDurationReportNanoseconds),
		MaxDurationShouldAcceptFinalizedReport:  time.Duration(w.MaxDurationShouldAcceptFinalizedReportNanoseconds),
		MaxDurationShouldTransmitAcceptedReport: time.Duration(w.MaxDurationShouldTransmitAcceptedReportNanoseconds),
	}
	for _, s := range w.S {
		c.S = append(c.S, int64(s))
	}
	for _, k := range w.OffchainPublicKeys {
		c.OffchainPublicKeys = append(c.OffchainPublicKeys, PublicKey(k))
	}
	for _, k := range w.ConfigPublicKeys {
		c.ConfigPublicKeys = append(c.ConfigPublicKeys, PublicKey(k))
	}
	if len(w.PeerIDs) > 0 {
		c.PeerIDs = w.PeerIDs
	}
	return c, nil
}
