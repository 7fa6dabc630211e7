// Package offchainconfig holds the OCR2 offchain config model and its canonical
// binary serialization.
package offchainconfig

import (
	"time"

	"github.com/smartcontractkit/libocr/offchainreporting2/reportingplugin/median"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
)

const KeyLen = 32

// PublicKey is raw key material. It reads and writes as 0x-prefixed hex and also
// accepts the ocr2off_starknet_ / ocr2cfg_starknet_ prefixed forms nodes export.
type PublicKey []byte

func (k PublicKey) String() string {
	return felt.NormalizeHex(hexString(k))
}

func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PublicKey) UnmarshalText(text []byte) error {
	raw, err := felt.DecodeKeyBytes(string(text))
	if err != nil {
		return err
	}
	*k = raw
	return nil
}

// OffchainConfig is the plugin-independent OCR2 offchain configuration. Durations
// are carried as nanoseconds, matching the JSON names operators write.
type OffchainConfig struct {
	DeltaProgress time.Duration `json:"deltaProgressNanoseconds"`
	DeltaResend   time.Duration `json:"deltaResendNanoseconds"`
	DeltaRound    time.Duration `json:"deltaRoundNanoseconds"`
	DeltaGrace    time.Duration `json:"deltaGraceNanoseconds"`
	DeltaStage    time.Duration `json:"deltaStageNanoseconds"`

	RMax int64   `json:"rMax"`
	S    []int64 `json:"s"`

	OffchainPublicKeys []PublicKey `json:"offchainPublicKeys"`
	// ConfigPublicKeys are operator metadata used to encrypt the shared secret
	// for each oracle. They are never written on-chain.
	ConfigPublicKeys []PublicKey `json:"configPublicKeys,omitempty"`
	PeerIDs          []string    `json:"peerIds"`

	ReportingPluginConfig ReportingPluginConfig `json:"reportingPluginConfig"`

	MaxDurationQuery                        time.Duration `json:"maxDurationQueryNanoseconds"`
	MaxDurationObservation                  time.Duration `json:"maxDurationObservationNanoseconds"`
	MaxDurationReport                       time.Duration `json:"maxDurationReportNanoseconds"`
	MaxDurationShouldAcceptFinalizedReport  time.Duration `json:"maxDurationShouldAcceptFinalizedReportNanoseconds"`
	MaxDurationShouldTransmitAcceptedReport time.Duration `json:"maxDurationShouldTransmitAcceptedReportNanoseconds"`
}

// ReportingPluginConfig is the median plugin section of the offchain config. On the
// wire it is carried as median.OffchainConfig bytes, the form median oracles decode.
type ReportingPluginConfig struct {
	AlphaReportInfinite bool          `json:"alphaReportInfinite"`
	AlphaReportPpb      uint64        `json:"alphaReportPpb"`
	AlphaAcceptInfinite bool          `json:"alphaAcceptInfinite"`
	AlphaAcceptPpb      uint64        `json:"alphaAcceptPpb"`
	DeltaC              time.Duration `json:"deltaCNanoseconds"`
}

func (r ReportingPluginConfig) Median() median.OffchainConfig {
	return median.OffchainConfig{
		AlphaReportInfinite: r.AlphaReportInfinite,
		AlphaReportPPB:      r.AlphaReportPpb,
		AlphaAcceptInfinite: r.AlphaAcceptInfinite,
		AlphaAcceptPPB:      r.AlphaAcceptPpb,
		DeltaC:              r.DeltaC,
	}
}

func FromMedian(m median.OffchainConfig) ReportingPluginConfig {
	return ReportingPluginConfig{
		AlphaReportInfinite: m.AlphaReportInfinite,
		AlphaReportPpb:      m.AlphaReportPPB,
		AlphaAcceptInfinite: m.AlphaAcceptInfinite,
		AlphaAcceptPpb:      m.AlphaAcceptPPB,
		DeltaC:              m.DeltaC,
	}
}

// N is the oracle count implied by the key sequences.
func (c OffchainConfig) N() int {
	return len(c.OffchainPublicKeys)
}

// Clone returns a deep copy.
func (c OffchainConfig) Clone() OffchainConfig {
	out := c
	out.S = cloneInts(c.S)
	out.OffchainPublicKeys = cloneKeys(c.OffchainPublicKeys)
	out.ConfigPublicKeys = cloneKeys(c.ConfigPublicKeys)
	if c.PeerIDs != nil {
		out.PeerIDs = append([]string(nil), c.PeerIDs...)
	}
	return out
}

// Projection returns the on-chain view of c: a deep copy without the fields that
// are never persisted. c is left untouched.
func (c OffchainConfig) Projection() OffchainConfig {
	out := c.Clone()
	out.ConfigPublicKeys = nil
	return out
}

func cloneInts(in []int64) []int64 {
	if in == nil {
		return nil
	}
	return append([]int64(nil), in...)
}

func cloneKeys(in []PublicKey) []PublicKey {
	if in == nil {
		return nil
	}
	out := make([]PublicKey, len(in))
	for i, k := range in {
		if k != nil {
			out[i] = append(PublicKey(nil), k...)
		}
	}
	return out
}
