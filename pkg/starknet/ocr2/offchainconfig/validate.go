package offchainconfig

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/multierr"
)

// Validate checks that c is internally consistent and representable on the wire.
// Every violation is reported.
func (c OffchainConfig) Validate() error {
	var merr error

	for _, d := range c.durations() {
		if d.value < 0 {
			merr = multierr.Append(merr, invalid(d.field, "negative duration %d", d.value))
		}
	}

	if c.RMax < 1 || c.RMax > math.MaxUint32 {
		merr = multierr.Append(merr, invalid("rMax", "%d out of range [1, %d]", c.RMax, uint64(math.MaxUint32)))
	}
	for i, s := range c.S {
		if s < 0 || s > math.MaxUint32 {
			merr = multierr.Append(merr, invalid(fmt.Sprintf("s[%d]", i), "%d out of range [0, %d]", s, uint64(math.MaxUint32)))
		}
	}

	n := c.N()
	if n == 0 {
		merr = multierr.Append(merr, invalid("offchainPublicKeys", "no oracles"))
	}
	for i, k := range c.OffchainPublicKeys {
		if len(k) != KeyLen {
			merr = multierr.Append(merr, invalid(fmt.Sprintf("offchainPublicKeys[%d]", i), "key is %d bytes, want %d", len(k), KeyLen))
		}
	}
	if len(c.ConfigPublicKeys) != 0 && len(c.ConfigPublicKeys) != n {
		merr = multierr.Append(merr, invalid("configPublicKeys", "%d keys for %d oracles", len(c.ConfigPublicKeys), n))
	}
	for i, k := range c.ConfigPublicKeys {
		if len(k) != KeyLen {
			merr = multierr.Append(merr, invalid(fmt.Sprintf("configPublicKeys[%d]", i), "key is %d bytes, want %d", len(k), KeyLen))
		}
	}

	if len(c.PeerIDs) != n {
		merr = multierr.Append(merr, invalid("peerIds", "%d peer ids for %d oracles", len(c.PeerIDs), n))
	}
	seen := make(map[string]int, len(c.PeerIDs))
	for i, id := range c.PeerIDs {
		if id == "" {
			merr = multierr.Append(merr, invalid(fmt.Sprintf("peerIds[%d]", i), "empty peer id"))
			continue
		}
		if j, ok := seen[id]; ok {
			merr = multierr.Append(merr, invalid(fmt.Sprintf("peerIds[%d]", i), "duplicate of peerIds[%d]", j))
		}
		seen[id] = i
	}
	return merr
}

// ValidateFor additionally checks the key sequences against a roster of n oracles.
// Config public keys are required here. Validate alone accepts none since
// projections drop them.
func (c OffchainConfig) ValidateFor(n int) error {
	merr := c.Validate()
	if c.N() != n {
		merr = multierr.Append(merr, invalid("offchainPublicKeys", "%d keys for %d oracles", c.N(), n))
	}
	if len(c.ConfigPublicKeys) == 0 && n > 0 {
		merr = multierr.Append(merr, invalid("configPublicKeys", "0 keys for %d oracles", n))
	}
	return merr
}

type namedDuration struct {
	field string
	value time.Duration
}

func (c OffchainConfig) durations() []namedDuration {
	return []namedDuration{
		{"deltaProgressNanoseconds", c.DeltaProgress},
		{"deltaResendNanoseconds", c.DeltaResend},
		{"deltaRoundNanoseconds", c.DeltaRound},
		{"deltaGraceNanoseconds", c.DeltaGrace},
		{"deltaStageNanoseconds", c.DeltaStage},
		{"reportingPluginConfig.deltaCNanoseconds", c.ReportingPluginConfig.DeltaC},
		{"maxDurationQueryNanoseconds", c.MaxDurationQuery},
		{"maxDurationObservationNanoseconds", c.MaxDurationObservation},
		{"maxDurationReportNanoseconds", c.MaxDurationReport},
		{"maxDurationShouldAcceptFinalizedReportNanoseconds", c.MaxDurationShouldAcceptFinalizedReport},
		{"maxDurationShouldTransmitAcceptedReportNanoseconds", c.MaxDurationShouldTransmitAcceptedReport},
	}
}
