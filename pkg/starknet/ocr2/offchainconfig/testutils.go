package offchainconfig

import (
	"fmt"
	"time"

	fuzz "github.com/gagliardetto/gofuzz"
)

// Fixture returns a valid config for n oracles with the default timing parameters
// used by the starknet deployment scripts. Keys are derived from the oracle index.
func Fixture(n int) OffchainConfig {
	c := OffchainConfig{
		DeltaProgress: 8 * time.Second,
		DeltaResend:   30 * time.Second,
		DeltaRound:    3 * time.Second,
		DeltaGrace:    500 * time.Millisecond,
		DeltaStage:    20 * time.Second,
		RMax:          5,
		ReportingPluginConfig: ReportingPluginConfig{
			AlphaReportPpb: 0,
			AlphaAcceptPpb: 0,
			DeltaC:         time.Minute,
		},
		MaxDurationQuery:                        0,
		MaxDurationObservation:                  time.Second,
		MaxDurationReport:                       200 * time.Millisecond,
		MaxDurationShouldAcceptFinalizedReport:  200 * time.Millisecond,
		MaxDurationShouldTransmitAcceptedReport: 200 * time.Millisecond,
	}
	for i := 0; i < n; i++ {
		c.S = append(c.S, 1)
		c.OffchainPublicKeys = append(c.OffchainPublicKeys, fixtureKey(0xa0, i))
		c.ConfigPublicKeys = append(c.ConfigPublicKeys, fixtureKey(0xc0, i))
		c.PeerIDs = append(c.PeerIDs, fmt.Sprintf("12D3KooWPeer%02d", i))
	}
	return c
}

func fixtureKey(tag byte, i int) PublicKey {
	k := make(PublicKey, KeyLen)
	for j := range k {
		k[j] = tag ^ byte(i) ^ byte(j)
	}
	return k
}

// NewFuzzer returns a gofuzz fuzzer that only produces valid configs.
// Config public keys are present roughly half of the time.
func NewFuzzer(seed int64) *fuzz.Fuzzer {
	return fuzz.NewWithSeed(seed).NilChance(0).Funcs(
		func(c *OffchainConfig, r fuzz.Continue) {
			n := 1 + r.Intn(31)
			*c = OffchainConfig{
				DeltaProgress: randDuration(r),
				DeltaResend:   randDuration(r),
				DeltaRound:    randDuration(r),
				DeltaGrace:    randDuration(r),
				DeltaStage:    randDuration(r),
				RMax:          1 + r.Int63n(1<<32-1),
				ReportingPluginConfig: ReportingPluginConfig{
					AlphaReportInfinite: r.RandBool(),
					AlphaReportPpb:      r.Uint64(),
					AlphaAcceptInfinite: r.RandBool(),
					AlphaAcceptPpb:      r.Uint64(),
					DeltaC:              randDuration(r),
				},
				MaxDurationQuery:                        randDuration(r),
				MaxDurationObservation:                  randDuration(r),
				MaxDurationReport:                       randDuration(r),
				MaxDurationShouldAcceptFinalizedReport:  randDuration(r),
				MaxDurationShouldTransmitAcceptedReport: randDuration(r),
			}
			for i, l := 0, r.Intn(2*n); i < l; i++ {
				c.S = append(c.S, r.Int63n(1<<32))
			}
			withConfigKeys := r.RandBool()
			for i := 0; i < n; i++ {
				c.OffchainPublicKeys = append(c.OffchainPublicKeys, randKey(r))
				if withConfigKeys {
					c.ConfigPublicKeys = append(c.ConfigPublicKeys, randKey(r))
				}
				c.PeerIDs = append(c.PeerIDs, fmt.Sprintf("%s-%d", r.RandString(), i))
			}
		},
	)
}

func randDuration(r fuzz.Continue) time.Duration {
	return time.Duration(r.Int63())
}

func randKey(r fuzz.Continue) PublicKey {
	k := make(PublicKey, KeyLen)
	_, _ = r.Read(k)
	return k
}
