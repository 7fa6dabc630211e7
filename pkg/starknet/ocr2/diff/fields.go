package diff

import (
	"bytes"
	"time"

	"github.com/pkg/errors"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/offchainconfig"
)

type config = offchainconfig.OffchainConfig

type field interface {
	name() string
	diff(a, b *config) []Change
	apply(c *config, ch Change) error
}

var fields = []field{
	scalar[time.Duration]{"deltaProgressNanoseconds", func(c *config) *time.Duration { return &c.DeltaProgress }},
	scalar[time.Duration]{"deltaResendNanoseconds", func(c *config) *time.Duration { return &c.DeltaResend }},
	scalar[time.Duration]{"deltaRoundNanoseconds", func(c *config) *time.Duration { return &c.DeltaRound }},
	scalar[time.Duration]{"deltaGraceNanoseconds", func(c *config) *time.Duration { return &c.DeltaGrace }},
	scalar[time.Duration]{"deltaStageNanoseconds", func(c *config) *time.Duration { return &c.DeltaStage }},
	scalar[int64]{"rMax", func(c *config) *int64 { return &c.RMax }},
	sequence[int64]{"s", func(c *config) *[]int64 { return &c.S }, func(a, b int64) bool { return a == b }, nil},
	sequence[offchainconfig.PublicKey]{"offchainPublicKeys", func(c *config) *[]offchainconfig.PublicKey { return &c.OffchainPublicKeys }, keyEqual, keyCopy},
	sequence[offchainconfig.PublicKey]{"configPublicKeys", func(c *config) *[]offchainconfig.PublicKey { return &c.ConfigPublicKeys }, keyEqual, keyCopy},
	sequence[string]{"peerIds", func(c *config) *[]string { return &c.PeerIDs }, func(a, b string) bool { return a == b }, nil},
	scalar[bool]{"reportingPluginConfig.alphaReportInfinite", func(c *config) *bool { return &c.ReportingPluginConfig.AlphaReportInfinite }},
	scalar[uint64]{"reportingPluginConfig.alphaReportPpb", func(c *config) *uint64 { return &c.ReportingPluginConfig.AlphaReportPpb }},
	scalar[bool]{"reportingPluginConfig.alphaAcceptInfinite", func(c *config) *bool { return &c.ReportingPluginConfig.AlphaAcceptInfinite }},
	scalar[uint64]{"reportingPluginConfig.alphaAcceptPpb", func(c *config) *uint64 { return &c.ReportingPluginConfig.AlphaAcceptPpb }},
	scalar[time.Duration]{"reportingPluginConfig.deltaCNanoseconds", func(c *config) *time.Duration { return &c.ReportingPluginConfig.DeltaC }},
	scalar[time.Duration]{"maxDurationQueryNanoseconds", func(c *config) *time.Duration { return &c.MaxDurationQuery }},
	scalar[time.Duration]{"maxDurationObservationNanoseconds", func(c *config) *time.Duration { return &c.MaxDurationObservation }},
	scalar[time.Duration]{"maxDurationReportNanoseconds", func(c *config) *time.Duration { return &c.MaxDurationReport }},
	scalar[time.Duration]{"maxDurationShouldAcceptFinalizedReportNanoseconds", func(c *config) *time.Duration { return &c.MaxDurationShouldAcceptFinalizedReport }},
	scalar[time.Duration]{"maxDurationShouldTransmitAcceptedReportNanoseconds", func(c *config) *time.Duration { return &c.MaxDurationShouldTransmitAcceptedReport }},
}

var fieldsByName = func() map[string]field {
	out := make(map[string]field, len(fields))
	for _, f := range fields {
		out[f.name()] = f
	}
	return out
}()

func keyEqual(a, b offchainconfig.PublicKey) bool { return bytes.Equal(a, b) }

func keyCopy(k offchainconfig.PublicKey) offchainconfig.PublicKey {
	return append(offchainconfig.PublicKey(nil), k...)
}

type scalar[T comparable] struct {
	path string
	ptr  func(*config) *T
}

func (s scalar[T]) name() string { return s.path }

func (s scalar[T]) diff(a, b *config) []Change {
	x, y := *s.ptr(a), *s.ptr(b)
	if x == y {
		return nil
	}
	return []Change{{Field: s.path, Index: -1, Kind: Changed, From: x, To: y}}
}

func (s scalar[T]) apply(c *config, ch Change) error {
	if ch.Kind != Changed || ch.Index >= 0 {
		return errors.Errorf("%s is a scalar field", s.path)
	}
	from, ok := ch.From.(T)
	if !ok || from != *s.ptr(c) {
		return ErrConflict
	}
	to, ok := ch.To.(T)
	if !ok {
		return errors.Errorf("want %T, got %T", to, ch.To)
	}
	*s.ptr(c) = to
	return nil
}

type sequence[T any] struct {
	path   string
	ptr    func(*config) *[]T
	equal  func(a, b T) bool
	copyOf func(T) T
}

func (s sequence[T]) name() string { return s.path }

func (s sequence[T]) diff(a, b *config) []Change {
	x, y := *s.ptr(a), *s.ptr(b)
	var out []Change
	for i := 0; i < len(x) && i < len(y); i++ {
		if !s.equal(x[i], y[i]) {
			out = append(out, Change{Field: s.path, Index: i, Kind: Changed, From: x[i], To: y[i]})
		}
	}
	for i := len(x); i < len(y); i++ {
		out = append(out, Change{Field: s.path, Index: i, Kind: Added, To: y[i]})
	}
	for i := len(y); i < len(x); i++ {
		out = append(out, Change{Field: s.path, Index: i, Kind: Removed, From: x[i]})
	}
	return out
}

func (s sequence[T]) apply(c *config, ch Change) error {
	seq := s.ptr(c)
	n := len(*seq)
	switch ch.Kind {
	case Changed:
		if ch.Index < 0 || ch.Index >= n || !s.matches((*seq)[ch.Index], ch.From) {
			return ErrConflict
		}
		to, ok := ch.To.(T)
		if !ok {
			return errors.Errorf("want %T, got %T", to, ch.To)
		}
		(*seq)[ch.Index] = s.clone(to)
	case Added:
		if ch.Index != n {
			return errors.Wrapf(ErrConflict, "append at %d to a sequence of %d", ch.Index, n)
		}
		to, ok := ch.To.(T)
		if !ok {
			return errors.Errorf("want %T, got %T", to, ch.To)
		}
		*seq = append(*seq, s.clone(to))
	case Removed:
		if ch.Index != n-1 || !s.matches((*seq)[ch.Index], ch.From) {
			return errors.Wrapf(ErrConflict, "remove %d from a sequence of %d", ch.Index, n)
		}
		*seq = (*seq)[:n-1]
		if len(*seq) == 0 {
			*seq = nil
		}
	default:
		return errors.Errorf("unknown change kind %s", ch.Kind)
	}
	return nil
}

func (s sequence[T]) matches(cur T, from interface{}) bool {
	v, ok := from.(T)
	return ok && s.equal(cur, v)
}

func (s sequence[T]) clone(v T) T {
	if s.copyOf == nil {
		return v
	}
	return s.copyOf(v)
}
