// Package diff compares offchain configs field by field for operator review and audit.
package diff

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/offchainconfig"
)

type Kind int

const (
	Added Kind = iota + 1
	Removed
	Changed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Changed:
		return "changed"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Change is a single leaf difference. Index is -1 for scalar fields and the element
// position for sequences. From is nil for additions, To is nil for removals.
type Change struct {
	Field string
	Index int
	Kind  Kind
	From  interface{}
	To    interface{}
}

// Path renders the change location, e.g. "rMax" or "peerIds[3]".
func (c Change) Path() string {
	if c.Index < 0 {
		return c.Field
	}
	return fmt.Sprintf("%s[%d]", c.Field, c.Index)
}

func (c Change) String() string {
	switch c.Kind {
	case Added:
		return fmt.Sprintf("+ %s: %v", c.Path(), c.To)
	case Removed:
		return fmt.Sprintf("- %s: %v", c.Path(), c.From)
	}
	return fmt.Sprintf("~ %s: %v -> %v", c.Path(), c.From, c.To)
}

// Delta lists changes in field order, sequence elements ascending.
type Delta []Change

func (d Delta) Empty() bool {
	return len(d) == 0
}

// Paths returns the location of every change.
func (d Delta) Paths() []string {
	out := make([]string, len(d))
	for i, c := range d {
		out[i] = c.Path()
	}
	return out
}

var (
	ErrUnknownField = errors.New("unknown config field")
	ErrConflict     = errors.New("delta does not apply to this config")
)

// Diff returns the changes that turn a into b. Roster growth or shrinkage shows up
// as additions or removals at the tail of each sequence. Diff(a, a) is empty.
func Diff(a, b offchainconfig.OffchainConfig) Delta {
	var out Delta
	for _, f := range fields {
		out = append(out, f.diff(&a, &b)...)
	}
	return out
}

// Apply returns a copy of a with d applied, so Apply(a, Diff(a, b)) == b.
// a is not modified.
func Apply(a offchainconfig.OffchainConfig, d Delta) (offchainconfig.OffchainConfig, error) {
	out := a.Clone()
	var removals Delta
	for _, c := range d {
		if c.Kind == Removed {
			removals = append(removals, c)
			continue
		}
		if err := applyOne(&out, c); err != nil {
			return a, err
		}
	}
	// remove from the tail first
	sort.SliceStable(removals, func(i, j int) bool {
		if removals[i].Field != removals[j].Field {
			return removals[i].Field < removals[j].Field
		}
		return removals[i].Index > removals[j].Index
	})
	for _, c := range removals {
		if err := applyOne(&out, c); err != nil {
			return a, err
		}
	}
	return out, nil
}

func applyOne(c *offchainconfig.OffchainConfig, ch Change) error {
	f, ok := fieldsByName[ch.Field]
	if !ok {
		return errors.Wrap(ErrUnknownField, ch.Field)
	}
	if err := f.apply(c, ch); err != nil {
		return errors.Wrapf(err, "apply %s", ch)
	}
	return nil
}
