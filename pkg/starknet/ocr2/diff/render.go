package diff

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/gagliardetto/treeout"
	"gopkg.in/d4l3k/messagediff.v1"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/offchainconfig"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Render draws the delta as a tree grouped by kind.
func Render(d Delta) string {
	tree := treeout.New(fmt.Sprintf("offchain config delta (%d changes)", len(d)))
	if d.Empty() {
		tree.Child("no changes")
		return tree.String()
	}
	for _, kind := range []Kind{Changed, Added, Removed} {
		var group Delta
		for _, c := range d {
			if c.Kind == kind {
				group = append(group, c)
			}
		}
		if len(group) == 0 {
			continue
		}
		tree.Child(fmt.Sprintf("%s[len=%d]", kind, len(group))).ParentFunc(func(branch treeout.Branches) {
			for _, c := range group {
				branch.Child(c.String())
			}
		})
	}
	return tree.String()
}

// PrettyDiff renders a and b with messagediff. equal is true if nothing differs.
func PrettyDiff(a, b offchainconfig.OffchainConfig) (out string, equal bool) {
	return messagediff.PrettyDiff(a, b)
}

// Dump renders a full config, used when there is nothing to diff against.
func Dump(c offchainconfig.OffchainConfig) string {
	return dumper.Sdump(c)
}
