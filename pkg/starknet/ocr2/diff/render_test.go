package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/offchainconfig"
)

func TestRender(t *testing.T) {
	a := offchainconfig.Fixture(4)
	b := offchainconfig.Fixture(5)
	b.RMax = 6

	out := Render(Diff(a, b))
	assert.Contains(t, out, "offchain config delta (5 changes)")
	assert.Contains(t, out, "changed[len=1]")
	assert.Contains(t, out, "~ rMax: 5 -> 6")
	assert.Contains(t, out, "added[len=4]")
	assert.Contains(t, out, "+ peerIds[4]: 12D3KooWPeer04")
	assert.NotContains(t, out, "removed")

	assert.Contains(t, Render(nil), "no changes")
}

func TestPrettyDiff(t *testing.T) {
	a := offchainconfig.Fixture(4)
	out, equal := PrettyDiff(a, a.Clone())
	assert.True(t, equal)
	assert.Empty(t, out)

	b := a.Clone()
	b.RMax = 6
	out, equal = PrettyDiff(a, b)
	assert.False(t, equal)
	assert.Contains(t, out, "RMax")
}

func TestDump(t *testing.T) {
	out := Dump(offchainconfig.Fixture(4))
	assert.Contains(t, out, "RMax: (int64) 5")
	assert.Contains(t, out, "12D3KooWPeer03")
}
