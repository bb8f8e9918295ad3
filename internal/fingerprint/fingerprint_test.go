package fingerprint

import (
	"testing"

	"github.com/inful/mdfp"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/yassg/internal/page"
)

func TestCompute_MatchesCanonicalParts(t *testing.T) {
	got, err := Compute(map[string]any{"title": "Test", mdfp.FingerprintField: "stale"}, "hello\n")
	require.NoError(t, err)
	require.Equal(t, mdfp.CalculateFingerprintFromParts("title: Test", "hello\n"), got)
}

func TestCompute_StableAcrossInsertionOrder(t *testing.T) {
	a := map[string]any{}
	a["title"] = "Test"
	a["ordering-priority"] = 10

	b := map[string]any{}
	b["ordering-priority"] = 10
	b["title"] = "Test"

	fpA, err := Compute(a, "body")
	require.NoError(t, err)
	fpB, err := Compute(b, "body")
	require.NoError(t, err)
	require.Equal(t, fpA, fpB)
}

func TestPage_ChangesWithContentAndDetails(t *testing.T) {
	p := page.New("a", "one", map[string]any{"title": "A"})
	first, err := Page(p)
	require.NoError(t, err)

	p.SetContent("two")
	second, err := Page(p)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	p.Details["title"] = "B"
	third, err := Page(p)
	require.NoError(t, err)
	require.NotEqual(t, second, third)

	empty, err := Page(page.NewFolder("f", nil))
	require.NoError(t, err)
	require.Equal(t, mdfp.CalculateFingerprintFromParts("", ""), empty)
}
