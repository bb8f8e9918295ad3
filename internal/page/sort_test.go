package page

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func names(pages []*Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.Name)
	}
	return out
}

func TestSort_PriorityTitleName(t *testing.T) {
	root, err := NewRoot(
		New("zeta", "", nil),
		New("late", "", map[string]any{DetailOrderingPriority: int64(10)}),
		New("early", "", map[string]any{DetailOrderingPriority: int64(-1)}),
		New("b-name", "", map[string]any{DetailTitle: "Same"}),
		New("a-name", "", map[string]any{DetailTitle: "Same"}),
		New("alpha", "", nil),
	)
	require.NoError(t, err)

	root.Sort()

	require.Equal(t, []string{"early", "a-name", "b-name", "alpha", "zeta", "late"}, names(root.Children))
	require.True(t, root.IsSorted())
}

func TestSort_Recursive(t *testing.T) {
	folder := NewFolder("folder", nil)
	require.NoError(t, folder.AddChild(New("b", "", nil), New("a", "", nil)))
	root, err := NewRoot(folder)
	require.NoError(t, err)
	require.False(t, root.IsSorted())

	root.Sort()
	require.Equal(t, []string{"a", "b"}, names(folder.Children))
}

func TestSort_Idempotent(t *testing.T) {
	folder := NewFolder("docs", map[string]any{DetailOrderingPriority: 2.5})
	require.NoError(t, folder.AddChild(
		New("y", "", map[string]any{DetailTitle: "Why"}),
		New("x", "", map[string]any{DetailTitle: "Ex"}),
	))
	root, err := NewRoot(New("c", "", nil), folder, New("a", "", map[string]any{DetailOrderingPriority: int64(5)}))
	require.NoError(t, err)

	root.Sort()
	first := root.String()
	root.Sort()
	require.Equal(t, first, root.String())
	require.True(t, root.IsSorted())
}
