package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeDetails_Empty(t *testing.T) {
	out, err := SerializeDetails(nil)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestSerializeDetails_SortedAndStable(t *testing.T) {
	details := map[string]any{
		"title":             "Two",
		"ordering-priority": int64(3),
		"draft":             false,
	}

	first, err := SerializeDetails(details)
	require.NoError(t, err)
	second, err := SerializeDetails(details)
	require.NoError(t, err)

	require.Equal(t, string(first), string(second))
	require.Equal(t, "draft: false\nordering-priority: 3\ntitle: Two\n", string(first))
}

func TestSerializeDetails_NestedTables(t *testing.T) {
	details := map[string]any{
		"params": map[string]any{"b": int64(2), "a": int64(1)},
		"tags":   []any{"go", "docs"},
	}

	out, err := SerializeDetails(details)
	require.NoError(t, err)
	require.Equal(t, "params:\n  a: 1\n  b: 2\ntags:\n  - go\n  - docs\n", string(out))
}
