package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutGet(t *testing.T) {
	s := newStore(t)
	ctx := t.Context()

	_, found, err := s.Get(ctx, "about/index.html")
	require.NoError(t, err)
	require.False(t, found)

	at := time.Unix(1700000000, 42)
	rec := PageRecord{Output: "about/index.html", Page: "about", Fingerprint: "fp1", Checksum: "c1", BuildID: "b1", RenderedAt: at}
	require.NoError(t, s.Put(ctx, rec))

	got, found, err := s.Get(ctx, "about/index.html")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "fp1", got.Fingerprint)
	require.Equal(t, "c1", got.Checksum)
	require.True(t, at.Equal(got.RenderedAt))

	rec.Fingerprint = "fp2"
	rec.BuildID = "b2"
	require.NoError(t, s.Put(ctx, rec))
	got, _, err = s.Get(ctx, "about/index.html")
	require.NoError(t, err)
	require.Equal(t, "fp2", got.Fingerprint)
	require.Equal(t, "b2", got.BuildID)
}

func TestStore_PruneRemovesPagesFromOlderBuilds(t *testing.T) {
	s := newStore(t)
	ctx := t.Context()

	require.NoError(t, s.Put(ctx, PageRecord{Output: "a.html", Page: "a", BuildID: "old"}))
	require.NoError(t, s.Put(ctx, PageRecord{Output: "b.html", Page: "b", BuildID: "new"}))
	require.NoError(t, s.Put(ctx, PageRecord{Output: "c.html", Page: "c", BuildID: "old"}))

	stale, err := s.Prune(ctx, "new")
	require.NoError(t, err)
	require.Equal(t, []string{"a.html", "c.html"}, stale)

	pages, err := s.Pages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Contains(t, pages, "b.html")
}

func TestStore_BuildHistory(t *testing.T) {
	s := newStore(t)
	ctx := t.Context()

	_, found, err := s.LastBuild(ctx)
	require.NoError(t, err)
	require.False(t, found)

	start := time.Now().Add(-time.Minute)
	require.NoError(t, s.RecordBuild(ctx, Build{ID: "one", StartedAt: start, FinishedAt: start.Add(time.Second), Status: "success", Pages: 3}))
	require.NoError(t, s.RecordBuild(ctx, Build{ID: "two", StartedAt: start.Add(time.Second), FinishedAt: start.Add(2 * time.Second), Status: "failure", Changed: 1}))

	last, found, err := s.LastBuild(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "two", last.ID)
	require.Equal(t, "failure", last.Status)
	require.Equal(t, 1, last.Changed)
}

func TestStore_PersistsToFile(t *testing.T) {
	path := DefaultPath(t.TempDir())
	require.Equal(t, "state.db", filepath.Base(path))

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(t.Context(), PageRecord{Output: "index.html", Fingerprint: "fp"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	got, found, err := s.Get(t.Context(), "index.html")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "fp", got.Fingerprint)
}

func TestChecksum(t *testing.T) {
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Checksum(nil))
	require.NotEqual(t, Checksum([]byte("a")), Checksum([]byte("b")))
}
