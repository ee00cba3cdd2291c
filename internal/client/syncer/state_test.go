package syncer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/khoj-ai/khoj-sync/internal/client/config"
)

func TestOpenState_MissingFileIsEmpty(t *testing.T) {
	s, err := OpenState(filepath.Join(t.TempDir(), config.StateFileName))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, config.NeverSynced, s.Get("anything.md"))
}

func TestOpenState_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.StateFileName)
	require.NoError(t, os.WriteFile(path, []byte("not json{{"), 0o644))

	s, err := OpenState(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 0, s.Len())
}

func TestState_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.StateFileName)

	now := time.Now().UTC().Truncate(time.Second)
	s, err := OpenState(path)
	require.NoError(t, err)
	s.Set("notes/a.md", now)
	require.NoError(t, s.Save())
	require.NoError(t, s.Close())

	reloaded, err := OpenState(path)
	require.NoError(t, err)
	defer reloaded.Close()

	got, ok := reloaded.LastSync("notes/a.md")
	require.True(t, ok)
	assert.True(t, got.Equal(now))
}

func TestState_LastSync(t *testing.T) {
	s, err := OpenState(filepath.Join(t.TempDir(), config.StateFileName))
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.LastSync("missing.md")
	assert.False(t, ok)

	s.entries["weird.md"] = "not-a-timestamp"
	_, ok = s.LastSync("weird.md")
	assert.False(t, ok)

	s.entries["empty.md"] = ""
	assert.Equal(t, config.NeverSynced, s.Get("empty.md"))
}

func TestState_RemoveAndPaths(t *testing.T) {
	s, err := OpenState(filepath.Join(t.TempDir(), config.StateFileName))
	require.NoError(t, err)
	defer s.Close()

	now := time.Now()
	s.Set("b.md", now)
	s.Set("a.md", now)
	assert.Equal(t, []string{"a.md", "b.md"}, s.Paths())
	assert.True(t, s.Has("a.md"))

	s.Remove("a.md")
	assert.False(t, s.Has("a.md"))
	assert.Equal(t, []string{"b.md"}, s.Paths())
}

func TestOpenState_SecondWriterIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.StateFileName)

	first, err := OpenState(path)
	require.NoError(t, err)
	defer first.Close()

	_, err = OpenState(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
}
