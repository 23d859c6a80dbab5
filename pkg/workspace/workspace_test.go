package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearEmptiesScratch(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, os.WriteFile(ws.Path("temp.jpg"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(ws.Path("zip/nested"), 0o755))

	require.NoError(t, ws.Clear())

	entries, err := os.ReadDir(ws.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCloseRemovesPartialOutput(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)

	partial := filepath.Join(t.TempDir(), "1920-h264.mp4")
	require.NoError(t, os.WriteFile(partial, []byte("truncated"), 0o644))
	ws.Begin(partial)
	assert.Equal(t, partial, ws.InProgress())

	require.NoError(t, ws.Close())

	_, err = os.Stat(partial)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(ws.Dir())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, ws.Close(), "second close is a no-op")
}

func TestDoneKeepsFinishedOutput(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)

	finished := filepath.Join(t.TempDir(), "1024.jpg")
	require.NoError(t, os.WriteFile(finished, []byte("jpeg"), 0o644))
	ws.Begin(finished)
	ws.Done()
	require.NoError(t, ws.Close())

	_, err = os.Stat(finished)
	assert.NoError(t, err)
}
