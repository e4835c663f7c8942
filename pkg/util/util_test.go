package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")

	assert.False(t, Exist(nested))
	require.NoError(t, EnsureDir(nested))
	assert.True(t, Exist(nested))

	// idempotent
	require.NoError(t, EnsureDir(nested))
}

func TestEnsureDir_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	assert.Error(t, EnsureDir(path))
	assert.False(t, Exist(path))
}

func TestRandomString(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := RandomString(6)
		assert.Len(t, s, 6)
		assert.Regexp(t, `^[a-zA-Z0-9]{6}$`, s)
		seen[s] = true
	}
	assert.Greater(t, len(seen), 90)
}
