package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpk-tools/internal/types"
)

func TestFileHasherAdapter_HashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.jar")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	hash, err := NewFileHasherAdapter().HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, types.FileHash{
		Algorithm: "SHA-256",
		FileHash:  "LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ=",
	}, hash)
}

func TestFileHasherAdapter_MissingFile(t *testing.T) {
	_, err := NewFileHasherAdapter().HashFile(filepath.Join(t.TempDir(), "missing.jar"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}
