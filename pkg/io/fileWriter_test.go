package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeDirForFile(t *testing.T) {
	t.Run("nested", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "a", "b", "wallet.json")
		require.NoError(t, MakeDirForFile(filePath, "wallet"))
		require.NoError(t, os.WriteFile(filePath, []byte("{}"), 0600))
	})

	t.Run("existing", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "wallet.json")
		require.NoError(t, MakeDirForFile(filePath, "wallet"))
	})

	t.Run("file in the way", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "wallet.json")
		require.NoError(t, os.WriteFile(filePath, []byte("{}"), 0600))

		err := MakeDirForFile(filepath.Join(filePath, "log", "zilgo.log"), "logger")
		require.Error(t, err)
		require.Contains(t, err.Error(), "could not create dir for logger")
	})
}
