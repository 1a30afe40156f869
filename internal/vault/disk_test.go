package vault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskSaver(t *testing.T) {
	saver, err := NewDiskSaver(t.TempDir() + "/uploads")
	require.NoError(t, err)

	t.Run("writes the file and returns a generated reference", func(t *testing.T) {
		ref, err := saver.SaveUpload("vault", "scan.pdf", []byte("content"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(ref, "vault-"))
		assert.True(t, strings.HasSuffix(ref, ".pdf"))

		data, err := os.ReadFile(filepath.Join(saver.baseDir, ref))
		require.NoError(t, err)
		assert.Equal(t, []byte("content"), data)
	})

	t.Run("reference never echoes the client filename", func(t *testing.T) {
		ref, err := saver.SaveUpload("vault", "../../etc/passwd.png", []byte("x"))
		require.NoError(t, err)
		assert.NotContains(t, ref, "..")
		assert.NotContains(t, ref, "/")
		assert.True(t, strings.HasSuffix(ref, ".png"))
	})

	t.Run("unknown extensions are dropped", func(t *testing.T) {
		ref, err := saver.SaveUpload("vault", "payload.exe", []byte("x"))
		require.NoError(t, err)
		assert.False(t, strings.HasSuffix(ref, ".exe"))
	})
}

func TestSanitizeExt(t *testing.T) {
	assert.Equal(t, ".jpg", sanitizeExt(".JPG"))
	assert.Equal(t, ".pdf", sanitizeExt(".pdf"))
	assert.Equal(t, "", sanitizeExt(".sh"))
	assert.Equal(t, "", sanitizeExt(""))
}
