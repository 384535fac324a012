package metaconfig

import (
	"crypto/md5"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	t.Run("will create missing root dir", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "missing", "root")
		w := NewWriter(root)
		results, err := w.Commit(nil)
		require.NoError(t, err)
		assert.Empty(t, results)

		fi, err := os.Stat(root)
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	})

	t.Run("will write new and changed files only", func(t *testing.T) {
		root := t.TempDir()
		w := NewWriter(root)
		files := []*File{
			{Name: "nova", Path: "/etc/nova/nova.conf", Content: "[DEFAULT]\ndebug = True\n"},
			{Name: "ironic", Path: "etc/ironic/ironic.conf", Content: "[DEFAULT]\n"},
		}

		results, err := w.Commit(files)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.True(t, results[0].Changed)
		assert.True(t, results[1].Changed)
		assert.Equal(t, filepath.Join(root, "etc", "nova", "nova.conf"), results[0].FullPath)

		files[1].Content = "[DEFAULT]\ndebug = True\n"
		results, err = w.Commit(files)
		require.NoError(t, err)
		assert.False(t, results[0].Changed)
		assert.True(t, results[1].Changed)
		assert.Equal(t, results[0].Hash, results[1].Hash)

		b, err := os.ReadFile(results[1].FullPath)
		require.NoError(t, err)
		assert.Equal(t, "[DEFAULT]\ndebug = True\n", string(b))
	})

	t.Run("will use the given hasher", func(t *testing.T) {
		w := NewWriter(t.TempDir(), WithHasher(md5.New()))
		results, err := w.Commit([]*File{{Name: "a", Path: "a.conf", Content: "x"}})
		require.NoError(t, err)
		assert.Len(t, results[0].Hash, md5.Size)
	})

	t.Run("will keep paths below root", func(t *testing.T) {
		root := t.TempDir()
		w := NewWriter(root)
		p, err := w.Path("../../../etc/passwd")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "etc", "passwd"), p)
	})
}
