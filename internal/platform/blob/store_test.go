package blob_test

import (
	"testing"

	"github.com/phrazzld/pagequeue/internal/platform/blob"
	"github.com/phrazzld/pagequeue/internal/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndGet(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := blob.NewStore(fs, "/data/pages")

	require.NoError(t, s.SaveFile("abc", []byte("<html>hello</html>")))

	got, err := s.GetFile("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>hello</html>"), got)

	t.Run("temporary file is gone after commit", func(t *testing.T) {
		exists, err := afero.Exists(fs, "/data/pages/abc.tmp")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("save overwrites", func(t *testing.T) {
		require.NoError(t, s.SaveFile("abc", []byte("second")))
		got, err := s.GetFile("abc")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})
}

func TestStore_GetMissing(t *testing.T) {
	s := blob.NewStore(afero.NewMemMapFs(), "/data/pages")

	got, err := s.GetFile("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_RemoveFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := blob.NewStore(fs, "/data/pages")

	require.NoError(t, s.SaveFile("abc", []byte("x")))
	require.NoError(t, s.RemoveFile("abc"))

	got, err := s.GetFile("abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, s.RemoveFile("abc"), "removing twice is not an error")
	assert.NoError(t, s.RemoveFile("never-existed"))
}

func TestStore_InvalidNames(t *testing.T) {
	s := blob.NewStore(afero.NewMemMapFs(), "/data/pages")

	for _, name := range []string{"", ".", "..", "../escape", "a/b"} {
		t.Run(name, func(t *testing.T) {
			err := s.SaveFile(name, []byte("x"))
			assert.ErrorIs(t, err, store.ErrInvalidEntity)
		})
	}
}

func TestStore_OsFilesystem(t *testing.T) {
	dir := t.TempDir()
	s := blob.NewOsStore(dir + "/nested")

	require.NoError(t, s.SaveFile("page", []byte("content")))
	got, err := s.GetFile("page")
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), got)
}
