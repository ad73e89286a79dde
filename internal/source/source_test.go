package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToURL(t *testing.T) {
	t.Parallel()

	got, err := ToURL("mem://localhost/x.R")
	require.NoError(t, err)
	assert.Equal(t, "mem://localhost/x.R", got)

	dir := t.TempDir()
	got, err = ToURL(filepath.Join(dir, "x.R"))
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.ToSlash(filepath.Join(dir, "x.R")), got)
}

func TestDownload_LocalPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "script.R")
	require.NoError(t, os.WriteFile(path, []byte("filter(x)\n"), 0o644))

	data, err := Download(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "filter(x)\n", string(data))
}

func TestDownload_Missing(t *testing.T) {
	t.Parallel()

	_, err := Download(context.Background(), filepath.Join(t.TempDir(), "absent.R"))
	assert.Error(t, err)
}

func TestUpload_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.R")
	require.NoError(t, Upload(context.Background(), path, []byte("box::use(box[use])\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "box::use(box[use])\n", string(data))
}
