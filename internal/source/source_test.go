package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dconathan/tweet2vec/internal/source"
)

func collect(t *testing.T, src source.Source) []string {
	t.Helper()
	cursor, err := src.Scan()
	require.NoError(t, err)
	defer cursor.Close()

	var lines []string
	for cursor.Next() {
		lines = append(lines, cursor.Text())
	}
	require.NoError(t, cursor.Err())
	return lines
}

func TestSliceSource(t *testing.T) {
	src := source.Slice{"one", "two", "three"}

	n, err := src.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"one", "two", "three"}, collect(t, src))
}

func TestSliceSourceRestartable(t *testing.T) {
	src := source.Slice{"a", "b"}
	assert.Equal(t, collect(t, src), collect(t, src), "a fresh cursor starts over")
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tweets.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\n"), 0644))

	src := source.NewFile(path)
	n, err := src.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"a", "b", "c"}, collect(t, src))
}

func TestFileSourceNoTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tweets.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb"), 0644))

	src := source.NewFile(path)
	n, err := src.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, collect(t, src))
}

func TestFileSourceEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tweets.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	src := source.NewFile(path)
	n, err := src.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, collect(t, src))
}

func TestFileSourceGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tweets.txt.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("x\ny\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	src := source.NewFile(path)
	n, err := src.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"x", "y"}, collect(t, src))
}

func TestFileSourceMissing(t *testing.T) {
	src := source.NewFile(filepath.Join(t.TempDir(), "nope.txt"))
	_, err := src.Scan()
	assert.Error(t, err)
	_, err = src.Count()
	assert.Error(t, err)
}
