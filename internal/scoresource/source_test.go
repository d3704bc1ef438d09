package scoresource

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func readAll(t *testing.T, src Source) string {
	t.Helper()
	rc, err := src.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestFile_PlainAndGzip(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "1abc_A.scores")
	packed := filepath.Join(dir, "1abc_B.scores.gz")
	require.NoError(t, os.WriteFile(plain, []byte("0\tA\t0.5\n"), 0644))
	require.NoError(t, os.WriteFile(packed, gzipBytes(t, "0\tC\t0.7\n"), 0644))

	assert.Equal(t, "0\tA\t0.5\n", readAll(t, File{Path: plain}))
	assert.Equal(t, "0\tC\t0.7\n", readAll(t, File{Path: packed}))
	assert.Equal(t, "1abc_A.scores", File{Path: plain}.Name())
}

func TestFile_Missing(t *testing.T) {
	f := File{Path: filepath.Join(t.TempDir(), "nope.scores")}
	assert.False(t, f.Exists())
	_, err := f.Open(context.Background())
	assert.Error(t, err)
}

func TestBlob(t *testing.T) {
	assert.Equal(t, "abc", readAll(t, Blob{Label: "x", Data: []byte("abc")}))
	assert.Equal(t, "abc", readAll(t, Blob{Label: "x", Data: gzipBytes(t, "abc")}))
	assert.Equal(t, "", readAll(t, Blob{Label: "empty"}))
}

func TestDirResolver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1abc_A.scores"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1abc_B.scores.gz"), gzipBytes(t, "y"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2xyz.scores"), []byte("z"), 0644))

	ctx := context.Background()
	perChain := DirResolver{Dir: dir, Base: "1abc", Naming: PerChain}

	src, ok, err := perChain.Resolve(ctx, "A")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1abc_A.scores", src.Name())

	src, ok, err = perChain.Resolve(ctx, "B")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "y", readAll(t, src))

	_, ok, err = perChain.Resolve(ctx, "C")
	require.NoError(t, err)
	assert.False(t, ok)

	whole := DirResolver{Dir: dir, Base: "2xyz", Naming: PerStructure}
	for _, chain := range []string{"A", "B"} {
		src, ok, err := whole.Resolve(ctx, chain)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "2xyz.scores", src.Name())
	}
}

func TestListDir(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.scores", "a.scores.gz", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.scores"), 0755))

	sources, err := ListDir(dir)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "a.scores.gz", sources[0].Name())
	assert.Equal(t, "b.scores", sources[1].Name())
}

func TestMapResolver(t *testing.T) {
	r := MapResolver{"A": Blob{Label: "a"}}

	src, ok, err := r.Resolve(context.Background(), "A")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", src.Name())

	_, ok, err = r.Resolve(context.Background(), "B")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNaming_FileName(t *testing.T) {
	assert.Equal(t, "1abc_A.scores", PerChain.FileName("1abc", "A"))
	assert.Equal(t, "1abc.scores", PerStructure.FileName("1abc", "A"))
}
