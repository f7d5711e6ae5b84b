package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentcheck/internal/config"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

var blobNamePattern = regexp.MustCompile(`^/uploads/\d+-[0-9a-f-]{36}\.[a-z0-9]+$`)

func newLocal(t *testing.T) (*LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/uploads")
	require.NoError(t, err)
	return s, dir
}

func TestLocalStoreRoundTrip(t *testing.T) {
	s, dir := newLocal(t)
	ctx := context.Background()

	ref, err := s.Store(ctx, []byte("xray-bytes"), "molar.JPG")
	require.NoError(t, err)
	assert.Regexp(t, blobNamePattern, ref)
	assert.True(t, strings.HasSuffix(ref, ".jpg"))

	_, err = os.Stat(filepath.Join(dir, strings.TrimPrefix(ref, "/uploads/")))
	require.NoError(t, err)

	rc, err := s.Open(ctx, ref)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "xray-bytes", string(data))

	res := s.Delete(ctx, ref)
	assert.True(t, res.OK())
	assert.Equal(t, ref, res.Reference)

	_, err = s.Open(ctx, ref)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestLocalStoreFallsBackToSniffedExtension(t *testing.T) {
	s, _ := newLocal(t)

	ref, err := s.Store(context.Background(), pngHeader, "no-extension")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".png"), ref)
}

func TestLocalStoreRejectsEmptyData(t *testing.T) {
	s, _ := newLocal(t)

	_, err := s.Store(context.Background(), nil, "a.png")
	assert.Error(t, err)
}

func TestLocalStoreUniqueNamesUnderConcurrency(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()

	const n = 32
	refs := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref, err := s.Store(ctx, []byte("same"), "same.png")
			assert.NoError(t, err)
			refs[i] = ref
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, ref := range refs {
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}

func TestLocalStoreDeleteIsSoftFail(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()

	res := s.Delete(ctx, "/uploads/missing.png")
	assert.False(t, res.OK())
	assert.Equal(t, "/uploads/missing.png", res.Reference)

	res = s.Delete(ctx, "/uploads/../etc/passwd")
	assert.False(t, res.OK())
}

func TestLocalStoreOpenRejectsTraversal(t *testing.T) {
	s, _ := newLocal(t)

	_, err := s.Open(context.Background(), "/uploads/../secret")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestLocalStoreList(t *testing.T) {
	s, dir := newLocal(t)
	ctx := context.Background()

	ref, err := s.Store(ctx, []byte("abc"), "a.png")
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0750))

	blobs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	assert.Equal(t, ref, blobs[0].Reference)
	assert.Equal(t, int64(3), blobs[0].Size)
}

func TestValidExt(t *testing.T) {
	assert.True(t, validExt(".png"))
	assert.True(t, validExt(".jpeg"))
	assert.False(t, validExt(""))
	assert.False(t, validExt("."))
	assert.False(t, validExt(".p n"))
	assert.False(t, validExt(".toolongext"))
}

func TestNewSelectsBackend(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, config.StorageConfig{Driver: "local", UploadDir: t.TempDir(), PublicPrefix: "/uploads/"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = New(ctx, config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}
