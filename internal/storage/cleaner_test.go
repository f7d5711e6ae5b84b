package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRefs struct {
	known map[string]bool
	err   error
}

func (s staticRefs) ExistingReferences(ctx context.Context, refs []string) (map[string]bool, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := map[string]bool{}
	for _, r := range refs {
		if s.known[r] {
			out[r] = true
		}
	}
	return out, nil
}

func age(t *testing.T, dir, ref string, d time.Duration) {
	t.Helper()
	old := time.Now().Add(-d)
	require.NoError(t, os.Chtimes(filepath.Join(dir, strings.TrimPrefix(ref, "/uploads/")), old, old))
}

func TestCleanerSweepsOnlyOldOrphans(t *testing.T) {
	s, dir := newLocal(t)
	ctx := context.Background()

	kept, err := s.Store(ctx, []byte("kept"), "a.png")
	require.NoError(t, err)
	orphan, err := s.Store(ctx, []byte("orphan"), "b.png")
	require.NoError(t, err)
	fresh, err := s.Store(ctx, []byte("fresh"), "c.png")
	require.NoError(t, err)

	age(t, dir, kept, 2*time.Hour)
	age(t, dir, orphan, 2*time.Hour)

	c := NewCleaner(s, staticRefs{known: map[string]bool{kept: true}}, 30*time.Minute)
	removed, freed, err := c.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, int64(len("orphan")), freed)

	_, err = s.Open(ctx, orphan)
	assert.ErrorIs(t, err, ErrBlobNotFound)
	for _, ref := range []string{kept, fresh} {
		rc, err := s.Open(ctx, ref)
		require.NoError(t, err)
		rc.Close()
	}
}

func TestCleanerStopsOnReferenceError(t *testing.T) {
	s, dir := newLocal(t)
	ctx := context.Background()

	ref, err := s.Store(ctx, []byte("x"), "a.png")
	require.NoError(t, err)
	age(t, dir, ref, time.Hour)

	c := NewCleaner(s, staticRefs{err: errors.New("db down")}, time.Minute)
	removed, _, err := c.Sweep(ctx)
	assert.Error(t, err)
	assert.Zero(t, removed)

	rc, err := s.Open(ctx, ref)
	require.NoError(t, err)
	rc.Close()
}

func TestCleanerStartStopsWithContext(t *testing.T) {
	s, _ := newLocal(t)
	c := NewCleaner(s, staticRefs{}, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleaner did not stop")
	}
}
