package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentcheck/internal/apperr"
)

func TestImageCreateValidation(t *testing.T) {
	ctx := context.Background()
	repo := NewImageRepository(openTestDB(t))

	_, err := repo.Create(ctx, "", "cavity")
	assert.True(t, apperr.IsValidation(err))

	_, err = repo.Create(ctx, "/uploads/a.png", "   ")
	assert.True(t, apperr.IsValidation(err))
}

func TestImageLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewImageRepository(openTestDB(t))

	img, err := repo.Create(ctx, "/uploads/a.png", "cavity found")
	require.NoError(t, err)
	assert.NotEmpty(t, img.ID)

	found, err := repo.FindByID(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.png", found.Reference)
	assert.Equal(t, "cavity found", found.Note)

	require.NoError(t, repo.Delete(ctx, img.ID))

	_, err = repo.FindByID(ctx, img.ID)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(repo.Delete(ctx, img.ID)))
}

func TestImageFindByIDsKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewImageRepository(openTestDB(t))

	a, err := repo.Create(ctx, "/uploads/a.png", "a")
	require.NoError(t, err)
	b, err := repo.Create(ctx, "/uploads/b.png", "b")
	require.NoError(t, err)

	got, err := repo.FindByIDs(ctx, []string{b.ID, "ghost", a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)
}

func TestImageExistingReferences(t *testing.T) {
	ctx := context.Background()
	repo := NewImageRepository(openTestDB(t))

	_, err := repo.Create(ctx, "/uploads/kept.png", "kept")
	require.NoError(t, err)

	refs, err := repo.ExistingReferences(ctx, []string{"/uploads/kept.png", "/uploads/orphan.png"})
	require.NoError(t, err)
	assert.True(t, refs["/uploads/kept.png"])
	assert.False(t, refs["/uploads/orphan.png"])
}
