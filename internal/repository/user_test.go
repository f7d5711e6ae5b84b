package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentcheck/internal/apperr"
	"dentcheck/internal/database"
)

func TestUserDirectory(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewUserRepository(db)

	dentist := seedUser(t, db, "dr-lee", "dentist")
	patient := seedUser(t, db, "sam", "patient")

	found, err := repo.FindByID(ctx, dentist.ID)
	require.NoError(t, err)
	assert.Equal(t, "dr-lee@clinic.test", found.Email)

	many, err := repo.FindByIDs(ctx, []string{dentist.ID, patient.ID, "ghost"})
	require.NoError(t, err)
	assert.Len(t, many, 2)

	byEmail, err := repo.FindByEmail(ctx, " SAM@clinic.test ")
	require.NoError(t, err)
	assert.Equal(t, patient.ID, byEmail.ID)

	_, err = repo.FindByID(ctx, "ghost")
	assert.True(t, apperr.IsNotFound(err))

	bad := database.User{Name: "x", Email: "x@clinic.test", Role: "admin"}
	assert.True(t, apperr.IsValidation(repo.Create(ctx, &bad)))
}
