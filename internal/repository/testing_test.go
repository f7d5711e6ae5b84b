package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dentcheck/internal/config"
	"dentcheck/internal/database"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "repo.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) database.User {
	t.Helper()
	u := database.User{Name: name, Email: name + "@clinic.test", Role: role}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), &u))
	return u
}
