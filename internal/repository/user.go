package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"dentcheck/internal/apperr"
	"dentcheck/internal/database"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *database.User) error {
	const op = "users.create"

	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Name == "" || u.Email == "" {
		return apperr.Validation(op, "name and email are required")
	}
	if u.Role != "patient" && u.Role != "dentist" {
		return apperr.Validation(op, "invalid role '%s'", u.Role)
	}
	return apperr.Storage(op, r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*database.User, error) {
	var u database.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate("users.find", err, "user not found")
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*database.User, error) {
	var u database.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate("users.find_by_email", err, "user not found")
	}
	return &u, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]database.User, error) {
	out := make(map[string]database.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []database.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, apperr.Storage("users.find_many", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
