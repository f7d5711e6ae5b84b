package repository

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"dentcheck/internal/apperr"
	"dentcheck/pkg/logger"
)

// UnitOfWork runs fn against stores that share one transaction.
// fn returning nil commits; an error or panic rolls everything back.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(Stores) error) error
}

type GormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Within(ctx context.Context, fn func(Stores) error) error {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperr.Storage("unit_of_work.begin", tx.Error)
	}

	done := false
	defer func() {
		if done {
			return
		}
		p := recover()
		if err := tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
			logger.LogWarn("Rollback failed: %v", err)
		}
		if p != nil {
			panic(p)
		}
	}()

	if err := fn(NewStores(tx)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return apperr.Storage("unit_of_work.commit", err)
	}
	done = true
	return nil
}
