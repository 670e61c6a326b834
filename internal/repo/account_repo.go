// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for owner accounts.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/testify-backend/internal/domain"
)

// UpsertAccount inserts the account or refreshes its email and display name
// when a row with the same ID already exists. CreatedAt is preserved.
func UpsertAccount(ctx context.Context, db *gorm.DB, a *domain.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "updated_at"}),
		}).
		Create(a).Error
}

// GetAccount fetches an account by id, or ErrNotFound.
func GetAccount(ctx context.Context, db *gorm.DB, id string) (*domain.Account, error) {
	var a domain.Account
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// AccountExists reports whether an account with id has been registered.
func AccountExists(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Account{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}
