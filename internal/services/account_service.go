// Package services – AccountService
//
// This file implements the owner account profile shown in the dashboard
// header. Accounts are upserted from identity claims on each dashboard
// visit so that the submission service can optionally verify owners.
package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/testify-backend/internal/domain"
)

// AccountService manages owner account records.
type AccountService struct {
	DB   *gorm.DB
	Repo AccountRepo
}

// NewAccountService constructs an AccountService.
func NewAccountService(db *gorm.DB, r AccountRepo) *AccountService {
	return &AccountService{DB: db, Repo: r}
}

// Ensure records (or refreshes) the account identified by id and returns
// the stored row. An empty id yields ErrUnauthorized.
func (s *AccountService) Ensure(ctx context.Context, id, email, displayName string) (_ *domain.Account, err error) {
	tr := otel.Tracer("services/AccountService")
	ctx, span := tr.Start(ctx, "Ensure",
		trace.WithAttributes(attribute.String("owner.id", id)),
	)
	defer func() { endSpan(span, err) }()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrUnauthorized
	}
	a := &domain.Account{
		ID:          id,
		Email:       strings.TrimSpace(email),
		DisplayName: cleanText(displayName),
	}
	if err := s.Repo.UpsertAccount(ctx, s.DB, a); err != nil {
		return nil, storeErr("upsert account", err)
	}
	stored, err := s.Repo.GetAccount(ctx, s.DB, id)
	if err != nil {
		return nil, storeErr("get account", err)
	}
	return stored, nil
}
