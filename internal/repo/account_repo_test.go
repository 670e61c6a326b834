package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/testify-backend/internal/domain"
)

func TestUpsertAccount_InsertThenRefresh(t *testing.T) {
	db := newTestDB(t, &domain.Account{})
	ctx := context.Background()

	if err := UpsertAccount(ctx, db, &domain.Account{ID: "u1", Email: "a@example.com", DisplayName: "Acme"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	first, err := GetAccount(ctx, db, "u1")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}

	if err := UpsertAccount(ctx, db, &domain.Account{ID: "u1", Email: "b@example.com", DisplayName: "Acme Inc"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := GetAccount(ctx, db, "u1")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Email != "b@example.com" || got.DisplayName != "Acme Inc" {
		t.Fatalf("upsert did not refresh fields: %+v", got)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("CreatedAt changed on upsert: %v → %v", first.CreatedAt, got.CreatedAt)
	}

	var n int64
	db.Model(&domain.Account{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected a single account row, got %d", n)
	}
}

func TestAccountExists(t *testing.T) {
	db := newTestDB(t, &domain.Account{})
	ctx := context.Background()

	ok, err := AccountExists(ctx, db, "u1")
	if err != nil || ok {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
	_ = UpsertAccount(ctx, db, &domain.Account{ID: "u1"})
	ok, err = AccountExists(ctx, db, "u1")
	if err != nil || !ok {
		t.Fatalf("expected (true, nil), got (%v, %v)", ok, err)
	}
	if _, err := GetAccount(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
