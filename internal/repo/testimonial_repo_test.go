package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/testify-backend/internal/domain"
)

func TestCreateTestimonial_FillsDefaults(t *testing.T) {
	db := newTestDB(t, &domain.Testimonial{})
	start := time.Now().UTC()

	row := &domain.Testimonial{OwnerID: "u1", Name: "Alice", Body: "Great tool"}
	if err := CreateTestimonial(context.Background(), db, row); err != nil {
		t.Fatalf("CreateTestimonial: %v", err)
	}
	if row.ID == "" || row.Status != domain.StatusPending {
		t.Fatalf("defaults not applied: %+v", row)
	}
	if row.CreatedAt.Before(start.Add(-time.Minute)) {
		t.Fatalf("CreatedAt not set reasonably: %v", row.CreatedAt)
	}

	got, err := GetTestimonial(context.Background(), db, row.ID)
	if err != nil {
		t.Fatalf("GetTestimonial: %v", err)
	}
	if got.OwnerID != "u1" || got.Name != "Alice" || got.Body != "Great tool" {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestGetTestimonial_NotFound(t *testing.T) {
	db := newTestDB(t, &domain.Testimonial{})
	_, err := GetTestimonial(context.Background(), db, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTestimonialsByOwner_OrderAndIsolation(t *testing.T) {
	db := newTestDB(t, &domain.Testimonial{})
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	seedTestimonial(t, db, "old", "u1", domain.StatusApproved, base)
	seedTestimonial(t, db, "mid", "u1", domain.StatusRejected, base.Add(time.Hour))
	seedTestimonial(t, db, "new", "u1", domain.StatusPending, base.Add(2*time.Hour))
	seedTestimonial(t, db, "foreign", "u2", domain.StatusApproved, base.Add(3*time.Hour))

	out, err := ListTestimonialsByOwner(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("ListTestimonialsByOwner: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out))
	}
	if out[0].ID != "new" || out[1].ID != "mid" || out[2].ID != "old" {
		t.Fatalf("expected newest first, got %s,%s,%s", out[0].ID, out[1].ID, out[2].ID)
	}

	total, err := CountTestimonialsByOwner(context.Background(), db, "u1")
	if err != nil || total != 3 {
		t.Fatalf("CountTestimonialsByOwner = %d, %v", total, err)
	}
	page, err := ListTestimonialsByOwnerPage(context.Background(), db, "u1", 1, 1)
	if err != nil || len(page) != 1 || page[0].ID != "mid" {
		t.Fatalf("unexpected page: %+v err=%v", page, err)
	}

	empty, err := ListTestimonialsByOwner(context.Background(), db, "nobody")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v err=%v", empty, err)
	}
}

func TestListApprovedByOwner_OnlyApproved(t *testing.T) {
	db := newTestDB(t, &domain.Testimonial{})
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	seedTestimonial(t, db, "p", "u1", domain.StatusPending, base)
	seedTestimonial(t, db, "a1", "u1", domain.StatusApproved, base.Add(time.Minute))
	seedTestimonial(t, db, "r", "u1", domain.StatusRejected, base.Add(2*time.Minute))
	seedTestimonial(t, db, "a2", "u1", domain.StatusApproved, base.Add(3*time.Minute))
	seedTestimonial(t, db, "x", "u2", domain.StatusApproved, base.Add(4*time.Minute))

	out, err := ListApprovedByOwner(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("ListApprovedByOwner: %v", err)
	}
	if len(out) != 2 || out[0].ID != "a2" || out[1].ID != "a1" {
		t.Fatalf("unexpected approved feed: %+v", out)
	}
	for _, r := range out {
		if r.Status != domain.StatusApproved || r.OwnerID != "u1" {
			t.Fatalf("leaked row: %+v", r)
		}
	}
}

func TestUpdateTestimonialStatus_ScopedToOwner(t *testing.T) {
	db := newTestDB(t, &domain.Testimonial{})
	seeded := time.Now().UTC().Add(-time.Hour)
	seedTestimonial(t, db, "t1", "u1", domain.StatusPending, seeded)

	_, err := UpdateTestimonialStatus(context.Background(), db, "t1", "u2", domain.StatusApproved)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for foreign owner, got %v", err)
	}
	at, err := UpdateTestimonialStatus(context.Background(), db, "t1", "u1", domain.StatusApproved)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if !at.After(seeded) {
		t.Fatalf("returned updated_at %v not after seed %v", at, seeded)
	}
	got, _ := GetTestimonial(context.Background(), db, "t1")
	if got.Status != domain.StatusApproved {
		t.Fatalf("expected approved, got %s", got.Status)
	}
	if d := got.UpdatedAt.Sub(at); d > time.Millisecond || d < -time.Millisecond {
		t.Fatalf("stored updated_at %v differs from returned %v", got.UpdatedAt, at)
	}
}

func TestDeleteTestimonial_HardDelete(t *testing.T) {
	db := newTestDB(t, &domain.Testimonial{})
	seedTestimonial(t, db, "t1", "u1", domain.StatusApproved, time.Now().UTC())

	if err := DeleteTestimonial(context.Background(), db, "t1", "u2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for foreign owner, got %v", err)
	}
	if err := DeleteTestimonial(context.Background(), db, "t1", "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var n int64
	db.Unscoped().Model(&domain.Testimonial{}).Where("id = ?", "t1").Count(&n)
	if n != 0 {
		t.Fatalf("expected row to be gone, count=%d", n)
	}
	if err := DeleteTestimonial(context.Background(), db, "t1", "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}
