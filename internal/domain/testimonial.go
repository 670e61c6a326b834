// Package domain defines the persistence models for testimonials, owner
// accounts, and submission idempotency records. These types are mapped with
// GORM and form the core data layer of the Testify backend.
package domain

import (
	"strings"
	"time"
)

// Status is the moderation state of a testimonial.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Field limits, in runes, applied to submitted testimonials.
const (
	MaxNameRunes    = 120
	MaxCompanyRunes = 120
	MaxTitleRunes   = 120
	MaxBodyRunes    = 5000

	MinRating = 1
	MaxRating = 5
)

// ParseStatus maps a case-insensitive string onto a Status. The second return
// value is false when s does not name one of the three moderation states.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	}
	return "", false
}

// Valid reports whether s is one of the three moderation states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether an owner may move a testimonial from one
// status to another.
//
// Rules:
//   - approved and rejected are the only targets; nothing moves back to pending.
//   - pending → approved|rejected is the primary path.
//   - approved ↔ rejected are allowed as corrective actions.
//   - re-applying the current status is allowed (idempotent no-op).
func CanTransition(from, to Status) bool {
	if !from.Valid() {
		return false
	}
	switch to {
	case StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Testimonial is a single piece of customer feedback collected for an owner
// account. Only Status is mutable after creation; deletion removes the row.
//
// Fields:
//   - ID: UUID primary key (char(36)), unique across all owners.
//   - OwnerID: identifier of the collecting account; indexed for owner queries.
//   - Name / Company / Title: submitter attribution (Company and Title optional).
//   - Body: the testimonial text, exposed as "testimonial" on the wire.
//   - Rating: optional 1..5 stars; nil when the visitor gave no rating.
//   - Status: moderation state, pending on creation.
//   - CreatedAt: submission time (UTC).
//   - UpdatedAt: last moderation write; used for ETags and feed stamps.
type Testimonial struct {
	ID        string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	OwnerID   string    `json:"owner_id"           gorm:"type:varchar(128);not null;index:idx_owner_created,priority:1;index:idx_owner_status,priority:1"`
	Name      string    `json:"name"               gorm:"type:varchar(255);not null"`
	Company   string    `json:"company,omitempty"  gorm:"type:varchar(255)"`
	Title     string    `json:"title,omitempty"    gorm:"type:varchar(255)"`
	Body      string    `json:"testimonial"        gorm:"column:body;type:text;not null"`
	Rating    *int      `json:"rating,omitempty"   gorm:"check:rating IS NULL OR (rating >= 1 AND rating <= 5)"`
	Status    Status    `json:"status"             gorm:"type:varchar(16);not null;default:'pending';index:idx_owner_status,priority:2;check:status IN ('pending','approved','rejected')"`
	CreatedAt time.Time `json:"created_at"         gorm:"index:idx_owner_created,priority:2"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Testimonial.
func (Testimonial) TableName() string { return "testimonials" }

// IsPublic reports whether t may be rendered on public surfaces.
func (t Testimonial) IsPublic() bool { return t.Status == StatusApproved }
