// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency records the testimonial produced by a submission that carried
// an Idempotency-Key, keyed by (owner_id, key). A retried submission with the
// same key replays the original testimonial instead of inserting a new one.
type Idempotency struct {
	ID            string    `gorm:"type:varchar(36);primaryKey"`
	OwnerID       string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_owner_key,priority:1"`
	Key           string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_owner_key,priority:2"`
	TestimonialID string    `gorm:"type:varchar(36);not null"`
	Status        int       `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt     time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
