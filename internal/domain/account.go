package domain

import "time"

// Account is the business user that collects and moderates testimonials.
// The ID is the stable subject issued by the identity provider; the row is
// upserted from token claims when the owner opens the dashboard.
type Account struct {
	ID          string    `json:"id"                     gorm:"type:varchar(128);primaryKey"`
	Email       string    `json:"email,omitempty"        gorm:"type:varchar(320)"`
	DisplayName string    `json:"display_name,omitempty" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Account.
func (Account) TableName() string { return "accounts" }
