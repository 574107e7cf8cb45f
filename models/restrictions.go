package models

import "time"

// Restriction is a legal hold on a sub-quantity of a shareholder's
// position in one security. Enforced not to exceed the position at
// write time; if the position later falls below the restricted
// quantity, the row is flagged for review instead of being rewritten.
type Restriction struct {
	ID            uint      `json:"id" gorm:"primary_key"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ShareholderID string    `json:"shareholder_id" gorm:"not null;unique_index:idx_restriction_key" sql:"type:uuid;"`
	SecurityID    string    `json:"security_id" gorm:"not null;unique_index:idx_restriction_key" sql:"type:uuid;"`
	Qty           int64     `json:"qty" gorm:"not null"`
	Flagged       bool      `json:"flagged" gorm:"not null;default:false"`
}
