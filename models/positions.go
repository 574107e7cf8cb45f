package models

import "time"

// Position is the materialized balance cache for one
// (issuer, shareholder, security) key. It is always reproducible by
// folding the active transactions for the key; on disagreement the fold
// wins and the row is re-upserted.
type Position struct {
	ID            uint      `json:"id" gorm:"primary_key"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"updated_at"`
	IssuerID      string    `json:"issuer_id" gorm:"not null;unique_index:idx_position_key" sql:"type:uuid;"`
	ShareholderID string    `json:"shareholder_id" gorm:"not null;unique_index:idx_position_key" sql:"type:uuid;"`
	SecurityID    string    `json:"security_id" gorm:"not null;unique_index:idx_position_key" sql:"type:uuid;"`
	// signed ledger fold - storage keeps the sign, display flooring
	// is the caller's concern
	Qty int64 `json:"qty" gorm:"not null"`
}
