package models

import (
	"time"

	"github.com/capstack/goregistrar/models/enum"
)

// ReconciliationAudit records one applied sign correction: the ledger
// row it touched, the before/after quantities, and the operator who ran
// the engine. Written in the same transaction as the correction.
type ReconciliationAudit struct {
	ID            uint                     `json:"id" gorm:"primary_key"`
	CreatedAt     time.Time                `json:"created_at"`
	TransactionID uint                     `json:"transaction_id" gorm:"not null;index"`
	IssuerID      string                   `json:"issuer_id" gorm:"not null;index" sql:"type:uuid;"`
	SecurityID    string                   `json:"security_id" gorm:"not null" sql:"type:uuid;"`
	ShareholderID string                   `json:"shareholder_id" gorm:"not null" sql:"type:uuid;"`
	Category      enum.TransactionCategory `json:"category" gorm:"not null" sql:"type:text"`
	QtyBefore     int64                    `json:"qty_before" gorm:"not null"`
	QtyAfter      int64                    `json:"qty_after" gorm:"not null"`
	OperatorID    string                   `json:"operator_id" gorm:"not null" sql:"type:uuid;"`
	Note          string                   `json:"note" sql:"type:text"`
}
