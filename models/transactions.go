package models

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/capstack/goregistrar/models/enum"
)

// Transaction is one immutable ledger entry. Qty carries the canonical
// sign produced by the classifier at ingest; RawQty keeps the magnitude
// exactly as submitted for audit. The only mutation ever applied after
// commit is the reconciliation engine's audited sign correction, and a
// status flip to void.
type Transaction struct {
	ID              uint                     `json:"id" gorm:"primary_key"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"-"`
	IssuerID        string                   `json:"issuer_id" gorm:"not null;index:idx_transaction_issuer" sql:"type:uuid;"`
	ShareholderID   string                   `json:"shareholder_id" gorm:"not null;index:idx_transaction_key" sql:"type:uuid;"`
	SecurityID      string                   `json:"security_id" gorm:"not null;index:idx_transaction_key" sql:"type:uuid;"`
	Category        enum.TransactionCategory `json:"category" gorm:"not null" sql:"type:text"`
	Qty             int64                    `json:"qty" gorm:"not null"`
	RawQty          int64                    `json:"raw_qty" gorm:"not null"`
	Direction       *string                  `json:"direction,omitempty" sql:"type:text"`
	TransactionDate string                   `json:"transaction_date" gorm:"not null" sql:"type:date"`
	Note            *string                  `json:"note,omitempty" sql:"type:text"`
	Status          enum.TransactionStatus   `json:"status" gorm:"not null;index" sql:"type:text"`
	SubmissionKey   string                   `json:"-" gorm:"not null;unique_index" sql:"type:text"`
}

func (t *Transaction) Active() bool {
	return t.Status == enum.TransactionActive
}

func (t *Transaction) DateString() string {
	if len(t.TransactionDate) >= 10 {
		return t.TransactionDate[:10]
	}
	return t.TransactionDate
}

// NaturalKey derives the idempotency key used to make retried
// submissions safe. Callers that carry their own submission id may use
// it instead of this derived key.
func NaturalKey(issuerID, shareholderID, securityID, date string, category enum.TransactionCategory, magnitude int64, note string) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%d|%s", issuerID, shareholderID, securityID, date, category, magnitude, note)
	return hex.EncodeToString(h.Sum(nil))
}
