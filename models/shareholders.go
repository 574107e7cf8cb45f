package models

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
)

// Shareholder is a holder of record within one issuer. Externally it is
// addressed by account number; internally by surrogate uuid. A
// shareholder row is never deleted once a transaction references it.
type Shareholder struct {
	ID                 string    `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"-"`
	IssuerID           string    `json:"issuer_id" gorm:"not null;unique_index:idx_shareholder_issuer_account" sql:"type:uuid;"`
	AccountNumber      string    `json:"account_number" gorm:"not null;unique_index:idx_shareholder_issuer_account" sql:"type:text"`
	ExternalIdentityID *string   `json:"external_identity_id" sql:"type:uuid"`
	Name               string    `json:"name" sql:"type:text"`
}

func (h *Shareholder) BeforeCreate(scope *gorm.Scope) error {
	if h.ID == "" {
		h.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", h.ID)
}

func (h *Shareholder) IDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(h.ID)
	return id
}
