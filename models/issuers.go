package models

import (
	"time"

	"github.com/capstack/goregistrar/models/enum"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
)

// Issuer is the tenant of the registry. Issuers are never hard-deleted;
// their lifecycle is carried entirely by Status.
type Issuer struct {
	ID        string            `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Name      string            `json:"name" gorm:"not null" sql:"type:text"`
	Status    enum.IssuerStatus `json:"status" gorm:"not null;index" sql:"type:text"`
}

func (i *Issuer) BeforeCreate(scope *gorm.Scope) error {
	if i.ID == "" {
		i.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", i.ID)
}

func (i *Issuer) IDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(i.ID)
	return id
}

// AcceptsLedgerWrites reports whether transaction ingestion is
// permitted. Only active issuers take ledger writes.
func (i *Issuer) AcceptsLedgerWrites() bool {
	return i.Status == enum.IssuerActive
}

// AcceptsMetadataWrites reports whether security/shareholder setup is
// permitted. Pending issuers may be configured; suspended may not.
func (i *Issuer) AcceptsMetadataWrites() bool {
	return i.Status != enum.IssuerSuspended
}
