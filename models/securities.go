package models

import (
	"time"

	"github.com/capstack/goregistrar/models/enum"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
)

// Security is one class of shares issued by an issuer, identified by a
// CUSIP unique within that issuer.
type Security struct {
	ID        string             `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt time.Time          `json:"-"`
	UpdatedAt time.Time          `json:"-"`
	IssuerID  string             `json:"issuer_id" gorm:"not null;unique_index:idx_security_issuer_cusip" sql:"type:uuid;"`
	CUSIP     string             `json:"cusip" gorm:"column:cusip;not null;unique_index:idx_security_issuer_cusip" sql:"type:text"`
	Class     enum.SecurityClass `json:"class" gorm:"not null" sql:"type:text"`
	Name      string             `json:"name" sql:"type:text"`
}

func (s *Security) BeforeCreate(scope *gorm.Scope) error {
	if s.ID == "" {
		s.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", s.ID)
}

func (s *Security) IDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(s.ID)
	return id
}
