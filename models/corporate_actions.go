package models

import (
	"fmt"
	"time"

	"github.com/capstack/goregistrar/models/enum"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

// CorporateAction holds the per-class ratios of an issuer-level event.
// Natural key is (issuer, category): a re-submission updates the
// existing row instead of creating a second one.
type CorporateAction struct {
	ID          uint                         `json:"id" gorm:"primary_key"`
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
	IssuerID    string                       `json:"issuer_id" gorm:"not null;unique_index:idx_corporate_action_key" sql:"type:uuid;"`
	Category    enum.CorporateActionCategory `json:"category" gorm:"not null;unique_index:idx_corporate_action_key" sql:"type:text"`
	ClassARatio decimal.Decimal              `json:"class_a_ratio" gorm:"type:decimal;not null"`
	RightsRatio decimal.Decimal              `json:"rights_ratio" gorm:"type:decimal;not null"`
}

// ratios are quoted with at most one fractional digit by convention;
// anything finer is rejected rather than rounded
func ratioPrecisionOK(d decimal.Decimal) bool {
	return d.Equal(d.Round(1))
}

func (a *CorporateAction) Validate() error {
	if err := validation.ValidateStruct(a,
		validation.Field(&a.IssuerID, validation.Required),
		validation.Field(&a.Category, validation.Required),
	); err != nil {
		return err
	}

	if !a.Category.Valid() {
		return fmt.Errorf("unknown corporate action category %q", a.Category)
	}

	if !a.RatiosValid() {
		return fmt.Errorf("ratios must be positive with at most one fractional digit")
	}

	return nil
}

// RatiosValid reports whether both ratios are positive and within the
// one-fractional-digit convention.
func (a *CorporateAction) RatiosValid() bool {
	if a.ClassARatio.LessThanOrEqual(decimal.Zero) || a.RightsRatio.LessThanOrEqual(decimal.Zero) {
		return false
	}
	return ratioPrecisionOK(a.ClassARatio) && ratioPrecisionOK(a.RightsRatio)
}
