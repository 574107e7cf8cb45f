package restriction

import (
	"fmt"

	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/log"
	"github.com/capstack/goregistrar/models"
	"github.com/capstack/goregistrar/service/op"
	"github.com/capstack/goregistrar/service/position"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

// RestrictedPosition joins a restriction to the current balance it
// constrains, for display.
type RestrictedPosition struct {
	Restriction models.Restriction `json:"restriction"`
	PositionQty int64              `json:"position_qty"`
}

type RestrictionService interface {
	Set(issuerID, shareholderID, securityID uuid.UUID, qty int64) (*models.Restriction, error)
	List(issuerID uuid.UUID) ([]RestrictedPosition, error)
	FlagUndercut(issuerID, shareholderID, securityID uuid.UUID) error
	WithTx(tx *gorm.DB) RestrictionService
}

type restrictionService struct {
	RestrictionService
	tx *gorm.DB
}

func Service() RestrictionService {
	return &restrictionService{}
}

func (s *restrictionService) WithTx(tx *gorm.DB) RestrictionService {
	s.tx = tx
	return s
}

// Set creates or updates the hold for the key. A requested quantity
// above the current position is an error, never a silent clamp;
// exactly equal is allowed.
func (s *restrictionService) Set(issuerID, shareholderID, securityID uuid.UUID, qty int64) (*models.Restriction, error) {
	if qty < 0 {
		return nil, grerrors.InvalidRequestParam.WithMsg("restricted quantity must not be negative")
	}

	opt := db.ForShare

	issuer, err := op.GetIssuerByID(s.tx, issuerID, &opt)
	if err != nil {
		return nil, err
	}

	if !issuer.AcceptsMetadataWrites() {
		return nil, grerrors.IssuerInactive.WithMsg("suspended issuers reject all writes")
	}

	if _, err := op.GetShareholderByID(s.tx, issuerID, shareholderID); err != nil {
		return nil, err
	}

	if _, err := op.GetSecurityByID(s.tx, issuerID, securityID); err != nil {
		return nil, err
	}

	current, err := position.Service().WithTx(s.tx).Get(issuerID, shareholderID, securityID, nil)
	if err != nil {
		return nil, err
	}

	if qty > current {
		return nil, grerrors.InvalidRequestParam.WithMsg(fmt.Sprintf(
			"restricted quantity %v exceeds current position %v", qty, current))
	}

	restriction := &models.Restriction{}

	q := s.tx.Where(
		"shareholder_id = ? AND security_id = ?",
		shareholderID.String(), securityID.String()).First(restriction)

	switch {
	case q.RecordNotFound():
		restriction = &models.Restriction{
			ShareholderID: shareholderID.String(),
			SecurityID:    securityID.String(),
			Qty:           qty,
		}
		if err := s.tx.Create(restriction).Error; err != nil {
			return nil, storeError(err)
		}
		return restriction, nil
	case q.Error != nil:
		return nil, storeError(q.Error)
	}

	updates := map[string]interface{}{"qty": qty, "flagged": false}

	if err := s.tx.Model(restriction).Updates(updates).Error; err != nil {
		return nil, storeError(err)
	}

	return restriction, nil
}

// List joins the issuer's restrictions to current positions.
func (s *restrictionService) List(issuerID uuid.UUID) ([]RestrictedPosition, error) {
	restrictions := []models.Restriction{}

	if err := s.tx.
		Joins("JOIN shareholders ON shareholders.id = restrictions.shareholder_id").
		Where("shareholders.issuer_id = ?", issuerID.String()).
		Order("restrictions.id").
		Find(&restrictions).Error; err != nil {
		return nil, storeError(err)
	}

	out := make([]RestrictedPosition, len(restrictions))

	for i, r := range restrictions {
		shareholderID, _ := uuid.FromString(r.ShareholderID)
		securityID, _ := uuid.FromString(r.SecurityID)

		qty, err := position.Service().WithTx(s.tx).Get(issuerID, shareholderID, securityID, nil)
		if err != nil {
			return nil, err
		}

		out[i] = RestrictedPosition{Restriction: r, PositionQty: qty}
	}

	return out, nil
}

// FlagUndercut marks the restriction for review when the position has
// fallen below the held quantity. The hold itself is not rewritten -
// resolution is an operator decision, not an automatic clamp.
func (s *restrictionService) FlagUndercut(issuerID, shareholderID, securityID uuid.UUID) error {
	restriction := &models.Restriction{}

	q := s.tx.Where(
		"shareholder_id = ? AND security_id = ?",
		shareholderID.String(), securityID.String()).First(restriction)

	if q.RecordNotFound() {
		return nil
	}

	if q.Error != nil {
		return storeError(q.Error)
	}

	current, err := position.Service().WithTx(s.tx).Get(issuerID, shareholderID, securityID, nil)
	if err != nil {
		return err
	}

	if current >= restriction.Qty || restriction.Flagged {
		return nil
	}

	log.Warn("restriction undercut by position decrease",
		"shareholder_id", shareholderID.String(),
		"security_id", securityID.String(),
		"restricted", restriction.Qty,
		"position", current)

	return s.tx.Model(restriction).Update("flagged", true).Error
}

func storeError(err error) error {
	if db.IsTransientError(errors.Cause(err)) {
		return grerrors.StoreUnavailable.WithError(err)
	}
	return grerrors.InternalServerError.WithError(err)
}
