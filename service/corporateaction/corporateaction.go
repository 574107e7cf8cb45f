package corporateaction

import (
	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/models"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/capstack/goregistrar/service/op"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Derived holds the per-class quantities a ratio set implies for a
// base unit balance. Derivation informs display only; stored
// transaction quantities are never rewritten by a corporate action.
type Derived struct {
	UnitQty   int64 `json:"unit_qty"`
	ClassAQty int64 `json:"class_a_qty"`
	RightsQty int64 `json:"rights_qty"`
}

type CorporateActionService interface {
	Apply(issuerID uuid.UUID, category enum.CorporateActionCategory, classARatio, rightsRatio decimal.Decimal) (*models.CorporateAction, error)
	List(issuerID uuid.UUID) ([]models.CorporateAction, error)
	WithTx(tx *gorm.DB) CorporateActionService
}

type corporateActionService struct {
	CorporateActionService
	tx *gorm.DB
}

func Service() CorporateActionService {
	return &corporateActionService{}
}

func (s *corporateActionService) WithTx(tx *gorm.DB) CorporateActionService {
	s.tx = tx
	return s
}

// Apply records a ratio set for (issuer, category). The pair is the
// natural key: a second submission updates the existing action rather
// than duplicating it, so re-submitting identical ratios is a no-op.
func (s *corporateActionService) Apply(issuerID uuid.UUID, category enum.CorporateActionCategory, classARatio, rightsRatio decimal.Decimal) (*models.CorporateAction, error) {
	opt := db.ForShare

	issuer, err := op.GetIssuerByID(s.tx, issuerID, &opt)
	if err != nil {
		return nil, err
	}

	if !issuer.AcceptsMetadataWrites() {
		return nil, grerrors.IssuerInactive.WithMsg("suspended issuers reject all writes")
	}

	action := &models.CorporateAction{
		IssuerID:    issuerID.String(),
		Category:    category,
		ClassARatio: classARatio,
		RightsRatio: rightsRatio,
	}

	if err := action.Validate(); err != nil {
		return nil, grerrors.InvalidRequestParam.WithMsg(err.Error())
	}

	existing := &models.CorporateAction{}

	q := s.tx.Where(
		"issuer_id = ? AND category = ?",
		issuerID.String(), category).First(existing)

	switch {
	case q.RecordNotFound():
		if err := s.tx.Create(action).Error; err != nil {
			return nil, storeError(err)
		}
		return action, nil
	case q.Error != nil:
		return nil, storeError(q.Error)
	}

	updates := map[string]interface{}{
		"class_a_ratio": classARatio,
		"rights_ratio":  rightsRatio,
	}

	if err := s.tx.Model(existing).Updates(updates).Error; err != nil {
		return nil, storeError(err)
	}

	return existing, nil
}

func (s *corporateActionService) List(issuerID uuid.UUID) ([]models.CorporateAction, error) {
	actions := []models.CorporateAction{}

	q := s.tx.Where("issuer_id = ?", issuerID.String()).Find(&actions)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, storeError(q.Error)
	}

	return actions, nil
}

// Derive computes the per-class quantities for a unit balance. Share
// counts are integral: unit x ratio truncates toward zero, with no
// rounding beyond the ratio's declared single fractional digit.
func Derive(action *models.CorporateAction, unitQty int64) Derived {
	units := decimal.New(unitQty, 0)

	return Derived{
		UnitQty:   unitQty,
		ClassAQty: units.Mul(action.ClassARatio).Truncate(0).IntPart(),
		RightsQty: units.Mul(action.RightsRatio).Truncate(0).IntPart(),
	}
}

func storeError(err error) error {
	if db.IsTransientError(errors.Cause(err)) {
		return grerrors.StoreUnavailable.WithError(err)
	}
	return grerrors.InternalServerError.WithError(err)
}
