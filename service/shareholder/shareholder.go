package shareholder

import (
	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/models"
	"github.com/capstack/goregistrar/service/op"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

type CreateRequest struct {
	AccountNumber      string  `json:"account_number"`
	Name               string  `json:"name"`
	ExternalIdentityID *string `json:"external_identity_id,omitempty"`
}

func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AccountNumber, validation.Required, validation.Length(1, 32)),
		validation.Field(&r.Name, validation.Required),
	)
}

type ShareholderService interface {
	Create(issuerID uuid.UUID, req CreateRequest) (*models.Shareholder, error)
	Get(issuerID, shareholderID uuid.UUID) (*models.Shareholder, error)
	GetByAccountNumber(issuerID uuid.UUID, accountNumber string) (*models.Shareholder, error)
	WithTx(tx *gorm.DB) ShareholderService
}

type shareholderService struct {
	ShareholderService
	tx *gorm.DB
}

func Service() ShareholderService {
	return &shareholderService{}
}

func (s *shareholderService) WithTx(tx *gorm.DB) ShareholderService {
	s.tx = tx
	return s
}

func (s *shareholderService) Create(issuerID uuid.UUID, req CreateRequest) (*models.Shareholder, error) {
	if err := req.Validate(); err != nil {
		return nil, grerrors.InvalidRequestParam.WithMsg(err.Error())
	}

	if req.ExternalIdentityID != nil {
		if _, err := uuid.FromString(*req.ExternalIdentityID); err != nil {
			return nil, grerrors.InvalidRequestParam.WithMsg("external_identity_id is not a valid uuid")
		}
	}

	opt := db.ForShare

	issuer, err := op.GetIssuerByID(s.tx, issuerID, &opt)
	if err != nil {
		return nil, err
	}

	if !issuer.AcceptsMetadataWrites() {
		return nil, grerrors.IssuerInactive.WithMsg("suspended issuers reject all writes")
	}

	holder := &models.Shareholder{
		IssuerID:           issuerID.String(),
		AccountNumber:      req.AccountNumber,
		Name:               req.Name,
		ExternalIdentityID: req.ExternalIdentityID,
	}

	if err := s.tx.Create(holder).Error; err != nil {
		return nil, storeError(err)
	}

	return holder, nil
}

func (s *shareholderService) Get(issuerID, shareholderID uuid.UUID) (*models.Shareholder, error) {
	return op.GetShareholderByID(s.tx, issuerID, shareholderID)
}

func (s *shareholderService) GetByAccountNumber(issuerID uuid.UUID, accountNumber string) (*models.Shareholder, error) {
	holder := &models.Shareholder{}

	q := s.tx.Where(
		"issuer_id = ? AND account_number = ?",
		issuerID.String(), accountNumber).First(holder)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg("shareholder not found for account number")
	}

	if q.Error != nil {
		return nil, storeError(q.Error)
	}

	return holder, nil
}

func storeError(err error) error {
	if db.IsTransientError(errors.Cause(err)) {
		return grerrors.StoreUnavailable.WithError(err)
	}
	return grerrors.InternalServerError.WithError(err)
}
