package issuer

import (
	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/log"
	"github.com/capstack/goregistrar/models"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/capstack/goregistrar/service/op"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

type CreateRequest struct {
	Name string `json:"name"`
}

func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
	)
}

type IssuerService interface {
	Create(req CreateRequest) (*models.Issuer, error)
	Get(issuerID uuid.UUID) (*models.Issuer, error)
	SetStatus(issuerID uuid.UUID, status enum.IssuerStatus) (*models.Issuer, error)
	WithTx(tx *gorm.DB) IssuerService
}

type issuerService struct {
	IssuerService
	tx *gorm.DB
}

func Service() IssuerService {
	return &issuerService{}
}

func (s *issuerService) WithTx(tx *gorm.DB) IssuerService {
	s.tx = tx
	return s
}

// Create onboards a tenant in pending status: metadata setup is open,
// the ledger is not.
func (s *issuerService) Create(req CreateRequest) (*models.Issuer, error) {
	if err := req.Validate(); err != nil {
		return nil, grerrors.InvalidRequestParam.WithMsg(err.Error())
	}

	issuer := &models.Issuer{
		Name:   req.Name,
		Status: enum.IssuerPending,
	}

	if err := s.tx.Create(issuer).Error; err != nil {
		return nil, storeError(err)
	}

	return issuer, nil
}

func (s *issuerService) Get(issuerID uuid.UUID) (*models.Issuer, error) {
	return op.GetIssuerByID(s.tx, issuerID, nil)
}

// SetStatus drives the issuer lifecycle. Issuers are never deleted;
// suspension is the terminal brake.
func (s *issuerService) SetStatus(issuerID uuid.UUID, status enum.IssuerStatus) (*models.Issuer, error) {
	if !status.Valid() {
		return nil, grerrors.InvalidRequestParam.WithMsg("unknown issuer status")
	}

	opt := db.ForUpdate

	issuer, err := op.GetIssuerByID(s.tx, issuerID, &opt)
	if err != nil {
		return nil, err
	}

	if issuer.Status == status {
		return issuer, nil
	}

	prev := issuer.Status

	if err := s.tx.Model(issuer).Update("status", status).Error; err != nil {
		return nil, storeError(err)
	}

	log.Info("issuer status changed",
		"issuer_id", issuerID.String(), "from", prev, "to", status)

	return issuer, nil
}

func storeError(err error) error {
	if db.IsTransientError(errors.Cause(err)) {
		return grerrors.StoreUnavailable.WithError(err)
	}
	return grerrors.InternalServerError.WithError(err)
}
