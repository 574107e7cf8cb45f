package security

import (
	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/models"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/capstack/goregistrar/service/op"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

type CreateRequest struct {
	CUSIP string             `json:"cusip"`
	Class enum.SecurityClass `json:"class"`
	Name  string             `json:"name"`
}

func (r CreateRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.CUSIP, validation.Required, validation.Length(1, 12)),
		validation.Field(&r.Class, validation.Required),
	); err != nil {
		return err
	}

	if !r.Class.Valid() {
		return errors.Errorf("unknown security class %q", r.Class)
	}

	return nil
}

type SecurityService interface {
	Create(issuerID uuid.UUID, req CreateRequest) (*models.Security, error)
	Get(issuerID, securityID uuid.UUID) (*models.Security, error)
	GetByCUSIP(issuerID uuid.UUID, cusip string) (*models.Security, error)
	List(issuerID uuid.UUID) ([]models.Security, error)
	WithTx(tx *gorm.DB) SecurityService
}

type securityService struct {
	SecurityService
	tx *gorm.DB
}

func Service() SecurityService {
	return &securityService{}
}

func (s *securityService) WithTx(tx *gorm.DB) SecurityService {
	s.tx = tx
	return s
}

func (s *securityService) Create(issuerID uuid.UUID, req CreateRequest) (*models.Security, error) {
	if err := req.Validate(); err != nil {
		return nil, grerrors.InvalidRequestParam.WithMsg(err.Error())
	}

	// shared lock: the gate needs the status held steady until commit,
	// not exclusive access to the issuer row
	opt := db.ForShare

	issuer, err := op.GetIssuerByID(s.tx, issuerID, &opt)
	if err != nil {
		return nil, err
	}

	// metadata setup is open while pending, closed while suspended
	if !issuer.AcceptsMetadataWrites() {
		return nil, grerrors.IssuerInactive.WithMsg("suspended issuers reject all writes")
	}

	security := &models.Security{
		IssuerID: issuerID.String(),
		CUSIP:    req.CUSIP,
		Class:    req.Class,
		Name:     req.Name,
	}

	if err := s.tx.Create(security).Error; err != nil {
		return nil, storeError(err)
	}

	return security, nil
}

func (s *securityService) Get(issuerID, securityID uuid.UUID) (*models.Security, error) {
	return op.GetSecurityByID(s.tx, issuerID, securityID)
}

func (s *securityService) GetByCUSIP(issuerID uuid.UUID, cusip string) (*models.Security, error) {
	security := &models.Security{}

	q := s.tx.Where(
		"issuer_id = ? AND cusip = ?",
		issuerID.String(), cusip).First(security)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg("security not found for CUSIP")
	}

	if q.Error != nil {
		return nil, storeError(q.Error)
	}

	return security, nil
}

func (s *securityService) List(issuerID uuid.UUID) ([]models.Security, error) {
	securities := []models.Security{}

	q := s.tx.Where("issuer_id = ?", issuerID.String()).Order("cusip").Find(&securities)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, storeError(q.Error)
	}

	return securities, nil
}

func storeError(err error) error {
	if db.IsTransientError(errors.Cause(err)) {
		return grerrors.StoreUnavailable.WithError(err)
	}
	return grerrors.InternalServerError.WithError(err)
}
