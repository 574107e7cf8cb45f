package ledger

import (
	"fmt"

	"github.com/capstack/goregistrar/classifier"
	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/log"
	"github.com/capstack/goregistrar/models"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/capstack/goregistrar/service/op"
	"github.com/capstack/goregistrar/service/position"
	"github.com/capstack/goregistrar/service/restriction"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

// IngestRequest is a single raw transaction submission. Qty is a
// magnitude; the canonical sign is derived by the classifier, never by
// the caller.
type IngestRequest struct {
	ShareholderID string                   `json:"shareholder_id"`
	SecurityID    string                   `json:"security_id"`
	Category      enum.TransactionCategory `json:"category"`
	Qty           int64                    `json:"qty"`
	Direction     *string                  `json:"direction,omitempty"`
	Date          string                   `json:"date"`
	Note          *string                  `json:"note,omitempty"`
	// optional explicit idempotency key; when absent a natural key is
	// derived from the submission's content
	SubmissionID *string `json:"submission_id,omitempty"`
}

func (r IngestRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ShareholderID, validation.Required),
		validation.Field(&r.SecurityID, validation.Required),
		validation.Field(&r.Category, validation.Required),
		validation.Field(&r.Qty, validation.Required, validation.Min(1)),
		validation.Field(&r.Date, validation.Required, validation.Date("2006-01-02")),
	)
}

// BulkResult reports the outcome of one entry of a bulk submission.
type BulkResult struct {
	Index         int    `json:"index"`
	TransactionID *uint  `json:"transaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

type LedgerService interface {
	Ingest(issuerID uuid.UUID, req IngestRequest) (*models.Transaction, error)
	BulkIngest(issuerID uuid.UUID, reqs []IngestRequest) []BulkResult
	Void(issuerID uuid.UUID, transactionID uint, operatorID uuid.UUID) (*models.Transaction, error)
	WithTx(tx *gorm.DB) LedgerService
}

type ledgerService struct {
	LedgerService
	tx *gorm.DB
}

func Service() LedgerService {
	return &ledgerService{}
}

func (s *ledgerService) WithTx(tx *gorm.DB) LedgerService {
	s.tx = tx
	return s
}

// Ingest appends one classified entry and upserts the materialized
// position inside the caller's transaction, so a committed entry is
// never observable without its position update. The issuer row is
// locked FOR UPDATE first: the status gate and the append commit or
// fail as one.
func (s *ledgerService) Ingest(issuerID uuid.UUID, req IngestRequest) (*models.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, grerrors.InvalidRequestParam.WithMsg(err.Error())
	}

	opt := db.ForUpdate

	issuer, err := op.GetIssuerByID(s.tx, issuerID, &opt)
	if err != nil {
		return nil, err
	}

	if !issuer.AcceptsLedgerWrites() {
		return nil, grerrors.IssuerInactive.WithMsg(
			fmt.Sprintf("issuer is %v - transaction ingestion requires an active issuer", issuer.Status))
	}

	shareholderID, err := uuid.FromString(req.ShareholderID)
	if err != nil {
		return nil, grerrors.InvalidRequestParam.WithMsg("shareholder_id is not a valid uuid")
	}

	securityID, err := uuid.FromString(req.SecurityID)
	if err != nil {
		return nil, grerrors.InvalidRequestParam.WithMsg("security_id is not a valid uuid")
	}

	if _, err = op.GetShareholderByID(s.tx, issuerID, shareholderID); err != nil {
		return nil, err
	}

	if _, err = op.GetSecurityByID(s.tx, issuerID, securityID); err != nil {
		return nil, err
	}

	direction := ""
	if req.Direction != nil {
		direction = *req.Direction
	}

	signedQty, _, err := classifier.SignedQty(req.Qty, req.Category, direction)
	if err != nil {
		// unknown category is a hard validation error, never a
		// silent +1 default
		return nil, grerrors.InvalidRequestParam.WithMsg(err.Error())
	}

	note := ""
	if req.Note != nil {
		note = *req.Note
	}

	key := models.NaturalKey(
		issuerID.String(), req.ShareholderID, req.SecurityID,
		req.Date, req.Category, req.Qty, note)
	if req.SubmissionID != nil && *req.SubmissionID != "" {
		key = *req.SubmissionID
	}

	// a retried submission returns the committed row untouched
	existing := &models.Transaction{}
	q := s.tx.Where("submission_key = ?", key).First(existing)
	if q.Error == nil {
		return existing, nil
	}
	if !q.RecordNotFound() {
		return nil, storeError(q.Error)
	}

	txn := &models.Transaction{
		IssuerID:        issuerID.String(),
		ShareholderID:   req.ShareholderID,
		SecurityID:      req.SecurityID,
		Category:        req.Category,
		Qty:             signedQty,
		RawQty:          req.Qty,
		Direction:       req.Direction,
		TransactionDate: req.Date,
		Note:            req.Note,
		Status:          enum.TransactionActive,
		SubmissionKey:   key,
	}

	if err := s.tx.Create(txn).Error; err != nil {
		// a concurrent retry with the same key won the insert. The
		// violation aborts our transaction, so read the winner's row
		// on a fresh session; it has committed, or our insert would
		// still be blocked on it.
		if db.IsUniqueViolation(errors.Cause(err)) {
			if q := db.DB().Where("submission_key = ?", key).First(existing); q.Error == nil {
				return existing, nil
			}
		}
		return nil, storeError(errors.Wrap(err, "ledger append failed"))
	}

	if _, err := position.Service().WithTx(s.tx).Recompute(issuerID, shareholderID, securityID); err != nil {
		return nil, err
	}

	if signedQty < 0 {
		// a decrease may undercut an existing hold - flag, don't clamp
		if err := restriction.Service().WithTx(s.tx).FlagUndercut(issuerID, shareholderID, securityID); err != nil {
			return nil, err
		}
	}

	return txn, nil
}

// BulkIngest applies each entry through the single-entry path in its
// own transaction and reports per-entry outcomes, so a partial import
// stays diagnosable instead of failing wholesale.
func (s *ledgerService) BulkIngest(issuerID uuid.UUID, reqs []IngestRequest) []BulkResult {
	results := make([]BulkResult, len(reqs))

	for i, req := range reqs {
		results[i].Index = i

		tx := db.Begin()
		if tx.Error != nil {
			results[i].Error = grerrors.Format(storeError(tx.Error))
			continue
		}

		txn, err := (&ledgerService{tx: tx}).Ingest(issuerID, req)
		if err != nil {
			tx.Rollback()
			results[i].Error = grerrors.Format(err)
			continue
		}

		if err := tx.Commit().Error; err != nil {
			results[i].Error = grerrors.Format(storeError(err))
			continue
		}

		results[i].TransactionID = &txn.ID
	}

	return results
}

// Void flips an entry to void and recomputes its key. The entry's
// meaning is preserved for audit; folds simply skip it.
func (s *ledgerService) Void(issuerID uuid.UUID, transactionID uint, operatorID uuid.UUID) (*models.Transaction, error) {
	opt := db.ForUpdate

	issuer, err := op.GetIssuerByID(s.tx, issuerID, &opt)
	if err != nil {
		return nil, err
	}

	if !issuer.AcceptsLedgerWrites() {
		return nil, grerrors.IssuerInactive.WithMsg(
			fmt.Sprintf("issuer is %v - ledger writes are rejected", issuer.Status))
	}

	txn := &models.Transaction{}

	q := s.tx.Where(
		"id = ? AND issuer_id = ?",
		transactionID, issuerID.String()).First(txn)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg("transaction not found")
	}

	if q.Error != nil {
		return nil, storeError(q.Error)
	}

	if !txn.Active() {
		return nil, grerrors.InvalidRequestParam.WithMsg("transaction is already void")
	}

	if err := s.tx.Model(txn).Update("status", enum.TransactionVoid).Error; err != nil {
		return nil, storeError(err)
	}

	log.Info("transaction voided",
		"transaction_id", txn.ID,
		"issuer_id", issuerID.String(),
		"operator_id", operatorID.String())

	shareholderID, _ := uuid.FromString(txn.ShareholderID)
	securityID, _ := uuid.FromString(txn.SecurityID)

	if _, err := position.Service().WithTx(s.tx).Recompute(issuerID, shareholderID, securityID); err != nil {
		return nil, err
	}

	if txn.Qty > 0 {
		// voiding an inflow decreases the position
		if err := restriction.Service().WithTx(s.tx).FlagUndercut(issuerID, shareholderID, securityID); err != nil {
			return nil, err
		}
	}

	return txn, nil
}

func storeError(err error) error {
	if db.IsTransientError(errors.Cause(err)) {
		return grerrors.StoreUnavailable.WithError(err)
	}
	return grerrors.InternalServerError.WithError(err)
}
