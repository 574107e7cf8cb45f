package position

import (
	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/log"
	"github.com/capstack/goregistrar/models"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

type PositionService interface {
	Get(issuerID, shareholderID, securityID uuid.UUID, asOf *string) (int64, error)
	Recompute(issuerID, shareholderID, securityID uuid.UUID) (int64, error)
	Iterate(issuerID uuid.UUID, batchSize int) *Iterator
	WithTx(tx *gorm.DB) PositionService
}

type positionService struct {
	PositionService
	tx *gorm.DB
}

func Service() PositionService {
	return &positionService{}
}

func (s *positionService) WithTx(tx *gorm.DB) PositionService {
	s.tx = tx
	return s
}

// Fold sums the signed quantities of active transactions. The entries
// must already be classifier-normalized; the fold never re-classifies.
func Fold(txns []models.Transaction) int64 {
	var total int64
	for _, t := range txns {
		if !t.Active() {
			continue
		}
		total += t.Qty
	}
	return total
}

// Displayed floors a signed balance at zero. Floor-at-zero is a display
// policy only - storage and folds keep the sign for audit.
func Displayed(signed int64) int64 {
	if signed < 0 {
		return 0
	}
	return signed
}

// Get returns the signed balance for the key. With asOf set, the
// balance is folded from the ledger up to and including that date;
// otherwise the materialized cache row is read (a missing row is an
// empty position, not an error).
func (s *positionService) Get(issuerID, shareholderID, securityID uuid.UUID, asOf *string) (int64, error) {
	if asOf != nil {
		return s.fold(issuerID, shareholderID, securityID, asOf)
	}

	pos := &models.Position{}

	q := s.tx.Where(
		"issuer_id = ? AND shareholder_id = ? AND security_id = ?",
		issuerID.String(), shareholderID.String(), securityID.String()).First(pos)

	if q.RecordNotFound() {
		return 0, nil
	}

	if q.Error != nil {
		return 0, storeError(q.Error)
	}

	return pos.Qty, nil
}

// Recompute folds the full ledger for the key and upserts the cache
// row. A cache row that disagrees with the fold is a consistency
// event: logged with both values, then healed by trusting the fold.
// Re-running is safe and idempotent.
func (s *positionService) Recompute(issuerID, shareholderID, securityID uuid.UUID) (int64, error) {
	total, err := s.fold(issuerID, shareholderID, securityID, nil)
	if err != nil {
		return 0, err
	}

	pos := &models.Position{}

	q := s.tx.Where(
		"issuer_id = ? AND shareholder_id = ? AND security_id = ?",
		issuerID.String(), shareholderID.String(), securityID.String()).First(pos)

	switch {
	case q.RecordNotFound():
		pos = &models.Position{
			IssuerID:      issuerID.String(),
			ShareholderID: shareholderID.String(),
			SecurityID:    securityID.String(),
			Qty:           total,
		}
		if err := s.tx.Create(pos).Error; err != nil {
			return 0, storeError(err)
		}
		return total, nil
	case q.Error != nil:
		return 0, storeError(q.Error)
	}

	drifted := pos.Qty != total
	if drifted {
		// never discarded silently - the drift event is the signal
		// that something upstream bypassed the append path
		log.Error("position cache drift",
			"issuer_id", issuerID.String(),
			"shareholder_id", shareholderID.String(),
			"security_id", securityID.String(),
			"cached", pos.Qty,
			"recomputed", total)
	}

	if err := s.tx.Model(pos).Update("qty", total).Error; err != nil {
		// a drifted cache we failed to heal stays inconsistent
		if drifted {
			return 0, grerrors.PositionDrift.WithError(err)
		}
		return 0, storeError(err)
	}

	return total, nil
}

func (s *positionService) fold(issuerID, shareholderID, securityID uuid.UUID, asOf *string) (int64, error) {
	txns := []models.Transaction{}

	q := s.tx.Where(
		"issuer_id = ? AND shareholder_id = ? AND security_id = ? AND status = ?",
		issuerID.String(), shareholderID.String(), securityID.String(), enum.TransactionActive)

	if asOf != nil {
		q = q.Where("transaction_date <= ?", *asOf)
	}

	if err := q.Order("transaction_date, id").Find(&txns).Error; err != nil {
		return 0, storeError(errors.Wrap(err, "ledger fold failed"))
	}

	return Fold(txns), nil
}

// storeError classifies connection-class failures as retryable.
func storeError(err error) error {
	if db.IsTransientError(errors.Cause(err)) {
		return grerrors.StoreUnavailable.WithError(err)
	}
	return grerrors.InternalServerError.WithError(err)
}
