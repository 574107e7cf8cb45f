package reconciliation

import (
	"fmt"
	"time"

	"github.com/capstack/goregistrar/classifier"
	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/log"
	"github.com/capstack/goregistrar/models"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/capstack/goregistrar/service/position"
	"github.com/capstack/goregistrar/service/restriction"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/copier"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

// Anomaly is one active ledger entry whose stored sign disagrees with
// the classifier. Correction is the signed delta that repairs it:
// flipping a wrong sign removes the wrong value and adds its negation,
// hence -2 x stored.
type Anomaly struct {
	TransactionID uint                     `json:"transaction_id"`
	ShareholderID string                   `json:"shareholder_id"`
	SecurityID    string                   `json:"security_id"`
	Category      enum.TransactionCategory `json:"category"`
	StoredQty     int64                    `json:"stored_qty"`
	CorrectedQty  int64                    `json:"corrected_qty"`
	Correction    int64                    `json:"correction"`
}

// KeyDelta previews the balance movement reconciliation implies for
// one (shareholder, security) key.
type KeyDelta struct {
	ShareholderID string `json:"shareholder_id"`
	SecurityID    string `json:"security_id"`
	OldTotal      int64  `json:"old_total"`
	NewTotal      int64  `json:"new_total"`
}

// Report is the engine's dry-run plan or applied outcome.
type Report struct {
	IssuerID        string     `json:"issuer_id"`
	SecurityID      *string    `json:"security_id,omitempty"`
	DryRun          bool       `json:"dry_run"`
	GeneratedAt     time.Time  `json:"generated_at"`
	Anomalies       []Anomaly  `json:"anomalies"`
	Deltas          []KeyDelta `json:"deltas"`
	AppliedCount    int        `json:"applied_count"`
	SkippedCount    int        `json:"skipped_count"`
	Verified        bool       `json:"verified"`
	ExpectedTotal   *int64     `json:"expected_total,omitempty"`
	RecomputedTotal *int64     `json:"recomputed_total,omitempty"`
}

type ReconciliationService interface {
	Plan(issuerID uuid.UUID, securityID *uuid.UUID) (*Report, error)
	Run(issuerID uuid.UUID, securityID *uuid.UUID, dryRun bool, expectedTotal *int64, operatorID uuid.UUID) (*Report, error)
	WithTx(tx *gorm.DB) ReconciliationService
}

type reconciliationService struct {
	ReconciliationService
	tx *gorm.DB
}

func Service() ReconciliationService {
	return &reconciliationService{}
}

func (s *reconciliationService) WithTx(tx *gorm.DB) ReconciliationService {
	s.tx = tx
	return s
}

// Plan is the read-only Detected+Planned stage: scan the scope for
// sign mismatches and stage corrections with projected totals. Safe to
// run concurrently with ordinary ingestion.
func (s *reconciliationService) Plan(issuerID uuid.UUID, securityID *uuid.UUID) (*Report, error) {
	report := &Report{
		IssuerID:    issuerID.String(),
		DryRun:      true,
		GeneratedAt: time.Now().UTC(),
		Anomalies:   []Anomaly{},
		Deltas:      []KeyDelta{},
	}
	if securityID != nil {
		sid := securityID.String()
		report.SecurityID = &sid
	}

	txns, err := s.scope(issuerID, securityID)
	if err != nil {
		return nil, err
	}

	deltaByKey := map[string]*KeyDelta{}

	for i := range txns {
		txn := &txns[i]

		anomaly, err := detect(txn)
		if err != nil {
			// a stored category the classifier cannot place should be
			// impossible past the ingestion gate; surface it loudly
			// instead of guessing a sign
			log.Error("unclassifiable ledger entry during reconciliation",
				"transaction_id", txn.ID, "category", txn.Category, "error", err)
			continue
		}
		if anomaly == nil {
			continue
		}

		report.Anomalies = append(report.Anomalies, *anomaly)

		key := txn.ShareholderID + "|" + txn.SecurityID
		delta, ok := deltaByKey[key]
		if !ok {
			shareholderID, _ := uuid.FromString(txn.ShareholderID)
			secID, _ := uuid.FromString(txn.SecurityID)

			old, err := position.Service().WithTx(s.tx).Get(issuerID, shareholderID, secID, nil)
			if err != nil {
				return nil, err
			}

			delta = &KeyDelta{
				ShareholderID: txn.ShareholderID,
				SecurityID:    txn.SecurityID,
				OldTotal:      old,
				NewTotal:      old,
			}
			deltaByKey[key] = delta
		}
		delta.NewTotal += anomaly.Correction
	}

	for _, d := range deltaByKey {
		report.Deltas = append(report.Deltas, *d)
	}

	return report, nil
}

// Run executes the engine. With dryRun it returns the plan untouched.
// Otherwise each staged anomaly is re-validated under a row lock
// immediately before correcting, so a concurrent legitimate fix is
// skipped rather than clobbered. Corrections are applied in place with
// a mandatory audit row; affected positions are recomputed afterwards.
// A second consecutive run finds no live mismatch and writes nothing.
func (s *reconciliationService) Run(issuerID uuid.UUID, securityID *uuid.UUID, dryRun bool, expectedTotal *int64, operatorID uuid.UUID) (*Report, error) {
	plan, err := s.Plan(issuerID, securityID)
	if err != nil {
		return nil, err
	}

	if dryRun {
		plan.ExpectedTotal = expectedTotal
		return plan, nil
	}

	if repeatable, err := db.IsolatedAtLeastRepeatable(s.tx); err == nil && !repeatable {
		log.Warn("reconciliation running below repeatable read",
			"issuer_id", issuerID.String())
	}

	report := *plan
	report.DryRun = false
	report.ExpectedTotal = expectedTotal

	touched := map[string][2]uuid.UUID{}

	for _, anomaly := range plan.Anomalies {
		applied, err := s.apply(issuerID, anomaly, operatorID)
		if err != nil {
			return nil, err
		}

		if !applied {
			report.SkippedCount++
			continue
		}

		report.AppliedCount++

		shareholderID, _ := uuid.FromString(anomaly.ShareholderID)
		secID, _ := uuid.FromString(anomaly.SecurityID)
		touched[anomaly.ShareholderID+"|"+anomaly.SecurityID] = [2]uuid.UUID{shareholderID, secID}
	}

	for _, ids := range touched {
		if _, err := position.Service().WithTx(s.tx).Recompute(issuerID, ids[0], ids[1]); err != nil {
			return nil, err
		}
		if err := restriction.Service().WithTx(s.tx).FlagUndercut(issuerID, ids[0], ids[1]); err != nil {
			return nil, err
		}
	}

	return s.verify(issuerID, securityID, expectedTotal, &report)
}

// apply corrects a single entry in place. Returns false when the
// anomaly no longer exists (repaired concurrently or voided).
func (s *reconciliationService) apply(issuerID uuid.UUID, anomaly Anomaly, operatorID uuid.UUID) (bool, error) {
	txn := &models.Transaction{}

	q := s.tx.
		Where("id = ? AND issuer_id = ?", anomaly.TransactionID, issuerID.String()).
		Set("gorm:query_option", db.ForUpdate).
		First(txn)

	if q.RecordNotFound() {
		return false, nil
	}

	if q.Error != nil {
		return false, storeError(q.Error)
	}

	// Applied requires a live mismatch
	live, err := detect(txn)
	if err != nil || live == nil {
		return false, nil
	}

	if err := s.tx.Model(txn).Update("qty", live.CorrectedQty).Error; err != nil {
		return false, storeError(errors.Wrap(err, "sign correction failed"))
	}

	audit := models.ReconciliationAudit{}
	copier.Copy(&audit, txn)
	audit.ID = 0
	audit.CreatedAt = time.Time{}
	audit.TransactionID = txn.ID
	audit.QtyBefore = live.StoredQty
	audit.QtyAfter = live.CorrectedQty
	audit.OperatorID = operatorID.String()
	audit.Note = fmt.Sprintf("sign correction: classifier disagrees with stored sign for %q", txn.Category)

	if err := s.tx.Create(&audit).Error; err != nil {
		return false, storeError(errors.Wrap(err, "audit append failed"))
	}

	log.Info("reconciliation correction applied",
		"transaction_id", txn.ID,
		"qty_before", live.StoredQty,
		"qty_after", live.CorrectedQty,
		"operator_id", operatorID.String())

	return true, nil
}

// verify is the Verified stage: either match an externally supplied
// expected total, or confirm no sign anomaly remains in scope.
func (s *reconciliationService) verify(issuerID uuid.UUID, securityID *uuid.UUID, expectedTotal *int64, report *Report) (*Report, error) {
	if expectedTotal != nil && securityID != nil {
		total, err := s.securityTotal(issuerID, *securityID)
		if err != nil {
			return nil, err
		}

		report.RecomputedTotal = &total
		report.Verified = total == *expectedTotal

		if !report.Verified {
			log.Error("reconciliation verification mismatch",
				"issuer_id", issuerID.String(),
				"security_id", securityID.String(),
				"expected", *expectedTotal,
				"recomputed", total)
		}

		return report, nil
	}

	recheck, err := s.Plan(issuerID, securityID)
	if err != nil {
		return nil, err
	}

	report.Verified = len(recheck.Anomalies) == 0

	return report, nil
}

func (s *reconciliationService) securityTotal(issuerID, securityID uuid.UUID) (int64, error) {
	txns := []models.Transaction{}

	if err := s.tx.Where(
		"issuer_id = ? AND security_id = ? AND status = ?",
		issuerID.String(), securityID.String(), enum.TransactionActive).
		Order("transaction_date, id").
		Find(&txns).Error; err != nil {
		return 0, storeError(err)
	}

	return position.Fold(txns), nil
}

// scope selects the active entries the engine may look at; it never
// reads outside the requested (issuer, security) and never touches
// void rows.
func (s *reconciliationService) scope(issuerID uuid.UUID, securityID *uuid.UUID) ([]models.Transaction, error) {
	txns := []models.Transaction{}

	q := s.tx.Where(
		"issuer_id = ? AND status = ?",
		issuerID.String(), enum.TransactionActive)

	if securityID != nil {
		q = q.Where("security_id = ?", securityID.String())
	}

	if err := q.Order("id").Find(&txns).Error; err != nil {
		return nil, storeError(err)
	}

	return txns, nil
}

// detect returns the anomaly for a live sign mismatch, nil when the
// stored sign already agrees with the classifier.
func detect(txn *models.Transaction) (*Anomaly, error) {
	direction := ""
	if txn.Direction != nil {
		direction = *txn.Direction
	}

	sign, _, err := classifier.Classify(txn.Category, direction)
	if err != nil {
		return nil, err
	}

	if txn.Qty == 0 || sameSign(txn.Qty, sign) {
		return nil, nil
	}

	return &Anomaly{
		TransactionID: txn.ID,
		ShareholderID: txn.ShareholderID,
		SecurityID:    txn.SecurityID,
		Category:      txn.Category,
		StoredQty:     txn.Qty,
		CorrectedQty:  -txn.Qty,
		Correction:    -2 * txn.Qty,
	}, nil
}

func sameSign(qty, sign int64) bool {
	if sign > 0 {
		return qty > 0
	}
	return qty < 0
}

func storeError(err error) error {
	if db.IsTransientError(errors.Cause(err)) {
		return grerrors.StoreUnavailable.WithError(err)
	}
	return grerrors.InternalServerError.WithError(err)
}
