package reconciliation

import (
	"testing"

	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/dbtest"
	"github.com/capstack/goregistrar/models"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/capstack/goregistrar/service/position"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ReconciliationTestSuite struct {
	dbtest.Suite
	issuer      *models.Issuer
	security    *models.Security
	shareholder *models.Shareholder
	operatorID  uuid.UUID
}

func TestReconciliationTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationTestSuite))
}

func (s *ReconciliationTestSuite) SetupSuite() {
	s.SetupDB()

	s.operatorID = uuid.Must(uuid.NewV4())

	s.issuer = &models.Issuer{
		Name:   "Capstack Acquisition Corp",
		Status: enum.IssuerActive,
	}
	if err := db.DB().Create(s.issuer).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}

	s.security = &models.Security{
		IssuerID: s.issuer.ID,
		CUSIP:    "14067D102",
		Class:    enum.ClassCommon,
	}
	if err := db.DB().Create(s.security).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}

	s.shareholder = &models.Shareholder{
		IssuerID:      s.issuer.ID,
		AccountNumber: "ACCT-0001",
	}
	if err := db.DB().Create(s.shareholder).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}
}

func (s *ReconciliationTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *ReconciliationTestSuite) append(qty, rawQty int64, category enum.TransactionCategory, date string) *models.Transaction {
	txn := &models.Transaction{
		IssuerID:        s.issuer.ID,
		ShareholderID:   s.shareholder.ID,
		SecurityID:      s.security.ID,
		Category:        category,
		Qty:             qty,
		RawQty:          rawQty,
		TransactionDate: date,
		Status:          enum.TransactionActive,
		SubmissionKey: models.NaturalKey(
			s.issuer.ID, s.shareholder.ID, s.security.ID,
			date, category, rawQty, ""),
	}
	if err := db.DB().Create(txn).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}
	return txn
}

func (s *ReconciliationTestSuite) recompute() int64 {
	total, err := position.Service().WithTx(db.DB()).Recompute(
		s.issuer.IDAsUUID(), s.shareholder.IDAsUUID(), s.security.IDAsUUID())
	if err != nil {
		assert.FailNow(s.T(), err.Error())
	}
	return total
}

func (s *ReconciliationTestSuite) TestRun() {
	assert := assert.New(s.T())

	s.append(7906132, 7906132, enum.IPO, "2020-08-04")
	// a withdrawal persisted with the wrong sign by a faulty importer
	bad := s.append(20000, 20000, enum.DWACWithdrawal, "2020-09-01")

	s.recompute()

	srv := Service().WithTx(db.DB())

	// dry run stages the correction without touching the ledger
	report, err := srv.Run(s.issuer.IDAsUUID(), nil, true, nil, s.operatorID)
	assert.Nil(err)
	assert.True(report.DryRun)
	assert.Len(report.Anomalies, 1)

	anomaly := report.Anomalies[0]
	assert.Equal(bad.ID, anomaly.TransactionID)
	assert.EqualValues(20000, anomaly.StoredQty)
	assert.EqualValues(-20000, anomaly.CorrectedQty)
	assert.EqualValues(-40000, anomaly.Correction)

	assert.Len(report.Deltas, 1)
	assert.EqualValues(7926132, report.Deltas[0].OldTotal)
	assert.EqualValues(7886132, report.Deltas[0].NewTotal)

	stored := &models.Transaction{}
	assert.Nil(db.DB().First(stored, bad.ID).Error)
	assert.EqualValues(20000, stored.Qty)

	// applying repairs the entry, the position, and leaves an audit row
	report, err = srv.Run(s.issuer.IDAsUUID(), nil, false, nil, s.operatorID)
	assert.Nil(err)
	assert.False(report.DryRun)
	assert.Equal(1, report.AppliedCount)
	assert.Equal(0, report.SkippedCount)
	assert.True(report.Verified)

	assert.Nil(db.DB().First(stored, bad.ID).Error)
	assert.EqualValues(-20000, stored.Qty)
	assert.EqualValues(20000, stored.RawQty)

	pos := &models.Position{}
	assert.Nil(db.DB().Where(
		"issuer_id = ? AND shareholder_id = ? AND security_id = ?",
		s.issuer.ID, s.shareholder.ID, s.security.ID).First(pos).Error)
	assert.EqualValues(7886132, pos.Qty)

	audits := []models.ReconciliationAudit{}
	assert.Nil(db.DB().Where("transaction_id = ?", bad.ID).Find(&audits).Error)
	assert.Len(audits, 1)
	assert.EqualValues(20000, audits[0].QtyBefore)
	assert.EqualValues(-20000, audits[0].QtyAfter)
	assert.Equal(s.operatorID.String(), audits[0].OperatorID)

	// a second pass finds nothing and writes nothing
	report, err = srv.Run(s.issuer.IDAsUUID(), nil, false, nil, s.operatorID)
	assert.Nil(err)
	assert.Empty(report.Anomalies)
	assert.Equal(0, report.AppliedCount)
	assert.True(report.Verified)

	assert.Nil(db.DB().Where("transaction_id = ?", bad.ID).Find(&audits).Error)
	assert.Len(audits, 1)
}

func (s *ReconciliationTestSuite) TestIsolationDetection() {
	assert := assert.New(s.T())

	tx := db.RepeatableRead()
	repeatable, err := db.IsolatedAtLeastRepeatable(tx)
	tx.Rollback()
	assert.Nil(err)
	assert.True(repeatable)

	tx = db.Begin()
	repeatable, err = db.IsolatedAtLeastRepeatable(tx)
	tx.Rollback()
	assert.Nil(err)
	assert.False(repeatable)
}

func (s *ReconciliationTestSuite) TestVerifyExpectedTotal() {
	assert := assert.New(s.T())

	securityID := s.security.IDAsUUID()

	expected := s.recompute()

	srv := Service().WithTx(db.DB())

	report, err := srv.Run(s.issuer.IDAsUUID(), &securityID, false, &expected, s.operatorID)
	assert.Nil(err)
	assert.True(report.Verified)
	assert.NotNil(report.RecomputedTotal)
	assert.Equal(expected, *report.RecomputedTotal)

	wrong := expected + 1

	report, err = srv.Run(s.issuer.IDAsUUID(), &securityID, false, &wrong, s.operatorID)
	assert.Nil(err)
	assert.False(report.Verified)
}
