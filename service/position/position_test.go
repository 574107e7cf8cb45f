package position

import (
	"fmt"
	"testing"

	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/dbtest"
	"github.com/capstack/goregistrar/models"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PositionTestSuite struct {
	dbtest.Suite
	issuer      *models.Issuer
	security    *models.Security
	shareholder *models.Shareholder
}

func TestPositionTestSuite(t *testing.T) {
	suite.Run(t, new(PositionTestSuite))
}

func (s *PositionTestSuite) SetupSuite() {
	s.SetupDB()

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

func (s *PositionTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *PositionTestSuite) append(qty int64, category enum.TransactionCategory, date string) *models.Transaction {
	txn := &models.Transaction{
		IssuerID:        s.issuer.ID,
		ShareholderID:   s.shareholder.ID,
		SecurityID:      s.security.ID,
		Category:        category,
		Qty:             qty,
		RawQty:          qty,
		TransactionDate: date,
		Status:          enum.TransactionActive,
		SubmissionKey: models.NaturalKey(
			s.issuer.ID, s.shareholder.ID, s.security.ID,
			date, category, qty, ""),
	}
	if txn.Qty < 0 {
		txn.RawQty = -qty
	}
	if err := db.DB().Create(txn).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}
	return txn
}

func (s *PositionTestSuite) TestRecomputeAndGet() {
	assert := assert.New(s.T())

	s.append(7906132, enum.IPO, "2020-08-04")
	s.append(-20000, enum.DWACWithdrawal, "2020-09-01")

	srv := Service().WithTx(db.DB())

	total, err := srv.Recompute(
		s.issuer.IDAsUUID(), s.shareholder.IDAsUUID(), s.security.IDAsUUID())
	assert.Nil(err)
	assert.EqualValues(7886132, total)

	// cached read agrees with the fold
	qty, err := srv.Get(
		s.issuer.IDAsUUID(), s.shareholder.IDAsUUID(), s.security.IDAsUUID(), nil)
	assert.Nil(err)
	assert.EqualValues(7886132, qty)

	// as-of excludes later entries and bypasses the cache
	asOf := "2020-08-31"
	qty, err = srv.Get(
		s.issuer.IDAsUUID(), s.shareholder.IDAsUUID(), s.security.IDAsUUID(), &asOf)
	assert.Nil(err)
	assert.EqualValues(7906132, qty)
}

func (s *PositionTestSuite) TestRecomputeHealsDrift() {
	assert := assert.New(s.T())

	srv := Service().WithTx(db.DB())

	if _, err := srv.Recompute(
		s.issuer.IDAsUUID(), s.shareholder.IDAsUUID(), s.security.IDAsUUID()); err != nil {
		assert.FailNow(err.Error())
	}

	// corrupt the cache row behind the append path's back
	assert.Nil(db.DB().Model(&models.Position{}).
		Where("issuer_id = ? AND shareholder_id = ? AND security_id = ?",
			s.issuer.ID, s.shareholder.ID, s.security.ID).
		Update("qty", int64(12345)).Error)

	total, err := srv.Recompute(
		s.issuer.IDAsUUID(), s.shareholder.IDAsUUID(), s.security.IDAsUUID())
	assert.Nil(err)

	pos := &models.Position{}
	assert.Nil(db.DB().Where(
		"issuer_id = ? AND shareholder_id = ? AND security_id = ?",
		s.issuer.ID, s.shareholder.ID, s.security.ID).First(pos).Error)
	assert.Equal(total, pos.Qty)
}

func (s *PositionTestSuite) TestIterate() {
	assert := assert.New(s.T())

	issuer := &models.Issuer{Name: "Iterated Inc", Status: enum.IssuerActive}
	assert.Nil(db.DB().Create(issuer).Error)

	security := &models.Security{
		IssuerID: issuer.ID,
		CUSIP:    "99999X104",
		Class:    enum.ClassCommon,
	}
	assert.Nil(db.DB().Create(security).Error)

	n := 7
	for i := 0; i < n; i++ {
		holder := &models.Shareholder{
			IssuerID:      issuer.ID,
			AccountNumber: fmt.Sprintf("IT-%04d", i),
		}
		assert.Nil(db.DB().Create(holder).Error)
		assert.Nil(db.DB().Create(&models.Position{
			IssuerID:      issuer.ID,
			ShareholderID: holder.ID,
			SecurityID:    security.ID,
			Qty:           int64(i - 2),
		}).Error)
	}

	srv := Service().WithTx(db.DB())

	// batch smaller than the key count forces multiple fetches
	it := srv.Iterate(issuer.IDAsUUID(), 3)

	seen := []Balance{}
	var lastKey string
	for {
		bal, err := it.Next()
		assert.Nil(err)
		if bal == nil {
			break
		}
		key := bal.ShareholderID + "/" + bal.SecurityID
		assert.True(key > lastKey)
		lastKey = key
		assert.Equal(Displayed(bal.Qty), bal.DisplayedQty)
		seen = append(seen, *bal)
	}
	assert.Len(seen, n)

	// resuming after the third key yields exactly the remainder
	it = srv.Iterate(issuer.IDAsUUID(), 3)
	it.Seek(seen[2].ShareholderID, seen[2].SecurityID)

	rest := 0
	for {
		bal, err := it.Next()
		assert.Nil(err)
		if bal == nil {
			break
		}
		rest++
	}
	assert.Equal(n-3, rest)
}

func TestFold(t *testing.T) {
	txns := []models.Transaction{
		{Qty: 100, Status: enum.TransactionActive},
		{Qty: -30, Status: enum.TransactionActive},
		{Qty: 500, Status: enum.TransactionVoid},
		{Qty: -80, Status: enum.TransactionActive},
	}
	assert.EqualValues(t, -10, Fold(txns))
	assert.EqualValues(t, 0, Fold(nil))
}

func TestDisplayed(t *testing.T) {
	assert.EqualValues(t, 0, Displayed(-20000))
	assert.EqualValues(t, 0, Displayed(0))
	assert.EqualValues(t, 7886132, Displayed(7886132))
}
