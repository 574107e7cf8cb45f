package restriction

import (
	"testing"

	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/dbtest"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/models"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type RestrictionTestSuite struct {
	dbtest.Suite
	issuer      *models.Issuer
	security    *models.Security
	shareholder *models.Shareholder
}

func TestRestrictionTestSuite(t *testing.T) {
	suite.Run(t, new(RestrictionTestSuite))
}

func (s *RestrictionTestSuite) SetupSuite() {
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

	// current position of 1000 shares
	if err := db.DB().Create(&models.Position{
		IssuerID:      s.issuer.ID,
		ShareholderID: s.shareholder.ID,
		SecurityID:    s.security.ID,
		Qty:           1000,
	}).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}
}

func (s *RestrictionTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *RestrictionTestSuite) setPosition(qty int64) {
	if err := db.DB().Model(&models.Position{}).
		Where("issuer_id = ? AND shareholder_id = ? AND security_id = ?",
			s.issuer.ID, s.shareholder.ID, s.security.ID).
		Update("qty", qty).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}
}

func (s *RestrictionTestSuite) TestSet() {
	assert := assert.New(s.T())

	srv := Service().WithTx(db.DB())

	// a hold over the full position is allowed; one share more is not
	_, err := srv.Set(s.issuer.IDAsUUID(),
		s.shareholder.IDAsUUID(), s.security.IDAsUUID(), 1001)
	assert.NotNil(err)

	r, err := srv.Set(s.issuer.IDAsUUID(),
		s.shareholder.IDAsUUID(), s.security.IDAsUUID(), 1000)
	assert.Nil(err)
	assert.EqualValues(1000, r.Qty)
	assert.False(r.Flagged)

	// updating the hold keeps a single row per key
	r2, err := srv.Set(s.issuer.IDAsUUID(),
		s.shareholder.IDAsUUID(), s.security.IDAsUUID(), 600)
	assert.Nil(err)
	assert.Equal(r.ID, r2.ID)

	_, err = srv.Set(s.issuer.IDAsUUID(),
		s.shareholder.IDAsUUID(), s.security.IDAsUUID(), -1)
	assert.NotNil(err)

	list, err := srv.List(s.issuer.IDAsUUID())
	assert.Nil(err)
	assert.Len(list, 1)
	assert.EqualValues(600, list[0].Restriction.Qty)
	assert.EqualValues(1000, list[0].PositionQty)
}

func (s *RestrictionTestSuite) TestSetGatesOnIssuerStatus() {
	assert := assert.New(s.T())

	suspended := &models.Issuer{
		Name:   "Halted Holdings",
		Status: enum.IssuerSuspended,
	}
	assert.Nil(db.DB().Create(suspended).Error)

	tx := db.Begin()
	_, err := Service().WithTx(tx).Set(suspended.IDAsUUID(),
		s.shareholder.IDAsUUID(), s.security.IDAsUUID(), 1)
	tx.Rollback()

	assert.NotNil(err)
	grerr, ok := err.(grerrors.IException)
	assert.True(ok)
	assert.Equal(403, grerr.ExceptionStatusCode())
}

func (s *RestrictionTestSuite) TestUndercutFlagging() {
	assert := assert.New(s.T())

	srv := Service().WithTx(db.DB())

	if _, err := srv.Set(s.issuer.IDAsUUID(),
		s.shareholder.IDAsUUID(), s.security.IDAsUUID(), 600); err != nil {
		assert.FailNow(err.Error())
	}

	// position falls but stays at or above the hold: no flag
	s.setPosition(600)
	assert.Nil(srv.FlagUndercut(s.issuer.IDAsUUID(),
		s.shareholder.IDAsUUID(), s.security.IDAsUUID()))

	restriction := &models.Restriction{}
	assert.Nil(db.DB().Where(
		"shareholder_id = ? AND security_id = ?",
		s.shareholder.ID, s.security.ID).First(restriction).Error)
	assert.False(restriction.Flagged)

	// position undercuts the hold: flagged, quantity untouched
	s.setPosition(599)
	assert.Nil(srv.FlagUndercut(s.issuer.IDAsUUID(),
		s.shareholder.IDAsUUID(), s.security.IDAsUUID()))

	assert.Nil(db.DB().Where(
		"shareholder_id = ? AND security_id = ?",
		s.shareholder.ID, s.security.ID).First(restriction).Error)
	assert.True(restriction.Flagged)
	assert.EqualValues(600, restriction.Qty)

	// re-setting the hold to a valid quantity clears the flag
	r, err := srv.Set(s.issuer.IDAsUUID(),
		s.shareholder.IDAsUUID(), s.security.IDAsUUID(), 599)
	assert.Nil(err)
	assert.False(r.Flagged)
}
