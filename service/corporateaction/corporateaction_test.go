package corporateaction

import (
	"testing"

	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/dbtest"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/models"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type CorporateActionTestSuite struct {
	dbtest.Suite
	issuer *models.Issuer
}

func TestCorporateActionTestSuite(t *testing.T) {
	suite.Run(t, new(CorporateActionTestSuite))
}

func (s *CorporateActionTestSuite) SetupSuite() {
	s.SetupDB()

	s.issuer = &models.Issuer{
		Name:   "Capstack Acquisition Corp",
		Status: enum.IssuerActive,
	}
	if err := db.DB().Create(s.issuer).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}
}

func (s *CorporateActionTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *CorporateActionTestSuite) TestApply() {
	assert := assert.New(s.T())

	srv := Service().WithTx(db.DB())

	one := decimal.RequireFromString("1.0")

	action, err := srv.Apply(s.issuer.IDAsUUID(), enum.Separation, one, one)
	assert.Nil(err)
	assert.True(action.ClassARatio.Equal(one))
	assert.True(action.RightsRatio.Equal(one))

	// re-submitting the same (issuer, category) updates in place
	half := decimal.RequireFromString("0.5")

	again, err := srv.Apply(s.issuer.IDAsUUID(), enum.Separation, one, half)
	assert.Nil(err)
	assert.Equal(action.ID, again.ID)

	actions, err := srv.List(s.issuer.IDAsUUID())
	assert.Nil(err)
	assert.Len(actions, 1)
	assert.True(actions[0].RightsRatio.Equal(half))
}

func (s *CorporateActionTestSuite) TestApplyGatesOnIssuerStatus() {
	assert := assert.New(s.T())

	suspended := &models.Issuer{
		Name:   "Halted Holdings",
		Status: enum.IssuerSuspended,
	}
	assert.Nil(db.DB().Create(suspended).Error)

	one := decimal.RequireFromString("1.0")

	tx := db.Begin()
	_, err := Service().WithTx(tx).Apply(suspended.IDAsUUID(), enum.Separation, one, one)
	tx.Rollback()

	assert.NotNil(err)
	grerr, ok := err.(grerrors.IException)
	assert.True(ok)
	assert.Equal(403, grerr.ExceptionStatusCode())
}

func (s *CorporateActionTestSuite) TestApplyRejectsBadRatios() {
	assert := assert.New(s.T())

	srv := Service().WithTx(db.DB())

	one := decimal.RequireFromString("1.0")

	// finer than one fractional digit is rejected, not rounded
	_, err := srv.Apply(s.issuer.IDAsUUID(), enum.ForwardSplit,
		decimal.RequireFromString("1.25"), one)
	assert.NotNil(err)

	_, err = srv.Apply(s.issuer.IDAsUUID(), enum.ForwardSplit,
		decimal.Zero, one)
	assert.NotNil(err)

	_, err = srv.Apply(s.issuer.IDAsUUID(),
		enum.CorporateActionCategory("reverse_split"), one, one)
	assert.NotNil(err)
}

func TestDerive(t *testing.T) {
	action := &models.CorporateAction{
		Category:    enum.Separation,
		ClassARatio: decimal.RequireFromString("1.0"),
		RightsRatio: decimal.RequireFromString("1.0"),
	}

	// separating 7,886,132 units at 1:1:1 yields matching share and
	// rights counts
	derived := Derive(action, 7886132)
	assert.EqualValues(t, 7886132, derived.UnitQty)
	assert.EqualValues(t, 7886132, derived.ClassAQty)
	assert.EqualValues(t, 7886132, derived.RightsQty)

	// fractional results truncate toward zero
	action.RightsRatio = decimal.RequireFromString("0.5")
	derived = Derive(action, 7)
	assert.EqualValues(t, 7, derived.ClassAQty)
	assert.EqualValues(t, 3, derived.RightsQty)
}
