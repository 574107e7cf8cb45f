package security

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

type SecurityTestSuite struct {
	dbtest.Suite
	issuer *models.Issuer
}

func TestSecurityTestSuite(t *testing.T) {
	suite.Run(t, new(SecurityTestSuite))
}

func (s *SecurityTestSuite) SetupSuite() {
	s.SetupDB()

	s.issuer = &models.Issuer{
		Name:   "Capstack Acquisition Corp",
		Status: enum.IssuerPending,
	}
	if err := db.DB().Create(s.issuer).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}
}

func (s *SecurityTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *SecurityTestSuite) TestCreate() {
	assert := assert.New(s.T())

	srv := Service().WithTx(db.DB())

	// pending issuers may be configured
	sec, err := srv.Create(s.issuer.IDAsUUID(), CreateRequest{
		CUSIP: "14067D102",
		Class: enum.ClassUnit,
		Name:  "Units",
	})
	assert.Nil(err)
	assert.Equal("14067D102", sec.CUSIP)

	got, err := srv.GetByCUSIP(s.issuer.IDAsUUID(), "14067D102")
	assert.Nil(err)
	assert.Equal(sec.ID, got.ID)

	_, err = srv.GetByCUSIP(s.issuer.IDAsUUID(), "000000000")
	assert.True(grerrors.IsNotFound(err))

	_, err = srv.Create(s.issuer.IDAsUUID(), CreateRequest{CUSIP: "14067D110"})
	assert.NotNil(err) // class is required

	list, err := srv.List(s.issuer.IDAsUUID())
	assert.Nil(err)
	assert.Len(list, 1)
}

func (s *SecurityTestSuite) TestCreateRejectedWhenSuspended() {
	assert := assert.New(s.T())

	suspended := &models.Issuer{
		Name:   "Halted Holdings",
		Status: enum.IssuerSuspended,
	}
	assert.Nil(db.DB().Create(suspended).Error)

	srv := Service().WithTx(db.DB())

	_, err := srv.Create(suspended.IDAsUUID(), CreateRequest{
		CUSIP: "14067D128",
		Class: enum.ClassCommon,
	})
	assert.NotNil(err)
	grerr, ok := err.(grerrors.IException)
	assert.True(ok)
	assert.Equal(403, grerr.ExceptionStatusCode())
}
