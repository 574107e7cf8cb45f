package shareholder

import (
	"testing"

	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/dbtest"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/models"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ShareholderTestSuite struct {
	dbtest.Suite
	issuer *models.Issuer
}

func TestShareholderTestSuite(t *testing.T) {
	suite.Run(t, new(ShareholderTestSuite))
}

func (s *ShareholderTestSuite) SetupSuite() {
	s.SetupDB()

	s.issuer = &models.Issuer{
		Name:   "Capstack Acquisition Corp",
		Status: enum.IssuerActive,
	}
	if err := db.DB().Create(s.issuer).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}
}

func (s *ShareholderTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *ShareholderTestSuite) TestCreate() {
	assert := assert.New(s.T())

	srv := Service().WithTx(db.DB())

	identity := uuid.Must(uuid.NewV4()).String()

	holder, err := srv.Create(s.issuer.IDAsUUID(), CreateRequest{
		AccountNumber:      "ACCT-0001",
		Name:               "Cede & Co",
		ExternalIdentityID: &identity,
	})
	assert.Nil(err)
	assert.Equal("ACCT-0001", holder.AccountNumber)

	got, err := srv.GetByAccountNumber(s.issuer.IDAsUUID(), "ACCT-0001")
	assert.Nil(err)
	assert.Equal(holder.ID, got.ID)

	_, err = srv.GetByAccountNumber(s.issuer.IDAsUUID(), "ACCT-9999")
	assert.True(grerrors.IsNotFound(err))

	bogus := "not-a-uuid"
	_, err = srv.Create(s.issuer.IDAsUUID(), CreateRequest{
		AccountNumber:      "ACCT-0002",
		Name:               "Bad Identity",
		ExternalIdentityID: &bogus,
	})
	assert.NotNil(err)

	_, err = srv.Create(s.issuer.IDAsUUID(), CreateRequest{Name: "No Account"})
	assert.NotNil(err)
}

func (s *ShareholderTestSuite) TestGetScopedToIssuer() {
	assert := assert.New(s.T())

	other := &models.Issuer{Name: "Other Corp", Status: enum.IssuerActive}
	assert.Nil(db.DB().Create(other).Error)

	srv := Service().WithTx(db.DB())

	holder, err := srv.Create(other.IDAsUUID(), CreateRequest{
		AccountNumber: "ACCT-0001",
		Name:          "Other Holder",
	})
	assert.Nil(err)

	// the same holder is invisible through a different issuer
	_, err = srv.Get(s.issuer.IDAsUUID(), holder.IDAsUUID())
	assert.True(grerrors.IsNotFound(err))

	got, err := srv.Get(other.IDAsUUID(), holder.IDAsUUID())
	assert.Nil(err)
	assert.Equal(holder.ID, got.ID)
}
