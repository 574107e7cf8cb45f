package issuer

import (
	"testing"

	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/dbtest"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type IssuerTestSuite struct {
	dbtest.Suite
}

func TestIssuerTestSuite(t *testing.T) {
	suite.Run(t, new(IssuerTestSuite))
}

func (s *IssuerTestSuite) SetupSuite() {
	s.SetupDB()
}

func (s *IssuerTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *IssuerTestSuite) TestLifecycle() {
	assert := assert.New(s.T())

	srv := Service().WithTx(db.DB())

	iss, err := srv.Create(CreateRequest{Name: "Capstack Acquisition Corp"})
	assert.Nil(err)
	assert.Equal(enum.IssuerPending, iss.Status)
	assert.False(iss.AcceptsLedgerWrites())
	assert.True(iss.AcceptsMetadataWrites())

	iss, err = srv.SetStatus(iss.IDAsUUID(), enum.IssuerActive)
	assert.Nil(err)
	assert.Equal(enum.IssuerActive, iss.Status)
	assert.True(iss.AcceptsLedgerWrites())

	iss, err = srv.SetStatus(iss.IDAsUUID(), enum.IssuerSuspended)
	assert.Nil(err)
	assert.False(iss.AcceptsLedgerWrites())
	assert.False(iss.AcceptsMetadataWrites())

	// no-op transition succeeds
	iss, err = srv.SetStatus(iss.IDAsUUID(), enum.IssuerSuspended)
	assert.Nil(err)
	assert.Equal(enum.IssuerSuspended, iss.Status)

	_, err = srv.SetStatus(iss.IDAsUUID(), enum.IssuerStatus("deleted"))
	assert.NotNil(err)

	_, err = srv.Create(CreateRequest{})
	assert.NotNil(err)
}

func (s *IssuerTestSuite) TestGetNotFound() {
	assert := assert.New(s.T())

	srv := Service().WithTx(db.DB())

	_, err := srv.Get(uuid.Must(uuid.NewV4()))
	assert.NotNil(err)
	assert.True(grerrors.IsNotFound(err))
}
