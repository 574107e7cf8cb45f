package op

import (
	"fmt"

	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/models"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
)

// GetIssuerByID returns the issuer corresponding to the given ID. It is
// important to note that the query does a SELECT FOR <queryOption>, and
// as a result locks the issuer row until the transaction is committed,
// if FOR UPDATE is set. Ledger writes lock the row so the status gate
// and the append commit or fail together.
func GetIssuerByID(tx *gorm.DB, issuerID uuid.UUID, queryOption *string) (*models.Issuer, error) {
	issuer := &models.Issuer{}

	q := tx.Where("id = ?", issuerID.String())

	// only set the query option if it is supplied
	if queryOption != nil {
		q = q.Set("gorm:query_option", *queryOption)
	}

	q = q.First(issuer)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(fmt.Sprintf("issuer not found for %v", issuerID.String()))
	}

	if q.Error != nil {
		return nil, q.Error
	}

	return issuer, nil
}

// GetSecurityByID returns the security, scoped to the issuer.
func GetSecurityByID(tx *gorm.DB, issuerID, securityID uuid.UUID) (*models.Security, error) {
	security := &models.Security{}

	q := tx.Where(
		"id = ? AND issuer_id = ?",
		securityID.String(), issuerID.String()).First(security)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(fmt.Sprintf("security not found for %v", securityID.String()))
	}

	if q.Error != nil {
		return nil, q.Error
	}

	return security, nil
}

// GetShareholderByID returns the shareholder, scoped to the issuer.
func GetShareholderByID(tx *gorm.DB, issuerID, shareholderID uuid.UUID) (*models.Shareholder, error) {
	holder := &models.Shareholder{}

	q := tx.Where(
		"id = ? AND issuer_id = ?",
		shareholderID.String(), issuerID.String()).First(holder)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(fmt.Sprintf("shareholder not found for %v", shareholderID.String()))
	}

	if q.Error != nil {
		return nil, q.Error
	}

	return holder, nil
}
