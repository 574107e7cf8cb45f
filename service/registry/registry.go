package registry

import (
	"github.com/capstack/goregistrar/service/corporateaction"
	"github.com/capstack/goregistrar/service/issuer"
	"github.com/capstack/goregistrar/service/ledger"
	"github.com/capstack/goregistrar/service/position"
	"github.com/capstack/goregistrar/service/reconciliation"
	"github.com/capstack/goregistrar/service/restriction"
	"github.com/capstack/goregistrar/service/security"
	"github.com/capstack/goregistrar/service/shareholder"
)

type Registry interface {
	Issuer() issuer.IssuerService
	Security() security.SecurityService
	Shareholder() shareholder.ShareholderService
	Ledger() ledger.LedgerService
	Position() position.PositionService
	CorporateAction() corporateaction.CorporateActionService
	Reconciliation() reconciliation.ReconciliationService
	Restriction() restriction.RestrictionService
}

type services struct{}

// Services returns the production service registry.
func Services() Registry {
	return &services{}
}

func (s *services) Issuer() issuer.IssuerService {
	return issuer.Service()
}

func (s *services) Security() security.SecurityService {
	return security.Service()
}

func (s *services) Shareholder() shareholder.ShareholderService {
	return shareholder.Service()
}

func (s *services) Ledger() ledger.LedgerService {
	return ledger.Service()
}

func (s *services) Position() position.PositionService {
	return position.Service()
}

func (s *services) CorporateAction() corporateaction.CorporateActionService {
	return corporateaction.Service()
}

func (s *services) Reconciliation() reconciliation.ReconciliationService {
	return reconciliation.Service()
}

func (s *services) Restriction() restriction.RestrictionService {
	return restriction.Service()
}
