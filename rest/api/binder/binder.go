package binder

import (
	"github.com/capstack/goregistrar/rest/api"
	"github.com/capstack/goregistrar/rest/api/controller/corporateaction"
	"github.com/capstack/goregistrar/rest/api/controller/issuer"
	"github.com/capstack/goregistrar/rest/api/controller/position"
	"github.com/capstack/goregistrar/rest/api/controller/reconciliation"
	"github.com/capstack/goregistrar/rest/api/controller/restriction"
	"github.com/capstack/goregistrar/rest/api/controller/security"
	"github.com/capstack/goregistrar/rest/api/controller/shareholder"
	"github.com/capstack/goregistrar/rest/api/controller/transaction"
	"github.com/capstack/goregistrar/rest/api/middleware/httplogger"
	"github.com/capstack/goregistrar/utils"
	"github.com/iris-contrib/middleware/cors"
	"github.com/kataras/iris"
)

// Registry binds all of the share registry API handlers
// to their respective endpoints
func Registry(api *api.API, r iris.Party) {
	r.Use(httplogger.New())

	// CORS
	{
		getOrigins := func() []string {
			switch {
			case utils.Prod():
				return []string{"https://app.capstack.io"}
			default:
				// staging/dev mode
				return []string{"*"}
			}
		}

		crs := cors.New(cors.Options{
			AllowedOrigins: getOrigins(),
			AllowedMethods: []string{
				iris.MethodGet,
				iris.MethodPost,
				iris.MethodPatch,
				iris.MethodDelete,
				iris.MethodOptions,
			},
			AllowedHeaders:     []string{"*"},
			AllowCredentials:   true,
			OptionsPassthrough: false,
		})

		r.Use(crs)
		r.AllowMethods(iris.MethodOptions) // <- important for the preflight.
	}

	// issuers
	r.Post("/issuers", api.AuthenticateAdmin(issuer.Create))
	r.Get("/issuers/{issuer_id}", api.Authenticate(issuer.Get))
	r.Patch("/issuers/{issuer_id}/status", api.AuthenticateAdmin(issuer.SetStatus))

	// securities
	r.Post("/issuers/{issuer_id}/securities", api.AuthenticateAdmin(security.Create))
	r.Get("/issuers/{issuer_id}/securities", api.Authenticate(security.List))
	r.Get("/issuers/{issuer_id}/securities/{security_id}", api.Authenticate(security.Get))

	// shareholders
	r.Post("/issuers/{issuer_id}/shareholders", api.AuthenticateWriter(shareholder.Create))
	r.Get("/issuers/{issuer_id}/shareholders/{shareholder_id}", api.Authenticate(shareholder.Get))

	// ledger
	r.Post("/issuers/{issuer_id}/transactions", api.AuthenticateWriter(transaction.Create))
	r.Post("/issuers/{issuer_id}/transactions/bulk", api.AuthenticateWriter(transaction.CreateBulk))
	r.Delete("/issuers/{issuer_id}/transactions/{transaction_id}", api.AuthenticateAdmin(transaction.Void))

	// positions
	r.Get("/issuers/{issuer_id}/shareholders/{shareholder_id}/positions/{security_id}", api.Authenticate(position.Get))
	r.Get("/issuers/{issuer_id}/positions", api.Authenticate(position.List))

	// corporate actions
	r.Post("/issuers/{issuer_id}/corporate_actions", api.AuthenticateAdmin(corporateaction.Apply))
	r.Get("/issuers/{issuer_id}/corporate_actions", api.Authenticate(corporateaction.List))

	// reconciliation
	r.Post("/issuers/{issuer_id}/reconciliation", api.AuthenticateAdmin(reconciliation.Run))

	// restrictions
	r.Post("/issuers/{issuer_id}/restrictions", api.AuthenticateAdmin(restriction.Set))
	r.Get("/issuers/{issuer_id}/restrictions", api.Authenticate(restriction.List))
}
