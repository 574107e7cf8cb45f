package reconciliation

import (
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/rest/api"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
)

type runRequest struct {
	SecurityID    *uuid.UUID `json:"security_id"`
	ExpectedTotal *int64     `json:"expected_total"`
}

func Run(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	req := runRequest{}

	if ctx.GetContentLength() > 0 {
		if err := ctx.Read(&req); err != nil {
			ctx.RespondError(grerrors.RequestBodyLoadFailure.WithError(err))
			return
		}
	}

	dryRun, _ := ctx.URLParamBool("dry_run")

	// corrections rewrite ledger rows, so the applying pass runs at
	// repeatable read
	var tx *gorm.DB
	if dryRun {
		tx = ctx.Tx()
	} else {
		tx = ctx.RepeatableTx()
	}

	srv := ctx.Services().Reconciliation().WithTx(tx)

	report, err := srv.Run(issuerID, req.SecurityID, dryRun, req.ExpectedTotal, ctx.Session().ID)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.Respond(report)
}
