package shareholder

import (
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/rest/api"
	"github.com/capstack/goregistrar/service/shareholder"
	"github.com/gofrs/uuid"
	"github.com/kataras/iris"
)

func Create(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	req := shareholder.CreateRequest{}

	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	srv := ctx.Services().Shareholder().WithTx(ctx.Tx())

	if sh, err := srv.Create(issuerID, req); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.RespondWithStatus(sh, iris.StatusCreated)
	}
}

func Get(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	shareholderID, err := uuid.FromString(ctx.Params().Get("shareholder_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("shareholder_id is not a valid uuid"))
		return
	}

	srv := ctx.Services().Shareholder().WithTx(ctx.Tx())

	if sh, err := srv.Get(issuerID, shareholderID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(sh)
	}
}
