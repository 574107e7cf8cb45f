package security

import (
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/rest/api"
	"github.com/capstack/goregistrar/service/security"
	"github.com/gofrs/uuid"
	"github.com/kataras/iris"
)

func Create(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	req := security.CreateRequest{}

	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	srv := ctx.Services().Security().WithTx(ctx.Tx())

	if sec, err := srv.Create(issuerID, req); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.RespondWithStatus(sec, iris.StatusCreated)
	}
}

func Get(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	securityID, err := uuid.FromString(ctx.Params().Get("security_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("security_id is not a valid uuid"))
		return
	}

	srv := ctx.Services().Security().WithTx(ctx.Tx())

	if sec, err := srv.Get(issuerID, securityID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(sec)
	}
}

func List(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	srv := ctx.Services().Security().WithTx(ctx.Tx())

	if secs, err := srv.List(issuerID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(secs)
	}
}
