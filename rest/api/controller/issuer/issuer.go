package issuer

import (
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/capstack/goregistrar/rest/api"
	"github.com/capstack/goregistrar/service/issuer"
	"github.com/gofrs/uuid"
	"github.com/kataras/iris"
)

func Create(ctx api.Context) {
	req := issuer.CreateRequest{}

	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	srv := ctx.Services().Issuer().WithTx(ctx.Tx())

	if iss, err := srv.Create(req); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.RespondWithStatus(iss, iris.StatusCreated)
	}
}

func Get(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	srv := ctx.Services().Issuer().WithTx(ctx.Tx())

	if iss, err := srv.Get(issuerID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(iss)
	}
}

func SetStatus(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	body := struct {
		Status enum.IssuerStatus `json:"status"`
	}{}

	if err := ctx.Read(&body); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	srv := ctx.Services().Issuer().WithTx(ctx.Tx())

	if iss, err := srv.SetStatus(issuerID, body.Status); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(iss)
	}
}
