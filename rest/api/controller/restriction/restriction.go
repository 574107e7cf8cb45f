package restriction

import (
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/rest/api"
	"github.com/gofrs/uuid"
	"github.com/kataras/iris"
)

type setRequest struct {
	ShareholderID uuid.UUID `json:"shareholder_id"`
	SecurityID    uuid.UUID `json:"security_id"`
	Qty           int64     `json:"qty"`
}

func Set(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	req := setRequest{}

	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	srv := ctx.Services().Restriction().WithTx(ctx.Tx())

	if r, err := srv.Set(issuerID, req.ShareholderID, req.SecurityID, req.Qty); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.RespondWithStatus(r, iris.StatusCreated)
	}
}

func List(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	srv := ctx.Services().Restriction().WithTx(ctx.Tx())

	if list, err := srv.List(issuerID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(list)
	}
}
