package corporateaction

import (
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/capstack/goregistrar/rest/api"
	"github.com/gofrs/uuid"
	"github.com/kataras/iris"
	"github.com/shopspring/decimal"
)

type applyRequest struct {
	Category    enum.CorporateActionCategory `json:"category"`
	ClassARatio decimal.Decimal              `json:"class_a_ratio"`
	RightsRatio decimal.Decimal              `json:"rights_ratio"`
}

func Apply(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	req := applyRequest{}

	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	srv := ctx.Services().CorporateAction().WithTx(ctx.Tx())

	if action, err := srv.Apply(issuerID, req.Category, req.ClassARatio, req.RightsRatio); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.RespondWithStatus(action, iris.StatusCreated)
	}
}

func List(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	srv := ctx.Services().CorporateAction().WithTx(ctx.Tx())

	if actions, err := srv.List(issuerID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(actions)
	}
}
