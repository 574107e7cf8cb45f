package position

import (
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/capstack/goregistrar/rest/api"
	"github.com/capstack/goregistrar/service/position"
	"github.com/gofrs/uuid"
)

// balanceResponse is the wire shape of one position. Qty is the
// displayed balance, floored at zero; the signed ledger figure is an
// audit detail and only accompanies admin sessions.
type balanceResponse struct {
	ShareholderID string `json:"shareholder_id"`
	SecurityID    string `json:"security_id"`
	Qty           int64  `json:"qty"`
	SignedQty     *int64 `json:"signed_qty,omitempty"`
}

func newBalanceResponse(role enum.Role, shareholderID, securityID string, qty int64) balanceResponse {
	resp := balanceResponse{
		ShareholderID: shareholderID,
		SecurityID:    securityID,
		Qty:           position.Displayed(qty),
	}

	if role.AdminOrAbove() {
		signed := qty
		resp.SignedQty = &signed
	}

	return resp
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

	securityID, err := uuid.FromString(ctx.Params().Get("security_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("security_id is not a valid uuid"))
		return
	}

	var asOf *string
	if v := ctx.URLParam("as_of"); v != "" {
		asOf = &v
	}

	srv := ctx.Services().Position().WithTx(ctx.Tx())

	qty, err := srv.Get(issuerID, shareholderID, securityID, asOf)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.Respond(struct {
		IssuerID uuid.UUID `json:"issuer_id"`
		balanceResponse
	}{issuerID, newBalanceResponse(ctx.Session().Role, shareholderID.String(), securityID.String(), qty)})
}

// List walks the issuer's position cache with keyset pagination. Callers
// resume from the last returned key via the after_shareholder_id and
// after_security_id query params.
func List(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	batchSize := ctx.URLParamIntDefault("page_size", 500)
	if batchSize < 1 || batchSize > 10000 {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("page_size out of range"))
		return
	}

	srv := ctx.Services().Position().WithTx(ctx.Tx())

	it := srv.Iterate(issuerID, batchSize)
	if after := ctx.URLParam("after_shareholder_id"); after != "" {
		it.Seek(after, ctx.URLParam("after_security_id"))
	}

	balances := make([]balanceResponse, 0, batchSize)

	for len(balances) < batchSize {
		bal, err := it.Next()
		if err != nil {
			ctx.RespondError(err)
			return
		}
		if bal == nil {
			break
		}
		balances = append(balances,
			newBalanceResponse(ctx.Session().Role, bal.ShareholderID, bal.SecurityID, bal.Qty))
	}

	ctx.Respond(balances)
}
