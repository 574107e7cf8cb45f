package transaction

import (
	"strconv"

	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/rest/api"
	"github.com/capstack/goregistrar/service/ledger"
	"github.com/gofrs/uuid"
	"github.com/kataras/iris"
)

func Create(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	req := ledger.IngestRequest{}

	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	srv := ctx.Services().Ledger().WithTx(ctx.Tx())

	if txn, err := srv.Ingest(issuerID, req); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.RespondWithStatus(txn, iris.StatusCreated)
	}
}

// CreateBulk commits each entry independently, so the request context's
// transaction is not used here. Partial success is reported per entry.
func CreateBulk(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	reqs := []ledger.IngestRequest{}

	if err := ctx.Read(&reqs); err != nil {
		ctx.RespondError(grerrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	if len(reqs) == 0 {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("bulk request is empty"))
		return
	}

	results := ctx.Services().Ledger().BulkIngest(issuerID, reqs)

	ctx.Respond(results)
}

func Void(ctx api.Context) {
	issuerID, err := uuid.FromString(ctx.Params().Get("issuer_id"))
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("issuer_id is not a valid uuid"))
		return
	}

	transactionID, err := strconv.ParseUint(ctx.Params().Get("transaction_id"), 10, 64)
	if err != nil {
		ctx.RespondError(grerrors.InvalidRequestParam.WithMsg("transaction_id is not a valid integer"))
		return
	}

	srv := ctx.Services().Ledger().WithTx(ctx.Tx())

	if txn, err := srv.Void(issuerID, uint(transactionID), ctx.Session().ID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(txn)
	}
}
