package api

import (
	"bytes"
	"encoding/json"
	"sync/atomic"

	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/log"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/capstack/goregistrar/service/registry"
	"github.com/capstack/goregistrar/utils"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/kataras/iris"
	irisCtx "github.com/kataras/iris/context"
	"github.com/vmihailenco/msgpack"
)

// MIME types
const (
	charsetUTF8 = "charset=utf-8"
)
const (
	MIMEApplicationJSON            = "application/json"
	MIMEApplicationJSONCharsetUTF8 = MIMEApplicationJSON + "; " + charsetUTF8
	MIMEApplicationMsgpack         = "application/msgpack"
	MIMETextPlain                  = "text/plain"
)

// Session is the authenticated principal, as supplied by the external
// identity provider. The registry trusts the role claim and enforces
// per-operation authorization on top of it.
type Session struct {
	ID   uuid.UUID
	Role enum.Role
}

type Context interface {
	iris.Context
	Authorize(id uuid.UUID, role enum.Role)
	Session() *Session
	Services() registry.Registry
	Commit() error
	Rollback()
	Tx() *gorm.DB
	RepeatableTx() *gorm.DB
	Respond(interface{})
	RespondWithStatus(interface{}, int)
	RespondError(error)
	Read(interface{}) error
}

type context struct {
	iris.Context
	session  *Session
	services registry.Registry
	tx       *gorm.DB
	txClosed atomic.Value
}

func (ctx *context) Authorize(id uuid.UUID, role enum.Role) {
	ctx.session = &Session{
		ID:   id,
		Role: role,
	}
}

func (ctx *context) Services() registry.Registry {
	return ctx.services
}

func (ctx *context) Session() *Session {
	return ctx.session
}

func (ctx *context) Commit() error {
	if !ctx.TxClosed() && ctx.tx != nil {
		ctx.txClosed.Store(true)
		log.Debug("api tx committed", "path", ctx.RequestPath(false))
		err := ctx.tx.Commit().Error
		ctx.tx = nil
		return err
	}
	return nil
}

func (ctx *context) Rollback() {
	if !ctx.TxClosed() && ctx.tx != nil {
		ctx.txClosed.Store(true)
		log.Debug("api tx rolled back", "path", ctx.RequestPath(false))
		if !db.IsConnectionError(ctx.tx.Error) {
			ctx.tx.Rollback()
		}
		ctx.tx = nil
	}
}

func (ctx *context) TxClosed() bool {
	if v := ctx.txClosed.Load(); v != nil && v.(bool) {
		return true
	}
	return false
}

func (ctx *context) Tx() *gorm.DB {
	if ctx.tx == nil || ctx.TxClosed() {
		log.Debug("api tx opened", "path", ctx.RequestPath(false))
		ctx.tx = db.Begin()

		if ctx.tx.Error != nil && db.IsConnectionError(ctx.tx.Error) {
			// idle connection killed in between - reconnect and retry
			// once; if that fails too, don't hold up the show
			if err := db.Reconnect(); err != nil {
				log.Panic("unable to connect to database", "error", err)
			}

			if ctx.tx = db.Begin(); ctx.tx.Error != nil {
				log.Panic("unable to begin database transaction", "error", ctx.tx.Error)
			}
		} else if ctx.tx.Error != nil {
			err := ctx.tx.Error
			ctx.tx = nil
			log.Panic("unrecoverable BEGIN failure", "error", err)
		}
		ctx.txClosed.Store(false)
	}

	return ctx.tx
}

func (ctx *context) RepeatableTx() *gorm.DB {
	return ctx.Tx().Exec("SET TRANSACTION ISOLATION LEVEL REPEATABLE READ")
}

func (ctx *context) Respond(body interface{}) {
	ctx.RespondWithStatus(body, iris.StatusOK)
}

func (ctx *context) RespondWithStatus(body interface{}, statusCode int) {
	if err := ctx.Commit(); err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.StatusCode(statusCode)

	if body != nil {
		switch b := body.(type) {
		case []byte:
			ctx.ContentType(MIMEApplicationJSON)
			ctx.Write(b)
		default:
			ctx.FormatResponse(body)
		}
	}
}

var masks = []string{
	"password",
	"token",
}

func (ctx *context) RespondError(err error) {
	ctx.Rollback()

	if grerr, ok := err.(grerrors.IException); ok {
		ctx.StatusCode(grerr.ExceptionStatusCode())
		body := grerr.ExceptionBody()
		// raw internal detail stays off the wire in production
		if !utils.Prod() {
			if grerr.RawException() != nil {
				body["debug"] = grerr.RawException().Error()
			}
		}
		ctx.FormatResponse(body)
	} else {
		ctx.StatusCode(grerrors.InternalServerError.ExceptionStatusCode())
		ctx.FormatResponse(grerrors.InternalServerError.ExceptionBody())
	}

	// track only 5xx errors in detail for further investigation
	if ctx.GetStatusCode() < 500 {
		return
	}

	var reqBody string
	parsing := map[string]interface{}{}
	if err := ctx.Read(&parsing); err == nil {
		for i := range masks {
			if _, ok := parsing[masks[i]]; ok {
				parsing[masks[i]] = "xxx"
			}
		}
		reqBin, _ := json.Marshal(parsing)
		reqBody = string(reqBin)
	}

	log.Error(
		"http exception",
		"method", ctx.Request().Method,
		"url", ctx.Request().URL.String(),
		"error", grerrors.Format(err),
		"body", reqBody,
	)
}

func (ctx *context) Read(v interface{}) error {
	contentType := ctx.Request().Header.Get("Content-Type")
	var err error

	if v != nil {
		switch contentType {
		case MIMEApplicationMsgpack:
			err = ctx.UnmarshalBody(v, irisCtx.UnmarshalerFunc(func(data []byte, outPtr interface{}) error {
				dec := msgpack.NewDecoder(bytes.NewReader(data))
				// Using json tags on structs
				dec.UseJSONTag(true)
				return dec.Decode(&outPtr)
			}))

		default:
			err = ctx.ReadJSON(v)
		}
	}

	return err
}

// FormatResponse will format a reponse based on request Content-Type header
func (ctx *context) FormatResponse(body interface{}) {
	contentType := ctx.Request().Header.Get("Content-Type")
	ctx.ContentType(contentType)

	if body != nil {
		switch contentType {
		case MIMEApplicationMsgpack:
			var b bytes.Buffer
			enc := msgpack.NewEncoder(&b)
			// Using json tags on structs
			enc.UseJSONTag(true)
			err := enc.Encode(body)
			if err != nil {
				log.Panic("Failed to marshal response body (msgpack)", "error", err)
			}

			_, writeErr := ctx.Write(b.Bytes())
			if writeErr != nil {
				log.Panic("Failed to write response body (msgpack)", "error", writeErr)
			}
		case MIMEApplicationJSON, MIMEApplicationJSONCharsetUTF8:
			ctx.JSON(body)
		default:
			ctx.ContentType(MIMEApplicationJSON)
			ctx.JSON(body)
		}
	}
}
