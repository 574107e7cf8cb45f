package httplogger

import (
	"io/ioutil"
	"time"

	"github.com/buger/jsonparser"

	"github.com/capstack/goregistrar/env"
	"github.com/capstack/goregistrar/log"
	"github.com/kataras/iris"
	"github.com/kataras/iris/context"
)

type HTTPLogger struct{}

func New() iris.Handler {
	m := HTTPLogger{}
	return m.ServeHTTP
}

var masks = []string{
	"password",
	"tax_id",
}

func (h *HTTPLogger) ServeHTTP(ctx context.Context) {
	start := time.Now()
	ctx.Next()
	end := time.Now()

	var body []byte

	// mask the sensitive fields
	if body, _ = ioutil.ReadAll(ctx.Request().Body); len(body) > 0 {
		for _, mask := range masks {
			if _, _, _, err := jsonparser.Get(body, mask); err == nil {
				body, _ = jsonparser.Set(body, []byte(`"xxx"`), mask)
			}
		}
	}

	log.Debug("httplog",
		"deployment", env.GetVar("REGISTRAR_MODE"),
		"method", ctx.Method(),
		"path", ctx.Path(),
		"query", ctx.Request().URL.RawQuery,
		"status_code", ctx.GetStatusCode(),
		"elapsed", end.Sub(start).Seconds(),
		"ip", ctx.RemoteAddr(),
		"principal_id", ctx.Values().GetString("principal_id"),
		"body", string(body),
	)
}
