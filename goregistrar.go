package main

import (
	stdContext "context"
	"flag"
	"strings"
	"time"

	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/env"
	"github.com/capstack/goregistrar/log"
	"github.com/capstack/goregistrar/migration"
	"github.com/capstack/goregistrar/rest"
	"github.com/capstack/goregistrar/service/registry"
	"github.com/capstack/goregistrar/utils/initializer"
	"github.com/capstack/goregistrar/utils/signalman"
)

func shutdown() error {
	timeout := time.Second
	ctx, cancel := stdContext.WithTimeout(stdContext.Background(), timeout)
	defer cancel()
	return rest.Shutdown(ctx)
}

func init() {
	// register env defaults
	initializer.Initialize()

	flag.Parse()

	signalman.RegisterFunc("rest_shutdown", shutdown)
}

func main() {
	if err := migration.Migration(db.DB()).Migrate(); err != nil {
		log.Fatal("database migration failed", "error", err)
	}

	log.Info("goregistrar is live", "mode", env.GetVar("REGISTRAR_MODE"))

	signalman.Start()

	if err := rest.Start(env.GetVar("REGISTRAR_PORT"), registry.Services()); err != nil {
		if !strings.Contains(err.Error(), "Server closed") {
			log.Fatal("rest server unexpectedly exited", "error", err)
		}
	}

	defer db.DB().Close()

	log.Info("waiting for graceful shutdown")
	signalman.Wait()
}
