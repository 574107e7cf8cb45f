package initializer

import (
	"github.com/capstack/goregistrar/env"
)

// Initialize goregistrar's required environment variables
// to their default values.
func Initialize() {
	// pick up a local .env, if present
	env.Load()

	// Registrar
	env.RegisterDefault("REGISTRAR_MODE", "DEV")
	env.RegisterDefault("REGISTRAR_PORT", "5566")
	// dev mode only; production deployments must set a real secret
	env.RegisterDefault("REGISTRAR_SECRET", "")
	env.RegisterDefault("LOG_LEVEL", "INFO")

	// Postgres
	env.RegisterDefault("PGDATABASE", "goregistrar")
	env.RegisterDefault("PGHOST", "127.0.0.1")
	env.RegisterDefault("PGUSER", "postgres")
	env.RegisterDefault("PGPASSWORD", "registrar")
}
