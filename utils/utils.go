package utils

import (
	"github.com/capstack/goregistrar/env"
)

// Dev returns true if the registrar is in development mode
func Dev() bool {
	return env.GetVar("REGISTRAR_MODE") == "DEV"
}

// Stg returns true if the registrar is in staging mode
func Stg() bool {
	return env.GetVar("REGISTRAR_MODE") == "STG"
}

// Prod returns true if the registrar is in production mode
func Prod() bool {
	return env.GetVar("REGISTRAR_MODE") == "PROD"
}

var (
	Sha1hash string
	Version  string = "dev"
)
