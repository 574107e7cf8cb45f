package main

import (
	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/log"
	"github.com/capstack/goregistrar/migration"
	"github.com/capstack/goregistrar/utils/initializer"
)

func init() {
	initializer.Initialize()
}

func main() {
	if err := migration.Migration(db.DB()).Migrate(); err != nil {
		log.Fatal("database error", "action", "migration", "error", err)
	}
	db.DB().Close()
	log.Info("migration successful")
}
