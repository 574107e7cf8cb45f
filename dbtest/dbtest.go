package dbtest

import (
	"fmt"
	"os"

	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/env"
	"github.com/capstack/goregistrar/migration"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/suite"
)

// Suite creates a throwaway Postgres database per test run and tears
// it down afterwards. Embed it and call SetupDB/TeardownDB from the
// testify suite hooks.
type Suite struct {
	suite.Suite
	DatabaseID *uuid.UUID
}

func (s *Suite) SetDatabaseID(id uuid.UUID) {
	if s.DatabaseID != nil {
		s.FailNowf("testing database ID already set", "database_id: %s", s.DatabaseID.String())
	}

	s.DatabaseID = &id
}

func (s *Suite) SetupDB() {
	s.SetDatabaseID(setup())
}

func (s *Suite) TeardownDB() {
	teardown(*s.DatabaseID)
}

func teardown(id uuid.UUID) {
	db.DB().Close()
	if err := dropTestDB(id); err != nil {
		panic(err)
	}
}

func setup() (id uuid.UUID) {
	env.RegisterDefault("PGHOST", "127.0.0.1")
	env.RegisterDefault("PGUSER", "postgres")
	env.RegisterDefault("PGPASSWORD", "registrar")
	env.RegisterDefault("LOG_DB", "true")

	id = uuid.Must(uuid.NewV4())
	database := fmt.Sprintf("grtest_%s", id.String())

	if err := createTestDB(id); err != nil {
		panic(err)
	}

	os.Setenv("PGDATABASE", database)

	if err := migration.Migration(db.DB()).Migrate(); err != nil {
		panic(err)
	}

	return
}

func createTestDB(id uuid.UUID) error {
	pgdb, err := openPostgres()
	if err != nil {
		return err
	}

	defer func() {
		pgdb.Close()
	}()

	pgdb.Exec(fmt.Sprintf(`DROP DATABASE IF EXISTS "grtest_%s"`, id.String()))

	return pgdb.Exec(fmt.Sprintf(`CREATE DATABASE "grtest_%s"`, id.String())).Error
}

func dropTestDB(id uuid.UUID) error {
	pgdb, err := openPostgres()
	if err != nil {
		return err
	}

	defer func() {
		pgdb.Close()
	}()

	return pgdb.Exec(fmt.Sprintf(`DROP DATABASE IF EXISTS "grtest_%s"`, id.String())).Error
}

func openPostgres() (*gorm.DB, error) {
	params := fmt.Sprintf(
		"host=%v user=%v password=%v dbname=postgres sslmode=disable",
		env.GetVar("PGHOST"),
		env.GetVar("PGUSER"),
		env.GetVar("PGPASSWORD"),
	)

	return gorm.Open("postgres", params)
}
