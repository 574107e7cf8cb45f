package db

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/capstack/goregistrar/env"
	"github.com/capstack/goregistrar/log"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/lib/pq"
)

var (
	db   *gorm.DB
	once sync.Once
)

const (
	ForShare  = "FOR SHARE"
	ForUpdate = "FOR UPDATE"
)

// DB is a singleton wrapper to the gorm database object.
func DB() *gorm.DB {
	var err error

	once.Do(func() {
		db, err = NewDB()
		if err != nil {
			log.Panic("database initialization failure", "error", err)
		}
	})

	return db
}

/*
Optionally pass in a map of options, such as:
	[PGHOST]localhost
	[PGUSER]postgres
	[PGDATABASE]testdb

These will override the settings made via environment variables
*/
func NewDB(optionsList ...map[string]string) (dbT *gorm.DB, err error) {
	sslmode := env.GetVar("PGSSLMODE")
	host := env.GetVar("PGHOST")
	user := env.GetVar("PGUSER")
	dbname := env.GetVar("PGDATABASE")
	password := env.GetVar("PGPASSWORD")
	logDBString := env.GetVar("LOG_DB")
	maxOpenConns := env.GetVar("DB_MAX_OPEN_CONNS")

	if len(optionsList) != 0 {
		options := optionsList[0]
		for key, val := range options {
			switch key {
			case "PGHOST":
				host = val
			case "PGUSER":
				user = val
			case "PGDATABASE":
				dbname = val
			case "PGPASSWORD":
				password = val
			case "SSLMODE":
				sslmode = val
			case "LOG_DB":
				logDBString = val
			case "DB_MAX_OPEN_CONNS":
				maxOpenConns = val
			}
		}
	}

	if sslmode == "" {
		sslmode = "disable"
	}

	params := fmt.Sprintf(
		"host=%v user=%v dbname=%v sslmode=%v password=%v",
		host, user, dbname, sslmode, password,
	)

	dbT, err = gorm.Open("postgres", params)
	if err != nil {
		return nil, err
	}

	// default = 20 (Go's default is 0 == unlimited)
	dbT.DB().SetMaxOpenConns(20)
	if maxOpenConns != "" {
		nMaxOpenConns, err := strconv.Atoi(maxOpenConns)
		if err != nil {
			log.Warn("parse error DB_MAX_OPEN_CONNS", "error", err)
		} else {
			dbT.DB().SetMaxOpenConns(nMaxOpenConns)
		}
	}

	// so it doesn't reuse stale connections
	dbT.DB().SetConnMaxLifetime(30 * time.Minute)

	logDB, _ := strconv.ParseBool(logDBString)
	dbT.LogMode(logDB)

	return dbT, nil
}

// Reconnect pings the database to re-establish a connection.
func Reconnect() error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}

	return db.DB().Ping()
}

// IsConnectionError returns true if the supplied error
// is a connection related error based on PostgreSQL
// connection exceptions class. See:
// http://www.postgresql.org/docs/9.4/static/errcodes-appendix.html#ERRCODES-TABLE
// for details.
func IsConnectionError(err error) bool {
	return pqErrorCode(err) == "08"
}

func InsufficientResources(err error) bool {
	return pqErrorCode(err) == "53"
}

// IsUniqueViolation returns true if the supplied error is a
// unique-constraint violation.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

func pqErrorCode(err error) pq.ErrorCode {
	if err != nil {
		pqErr, ok := err.(*pq.Error)

		if ok {
			return pqErr.Code[0:2]
		}
	}
	return ""
}

// IsSerializabilityError returns true if the supplied error
// is due to a serializability failure in the DB.
func IsSerializabilityError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "could not serialize access due to concurrent update")
}

// IsTransientError reports whether the error is a store failure a
// caller may retry: a dropped connection, resource exhaustion, or a
// serialization failure under snapshot isolation.
func IsTransientError(err error) bool {
	return IsConnectionError(err) || InsufficientResources(err) || IsSerializabilityError(err)
}

// Serializable begins a transaction with isolation level
// set to SERIALIZABLE.
func Serializable() *gorm.DB {
	return DB().Begin().Exec("SET TRANSACTION ISOLATION LEVEL SERIALIZABLE")
}

// RepeatableRead begins a transaction with isolation level
// set to REPEATABLE READ.
func RepeatableRead() *gorm.DB {
	return DB().Begin().Exec("SET TRANSACTION ISOLATION LEVEL REPEATABLE READ")
}

// Begin a transaction.
func Begin() *gorm.DB {
	return DB().Begin()
}

// IsolatedAtLeastRepeatable reports whether the transaction runs at
// REPEATABLE READ or stronger. The reconciliation apply pass rewrites
// ledger rows from a snapshot it just scanned, so it refuses to run
// under READ COMMITTED.
func IsolatedAtLeastRepeatable(tx *gorm.DB) (bool, error) {
	var level struct {
		TransactionIsolation string `json:"transaction_isolation"`
	}

	if err := tx.Raw("SHOW TRANSACTION ISOLATION LEVEL").Scan(&level).Error; err != nil {
		return false, err
	}

	switch level.TransactionIsolation {
	case "repeatable read", "serializable":
		return true, nil
	}

	return false, nil
}
