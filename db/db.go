package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"attendly_console/logger"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

type Config struct {
	Type string
	URL  string
}

// Initialize opens the session database and verifies the connection.
func Initialize(cfg Config) (*sql.DB, error) {
	driver := cfg.Type
	if driver != DialectSQLite && driver != DialectPostgres {
		return nil, fmt.Errorf("unsupported session database type %q", cfg.Type)
	}

	logger.For("db").WithField("type", driver).Info("Opening session database")

	db, err := sql.Open(driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error opening session database: %w", err)
	}

	// A single sqlite connection keeps in-memory databases shared and
	// serializes writers.
	if driver == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging session database: %w", err)
	}

	return db, nil
}

// Rebind rewrites ? placeholders into $n for postgres.
func Rebind(dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
