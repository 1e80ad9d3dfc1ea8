package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"
)

// cachePragmas are applied on every connection through the DSN. Cached
// responses can always be rebuilt, so durability is traded for speed.
var cachePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"temp_store(MEMORY)",
	"journal_size_limit(16777216)",
}

func dsn(database string) string {
	query := url.Values{}
	for _, pragma := range cachePragmas {
		query.Add("_pragma", pragma)
	}
	return fmt.Sprintf("file:%s?%s", database, query.Encode())
}

func connection(database string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(database))
	if err != nil {
		return nil, err
	}

	// A single connection serializes cache writes and reads
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open %s: %w", database, err)
	}

	return db, nil
}
