package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// Tidy removes expired responses from the cache database at path
func Tidy(database string) (int64, error) {
	db, err := connection(database)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return tidy(context.Background(), db, time.Now())
}

// Tidy removes the cache's expired responses
func (c *Cache) Tidy(ctx context.Context) (int64, error) {
	return tidy(ctx, c.db, c.now())
}

// TidyEvery runs Tidy on every tick until ctx is cancelled
func (c *Cache) TidyEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Tidy(ctx); err != nil {
				log.WithError(err).Error("Error tidying cache database")
			}
		}
	}
}

func tidy(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	deleteResponses := sqlbuilder.SQLite.NewDeleteBuilder()
	query, args := deleteResponses.DeleteFrom("responses").
		Where(deleteResponses.LessEqualThan("expires_at", now.UnixMilli())).
		Build()

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete error: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"removed": removed,
	}).Info("Tidied cache database")

	return removed, nil
}
