package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
)

// Cache is a response cache gateway backed by an SQLite table. Rows carry
// their own expiry so reads never return stale responses, even before Tidy
// has removed them.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewCache migrates database and opens it as a response cache
func NewCache(database string, ttl time.Duration) (*Cache, error) {
	if err := Migrate(database); err != nil {
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}

	db, err := connection(database)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("value").
		From("responses").
		Where(
			sb.Equal("cache_key", key),
			sb.GreaterThan("expires_at", c.now().UnixMilli()),
		)
	query, args := sb.Build()

	var value []byte
	err := c.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select error: %w", err)
	}

	return value, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	now := c.now()

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.ReplaceInto("responses").
		Cols("cache_key", "value", "created_at", "expires_at").
		Values(key, value, now.UnixMilli(), now.Add(c.ttl).UnixMilli())
	query, args := ib.Build()

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert error: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
