package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/niksmo/gsm-storefront/internal/core/port"
)

var (
	_ port.StoreOpener   = (*SQLStore)(nil)
	_ port.KeyValueStore = (*sqlBucket)(nil)
)

const (
	getQuery = `
		SELECT value FROM visitor_storage
		WHERE visitor_id = $1 AND key = $2`

	setQuery = `
		INSERT INTO visitor_storage (visitor_id, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (visitor_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`

	deleteQuery = `
		DELETE FROM visitor_storage
		WHERE visitor_id = $1 AND key = $2`
)

// SQLStore keeps visitor storage in the visitor_storage table. Each Set is
// a single upsert; there is no transaction across keys.
type SQLStore struct {
	sqldb sqldb
}

func NewSQLStore(sqldb sqldb) SQLStore {
	return SQLStore{sqldb}
}

func (s SQLStore) Open(visitorID string) port.KeyValueStore {
	return sqlBucket{s.sqldb, visitorID}
}

type sqlBucket struct {
	sqldb     sqldb
	visitorID string
}

func (b sqlBucket) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "SQLStore.Get"

	var value string
	err := b.sqldb.QueryRowContext(ctx, getQuery, b.visitorID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return value, true, nil
}

func (b sqlBucket) Set(ctx context.Context, key, value string) error {
	const op = "SQLStore.Set"

	if _, err := b.sqldb.ExecContext(ctx, setQuery, b.visitorID, key, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (b sqlBucket) Delete(ctx context.Context, key string) error {
	const op = "SQLStore.Delete"

	if _, err := b.sqldb.ExecContext(ctx, deleteQuery, b.visitorID, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
