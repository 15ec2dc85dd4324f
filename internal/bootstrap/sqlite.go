package bootstrap

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/vglug/intake-backend/internal/store"
)

// InitDB opens the application database and makes sure the schema
// exists. SQLite allows one writer at a time, so the pool is capped at
// a single connection.
func InitDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := store.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
