package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const documentsTable = "documents"

// Store is a kv.Store over the documents table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore returns a Store using an initialized database (see Init).
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Get returns the document stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := sq.Select("value").
		From(documentsTable).
		Where(sq.Eq{"name": key}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build get query: %w", err)
	}

	var value string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get document %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the document under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	query, args, err := sq.Insert(documentsTable).
		Columns("name", "value", "updated_at").
		Values(key, value, s.now().Unix()).
		Suffix("ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build set query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set document %s: %w", key, err)
	}
	return nil
}

// Remove deletes the document under key, if any.
func (s *Store) Remove(ctx context.Context, key string) error {
	query, args, err := sq.Delete(documentsTable).
		Where(sq.Eq{"name": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build remove query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove document %s: %w", key, err)
	}
	return nil
}
