// Package postgres stores each entity record as its own JSONB row.
//
// Create, update and delete are atomic per record. Nothing spans records: a
// save touching several records can be half applied when a later write fails.
package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/flora/internal/storage"
)

const schema = `
	CREATE TABLE IF NOT EXISTS records (
		seq        BIGSERIAL   NOT NULL,
		collection TEXT        NOT NULL,
		id         TEXT        NOT NULL DEFAULT gen_random_uuid()::text,
		data       JSONB       NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (collection, id)
	)
`

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the records table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: creating schema: %w", storage.ErrUnavailable, err)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads (id, data) and folds the id back into the record.
func scanRecord(s scanner, extra ...any) (storage.Record, error) {
	var (
		id  string
		raw []byte
	)

	if err := s.Scan(append(extra, &id, &raw)...); err != nil {
		return nil, err
	}

	rec, err := decode(raw)
	if err != nil {
		return nil, err
	}

	rec[storage.IDField] = id

	return rec, nil
}

func decode(raw []byte) (storage.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var rec storage.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}

	if rec == nil {
		rec = storage.Record{}
	}

	return rec, nil
}

// encode marshals rec without its identifier, which lives in its own column.
func encode(rec storage.Record) ([]byte, error) {
	body := rec.Clone()
	if body == nil {
		body = storage.Record{}
	}

	delete(body, storage.IDField)

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	return raw, nil
}

func (s *Store) List(ctx context.Context, c storage.Collection) ([]storage.Record, error) {
	query := `
		SELECT id, data
		FROM records
		WHERE collection = $1
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, c)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", storage.ErrUnavailable, c, err)
	}
	defer rows.Close()

	records := []storage.Record{}

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning %s: %w", storage.ErrUnavailable, c, err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating %s: %w", storage.ErrUnavailable, c, err)
	}

	return records, nil
}

func (s *Store) Get(ctx context.Context, c storage.Collection, id string) (storage.Record, error) {
	query := `
		SELECT id, data
		FROM records
		WHERE collection = $1 AND id = $2
	`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, c, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", c, id, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%w: getting %s %s: %w", storage.ErrUnavailable, c, id, err)
	}

	return rec, nil
}

// Create inserts rec and returns the identifier assigned by the database.
func (s *Store) Create(ctx context.Context, c storage.Collection, rec storage.Record) (string, error) {
	raw, err := encode(rec)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO records (collection, data, created_at, updated_at)
		VALUES ($1, $2::jsonb, NOW(), NOW())
		RETURNING id
	`

	var id string
	if err := s.db.QueryRowContext(ctx, query, c, raw).Scan(&id); err != nil {
		return "", fmt.Errorf("%w: creating %s: %w", storage.ErrUnavailable, c, err)
	}

	return id, nil
}

// Update merges patch into the stored document with jsonb concatenation,
// which replaces top-level keys and leaves the others in place.
func (s *Store) Update(ctx context.Context, c storage.Collection, id string, patch storage.Record) error {
	raw, err := encode(patch)
	if err != nil {
		return err
	}

	query := `
		UPDATE records
		SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`

	res, err := s.db.ExecContext(ctx, query, c, id, raw)
	if err != nil {
		return fmt.Errorf("%w: updating %s %s: %w", storage.ErrUnavailable, c, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: updating %s %s: %w", storage.ErrUnavailable, c, id, err)
	}

	if n == 0 {
		return fmt.Errorf("%s %s: %w", c, id, storage.ErrNotFound)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, c storage.Collection, id string) error {
	query := `DELETE FROM records WHERE collection = $1 AND id = $2`

	if _, err := s.db.ExecContext(ctx, query, c, id); err != nil {
		return fmt.Errorf("%w: deleting %s %s: %w", storage.ErrUnavailable, c, id, err)
	}

	return nil
}

// ReadAll returns every collection with at least one record.
func (s *Store) ReadAll(ctx context.Context) (storage.AppData, error) {
	query := `
		SELECT collection, id, data
		FROM records
		ORDER BY collection ASC, seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: reading records: %w", storage.ErrUnavailable, err)
	}
	defer rows.Close()

	data := storage.AppData{}

	for rows.Next() {
		var c storage.Collection

		rec, err := scanRecord(rows, &c)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning record: %w", storage.ErrUnavailable, err)
		}

		data[c] = append(data[c], rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating records: %w", storage.ErrUnavailable, err)
	}

	return data, nil
}

// WriteAll replaces each collection present in data. Every collection is
// swapped in its own database transaction; a failure part way leaves the
// collections already written in place.
func (s *Store) WriteAll(ctx context.Context, data storage.AppData) error {
	for c, records := range data {
		if err := s.replaceCollection(ctx, c, records); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) replaceCollection(ctx context.Context, c storage.Collection, records []storage.Record) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", storage.ErrUnavailable, err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM records WHERE collection = $1`, c); err != nil {
		return fmt.Errorf("%w: clearing %s: %w", storage.ErrUnavailable, c, err)
	}

	query := `
		INSERT INTO records (collection, id, data, created_at, updated_at)
		VALUES ($1, COALESCE(NULLIF($2, ''), gen_random_uuid()::text), $3::jsonb, NOW(), NOW())
	`

	for _, rec := range records {
		raw, err := encode(rec)
		if err != nil {
			return err
		}

		if _, err := dbTx.ExecContext(ctx, query, c, rec.ID(), raw); err != nil {
			return fmt.Errorf("%w: inserting into %s: %w", storage.ErrUnavailable, c, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("%w: committing %s: %w", storage.ErrUnavailable, c, err)
	}

	return nil
}
