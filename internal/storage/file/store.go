// Package file persists the whole application state as a single JSON document.
//
// Every mutation is a read-modify-write of the full document. A mutex serialises
// writers inside one process; there is no locking between processes, so two
// processes writing the same file can lose updates (last write wins).
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/flora/internal/storage"
)

type Store struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

type Option func(*Store)

// WithClock overrides the clock used to derive new identifiers.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(path string, opts ...Option) *Store {
	s := &Store{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) Path() string {
	return s.path
}

// EnsureExists writes an empty document with every collection if the file is missing.
func (s *Store) EnsureExists(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: stat data file: %w", storage.ErrUnavailable, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: creating data directory: %w", storage.ErrUnavailable, err)
	}

	return s.write(ctx, storage.Empty())
}

// ReadAll loads and parses the whole document.
func (s *Store) ReadAll(ctx context.Context) (storage.AppData, error) {
	return s.read(ctx)
}

// WriteAll replaces the whole document with data.
func (s *Store) WriteAll(ctx context.Context, data storage.AppData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(ctx, data)
}

func (s *Store) List(ctx context.Context, c storage.Collection) ([]storage.Record, error) {
	data, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	records := data[c]
	if records == nil {
		records = []storage.Record{}
	}

	return records, nil
}

func (s *Store) Get(ctx context.Context, c storage.Collection, id string) (storage.Record, error) {
	data, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	idx := storage.IndexOf(data[c], id)
	if idx < 0 {
		return nil, fmt.Errorf("%s %s: %w", c, id, storage.ErrNotFound)
	}

	return data[c][idx], nil
}

// Create appends rec under a new timestamp-derived identifier and returns it.
func (s *Store) Create(ctx context.Context, c storage.Collection, rec storage.Record) (string, error) {
	var id string

	err := s.mutate(ctx, func(data storage.AppData) error {
		id = s.nextID(data[c])

		stored := rec.Clone()
		if stored == nil {
			stored = storage.Record{}
		}

		stored[storage.IDField] = id
		data[c] = append(data[c], stored)

		return nil
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

func (s *Store) Update(ctx context.Context, c storage.Collection, id string, patch storage.Record) error {
	return s.mutate(ctx, func(data storage.AppData) error {
		idx := storage.IndexOf(data[c], id)
		if idx < 0 {
			return fmt.Errorf("%s %s: %w", c, id, storage.ErrNotFound)
		}

		data[c][idx] = data[c][idx].Merge(patch)

		return nil
	})
}

// Delete removes the record if present. Deleting a missing record leaves the file untouched.
func (s *Store) Delete(ctx context.Context, c storage.Collection, id string) error {
	err := s.mutate(ctx, func(data storage.AppData) error {
		idx := storage.IndexOf(data[c], id)
		if idx < 0 {
			return errUnchanged
		}

		data[c] = append(data[c][:idx], data[c][idx+1:]...)

		return nil
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}

	return err
}

var errUnchanged = errors.New("unchanged")

// mutate runs fn against a freshly read document and writes the result back,
// holding the writer lock for the whole cycle. When fn fails nothing is written.
func (s *Store) mutate(ctx context.Context, fn func(storage.AppData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(ctx)
	if err != nil {
		return err
	}

	if err := fn(data); err != nil {
		return err
	}

	return s.write(ctx, data)
}

// nextID derives an identifier from the current time in milliseconds,
// bumped until it does not collide with an existing record.
func (s *Store) nextID(records []storage.Record) string {
	n := s.now().UnixMilli()
	for {
		id := strconv.FormatInt(n, 10)
		if storage.IndexOf(records, id) < 0 {
			return id
		}

		n++
	}
}

func (s *Store) read(ctx context.Context) (storage.AppData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", storage.ErrUnavailable, s.path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data storage.AppData
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", storage.ErrUnavailable, s.path, err)
	}

	if data == nil {
		data = storage.AppData{}
	}

	return data, nil
}

// write encodes data canonically (sorted keys, two-space indent) and swaps it
// into place through a temporary file in the same directory.
func (s *Store) write(ctx context.Context, data storage.AppData) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding document: %w", storage.ErrUnavailable, err)
	}

	raw = append(raw, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", storage.ErrUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing temp file: %w", storage.ErrUnavailable, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing temp file: %w", storage.ErrUnavailable, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: replacing %s: %w", storage.ErrUnavailable, s.path, err)
	}

	return nil
}
