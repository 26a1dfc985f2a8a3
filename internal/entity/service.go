// Package entity provides list/get/add/update/delete over one collection of
// the persisted state. It does no validation beyond identifier presence.
package entity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrJamesThe3rd/flora/internal/storage"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=entity
type Repository interface {
	List(ctx context.Context, c storage.Collection) ([]storage.Record, error)
	Get(ctx context.Context, c storage.Collection, id string) (storage.Record, error)
	Create(ctx context.Context, c storage.Collection, rec storage.Record) (string, error)
	Update(ctx context.Context, c storage.Collection, id string, patch storage.Record) error
	Delete(ctx context.Context, c storage.Collection, id string) error
}

// Lister is satisfied by every Service whatever its entity type.
type Lister interface {
	Collection() storage.Collection
	Records(ctx context.Context) ([]storage.Record, error)
}

// Editor is the untyped view of a Service, used by screens that handle any
// collection the same way.
type Editor interface {
	Lister
	AddRecord(ctx context.Context, rec storage.Record) (string, error)
	Update(ctx context.Context, id string, patch Patch) error
	Delete(ctx context.Context, id string) error
}

// Patch holds the top-level fields an update replaces.
type Patch map[string]any

// Service exposes one collection as values of T. T is converted to and from
// records through its JSON form, so its fields need json tags.
type Service[T any] struct {
	repo       Repository
	collection storage.Collection
}

func NewService[T any](repo Repository, c storage.Collection) *Service[T] {
	return &Service[T]{repo: repo, collection: c}
}

func (s *Service[T]) Collection() storage.Collection {
	return s.collection
}

// Records lists the collection without decoding it.
func (s *Service[T]) Records(ctx context.Context) ([]storage.Record, error) {
	records, err := s.repo.List(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.collection, err)
	}

	return records, nil
}

func (s *Service[T]) List(ctx context.Context) ([]T, error) {
	records, err := s.repo.List(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.collection, err)
	}

	out := make([]T, 0, len(records))

	for _, rec := range records {
		v, err := FromRecord[T](rec)
		if err != nil {
			return nil, fmt.Errorf("decoding %s %s: %w", s.collection, rec.ID(), err)
		}

		out = append(out, v)
	}

	return out, nil
}

func (s *Service[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T

	rec, err := s.repo.Get(ctx, s.collection, id)
	if err != nil {
		return zero, fmt.Errorf("getting %s: %w", s.collection, err)
	}

	v, err := FromRecord[T](rec)
	if err != nil {
		return zero, fmt.Errorf("decoding %s %s: %w", s.collection, id, err)
	}

	return v, nil
}

// Add stores fields as a new record and returns the identifier the store assigned.
// Any identifier already present in fields is discarded.
func (s *Service[T]) Add(ctx context.Context, fields T) (string, error) {
	rec, err := ToRecord(fields)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", s.collection, err)
	}

	delete(rec, storage.IDField)

	id, err := s.repo.Create(ctx, s.collection, rec)
	if err != nil {
		return "", fmt.Errorf("adding to %s: %w", s.collection, err)
	}

	return id, nil
}

// AddRecord decodes rec as T before adding it, so fields T does not know are
// dropped and values of the wrong type are rejected.
func (s *Service[T]) AddRecord(ctx context.Context, rec storage.Record) (string, error) {
	v, err := FromRecord[T](rec)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", s.collection, err)
	}

	return s.Add(ctx, v)
}

// Update replaces the fields named in patch on the record with the given id.
// It fails with storage.ErrNotFound when there is no such record.
func (s *Service[T]) Update(ctx context.Context, id string, patch Patch) error {
	rec := make(storage.Record, len(patch))
	for k, v := range patch {
		if k == storage.IDField {
			continue
		}

		rec[k] = v
	}

	if err := s.repo.Update(ctx, s.collection, id, rec); err != nil {
		return fmt.Errorf("updating %s: %w", s.collection, err)
	}

	return nil
}

// Delete removes the record if it exists.
func (s *Service[T]) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, s.collection, id); err != nil {
		return fmt.Errorf("deleting from %s: %w", s.collection, err)
	}

	return nil
}

// ToRecord converts v into a flat record through its JSON encoding.
func ToRecord(v any) (storage.Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var rec storage.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// FromRecord decodes a record into T. Numeric identifiers are decoded as strings.
func FromRecord[T any](rec storage.Record) (T, error) {
	var v T

	if _, ok := rec[storage.IDField]; ok {
		rec = rec.Clone()
		rec[storage.IDField] = rec.ID()
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return v, err
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		return v, err
	}

	return v, nil
}

// PatchOf builds a patch from the JSON encoding of v. Fields tagged omitempty
// that are empty are left out and therefore keep their stored value.
func PatchOf(v any) (Patch, error) {
	rec, err := ToRecord(v)
	if err != nil {
		return nil, err
	}

	delete(rec, storage.IDField)

	return Patch(rec), nil
}
