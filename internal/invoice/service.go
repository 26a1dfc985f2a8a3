package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/flora/internal/entity"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

type Service struct {
	*entity.Service[Invoice]

	now   func() time.Time
	newID func() string
}

type Option func(*Service)

// WithClock sets the clock used for default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator sets the generator for draft item and bunch identifiers.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

func NewService(repo entity.Repository, opts ...Option) *Service {
	s := &Service{
		Service: entity.NewService[Invoice](repo, storage.Invoices),
		now:     time.Now,
		newID:   uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewDraft returns an empty draft dated today.
func (s *Service) NewDraft() *Draft {
	today := DateOf(s.now())

	return &Draft{
		FarmDepartureDate: today,
		FlightDate:        today,
		Items:             []Item{},
	}
}

// LoadForEdit reads the stored invoice and returns it as a draft. Every item
// and bunch gets a new identifier; missing dates become today's date.
func (s *Service) LoadForEdit(ctx context.Context, id string) (*Draft, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	d, err := toDraft(inv, s.now(), s.newID)
	if err != nil {
		return nil, fmt.Errorf("building draft for invoice %s: %w", id, err)
	}

	return d, nil
}

// SaveDraft stores d. A draft without an identifier is added as a new
// invoice; otherwise the stored header and items are replaced. It returns the
// invoice identifier.
func (s *Service) SaveDraft(ctx context.Context, d *Draft) (string, error) {
	inv := toInvoice(d)

	if inv.ID == "" {
		return s.Add(ctx, inv)
	}

	patch, err := entity.PatchOf(inv)
	if err != nil {
		return "", fmt.Errorf("encoding invoice %s: %w", inv.ID, err)
	}

	// Fields cleared in the draft are omitted by their encoding; blank them
	// explicitly so the stored values are replaced too.
	for name := range invoiceFields {
		if _, ok := patch[name]; !ok && name != storage.IDField {
			patch[name] = ""
		}
	}

	if err := s.Update(ctx, inv.ID, patch); err != nil {
		return "", err
	}

	return inv.ID, nil
}
