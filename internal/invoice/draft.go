package invoice

import (
	"errors"
	"log/slog"
	"time"
)

// Draft is an invoice opened for editing. Its dates are always set, and its
// items and bunches carry freshly generated identifiers with the stored ones
// kept in OriginalID.
type Draft struct {
	ID string `json:"id,omitempty"`
	Header
	FarmDepartureDate Date   `json:"farmDepartureDate"`
	FlightDate        Date   `json:"flightDate"`
	Items             []Item `json:"items"`

	Extra Extra `json:"-"`
}

func (d Draft) MarshalJSON() ([]byte, error) {
	type plain Draft
	return joinExtra(plain(d), d.Extra)
}

func (d *Draft) UnmarshalJSON(b []byte) error {
	type plain Draft

	var p plain

	extra, err := splitExtra(b, &p, draftFields)
	if err != nil {
		return err
	}

	p.Extra = extra
	*d = Draft(p)

	return nil
}

func (d Draft) Totals() Totals {
	return TotalsOf(d.Items)
}

var errIDCollision = errors.New("identifier generator keeps returning used identifiers")

// maxIDAttempts bounds how often a colliding identifier is regenerated.
const maxIDAttempts = 8

// idIssuer hands out identifiers that are unique within one draft.
type idIssuer struct {
	gen  func() string
	used map[string]struct{}
}

func (is *idIssuer) next() (string, error) {
	for range maxIDAttempts {
		id := is.gen()
		if _, taken := is.used[id]; taken || id == "" {
			continue
		}

		is.used[id] = struct{}{}

		return id, nil
	}

	return "", errIDCollision
}

// toDraft rebuilds a stored invoice as an editable draft. inv is not modified.
func toDraft(inv Invoice, now time.Time, gen func() string) (*Draft, error) {
	issuer := &idIssuer{gen: gen, used: make(map[string]struct{})}

	d := &Draft{
		ID:                inv.ID,
		Header:            inv.Header,
		FarmDepartureDate: normaliseDate(inv.ID, "farmDepartureDate", inv.FarmDepartureDate, now),
		FlightDate:        normaliseDate(inv.ID, "flightDate", inv.FlightDate, now),
		Items:             make([]Item, 0, len(inv.Items)),
		Extra:             inv.Extra,
	}

	for _, stored := range inv.Items {
		item := stored
		item.OriginalID = stored.ID
		item.Bunches = make([]Bunch, 0, len(stored.Bunches))

		id, err := issuer.next()
		if err != nil {
			return nil, err
		}

		item.ID = id

		for _, sb := range stored.Bunches {
			b := sb
			b.OriginalID = sb.ID

			id, err := issuer.next()
			if err != nil {
				return nil, err
			}

			b.ID = id
			item.Bunches = append(item.Bunches, b)
		}

		d.Items = append(d.Items, item)
	}

	return d, nil
}

// normaliseDate parses a stored date, falling back to today's date when the
// value is missing or cannot be parsed.
func normaliseDate(invoiceID, field, raw string, now time.Time) Date {
	if raw == "" {
		return DateOf(now)
	}

	d, err := ParseDate(raw)
	if err != nil {
		slog.Warn("invalid stored date, using today", "invoice", invoiceID, "field", field, "value", raw)
		return DateOf(now)
	}

	return d
}

// toInvoice turns a draft back into its stored form. Shadow identifiers are dropped.
func toInvoice(d *Draft) Invoice {
	inv := Invoice{
		ID:     d.ID,
		Header: d.Header,
		Items:  make([]Item, 0, len(d.Items)),
		Extra:  d.Extra,
	}

	if !d.FarmDepartureDate.IsZero() {
		inv.FarmDepartureDate = d.FarmDepartureDate.String()
	}

	if !d.FlightDate.IsZero() {
		inv.FlightDate = d.FlightDate.String()
	}

	for _, it := range d.Items {
		item := it
		item.OriginalID = ""
		item.Bunches = make([]Bunch, 0, len(it.Bunches))

		for _, b := range it.Bunches {
			b.OriginalID = ""
			item.Bunches = append(item.Bunches, b)
		}

		inv.Items = append(inv.Items, item)
	}

	return inv
}
