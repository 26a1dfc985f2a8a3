package invoice

import "reflect"

// BoxType is the size class of a flower box.
type BoxType string

const (
	BoxFull    BoxType = "FB"
	BoxHalf    BoxType = "HB"
	BoxQuarter BoxType = "QB"
	BoxEighth  BoxType = "EB"
)

// Header holds the invoice fields that reference other entities or describe
// the shipment. References are stored as opaque identifiers.
type Header struct {
	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	SellerID      string `json:"sellerId,omitempty"`
	CustomerID    string `json:"customerId,omitempty"`
	ConsigneeID   string `json:"consigneeId,omitempty"`
	CarrierID     string `json:"carrierId,omitempty"`
	CountryID     string `json:"countryId,omitempty"`
	DAEID         string `json:"daeId,omitempty"`
	MarkID        string `json:"markId,omitempty"`
	AWB           string `json:"awb,omitempty"`
	HAWB          string `json:"hawb,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Invoice is the stored form of an invoice. Dates are kept as they were
// written; LoadForEdit normalises them.
type Invoice struct {
	ID string `json:"id,omitempty"`
	Header
	FarmDepartureDate string `json:"farmDepartureDate,omitempty"`
	FlightDate        string `json:"flightDate,omitempty"`
	Items             []Item `json:"items"`

	Extra Extra `json:"-"`
}

// Item is one line of an invoice: boxes of one product from one farm.
// Counts are kept as stored; see Value.
type Item struct {
	ID string `json:"id,omitempty"`
	// OriginalID is the stored identifier this draft row was copied from.
	OriginalID      string  `json:"originalId,omitempty"`
	FarmID          string  `json:"farmId,omitempty"`
	ProductID       string  `json:"productId,omitempty"`
	BoxType         BoxType `json:"boxType,omitempty"`
	NumberOfBoxes   Value   `json:"numberOfBoxes,omitempty"`
	NumberOfBunches Value   `json:"numberOfBunches,omitempty"`
	Bunches         []Bunch `json:"bunches"`

	Extra Extra `json:"-"`
}

// Bunch describes one bunch of stems on an item.
type Bunch struct {
	ID         string `json:"id,omitempty"`
	OriginalID string `json:"originalId,omitempty"`
	Variety    string `json:"variety,omitempty"`
	Length     Value  `json:"length,omitempty"`
	Stems      Value  `json:"stems,omitempty"`
	Price      Value  `json:"price,omitempty"`

	Extra Extra `json:"-"`
}

var (
	invoiceFields = fieldsOf(reflect.TypeFor[Invoice]())
	itemFields    = fieldsOf(reflect.TypeFor[Item]())
	bunchFields   = fieldsOf(reflect.TypeFor[Bunch]())
	draftFields   = fieldsOf(reflect.TypeFor[Draft]())
)

func (inv Invoice) MarshalJSON() ([]byte, error) {
	type plain Invoice
	return joinExtra(plain(inv), inv.Extra)
}

func (inv *Invoice) UnmarshalJSON(b []byte) error {
	type plain Invoice

	var p plain

	extra, err := splitExtra(b, &p, invoiceFields)
	if err != nil {
		return err
	}

	p.Extra = extra
	*inv = Invoice(p)

	return nil
}

func (it Item) MarshalJSON() ([]byte, error) {
	type plain Item
	return joinExtra(plain(it), it.Extra)
}

func (it *Item) UnmarshalJSON(b []byte) error {
	type plain Item

	var p plain

	extra, err := splitExtra(b, &p, itemFields)
	if err != nil {
		return err
	}

	p.Extra = extra
	*it = Item(p)

	return nil
}

func (b Bunch) MarshalJSON() ([]byte, error) {
	type plain Bunch
	return joinExtra(plain(b), b.Extra)
}

func (b *Bunch) UnmarshalJSON(raw []byte) error {
	type plain Bunch

	var p plain

	extra, err := splitExtra(raw, &p, bunchFields)
	if err != nil {
		return err
	}

	p.Extra = extra
	*b = Bunch(p)

	return nil
}
