package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
)

// fullBoxFactor converts a box of each size into full-box equivalents.
var fullBoxFactor = map[BoxType]decimal.Decimal{
	BoxFull:    decimal.NewFromInt(1),
	BoxHalf:    decimal.RequireFromString("0.5"),
	BoxQuarter: decimal.RequireFromString("0.25"),
	BoxEighth:  decimal.RequireFromString("0.125"),
}

// Totals are the quantities and amount derived from a set of items.
type Totals struct {
	Boxes     int             `json:"boxes"`
	FullBoxes decimal.Decimal `json:"fullBoxes"`
	Bunches   int             `json:"bunches"`
	Stems     int             `json:"stems"`
	Amount    decimal.Decimal `json:"amount"`
}

// Amount is stems times price per stem. Values that are not numbers count as zero.
func (b Bunch) Amount() decimal.Decimal {
	return b.Stems.Decimal().Mul(b.Price.Decimal())
}

// Stems sums the stems of every bunch on the item.
func (it Item) Stems() int {
	var n int
	for _, b := range it.Bunches {
		n += b.Stems.Int()
	}

	return n
}

func (it Item) Amount() decimal.Decimal {
	sum := decimal.Zero
	for _, b := range it.Bunches {
		sum = sum.Add(b.Amount())
	}

	return sum
}

// FullBoxes is the number of boxes expressed in full-box equivalents.
// Unknown box types count as zero.
func (it Item) FullBoxes() decimal.Decimal {
	factor, ok := fullBoxFactor[BoxType(strings.ToUpper(string(it.BoxType)))]
	if !ok {
		return decimal.Zero
	}

	return factor.Mul(it.NumberOfBoxes.Decimal())
}

// TotalsOf adds up items. The amount is rounded to cents.
func TotalsOf(items []Item) Totals {
	t := Totals{FullBoxes: decimal.Zero, Amount: decimal.Zero}

	for _, it := range items {
		t.Boxes += it.NumberOfBoxes.Int()
		t.FullBoxes = t.FullBoxes.Add(it.FullBoxes())
		t.Bunches += it.NumberOfBunches.Int()
		t.Stems += it.Stems()
		t.Amount = t.Amount.Add(it.Amount())
	}

	t.Amount = t.Amount.Round(2)

	return t
}

func (inv Invoice) Totals() Totals {
	return TotalsOf(inv.Items)
}
