package invoice_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/flora/internal/invoice"
)

func bunch(stems int, price string) invoice.Bunch {
	return invoice.Bunch{Stems: invoice.IntValue(stems), Price: invoice.DecimalValue(decimal.RequireFromString(price))}
}

func TestTotalsOf(t *testing.T) {
	type testCase struct {
		name  string
		items []invoice.Item
		want  invoice.Totals
	}

	tests := []testCase{
		{
			name:  "Empty",
			items: nil,
			want:  invoice.Totals{FullBoxes: decimal.Zero, Amount: decimal.Zero},
		},
		{
			name: "MixedBoxes",
			items: []invoice.Item{
				{
					BoxType:         invoice.BoxHalf,
					NumberOfBoxes:   invoice.IntValue(2),
					NumberOfBunches: invoice.IntValue(2),
					Bunches:         []invoice.Bunch{bunch(25, "0.30"), bunch(25, "0.35")},
				},
				{
					BoxType:         "qb",
					NumberOfBoxes:   invoice.IntValue(4),
					NumberOfBunches: invoice.IntValue(1),
					Bunches:         []invoice.Bunch{bunch(20, "0.333")},
				},
			},
			want: invoice.Totals{
				Boxes:     6,
				FullBoxes: decimal.RequireFromString("2"),
				Bunches:   3,
				Stems:     70,
				Amount:    decimal.RequireFromString("22.91"),
			},
		},
		{
			name: "UnknownBoxTypeCountsZeroFullBoxes",
			items: []invoice.Item{
				{BoxType: "XL", NumberOfBoxes: invoice.IntValue(3), Bunches: []invoice.Bunch{bunch(10, "1")}},
			},
			want: invoice.Totals{
				Boxes:     3,
				FullBoxes: decimal.Zero,
				Stems:     10,
				Amount:    decimal.RequireFromString("10"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := invoice.TotalsOf(tt.items)

			assert.Equal(t, tt.want.Boxes, got.Boxes)
			assert.Equal(t, tt.want.Bunches, got.Bunches)
			assert.Equal(t, tt.want.Stems, got.Stems)
			assert.True(t, tt.want.FullBoxes.Equal(got.FullBoxes), "full boxes: got %s", got.FullBoxes)
			assert.True(t, tt.want.Amount.Equal(got.Amount), "amount: got %s", got.Amount)
		})
	}
}

func TestParseDate(t *testing.T) {
	type testCase struct {
		input   string
		want    string
		wantErr bool
	}

	tests := []testCase{
		{input: "2026-01-19", want: "2026-01-19"},
		{input: " 2026-01-19 ", want: "2026-01-19"},
		{input: "2026-01-19T23:30:00-05:00", want: "2026-01-19"},
		{input: "2026-01-19T05:00:00.000Z", want: "2026-01-19"},
		{input: "2026-01-19T08:15", want: "2026-01-19"},
		{input: "2026-01-19 08:15:00", want: "2026-01-19"},
		{input: "19/01/2026", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := invoice.ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDraft_JSON(t *testing.T) {
	d := invoice.Draft{
		ID:                "inv-1",
		FarmDepartureDate: invoice.DateOf(time.Date(2026, 1, 19, 22, 0, 0, 0, time.UTC)),
		FlightDate:        invoice.DateOf(time.Date(2026, 1, 20, 1, 0, 0, 0, time.UTC)),
		Items:             []invoice.Item{},
	}

	raw, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"inv-1","farmDepartureDate":"2026-01-19","flightDate":"2026-01-20","items":[]}`, string(raw))

	var back invoice.Draft
	require.NoError(t, back.UnmarshalJSON(raw))
	assert.Equal(t, d.FarmDepartureDate, back.FarmDepartureDate)
	assert.Equal(t, d.FlightDate, back.FlightDate)
}
