package pdf_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/flora/internal/catalog"
	"github.com/MrJamesThe3rd/flora/internal/invoice"
	"github.com/MrJamesThe3rd/flora/internal/pdf"
)

func TestClient_Render(t *testing.T) {
	type testCase struct {
		name    string
		handler http.HandlerFunc
		want    []byte
		wantErr bool
	}

	tests := []testCase{
		{
			name: "Success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/pdf", r.URL.Path)
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

				var body struct {
					HTML    string      `json:"html"`
					Options pdf.Options `json:"options"`
				}

				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "<p>hi</p>", body.HTML)
				assert.Equal(t, "A4", body.Options.Format)

				w.Header().Set("Content-Type", "application/pdf")
				w.Write([]byte("%PDF-1.7 fake"))
			},
			want: []byte("%PDF-1.7 fake"),
		},
		{
			name: "ServerError",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "chrome crashed", http.StatusInternalServerError)
			},
			wantErr: true,
		},
		{
			name:    "EmptyBody",
			handler: func(w http.ResponseWriter, _ *http.Request) {},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			c := pdf.NewClient(ts.URL+"/", "secret", time.Second)
			got, err := c.Render(context.Background(), "<p>hi</p>", pdf.DefaultOptions)

			if tt.wantErr {
				assert.ErrorIs(t, err, pdf.ErrGenerate)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_RenderUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := pdf.NewClient(url, "", time.Second).Render(context.Background(), "x", pdf.DefaultOptions)
	assert.ErrorIs(t, err, pdf.ErrGenerate)
}

func TestClient_RenderNotConfigured(t *testing.T) {
	_, err := pdf.NewClient("", "", 0).Render(context.Background(), "x", pdf.DefaultOptions)
	assert.ErrorIs(t, err, pdf.ErrGenerate)
}

func sampleDocument() pdf.Document {
	inv := invoice.Invoice{
		ID: "inv-1",
		Header: invoice.Header{
			InvoiceNumber: "001-045",
			AWB:           "729-1234 5675",
			Notes:         "Keep <cold>",
		},
		FarmDepartureDate: "2026-01-19",
		FlightDate:        "2026-01-20",
		Items: []invoice.Item{
			{
				FarmID:          "f1",
				ProductID:       "p1",
				BoxType:         invoice.BoxHalf,
				NumberOfBoxes:   invoice.IntValue(2),
				NumberOfBunches: invoice.IntValue(2),
				Bunches: []invoice.Bunch{
					{Variety: "Freedom", Length: invoice.IntValue(60), Stems: invoice.IntValue(25), Price: invoice.Value(`"0.30"`)},
					{Variety: "Explorer", Length: invoice.IntValue(50), Stems: invoice.IntValue(25), Price: invoice.Value(`0.28`)},
				},
			},
			{FarmID: "unknown-farm", ProductID: "p1", BoxType: invoice.BoxQuarter, NumberOfBoxes: invoice.IntValue(1)},
		},
	}

	return pdf.Document{
		Invoice:  inv,
		Totals:   inv.Totals(),
		Seller:   catalog.Seller{Name: "Flores del Valle", TaxID: "1790012345001"},
		Customer: catalog.Customer{Name: "Bloom BV", City: "Aalsmeer"},
		Country:  catalog.Country{Name: "Netherlands"},
		Farms:    map[string]catalog.Farm{"f1": {Name: "Rosaprima"}},
		Products: map[string]catalog.Product{"p1": {Name: "Rose", Variety: "Red"}},
	}
}

func TestDocument_HTML(t *testing.T) {
	html, err := sampleDocument().HTML()
	require.NoError(t, err)

	for _, want := range []string{
		"Commercial Invoice 001-045",
		"Flores del Valle",
		"RUC 1790012345001",
		"Aalsmeer",
		"<td>Rosaprima</td>",
		"<td>Rose Red</td>",
		"<td>unknown-farm</td>",
		"<td>Explorer</td>",
		`<td class="num">7.50</td>`,
		`<td class="num">0.28</td>`,
		`<td class="num">14.50</td>`,
		"Total (1.25 full boxes)",
		"Keep &lt;cold&gt;",
	} {
		assert.Contains(t, html, want)
	}
}

func TestDocument_Filename(t *testing.T) {
	d := sampleDocument()
	assert.Equal(t, "invoice-001-045.pdf", d.Filename())

	d.Invoice.InvoiceNumber = "A/7 b"
	assert.Equal(t, "invoice-A_7_b.pdf", d.Filename())

	d.Invoice.InvoiceNumber = ""
	assert.Equal(t, "invoice-inv-1.pdf", d.Filename())
}
