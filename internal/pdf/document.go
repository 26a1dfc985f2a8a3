package pdf

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/flora/internal/catalog"
	"github.com/MrJamesThe3rd/flora/internal/invoice"
)

//go:embed templates/invoice.html
var templateFS embed.FS

var invoiceTemplate = template.Must(
	template.New("invoice.html").
		Funcs(template.FuncMap{"money": money}).
		ParseFS(templateFS, "templates/invoice.html"),
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Document is an invoice together with the catalog records it references.
// References that cannot be resolved are left zero and print blank.
type Document struct {
	Invoice   invoice.Invoice
	Totals    invoice.Totals
	Seller    catalog.Seller
	Customer  catalog.Customer
	Consignee catalog.Consignee
	Carrier   catalog.Carrier
	Country   catalog.Country
	DAE       catalog.DAE
	Mark      catalog.Mark
	Farms     map[string]catalog.Farm
	Products  map[string]catalog.Product
}

// FarmName falls back to the identifier when the farm is unknown.
func (d Document) FarmName(id string) string {
	if f, ok := d.Farms[id]; ok {
		return f.Name
	}

	return id
}

func (d Document) ProductName(id string) string {
	p, ok := d.Products[id]
	if !ok {
		return id
	}

	if p.Variety != "" {
		return p.Name + " " + p.Variety
	}

	return p.Name
}

// HTML renders the printable invoice markup.
func (d Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("rendering invoice %s: %w", d.Invoice.ID, err)
	}

	return buf.String(), nil
}

// Filename is the attachment name used for the invoice PDF.
func (d Document) Filename() string {
	name := d.Invoice.InvoiceNumber
	if name == "" {
		name = d.Invoice.ID
	}

	return "invoice-" + sanitize(name) + ".pdf"
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, s)
}
