package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/MrJamesThe3rd/flora/internal/storage"
)

// Column maps a record field to the header names spreadsheets use for it.
type Column struct {
	Field    string
	Aliases  []string
	Required bool
	Decimal  bool
}

// Profile is the column layout accepted for one collection.
type Profile struct {
	Collection storage.Collection
	Columns    []Column
}

func col(field string, aliases ...string) Column {
	return Column{Field: field, Aliases: append([]string{field}, aliases...)}
}

func required(field string, aliases ...string) Column {
	c := col(field, aliases...)
	c.Required = true

	return c
}

var (
	name      = required("name", "nombre")
	taxID     = col("taxId", "ruc", "tax id", "nit", "vat")
	address   = col("address", "direccion")
	city      = col("city", "ciudad")
	phone     = col("phone", "telefono", "tel")
	email     = col("email", "correo", "e-mail", "mail")
	code      = col("code", "codigo", "cod")
	countryID = col("countryId", "country", "pais", "pais id")
	customer  = col("customerId", "customer", "cliente")
)

func note(c storage.Collection) Profile {
	return Profile{Collection: c, Columns: []Column{
		required("number", "numero", "no", "nro"),
		col("invoiceId", "invoice", "factura"),
		col("date", "fecha"),
		{Field: "amount", Aliases: []string{"amount", "monto", "valor", "total"}, Decimal: true},
		col("reason", "motivo", "concepto"),
	}}
}

var profiles = map[storage.Collection]Profile{
	storage.Countries:  {Collection: storage.Countries, Columns: []Column{name, code}},
	storage.Sellers:    {Collection: storage.Sellers, Columns: []Column{name, taxID, address, phone, email}},
	storage.Customers:  {Collection: storage.Customers, Columns: []Column{name, taxID, address, city, countryID, phone, email}},
	storage.Farms:      {Collection: storage.Farms, Columns: []Column{required("name", "nombre", "finca"), code, taxID, address, phone, email}},
	storage.Carriers:   {Collection: storage.Carriers, Columns: []Column{required("name", "nombre", "carguera"), code, phone, email}},
	storage.Consignees: {Collection: storage.Consignees, Columns: []Column{name, customer, address, city, countryID, phone}},
	storage.DAEs: {Collection: storage.DAEs, Columns: []Column{
		required("number", "numero", "dae"),
		countryID,
		col("startDate", "desde", "fecha inicio", "inicio"),
		col("endDate", "hasta", "fecha fin", "fin"),
	}},
	storage.Marks:       {Collection: storage.Marks, Columns: []Column{required("name", "nombre", "marcacion"), customer}},
	storage.Provinces:   {Collection: storage.Provinces, Columns: []Column{required("name", "nombre", "provincia"), countryID}},
	storage.Products:    {Collection: storage.Products, Columns: []Column{required("name", "nombre", "producto"), col("variety", "variedad"), col("color")}},
	storage.CreditNotes: note(storage.CreditNotes),
	storage.DebitNotes:  note(storage.DebitNotes),
}

// ProfileFor returns the layout for c. Invoices have no CSV layout.
func ProfileFor(c storage.Collection) (Profile, bool) {
	p, ok := profiles[c]
	return p, ok
}

// normalizeHeader folds case, accents and surrounding space so that
// "Código", "CODIGO " and "codigo" compare equal.
func normalizeHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}

// match resolves the columns of p against a header row. It reports false
// when a required column is missing.
func (p Profile) match(header []string) (map[string]int, bool) {
	idx := make(map[string]int, len(header))
	for i, cell := range header {
		if n := normalizeHeader(cell); n != "" {
			if _, seen := idx[n]; !seen {
				idx[n] = i
			}
		}
	}

	fields := make(map[string]int, len(p.Columns))

	for _, c := range p.Columns {
		for _, alias := range c.Aliases {
			if i, ok := idx[normalizeHeader(alias)]; ok {
				fields[c.Field] = i
				break
			}
		}

		if _, ok := fields[c.Field]; !ok && c.Required {
			return nil, false
		}
	}

	return fields, true
}
