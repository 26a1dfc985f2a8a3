package storage

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
)

// Collection is the name of a top-level collection in the persisted state.
type Collection string

const (
	Countries   Collection = "paises"
	Sellers     Collection = "vendedores"
	Customers   Collection = "customers"
	Farms       Collection = "fincas"
	Carriers    Collection = "cargueras"
	Consignees  Collection = "consignatarios"
	DAEs        Collection = "daes"
	Marks       Collection = "marcaciones"
	Provinces   Collection = "provincias"
	Invoices    Collection = "invoices"
	Products    Collection = "productos"
	CreditNotes Collection = "creditNotes"
	DebitNotes  Collection = "debitNotes"
)

// Collections lists every collection in the order it is laid out on disk.
var Collections = []Collection{
	Countries, Sellers, Customers, Farms, Carriers, Consignees, DAEs,
	Marks, Provinces, Invoices, Products, CreditNotes, DebitNotes,
}

// Valid reports whether c names a known collection.
func (c Collection) Valid() bool {
	return slices.Contains(Collections, c)
}

// IDField is the key every record stores its identifier under.
const IDField = "id"

// Record is a flat entity record as stored.
type Record map[string]any

// ID returns the record identifier, or "" when missing. Numeric identifiers
// written by older versions of the data file are returned in decimal form.
func (r Record) ID() string {
	switch id := r[IDField].(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}

	return ""
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}

	return maps.Clone(r)
}

// Merge overlays patch onto a copy of r. Nested values are replaced, not merged.
// The identifier of r is never overwritten.
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	if out == nil {
		out = Record{}
	}

	for k, v := range patch {
		if k == IDField {
			continue
		}

		out[k] = v
	}

	return out
}

// AppData is the whole persisted state: every collection with its ordered records.
type AppData map[Collection][]Record

// Empty returns an AppData holding every known collection with no records.
func Empty() AppData {
	data := make(AppData, len(Collections))
	for _, c := range Collections {
		data[c] = []Record{}
	}

	return data
}

// IndexOf returns the position of the record with the given id, or -1.
func IndexOf(records []Record, id string) int {
	return slices.IndexFunc(records, func(r Record) bool { return r.ID() == id })
}
