package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/flora/internal/invoice"
	"github.com/MrJamesThe3rd/flora/internal/state"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

// draftFields holds the form bindings of the invoice editor. It lives on the
// heap so the form keeps writing to it while the model is copied around.
type draftFields struct {
	number      string
	sellerID    string
	customerID  string
	consigneeID string
	carrierID   string
	countryID   string
	awb         string
	hawb        string
	farmDate    string
	flightDate  string
	notes       string
}

func fieldsOf(d *invoice.Draft) *draftFields {
	return &draftFields{
		number:      d.InvoiceNumber,
		sellerID:    d.SellerID,
		customerID:  d.CustomerID,
		consigneeID: d.ConsigneeID,
		carrierID:   d.CarrierID,
		countryID:   d.CountryID,
		awb:         d.AWB,
		hawb:        d.HAWB,
		farmDate:    d.FarmDepartureDate.String(),
		flightDate:  d.FlightDate.String(),
		notes:       d.Notes,
	}
}

// apply copies the form values onto d. Dates were validated by the form.
func (f *draftFields) apply(d *invoice.Draft) error {
	farm, err := invoice.ParseDate(f.farmDate)
	if err != nil {
		return err
	}

	flight, err := invoice.ParseDate(f.flightDate)
	if err != nil {
		return err
	}

	d.InvoiceNumber = strings.TrimSpace(f.number)
	d.SellerID = f.sellerID
	d.CustomerID = f.customerID
	d.ConsigneeID = f.consigneeID
	d.CarrierID = f.carrierID
	d.CountryID = f.countryID
	d.AWB = strings.TrimSpace(f.awb)
	d.HAWB = strings.TrimSpace(f.hawb)
	d.FarmDepartureDate = farm
	d.FlightDate = flight
	d.Notes = strings.TrimSpace(f.notes)

	return nil
}

func validateDate(s string) error {
	if _, err := invoice.ParseDate(s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}

	return nil
}

// referenceSelect lets the user pick a record of collection c from the store.
// The current value stays selectable even when the record no longer exists.
func referenceSelect(store *state.Store, c storage.Collection, title string, value *string) *huh.Select[string] {
	records := store.Collection(c)

	opts := []huh.Option[string]{huh.NewOption("(none)", "")}
	if *value != "" && storage.IndexOf(records, *value) < 0 {
		opts = append(opts, huh.NewOption(*value+" (missing)", *value))
	}

	for _, rec := range records {
		label := field(rec, "name")
		if label == "" {
			label = field(rec, "number")
		}

		opts = append(opts, huh.NewOption(label, rec.ID()))
	}

	return huh.NewSelect[string]().Title(title).Options(opts...).Value(value)
}

func newDraftForm(store *state.Store, f *draftFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Invoice number").Value(&f.number),
			huh.NewInput().Title("Farm departure").Placeholder("YYYY-MM-DD").Value(&f.farmDate).Validate(validateDate),
			huh.NewInput().Title("Flight date").Placeholder("YYYY-MM-DD").Value(&f.flightDate).Validate(validateDate),
			huh.NewInput().Title("AWB").Value(&f.awb),
			huh.NewInput().Title("HAWB").Value(&f.hawb),
		),
		huh.NewGroup(
			referenceSelect(store, storage.Sellers, "Seller", &f.sellerID),
			referenceSelect(store, storage.Customers, "Customer", &f.customerID),
			referenceSelect(store, storage.Consignees, "Consignee", &f.consigneeID),
			referenceSelect(store, storage.Carriers, "Carrier", &f.carrierID),
			referenceSelect(store, storage.Countries, "Destination", &f.countryID),
		),
		huh.NewGroup(
			huh.NewText().Title("Notes").Value(&f.notes),
		),
	).WithWidth(50).WithShowHelp(false)
}

// emailFields holds the bindings of the email form.
type emailFields struct {
	to      string
	cc      string
	subject string
	note    string
}

func newEmailForm(f *emailFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("To").Placeholder("buyer@example.com, ...").Value(&f.to).
				Validate(func(s string) error {
					if len(splitAddresses(s)) == 0 {
						return fmt.Errorf("at least one recipient is required")
					}

					return nil
				}),
			huh.NewInput().Title("Cc").Value(&f.cc),
			huh.NewInput().Title("Subject").Placeholder("Invoice <number>").Value(&f.subject),
			huh.NewText().Title("Note").Value(&f.note),
		),
	).WithWidth(50).WithShowHelp(false)
}

func splitAddresses(s string) []string {
	var out []string

	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
