package catalog

import (
	"github.com/shopspring/decimal"
)

// Country is a destination or origin country.
type Country struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Seller is the exporting company issuing invoices.
type Seller struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	TaxID   string `json:"taxId,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

type Customer struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	TaxID     string `json:"taxId,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	CountryID string `json:"countryId,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Farm is a grower the boxes on an invoice come from.
type Farm struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Code    string `json:"code,omitempty"`
	TaxID   string `json:"taxId,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Carrier is a cargo agency (carguera).
type Carrier struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Code  string `json:"code,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type Consignee struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	CustomerID string `json:"customerId,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	CountryID  string `json:"countryId,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// DAE is an export declaration valid for one destination over a date range.
type DAE struct {
	ID        string `json:"id,omitempty"`
	Number    string `json:"number"`
	CountryID string `json:"countryId,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// Mark is a box marking (marcación) agreed with a customer.
type Mark struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	CustomerID string `json:"customerId,omitempty"`
}

type Province struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	CountryID string `json:"countryId,omitempty"`
}

type Product struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Variety string `json:"variety,omitempty"`
	Color   string `json:"color,omitempty"`
}

// Note is a credit or debit note issued against an invoice.
type Note struct {
	ID        string          `json:"id,omitempty"`
	InvoiceID string          `json:"invoiceId,omitempty"`
	Number    string          `json:"number"`
	Date      string          `json:"date,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
}

type (
	CreditNote = Note
	DebitNote  = Note
)
