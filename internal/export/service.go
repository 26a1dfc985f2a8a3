package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/flora/internal/catalog"
	"github.com/MrJamesThe3rd/flora/internal/entity"
	"github.com/MrJamesThe3rd/flora/internal/invoice"
	"github.com/MrJamesThe3rd/flora/internal/mail"
	"github.com/MrJamesThe3rd/flora/internal/pdf"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

type Renderer interface {
	Render(ctx context.Context, html string, opts pdf.Options) ([]byte, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mail.Message) mail.Result
}

// Item is one exported invoice and where its PDF was written.
type Item struct {
	Document pdf.Document
	FilePath string
}

// File is a rendered invoice PDF.
type File struct {
	Name    string
	Content []byte
}

// EmailRequest names the recipients of an invoice email. Subject and Note
// are optional.
type EmailRequest struct {
	To      []mail.Address `json:"to"`
	CC      []mail.Address `json:"cc,omitempty"`
	Subject string         `json:"subject,omitempty"`
	Note    string         `json:"note,omitempty"`
}

// Service renders invoices as PDF documents and emails them.
type Service struct {
	invoices *invoice.Service
	catalog  *catalog.Services
	renderer Renderer
	mailer   Mailer
}

func NewService(invoices *invoice.Service, cat *catalog.Services, renderer Renderer, mailer Mailer) *Service {
	return &Service{
		invoices: invoices,
		catalog:  cat,
		renderer: renderer,
		mailer:   mailer,
	}
}

// Document loads the invoice and resolves the catalog records it references.
// Dangling references are left blank.
func (s *Service) Document(ctx context.Context, id string) (*pdf.Document, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	doc := &pdf.Document{Invoice: inv, Totals: inv.Totals()}

	lookups := []error{
		lookup(ctx, s.catalog.Sellers, inv.SellerID, &doc.Seller),
		lookup(ctx, s.catalog.Customers, inv.CustomerID, &doc.Customer),
		lookup(ctx, s.catalog.Consignees, inv.ConsigneeID, &doc.Consignee),
		lookup(ctx, s.catalog.Carriers, inv.CarrierID, &doc.Carrier),
		lookup(ctx, s.catalog.Countries, inv.CountryID, &doc.Country),
		lookup(ctx, s.catalog.DAEs, inv.DAEID, &doc.DAE),
		lookup(ctx, s.catalog.Marks, inv.MarkID, &doc.Mark),
	}

	if err := errors.Join(lookups...); err != nil {
		return nil, err
	}

	farms, err := s.catalog.Farms.List(ctx)
	if err != nil {
		return nil, err
	}

	products, err := s.catalog.Products.List(ctx)
	if err != nil {
		return nil, err
	}

	doc.Farms = byID(farms, func(f catalog.Farm) string { return f.ID })
	doc.Products = byID(products, func(p catalog.Product) string { return p.ID })

	return doc, nil
}

func lookup[T any](ctx context.Context, svc *entity.Service[T], id string, dst *T) error {
	if id == "" {
		return nil
	}

	v, err := svc.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	*dst = v

	return nil
}

func byID[T any](items []T, key func(T) string) map[string]T {
	m := make(map[string]T, len(items))
	for _, it := range items {
		m[key(it)] = it
	}

	return m
}

// PDF renders the invoice with the given id.
func (s *Service) PDF(ctx context.Context, id string) (*File, error) {
	doc, err := s.Document(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.render(ctx, doc)
}

func (s *Service) render(ctx context.Context, doc *pdf.Document) (*File, error) {
	html, err := doc.HTML()
	if err != nil {
		return nil, err
	}

	content, err := s.renderer.Render(ctx, html, pdf.DefaultOptions)
	if err != nil {
		return nil, fmt.Errorf("rendering invoice %s: %w", doc.Invoice.ID, err)
	}

	return &File{Name: doc.Filename(), Content: content}, nil
}

// Export renders every invoice in ids into outputDir.
func (s *Service) Export(ctx context.Context, ids []string, outputDir string) ([]Item, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	items := make([]Item, 0, len(ids))
	used := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		doc, err := s.Document(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading invoice %s: %w", id, err)
		}

		f, err := s.render(ctx, doc)
		if err != nil {
			return nil, err
		}

		path := filepath.Join(outputDir, uniqueName(f.Name, used))
		if err := os.WriteFile(path, f.Content, 0o644); err != nil {
			return nil, fmt.Errorf("writing file: %w", err)
		}

		items = append(items, Item{Document: *doc, FilePath: path})
	}

	return items, nil
}

// uniqueName returns name, or name with a counter before the extension when
// another invoice of the same export already took it.
func uniqueName(name string, used map[string]struct{}) string {
	ext := filepath.Ext(name)
	candidate := name

	for n := 2; ; n++ {
		if _, taken := used[candidate]; !taken {
			used[candidate] = struct{}{}
			return candidate
		}

		candidate = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
	}
}

// Email renders the invoice and sends it as an attachment. Loading and
// rendering failures are returned as errors; delivery failures are reported
// in the result.
func (s *Service) Email(ctx context.Context, id string, req EmailRequest) (mail.Result, error) {
	doc, err := s.Document(ctx, id)
	if err != nil {
		return mail.Result{}, err
	}

	f, err := s.render(ctx, doc)
	if err != nil {
		return mail.Result{}, err
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = "Invoice " + doc.Invoice.InvoiceNumber
	}

	msg := mail.Message{
		To:      req.To,
		CC:      req.CC,
		Subject: subject,
		Text:    GenerateEmailBody(*doc, req.Note),
		Attachments: []mail.Attachment{
			{Filename: f.Name, MIMEType: "application/pdf", Content: f.Content},
		},
	}

	return s.mailer.Send(ctx, msg), nil
}

// GenerateEmailBody creates the plain text body sent along an invoice.
func GenerateEmailBody(doc pdf.Document, note string) string {
	var sb strings.Builder

	greeting := "Hello"
	if doc.Customer.Name != "" {
		greeting = "Dear " + doc.Customer.Name
	}

	fmt.Fprintf(&sb, "%s,\n\n", greeting)
	fmt.Fprintf(&sb, "Please find attached commercial invoice %s.\n\n", doc.Invoice.InvoiceNumber)
	fmt.Fprintf(&sb, "Flight date: %s\n", orDash(doc.Invoice.FlightDate))
	fmt.Fprintf(&sb, "AWB:         %s\n", orDash(doc.Invoice.AWB))
	fmt.Fprintf(&sb, "Boxes:       %d\n", doc.Totals.Boxes)
	fmt.Fprintf(&sb, "Full boxes:  %s\n", doc.Totals.FullBoxes)
	fmt.Fprintf(&sb, "Stems:       %d\n", doc.Totals.Stems)
	fmt.Fprintf(&sb, "Amount:      %s\n", doc.Totals.Amount.StringFixed(2))

	if note = strings.TrimSpace(note); note != "" {
		fmt.Fprintf(&sb, "\n%s\n", note)
	}

	if doc.Seller.Name != "" {
		fmt.Fprintf(&sb, "\n%s\n", doc.Seller.Name)
	}

	return sb.String()
}

// GenerateSummary lists exported invoices, one per line.
func GenerateSummary(items []Item) string {
	var sb strings.Builder

	for _, item := range items {
		inv := item.Document.Invoice

		file := "not rendered"
		if item.FilePath != "" {
			file = filepath.Base(item.FilePath)
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s | %s\n",
			orDash(inv.FlightDate), orDash(inv.InvoiceNumber), orDash(item.Document.Customer.Name),
			item.Document.Totals.Amount.StringFixed(2), file)
	}

	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
