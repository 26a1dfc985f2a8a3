package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/flora/internal/entity"
	"github.com/MrJamesThe3rd/flora/internal/export"
	"github.com/MrJamesThe3rd/flora/internal/invoice"
	"github.com/MrJamesThe3rd/flora/internal/mail"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

const renderTimeout = time.Minute

type invoiceState int

const (
	invoiceStateBrowse invoiceState = iota
	invoiceStateLoading
	invoiceStateEdit
	invoiceStateEmail
	invoiceStateDelete
)

// InvoicesModel lists invoices and drives editing, rendering and emailing them.
type InvoicesModel struct {
	CommonModel
	session *Session

	state    invoiceState
	table    table.Model
	invoices []invoice.Invoice

	draft  *invoice.Draft
	fields *draftFields
	email  *emailFields
	form   *huh.Form

	outputDir string
	status    string
}

func NewInvoicesModel(s *Session) InvoicesModel {
	m := InvoicesModel{
		session: s,
		table: newTable([]table.Column{
			{Title: "Number", Width: 12},
			{Title: "Customer", Width: 24},
			{Title: "Flight", Width: 12},
			{Title: "AWB", Width: 16},
			{Title: "Boxes", Width: 6},
			{Title: "Full", Width: 6},
			{Title: "Stems", Width: 7},
			{Title: "Amount", Width: 11},
		}),
		outputDir: "./exports",
	}

	m.refreshTable()

	return m
}

func (m InvoicesModel) Title() string { return "Invoices" }

func (m InvoicesModel) ShortHelp() string {
	switch m.state {
	case invoiceStateEdit, invoiceStateEmail:
		return "Navigate form | Esc: cancel"
	case invoiceStateDelete:
		return "y: delete | any other key: keep"
	}

	return "Esc: back | n: new | e: edit | p: pdf | m: email | d: delete | r: reload"
}

// Invoices and every collection they reference are needed to render the table.
var invoiceCollections = []storage.Collection{
	storage.Invoices, storage.Customers, storage.Sellers, storage.Consignees,
	storage.Carriers, storage.Countries,
}

func (m InvoicesModel) Init() tea.Cmd {
	return m.session.Refresh(invoiceCollections...)
}

func (m InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case HydratedMsg:
		if msg.Err != nil {
			m.status = fmt.Sprintf("Error loading: %v", msg.Err)
			return m, nil
		}

		m.refreshTable()

		return m, nil

	case draftLoadedMsg:
		if msg.err != nil {
			m.state = invoiceStateBrowse
			m.status = fmt.Sprintf("Error opening invoice: %v", msg.err)

			return m, nil
		}

		return m.openEditor(msg.draft)

	case invoiceActionMsg:
		m.state = invoiceStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = msg.status
		if !msg.changed {
			return m, nil
		}

		return m, m.session.Refresh(storage.Invoices)

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case invoiceStateEdit:
		return m.updateEditor(msg)
	case invoiceStateEmail:
		return m.updateEmail(msg)
	case invoiceStateDelete:
		return m.updateDelete(msg)
	case invoiceStateLoading:
		return m, nil
	}

	return m.updateBrowse(msg)
}

func (m InvoicesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "r":
		return m, m.session.Refresh(invoiceCollections...)
	case "n":
		return m.openEditor(m.session.Invoices.NewDraft())
	}

	inv, selected := m.selected()

	switch keyMsg.String() {
	case "e":
		if selected {
			m.state = invoiceStateLoading
			m.status = "Opening invoice..."

			return m, m.loadDraftCmd(inv.ID)
		}
	case "p":
		if selected {
			m.status = "Rendering PDF..."
			return m, m.pdfCmd(inv.ID)
		}
	case "m":
		if selected {
			m.email = &emailFields{}
			m.form = newEmailForm(m.email)
			m.state = invoiceStateEmail
			m.table.Blur()

			return m, m.form.Init()
		}
	case "d":
		if selected {
			m.state = invoiceStateDelete
		}
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m InvoicesModel) selected() (invoice.Invoice, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.invoices) {
		return invoice.Invoice{}, false
	}

	return m.invoices[idx], true
}

func (m InvoicesModel) openEditor(d *invoice.Draft) (tea.Model, tea.Cmd) {
	m.draft = d
	m.fields = fieldsOf(d)
	m.form = newDraftForm(m.session.Store, m.fields)
	m.state = invoiceStateEdit
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

// updateForm forwards msg to the open form and reports whether it completed.
func (m *InvoicesModel) updateForm(msg tea.Msg) (tea.Cmd, bool, bool) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = invoiceStateBrowse
		m.form = nil
		m.table.Focus()

		return nil, false, true
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	return cmd, m.form.State == huh.StateCompleted, false
}

func (m InvoicesModel) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, done, cancelled := m.updateForm(msg)
	if cancelled || !done {
		return m, cmd
	}

	if err := m.fields.apply(m.draft); err != nil {
		return m, func() tea.Msg { return invoiceActionMsg{err: err} }
	}

	return m, m.saveDraftCmd(m.draft)
}

func (m InvoicesModel) updateEmail(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, done, cancelled := m.updateForm(msg)
	if cancelled || !done {
		return m, cmd
	}

	inv, ok := m.selected()
	if !ok {
		m.state = invoiceStateBrowse
		return m, nil
	}

	req := export.EmailRequest{Subject: m.email.subject, Note: m.email.note}
	for _, addr := range splitAddresses(m.email.to) {
		req.To = append(req.To, mail.Address{Email: addr})
	}

	for _, addr := range splitAddresses(m.email.cc) {
		req.CC = append(req.CC, mail.Address{Email: addr})
	}

	m.status = "Sending email..."

	return m, m.emailCmd(inv.ID, req)
}

func (m InvoicesModel) updateDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.state = invoiceStateBrowse

	inv, found := m.selected()
	if keyMsg.String() != "y" || !found {
		return m, nil
	}

	svc := m.session.Invoices

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := svc.Delete(ctx, inv.ID); err != nil {
			return invoiceActionMsg{err: err}
		}

		return invoiceActionMsg{status: "Deleted invoice " + orID(inv), changed: true}
	}
}

func (m InvoicesModel) View() string {
	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView

	switch {
	case m.state == invoiceStateEdit && m.form != nil:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.editorPanel())
	case m.state == invoiceStateEmail && m.form != nil:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel("Email invoice", m.form.View()))
	case m.state == invoiceStateDelete:
		inv, _ := m.selected()
		content += "\n\n" + errorStyle(fmt.Sprintf("Delete invoice %s? (y/n)", orID(inv)))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m InvoicesModel) editorPanel() string {
	title := "New invoice"
	if m.draft.ID != "" {
		title = "Edit invoice " + m.draft.ID
	}

	t := m.draft.Totals()
	summary := fmt.Sprintf("%d items | %d boxes (%s full) | %d stems | %s",
		len(m.draft.Items), t.Boxes, t.FullBoxes.String(), t.Stems, FormatAmount(t.Amount))

	return panel(title, summary+"\n\n"+m.form.View())
}

func panel(title, body string) string {
	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(54).
		Render(title + "\n\n" + body)
}

func orID(inv invoice.Invoice) string {
	if inv.InvoiceNumber != "" {
		return inv.InvoiceNumber
	}

	return inv.ID
}

// refreshTable redraws the table from the session store. Records that do not
// decode as invoices are left out and reported in the status line.
func (m *InvoicesModel) refreshTable() {
	store := m.session.Store
	customers := store.Collection(storage.Customers)

	m.invoices = nil

	var broken int

	rows := make([]table.Row, 0)

	for _, rec := range store.Collection(storage.Invoices) {
		inv, err := entity.FromRecord[invoice.Invoice](rec)
		if err != nil {
			broken++
			continue
		}

		t := inv.Totals()

		m.invoices = append(m.invoices, inv)
		rows = append(rows, table.Row{
			inv.InvoiceNumber,
			nameOf(customers, inv.CustomerID),
			inv.FlightDate,
			inv.AWB,
			fmt.Sprint(t.Boxes),
			t.FullBoxes.String(),
			fmt.Sprint(t.Stems),
			FormatAmount(t.Amount),
		})
	}

	m.table.SetRows(rows)

	if broken > 0 {
		m.status = fmt.Sprintf("%d invoices could not be read", broken)
	}
}

// Messages

type draftLoadedMsg struct {
	draft *invoice.Draft
	err   error
}

type invoiceActionMsg struct {
	status  string
	changed bool
	err     error
}

func (m InvoicesModel) loadDraftCmd(id string) tea.Cmd {
	svc := m.session.Invoices

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := svc.LoadForEdit(ctx, id)

		return draftLoadedMsg{draft: d, err: err}
	}
}

func (m InvoicesModel) saveDraftCmd(d *invoice.Draft) tea.Cmd {
	svc := m.session.Invoices

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		id, err := svc.SaveDraft(ctx, d)
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		return invoiceActionMsg{status: "Saved invoice " + id, changed: true}
	}
}

func (m InvoicesModel) pdfCmd(id string) tea.Cmd {
	svc := m.session.Export
	dir := m.outputDir

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
		defer cancel()

		f, err := svc.PDF(ctx, id)
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return invoiceActionMsg{err: err}
		}

		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Content, 0o644); err != nil {
			return invoiceActionMsg{err: err}
		}

		return invoiceActionMsg{status: "Wrote " + path}
	}
}

func (m InvoicesModel) emailCmd(id string, req export.EmailRequest) tea.Cmd {
	svc := m.session.Export

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
		defer cancel()

		res, err := svc.Email(ctx, id, req)
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		if !res.Success {
			return invoiceActionMsg{err: fmt.Errorf("email not sent: %s", res.Error)}
		}

		return invoiceActionMsg{status: fmt.Sprintf("Email sent to %d recipients", len(req.To))}
	}
}
