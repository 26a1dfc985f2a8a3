package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/flora/internal/entity"
	"github.com/MrJamesThe3rd/flora/internal/export"
	"github.com/MrJamesThe3rd/flora/internal/invoice"
	"github.com/MrJamesThe3rd/flora/internal/state"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

type exportState int

const (
	exportStateTimeframe exportState = iota
	exportStatePath
	exportStateExporting
	exportStateResult
)

// ExportModel renders every invoice flown in a chosen range into a directory.
type ExportModel struct {
	CommonModel
	session *Session

	state           exportState
	err             error
	timeframePicker TimeframePicker

	dateRange DateRange
	ids       []string

	form    *huh.Form
	path    *string
	spinner spinner.Model
	summary string
}

func NewExportModel(s *Session) ExportModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	path := "./exports"

	return ExportModel{
		session:         s,
		state:           exportStateTimeframe,
		timeframePicker: NewTimeframePicker(TimeframeThisMonth),
		path:            &path,
		spinner:         sp,
	}
}

func (m ExportModel) Title() string { return "Export Invoices" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return m.session.Refresh(storage.Invoices)
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if rangeMsg, ok := msg.(RangeSelectedMsg); ok {
		m.dateRange = rangeMsg.Range
		m.ids = invoicesIn(m.session.Store, m.dateRange)
		m.form = m.buildPathForm()
		m.state = exportStatePath

		return m, m.form.Init()
	}

	switch m.state {
	case exportStateTimeframe:
		return m.updateTimeframe(msg)
	case exportStatePath:
		return m.updatePath(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ExportModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m ExportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = exportStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if len(m.ids) == 0 {
		m.state = exportStateResult
		m.summary = fmt.Sprintf("No invoices with a flight date in %s.", m.dateRange)

		return m, nil
	}

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(m.ids, *m.path))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.summary = result.body

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ExportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) buildPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title(fmt.Sprintf("Output path for %d invoices", len(m.ids))).
				Description("Directory will be created if it doesn't exist").
				Placeholder("./exports").
				Value(m.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case exportStatePath:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Rendering %d invoices...", m.spinner.View(), len(m.ids)),
		)

	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("46")).
		Render("Export Complete!")

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			"Summary:",
			"",
			m.summary,
		),
	)
}

// invoicesIn returns the ids of the stored invoices whose flight date falls
// in r, in storage order. Invoices with an unreadable date only match the
// open range.
func invoicesIn(store *state.Store, r DateRange) []string {
	var ids []string

	for _, rec := range store.Collection(storage.Invoices) {
		inv, err := entity.FromRecord[invoice.Invoice](rec)
		if err != nil {
			continue
		}

		flight, _ := invoice.ParseDate(inv.FlightDate)
		if r.Contains(flight) {
			ids = append(ids, inv.ID)
		}
	}

	return ids
}

type exportResultMsg struct {
	body string
	err  error
}

const exportTimeout = 5 * time.Minute

func (m ExportModel) runExportCmd(ids []string, path string) tea.Cmd {
	svc := m.session.Export

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		items, err := svc.Export(ctx, ids, path)
		if err != nil {
			return exportResultMsg{err: err}
		}

		return exportResultMsg{body: export.GenerateSummary(items)}
	}
}
