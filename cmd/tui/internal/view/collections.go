package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/flora/internal/entity"
	"github.com/MrJamesThe3rd/flora/internal/importer"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

type collectionState int

const (
	collectionStateBrowse collectionState = iota
	collectionStateForm
	collectionStateDelete
)

const maxTableFields = 5

// CollectionsModel browses and edits the reference collections.
type CollectionsModel struct {
	CommonModel
	session *Session

	editors []entity.Editor
	current int

	state   collectionState
	table   table.Model
	records []storage.Record

	form      *huh.Form
	values    map[string]*string
	editingID string

	status string
}

func NewCollectionsModel(s *Session) CollectionsModel {
	m := CollectionsModel{
		session: s,
		editors: s.Catalog.Editors(),
		table:   newTable(nil),
	}

	m.refreshTable()

	return m
}

func (m CollectionsModel) Title() string { return "Collections" }

func (m CollectionsModel) ShortHelp() string {
	switch m.state {
	case collectionStateForm:
		return "Navigate form | Esc: cancel"
	case collectionStateDelete:
		return "y: delete | any other key: keep"
	}

	return "Esc: back | ←/→: collection | a: add | e: edit | d: delete | r: reload"
}

func (m CollectionsModel) collection() storage.Collection {
	return m.editors[m.current].Collection()
}

// fields lists the record keys shown and edited for the current collection.
func (m CollectionsModel) fields() []importer.Column {
	p, _ := importer.ProfileFor(m.collection())
	return p.Columns
}

func (m CollectionsModel) Init() tea.Cmd {
	return m.session.Refresh(m.collection())
}

func (m CollectionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case HydratedMsg:
		if msg.Err != nil {
			m.status = fmt.Sprintf("Error loading: %v", msg.Err)
			return m, nil
		}

		m.refreshTable()

		return m, nil

	case collectionSavedMsg:
		m.state = collectionStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.status = msg.status

		return m, m.session.Refresh(m.collection())

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case collectionStateForm:
		return m.updateForm(msg)
	case collectionStateDelete:
		return m.updateDelete(msg)
	}

	return m.updateBrowse(msg)
}

func (m CollectionsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "right", "tab":
			m.current = (m.current + 1) % len(m.editors)
			m.status = ""
			m.refreshTable()

			return m, m.session.Refresh(m.collection())
		case "left", "shift+tab":
			m.current = (m.current + len(m.editors) - 1) % len(m.editors)
			m.status = ""
			m.refreshTable()

			return m, m.session.Refresh(m.collection())
		case "r":
			return m, m.session.Refresh(m.collection())
		case "a":
			return m.openForm(nil)
		case "e":
			if rec, ok := m.selected(); ok {
				return m.openForm(rec)
			}

			return m, nil
		case "d":
			if _, ok := m.selected(); ok {
				m.state = collectionStateDelete
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CollectionsModel) selected() (storage.Record, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.records) {
		return nil, false
	}

	return m.records[idx], true
}

// openForm starts the add form, or the edit form when rec is set.
func (m CollectionsModel) openForm(rec storage.Record) (tea.Model, tea.Cmd) {
	columns := m.fields()

	m.values = make(map[string]*string, len(columns))
	m.editingID = rec.ID()

	fields := make([]huh.Field, 0, len(columns))

	for _, col := range columns {
		v := field(rec, col.Field)
		m.values[col.Field] = &v

		input := huh.NewInput().Key(col.Field).Title(col.Field).Value(&v)
		if col.Required {
			name := col.Field
			input = input.Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("%s cannot be empty", name)
				}

				return nil
			})
		}

		fields = append(fields, input)
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)
	m.state = collectionStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m CollectionsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = collectionStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m CollectionsModel) updateDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.state = collectionStateBrowse

	rec, found := m.selected()
	if keyMsg.String() != "y" || !found {
		return m, nil
	}

	editor := m.editors[m.current]
	id := rec.ID()

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := editor.Delete(ctx, id); err != nil {
			return collectionSavedMsg{err: err}
		}

		return collectionSavedMsg{status: fmt.Sprintf("Deleted %s %s", editor.Collection(), id)}
	}
}

func (m CollectionsModel) View() string {
	var tabs []string

	for i, e := range m.editors {
		name := string(e.Collection())
		if i == m.current {
			name = activeStyle("[" + name + "]")
		}

		tabs = append(tabs, name)
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(strings.Join(tabs, " ")),
		tableView,
	)

	switch {
	case m.state == collectionStateForm && m.form != nil:
		title := "Add to " + string(m.collection())
		if m.editingID != "" {
			title = "Edit " + m.editingID
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	case m.state == collectionStateDelete:
		rec, _ := m.selected()
		content += "\n\n" + errorStyle(fmt.Sprintf("Delete %s? (y/n)", rec.ID()))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// refreshTable redraws the table from the session store.
func (m *CollectionsModel) refreshTable() {
	columns := []table.Column{{Title: "ID", Width: 14}}

	fields := m.fields()
	if len(fields) > maxTableFields {
		fields = fields[:maxTableFields]
	}

	for _, f := range fields {
		columns = append(columns, table.Column{Title: f.Field, Width: 18})
	}

	m.records = m.session.Store.Collection(m.collection())

	rows := make([]table.Row, 0, len(m.records))

	for _, rec := range m.records {
		row := table.Row{rec.ID()}
		for _, f := range fields {
			row = append(row, field(rec, f.Field))
		}

		rows = append(rows, row)
	}

	// Rows must never be wider than the columns, so clear them first.
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.table.SetRows(rows)
}

type collectionSavedMsg struct {
	status string
	err    error
}

func (m CollectionsModel) saveCmd() tea.Cmd {
	editor := m.editors[m.current]
	columns := m.fields()
	id := m.editingID

	values := make(map[string]string, len(m.values))
	for k, v := range m.values {
		values[k] = strings.TrimSpace(*v)
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if id == "" {
			rec := storage.Record{}

			for _, col := range columns {
				if v := values[col.Field]; v != "" {
					rec[col.Field] = v
				}
			}

			newID, err := editor.AddRecord(ctx, rec)
			if err != nil {
				return collectionSavedMsg{err: err}
			}

			return collectionSavedMsg{status: fmt.Sprintf("Added %s %s", editor.Collection(), newID)}
		}

		patch := entity.Patch{}

		for _, col := range columns {
			v := values[col.Field]
			// An empty amount is not a valid number; keep the stored one.
			if v == "" && col.Decimal {
				continue
			}

			patch[col.Field] = v
		}

		if err := editor.Update(ctx, id, patch); err != nil {
			return collectionSavedMsg{err: err}
		}

		return collectionSavedMsg{status: fmt.Sprintf("Updated %s %s", editor.Collection(), id)}
	}
}
