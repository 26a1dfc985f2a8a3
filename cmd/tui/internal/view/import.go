package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/flora/internal/importer"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateCollectionSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateResult
)

// ImportModel adds the rows of a CSV export to a reference collection.
type ImportModel struct {
	CommonModel
	session *Session

	state       importState
	filePicker  filepicker.Model
	collections []storage.Collection
	cursor      int

	status string
	err    error
}

func NewImportModel(s *Session) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	var importable []storage.Collection

	for _, c := range storage.Collections {
		if _, ok := importer.ProfileFor(c); ok {
			importable = append(importable, c)
		}
	}

	return ImportModel{
		session:     s,
		filePicker:  fp,
		collections: importable,
	}
}

func (m ImportModel) Title() string { return "Import CSV" }

func (m ImportModel) ShortHelp() string {
	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return nil
}

func (m ImportModel) selectedCollection() storage.Collection {
	return m.collections[m.cursor]
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateCollectionSelect {
			return m.updateCollectionSelect(msg)
		}

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err

		switch {
		case msg.err != nil && len(msg.result.IDs) > 0:
			m.status = fmt.Sprintf("Imported %d %s, then failed: %v", len(msg.result.IDs), m.selectedCollection(), msg.err)
		case msg.err != nil:
			m.status = fmt.Sprintf("Error: %v", msg.err)
		default:
			m.status = fmt.Sprintf("Imported %d %s (%d rows skipped).", len(msg.result.IDs), m.selectedCollection(), msg.result.Skipped)
		}

		if len(msg.result.IDs) == 0 {
			return m, nil
		}

		return m, m.session.Refresh(m.selectedCollection())
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing %s into %s...", path, m.selectedCollection())

		return m, m.importCmd(m.selectedCollection(), path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateCollectionSelect
		return m, nil
	case importStateResult:
		m.state = importStateCollectionSelect
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateCollectionSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < len(m.collections)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		m.state = importStateFilePick
		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateCollectionSelect:
		return m.viewCollectionSelect()
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select CSV file for %s:\n\n%s", m.selectedCollection(), m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewCollectionSelect() string {
	s := "Import into:\n\n"

	for i, c := range m.collections {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, c)
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewResult() string {
	status := okStyle(m.status)
	if m.err != nil {
		status = errorStyle(m.status)
	}

	return lipgloss.NewStyle().Padding(2).Render(status + "\n\n(Esc to go back)")
}

type importResultMsg struct {
	result importer.Result
	err    error
}

func (m ImportModel) importCmd(c storage.Collection, path string) tea.Cmd {
	svc := m.session.Importer

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := svc.Import(ctx, c, f)

		return importResultMsg{result: res, err: err}
	}
}
