package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/flora/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/flora/internal/app"
	"github.com/MrJamesThe3rd/flora/internal/config"
)

type model struct {
	session *view.Session

	currentView View
	status      string

	collectionsView view.CollectionsModel
	invoicesView    view.InvoicesModel
	importView      view.ImportModel
	exportView      view.ExportModel
}

type View int

const (
	ViewMenu        View = 0
	ViewCollections View = 1
	ViewInvoices    View = 2
	ViewImport      View = 3
	ViewExport      View = 4
)

func initialModel(s *view.Session) model {
	return model{
		session:         s,
		currentView:     ViewMenu,
		collectionsView: view.NewCollectionsModel(s),
		invoicesView:    view.NewInvoicesModel(s),
		importView:      view.NewImportModel(s),
		exportView:      view.NewExportModel(s),
	}
}

// Init hydrates every collection before the first screen opens.
func (m model) Init() tea.Cmd {
	return m.session.Refresh()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewCollections
				m.collectionsView = view.NewCollectionsModel(m.session)

				return m, m.collectionsView.Init()
			case "2":
				m.currentView = ViewInvoices
				m.invoicesView = view.NewInvoicesModel(m.session)

				return m, m.invoicesView.Init()
			case "3":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.session)

				return m, m.importView.Init()
			case "4":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.session)

				return m, m.exportView.Init()
			}
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case view.HydratedMsg:
		// The store is updated here, once, before any screen redraws from it.
		m.session.Apply(msg)

		if msg.Err != nil {
			m.status = "Could not load data: " + msg.Err.Error()
		} else {
			m.status = ""
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewCollections:
		var newModel tea.Model
		newModel, cmd = m.collectionsView.Update(msg)
		m.collectionsView = newModel.(view.CollectionsModel)
	case ViewInvoices:
		var newModel tea.Model
		newModel, cmd = m.invoicesView.Update(msg)
		m.invoicesView = newModel.(view.InvoicesModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		menu := "Flora\n\n" +
			"1. Collections\n" +
			"2. Invoices\n" +
			"3. Import CSV\n" +
			"4. Export Invoices\n\n" +
			"q. Quit"

		if m.status != "" {
			menu += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status)
		}

		return lipgloss.NewStyle().Padding(2).Render(menu)
	case ViewCollections:
		return m.collectionsView.View()
	case ViewInvoices:
		return m.invoicesView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; logs go to a file when one is configured.
	if path := os.Getenv("FLORA_TUI_LOG"); path != "" {
		if f, err := tea.LogToFile(path, "flora"); err == nil {
			defer f.Close()

			slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
		}
	} else {
		app.SetupLogger(cfg)
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(view.NewSession(a)))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
