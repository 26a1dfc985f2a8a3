package view

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/flora/internal/app"
	"github.com/MrJamesThe3rd/flora/internal/state"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// HydratedMsg carries a freshly loaded set of collections. Screens redraw
// from the session store when they receive it.
type HydratedMsg struct {
	Props *state.Props
	Err   error
}

// Session is the state shared by every screen: the services and the
// in-memory copy of the collections they render.
type Session struct {
	*app.App

	Store  *state.Store
	bridge *state.Bridge
}

func NewSession(a *app.App) *Session {
	store := state.NewStore()

	return &Session{App: a, Store: store, bridge: state.NewBridge(store)}
}

// Refresh loads the given collections, or all of them, in the background.
func (s *Session) Refresh(collections ...storage.Collection) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		props, err := s.Loader.Load(ctx, collections...)

		return HydratedMsg{Props: props, Err: err}
	}
}

// Apply hydrates the store from msg. It reports whether anything changed.
func (s *Session) Apply(msg HydratedMsg) bool {
	if msg.Err != nil {
		slog.Error("failed to load collections", "error", msg.Err)
		return false
	}

	return s.bridge.Apply(msg.Props)
}
