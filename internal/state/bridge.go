package state

import (
	"log/slog"
	"sync"
)

// Props is what a page load hands to the bridge.
type Props struct {
	Collections Partial `json:"collections"`
}

// Bridge pushes page props into a Store. Each distinct *Props is applied at
// most once; handing the same pointer again does nothing. There is no
// subscription: the store only changes when new props arrive.
type Bridge struct {
	store *Store

	mu   sync.Mutex
	last *Props
}

func NewBridge(store *Store) *Bridge {
	return &Bridge{store: store}
}

// Apply hydrates the store with props and reports whether it did. Nil props,
// props without collections and props already applied hydrate nothing.
func (b *Bridge) Apply(props *Props) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if props == nil || props == b.last {
		return false
	}

	b.last = props

	if len(props.Collections) == 0 {
		return false
	}

	b.store.Hydrate(props.Collections)
	slog.Debug("hydrated state", "collections", len(props.Collections), "version", b.store.Version())

	return true
}
