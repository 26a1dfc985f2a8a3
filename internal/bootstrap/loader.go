// Package bootstrap reads the collections a page needs and packs them as
// state.Props for the hydration bridge.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/flora/internal/entity"
	"github.com/MrJamesThe3rd/flora/internal/state"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

var ErrUnknownCollection = errors.New("unknown collection")

type Loader struct {
	order   []storage.Collection
	sources map[storage.Collection]entity.Lister
}

func NewLoader(listers ...entity.Lister) *Loader {
	l := &Loader{sources: make(map[storage.Collection]entity.Lister, len(listers))}

	for _, src := range listers {
		if _, dup := l.sources[src.Collection()]; !dup {
			l.order = append(l.order, src.Collection())
		}

		l.sources[src.Collection()] = src
	}

	return l
}

// Load reads the named collections concurrently, or every known collection
// when none are named. Any failure fails the whole load, so callers never see
// a partial set.
func (l *Loader) Load(ctx context.Context, collections ...storage.Collection) (*state.Props, error) {
	if len(collections) == 0 {
		collections = l.order
	}

	for _, c := range collections {
		if _, ok := l.sources[c]; !ok {
			return nil, fmt.Errorf("loading %s: %w", c, ErrUnknownCollection)
		}
	}

	results := make([][]storage.Record, len(collections))

	g, gctx := errgroup.WithContext(ctx)

	for i, c := range collections {
		src := l.sources[c]

		g.Go(func() error {
			records, err := src.Records(gctx)
			if err != nil {
				return err
			}

			results[i] = records

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading page data: %w", err)
	}

	props := &state.Props{Collections: make(state.Partial, len(collections))}
	for i, c := range collections {
		props.Collections[c] = results[i]
	}

	return props, nil
}
