package state_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/flora/internal/state"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

func countries(names ...string) []storage.Record {
	out := make([]storage.Record, 0, len(names))
	for i, n := range names {
		out = append(out, storage.Record{"id": string(rune('1' + i)), "name": n})
	}

	return out
}

func TestStore_StartsEmpty(t *testing.T) {
	s := state.NewStore()

	assert.Empty(t, s.Snapshot())
	assert.Nil(t, s.Collection(storage.Countries))
	assert.Zero(t, s.Version())
}

func TestStore_HydrateMergesCollections(t *testing.T) {
	s := state.NewStore()

	s.Hydrate(state.Partial{
		storage.Countries: countries("Ecuador"),
		storage.Farms:     {},
	})
	s.Hydrate(state.Partial{storage.Countries: countries("Ecuador", "Colombia")})

	assert.Equal(t, uint64(2), s.Version())
	assert.Len(t, s.Collection(storage.Countries), 2)

	farms := s.Collection(storage.Farms)
	assert.NotNil(t, farms)
	assert.Empty(t, farms)

	assert.Equal(t, []storage.Collection{storage.Countries, storage.Farms}, s.Collections())
}

func TestStore_HydrateEmptyIsIgnored(t *testing.T) {
	s := state.NewStore()

	s.Hydrate(nil)
	s.Hydrate(state.Partial{})

	assert.Zero(t, s.Version())
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := state.NewStore()
	input := countries("Ecuador")

	s.Hydrate(state.Partial{storage.Countries: input})
	input[0]["name"] = "changed by caller"

	got := s.Collection(storage.Countries)
	require.Len(t, got, 1)
	assert.Equal(t, "Ecuador", got[0]["name"])

	got[0]["name"] = "changed by reader"
	assert.Equal(t, "Ecuador", s.Snapshot()[storage.Countries][0]["name"])
}

func TestBridge_Apply(t *testing.T) {
	type testCase struct {
		name        string
		props       func() []*state.Props
		wantApplied []bool
		wantVersion uint64
	}

	tests := []testCase{
		{
			name:        "Nil",
			props:       func() []*state.Props { return []*state.Props{nil} },
			wantApplied: []bool{false},
			wantVersion: 0,
		},
		{
			name:        "NoCollections",
			props:       func() []*state.Props { return []*state.Props{{}} },
			wantApplied: []bool{false},
			wantVersion: 0,
		},
		{
			name: "SamePointerTwice",
			props: func() []*state.Props {
				p := &state.Props{Collections: state.Partial{storage.Countries: countries("Peru")}}
				return []*state.Props{p, p}
			},
			wantApplied: []bool{true, false},
			wantVersion: 1,
		},
		{
			name: "EqualButDistinctProps",
			props: func() []*state.Props {
				return []*state.Props{
					{Collections: state.Partial{storage.Countries: countries("Peru")}},
					{Collections: state.Partial{storage.Countries: countries("Peru")}},
				}
			},
			wantApplied: []bool{true, true},
			wantVersion: 2,
		},
		{
			name: "ReturningToEarlierProps",
			props: func() []*state.Props {
				a := &state.Props{Collections: state.Partial{storage.Countries: countries("Peru")}}
				b := &state.Props{Collections: state.Partial{storage.Countries: countries("Chile")}}
				return []*state.Props{a, b, a}
			},
			wantApplied: []bool{true, true, true},
			wantVersion: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := state.NewStore()
			bridge := state.NewBridge(store)

			var got []bool
			for _, p := range tt.props() {
				got = append(got, bridge.Apply(p))
			}

			assert.Equal(t, tt.wantApplied, got)
			assert.Equal(t, tt.wantVersion, store.Version())
		})
	}
}

func TestBridge_AppliesFullSetInOneUpdate(t *testing.T) {
	store := state.NewStore()
	bridge := state.NewBridge(store)

	applied := bridge.Apply(&state.Props{Collections: state.Partial{
		storage.Countries: countries("Ecuador"),
		storage.Products:  {{"id": "1", "name": "Rose"}},
		storage.Invoices:  {},
	}})

	require.True(t, applied)
	assert.Equal(t, uint64(1), store.Version())
	assert.Len(t, store.Snapshot(), 3)
}

func TestBridge_ConcurrentApplySamePropsOnce(t *testing.T) {
	store := state.NewStore()
	bridge := state.NewBridge(store)
	props := &state.Props{Collections: state.Partial{storage.Countries: countries("Peru")}}

	var (
		mu      sync.Mutex
		applied int
		wg      sync.WaitGroup
	)

	for range 16 {
		wg.Go(func() {
			if bridge.Apply(props) {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		})
	}

	wg.Wait()

	assert.Equal(t, 1, applied)
	assert.Equal(t, uint64(1), store.Version())
}
