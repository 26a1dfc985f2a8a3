package bootstrap_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/flora/internal/bootstrap"
	"github.com/MrJamesThe3rd/flora/internal/catalog"
	"github.com/MrJamesThe3rd/flora/internal/entity"
	"github.com/MrJamesThe3rd/flora/internal/invoice"
	"github.com/MrJamesThe3rd/flora/internal/state"
	"github.com/MrJamesThe3rd/flora/internal/storage"
	"github.com/MrJamesThe3rd/flora/internal/storage/file"
)

func newLoader(repo entity.Repository) *bootstrap.Loader {
	listers := append(catalog.NewServices(repo).Listers(), invoice.NewService(repo))
	return bootstrap.NewLoader(listers...)
}

func TestLoader_LoadAll(t *testing.T) {
	ctx := context.Background()

	s := file.New(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, s.EnsureExists(ctx))

	_, err := s.Create(ctx, storage.Products, storage.Record{"name": "Rose"})
	require.NoError(t, err)

	props, err := newLoader(s).Load(ctx)
	require.NoError(t, err)

	assert.Len(t, props.Collections, len(storage.Collections))
	require.Len(t, props.Collections[storage.Products], 1)
	assert.Equal(t, "Rose", props.Collections[storage.Products][0]["name"])
	assert.Empty(t, props.Collections[storage.Invoices])

	store := state.NewStore()
	assert.True(t, state.NewBridge(store).Apply(props))
	assert.Len(t, store.Collection(storage.Products), 1)
}

func TestLoader_LoadSelected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := entity.NewMockRepository(ctrl)
	repo.EXPECT().
		List(gomock.Any(), storage.Farms).
		Return([]storage.Record{{"id": "1", "name": "Rosaprima"}}, nil)
	repo.EXPECT().
		List(gomock.Any(), storage.Invoices).
		Return([]storage.Record{}, nil)

	props, err := newLoader(repo).Load(context.Background(), storage.Farms, storage.Invoices)
	require.NoError(t, err)

	assert.Equal(t, state.Partial{
		storage.Farms:    {{"id": "1", "name": "Rosaprima"}},
		storage.Invoices: {},
	}, props.Collections)
}

func TestLoader_FailureLoadsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := entity.NewMockRepository(ctrl)
	repo.EXPECT().
		List(gomock.Any(), storage.Farms).
		Return([]storage.Record{{"id": "1"}}, nil).
		AnyTimes()
	repo.EXPECT().
		List(gomock.Any(), storage.Carriers).
		Return(nil, storage.ErrUnavailable)

	props, err := newLoader(repo).Load(context.Background(), storage.Farms, storage.Carriers)
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.Nil(t, props)
}

func TestLoader_UnknownCollection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := newLoader(entity.NewMockRepository(ctrl)).Load(context.Background(), "bananas")
	assert.ErrorIs(t, err, bootstrap.ErrUnknownCollection)
}
