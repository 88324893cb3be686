package product

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewService(store, zerolog.Nop()), store
}

func TestSeedDefaultsPopulatesEmptyStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, SeedDefaults(ctx, store))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Greater(t, count, int64(0))

	catalog, err := store.ListAll(ctx)
	require.NoError(t, err)
	for _, category := range Categories {
		assert.NotEmpty(t, catalog[category], "category %s should be seeded", category)
	}
}

func TestSeedDefaultsLeavesNonEmptyStoreAlone(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Product{ProductID: "pt_1", Name: "PT CUSTOM", Category: "pt"}))
	require.NoError(t, SeedDefaults(ctx, store))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAddMintsSequentialProductIDs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Add(ctx, "pt", "PT NOVO")
	require.NoError(t, err)
	assert.Equal(t, "pt_1", first.ProductID)

	second, err := svc.Add(ctx, "pt", "PT OUTRO")
	require.NoError(t, err)
	assert.Equal(t, "pt_2", second.ProductID)

	assert.Equal(t, "un", first.Unit)
	assert.True(t, first.Active)
}

func TestAddUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Add(context.Background(), "xx", "NOPE")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestRemoveProduct(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	p, err := svc.Add(ctx, "gn", "GUARD TESTE")
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "gn", p.ProductID))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	err = svc.Remove(ctx, "gn", p.ProductID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCategoryIsCaseInsensitive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "TB", "TB TESTE")
	require.NoError(t, err)

	products, err := svc.Category(ctx, "Tb")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "tb_1", products[0].ProductID)
}

func TestNewProductIDSkipsGaps(t *testing.T) {
	existing := []*Product{
		{ProductID: "ph_2"},
		{ProductID: "ph_7"},
	}
	assert.Equal(t, "ph_8", NewProductID("ph", existing))
	assert.Equal(t, "st_1", NewProductID("st", nil))
}
