package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazbav/spoolshelf/internal/domain"
)

func TestStoreKeepsFirstDuplicate(t *testing.T) {
	store := NewStore([]domain.Filament{
		{ID: 1, Name: "first", Type: "PLA", Manufacturer: "eSun"},
		{ID: 1, Name: "second", Type: "ABS", Manufacturer: "REC"},
		{ID: 2, Name: "other", Type: "PLA", Manufacturer: "eSun"},
	})
	require.Equal(t, 2, store.Len())
	f, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "first", f.Name)
	assert.Equal(t, []string{"PLA"}, store.Materials())
	assert.Equal(t, []string{"eSun"}, store.Manufacturers())

	_, err = store.Get(3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewStore([]domain.Filament{{ID: 1, Name: "a", Type: "PLA"}})
	all := store.All()
	all[0].Name = "mutated"
	materials := store.Materials()
	materials[0] = "mutated"

	f, _ := store.Get(1)
	assert.Equal(t, "a", f.Name)
	assert.Equal(t, []string{"PLA"}, store.Materials())
}

func TestNilStoreIsUnavailable(t *testing.T) {
	var store *Store
	assert.Zero(t, store.Len())
	assert.Nil(t, store.All())
	_, err := store.Get(1)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, store.LoadedAt().IsZero())
}
