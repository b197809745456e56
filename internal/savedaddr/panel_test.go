package savedaddr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobertJ1102/SP2025-Group-5/internal/models"
)

type fakeStore struct {
	addresses []models.SavedAddress
	listErr   error
	addErr    error
	deleteErr error
	lists     int
}

func (f *fakeStore) SavedAddresses(_ context.Context) ([]models.SavedAddress, error) {
	f.lists++
	return f.addresses, f.listErr
}

func (f *fakeStore) AddSavedAddress(_ context.Context, nickname, address string, coord models.Coordinate) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.addresses = append(f.addresses, models.SavedAddress{ID: "9", Nickname: nickname, Address: address, Coord: coord})
	return nil
}

func (f *fakeStore) DeleteSavedAddress(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.addresses[:0]
	for _, a := range f.addresses {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	f.addresses = kept
	return nil
}

func seeded() *fakeStore {
	return &fakeStore{addresses: []models.SavedAddress{
		{ID: "home", Nickname: "Home", Address: "6516 Wydown Blvd", Coord: models.Coordinate{Lat: 38.6423, Lng: -90.3221}},
		{ID: "42", Nickname: "Work", Address: "1 Brookings Dr", Coord: models.Coordinate{Lat: 38.6479, Lng: -90.3107}},
	}}
}

func TestRefreshAndFind(t *testing.T) {
	p := NewPanel(seeded())
	require.NoError(t, p.Refresh(context.Background()))

	assert.Len(t, p.List(), 2)

	home, ok := p.Find("home")
	require.True(t, ok)
	assert.Equal(t, "6516 Wydown Blvd", home.Address)

	_, ok = p.Find("missing")
	assert.False(t, ok)
}

func TestAddRefetchesList(t *testing.T) {
	store := seeded()
	p := NewPanel(store)
	require.NoError(t, p.Refresh(context.Background()))

	require.NoError(t, p.Add(context.Background(), "Gym", "100 Fitness Way", models.Coordinate{Lat: 38.65, Lng: -90.32}))
	assert.Len(t, p.List(), 3)
	// One fetch at setup, one after the mutation.
	assert.Equal(t, 2, store.lists)
}

func TestDeleteRefetchesList(t *testing.T) {
	p := NewPanel(seeded())
	require.NoError(t, p.Refresh(context.Background()))

	require.NoError(t, p.Delete(context.Background(), "42"))
	assert.Len(t, p.List(), 1)
	_, ok := p.Find("42")
	assert.False(t, ok)
}

func TestMutationErrorSkipsRefetch(t *testing.T) {
	store := seeded()
	store.addErr = errors.New("duplicate nickname")
	p := NewPanel(store)
	require.NoError(t, p.Refresh(context.Background()))

	assert.Error(t, p.Add(context.Background(), "Home", "x", models.Coordinate{}))
	assert.Equal(t, 1, store.lists)
}

func TestListReturnsCopy(t *testing.T) {
	p := NewPanel(seeded())
	require.NoError(t, p.Refresh(context.Background()))

	list := p.List()
	list[0].Nickname = "mutated"

	fresh, ok := p.Find("home")
	require.True(t, ok)
	assert.Equal(t, "Home", fresh.Nickname)
}
