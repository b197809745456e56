// Package savedaddr is the saved-addresses panel: a CRUD list of
// user-nicknamed destinations that feeds the workflow's destination field.
package savedaddr

import (
	"context"
	"sync"

	"github.com/RobertJ1102/SP2025-Group-5/internal/models"
)

// Store is the slice of the backend client the panel needs.
type Store interface {
	SavedAddresses(ctx context.Context) ([]models.SavedAddress, error)
	AddSavedAddress(ctx context.Context, nickname, address string, coord models.Coordinate) error
	DeleteSavedAddress(ctx context.Context, id string) error
}

// Panel holds the last fetched address list. The list is refetched after
// every mutation; no finer invalidation is attempted.
type Panel struct {
	store Store

	mu        sync.Mutex
	addresses []models.SavedAddress
}

func NewPanel(store Store) *Panel {
	return &Panel{store: store}
}

// Refresh refetches the list from the backend.
func (p *Panel) Refresh(ctx context.Context) error {
	addresses, err := p.store.SavedAddresses(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.addresses = addresses
	p.mu.Unlock()
	return nil
}

// List returns the last fetched addresses.
func (p *Panel) List() []models.SavedAddress {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.SavedAddress, len(p.addresses))
	copy(out, p.addresses)
	return out
}

// Add creates a saved address, then refetches the list.
func (p *Panel) Add(ctx context.Context, nickname, address string, coord models.Coordinate) error {
	if err := p.store.AddSavedAddress(ctx, nickname, address, coord); err != nil {
		return err
	}
	return p.Refresh(ctx)
}

// Delete removes a saved address, then refetches the list.
func (p *Panel) Delete(ctx context.Context, id string) error {
	if err := p.store.DeleteSavedAddress(ctx, id); err != nil {
		return err
	}
	return p.Refresh(ctx)
}

// Find returns the saved address with the given id, if present in the last
// fetched list. IDs are opaque strings; the backend uses "home" for the
// account's home address.
func (p *Panel) Find(id string) (models.SavedAddress, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range p.addresses {
		if a.ID == id {
			return a, true
		}
	}
	return models.SavedAddress{}, false
}
