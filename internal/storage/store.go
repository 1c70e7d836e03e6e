// Package storage provides abstractions for persisting finished bills.
package storage

import (
	"context"

	"github.com/ahsanmubariz/splitbill/internal/models"
)

// Store defines the interface for saved-bill storage. The abstraction
// allows swapping storage backends without changing the HTTP layer.
// Saving is fire-and-forget from the session's perspective: a failed
// save never affects in-memory state.
type Store interface {
	// SaveBill persists a finished bill snapshot. The bill's ID and
	// CreatedAt fields are populated by the store if unset.
	SaveBill(ctx context.Context, bill *models.SavedBill) error

	// GetBill retrieves a saved bill by its ID.
	GetBill(ctx context.Context, billID string) (*models.SavedBill, error)

	// Close releases any resources held by the store.
	Close() error
}
