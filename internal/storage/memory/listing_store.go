package memory

import (
	"context"
	"sync"

	"auction-advisor/internal/dataset"
	"auction-advisor/internal/domain"
	"auction-advisor/internal/storage"
)

// ListingStore is an in-memory implementation of storage.ListingStore.
type ListingStore struct {
	mu   sync.RWMutex
	data []domain.Listing
}

// NewListingStore creates a new in-memory listing store.
func NewListingStore() *ListingStore {
	return &ListingStore{}
}

// Compile-time interface check.
var _ storage.ListingStore = (*ListingStore)(nil)

// Name returns a description for logs.
func (s *ListingStore) Name() string {
	return "memory:" + storage.DefaultListingsTable
}

// InsertListings appends copies of listings.
func (s *ListingStore) InsertListings(_ context.Context, listings []domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range listings {
		s.data = append(s.data, copyListing(l))
	}
	return nil
}

// CountListings returns the number of stored listings.
func (s *ListingStore) CountListings(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

// Load returns the stored listings as a table.
func (s *ListingStore) Load(_ context.Context) (*dataset.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return nil, dataset.ErrEmptyDataset
	}
	return dataset.ListingsTable(s.data), nil
}

// copyListing copies the numeric pointers so callers cannot mutate stored rows.
func copyListing(l domain.Listing) domain.Listing {
	out := l
	for _, n := range out.Numbers() {
		if *n != nil {
			v := **n
			*n = &v
		}
	}
	return out
}
