package file

import (
	"context"

	"github.com/campus-hub/campus-content-bot/internal/domain/catalog"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/docstore"
)

// CatalogStore persists the content tree.
type CatalogStore struct {
	store *docstore.Store[*catalog.Catalog]
}

// NewCatalogStore creates the store for catalog.json.
func NewCatalogStore(path string, opts docstore.LockOptions) *CatalogStore {
	return &CatalogStore{
		store: docstore.New(path, opts, catalog.New),
	}
}

// Load returns the current tree without locking.
func (s *CatalogStore) Load() (*catalog.Catalog, error) {
	return s.store.Load()
}

// Update mutates the tree under the advisory lock.
func (s *CatalogStore) Update(ctx context.Context, fn func(c *catalog.Catalog) error) error {
	return s.store.Update(ctx, func(c *catalog.Catalog) (*catalog.Catalog, error) {
		if c == nil {
			c = catalog.New()
		}
		if err := fn(c); err != nil {
			return nil, err
		}
		return c, nil
	})
}
