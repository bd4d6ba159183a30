package pulse

import (
	"context"
	"errors"
	"fmt"

	"github.com/HerbHall/pollnow/pkg/models"
)

var (
	// ErrObjectNotFound is returned when a selected id has no catalog row.
	ErrObjectNotFound = errors.New("object not found")
	// ErrMissingMaster is returned for a dependent object whose master row is gone.
	ErrMissingMaster = errors.New("master object not found")
)

// Catalog turns a selection of ids into fully resolved objects.
type Catalog struct {
	store *PulseStore
}

// NewCatalog creates a catalog over the given store.
func NewCatalog(store *PulseStore) *Catalog {
	return &Catalog{store: store}
}

// Resolve loads the objects for ids, filling MasterType for dependents.
// Duplicate ids are returned once, in first-seen order.
func (c *Catalog) Resolve(ctx context.Context, ids []string) ([]models.MonitoredObject, error) {
	seen := make(map[string]bool, len(ids))
	objects := make([]models.MonitoredObject, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		obj, err := c.store.GetObject(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", id, err)
		}
		if obj == nil {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
		}
		if obj.IsDependent() && obj.MasterType == "" {
			return nil, fmt.Errorf("%w: %s (master %s)", ErrMissingMaster, id, obj.MasterID)
		}
		objects = append(objects, *obj)
	}
	return objects, nil
}
