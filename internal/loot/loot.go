// Package loot draws reward items from the item catalog into inventories.
package loot

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/julianstephens/levelup/internal/models"
)

type Store interface {
	GetItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, id string) (models.Item, error)
	AddInventory(ctx context.Context, userID, itemID string, quantity int) error
}

type Dropper struct {
	intN func(n int) int
}

// NewDropper draws with the process-wide random source.
func NewDropper() *Dropper {
	return &Dropper{intN: rand.IntN}
}

// NewSeededDropper draws from a deterministic PCG source.
func NewSeededDropper(seed uint64) *Dropper {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Dropper{intN: r.IntN}
}

// Draw picks one item uniformly, or nil when the catalog is empty.
func (d *Dropper) Draw(ctx context.Context, q Store) (*models.Item, error) {
	items, err := q.GetItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	item := items[d.intN(len(items))]
	return &item, nil
}

// Grant draws one item and adds it to the user's inventory.
func (d *Dropper) Grant(ctx context.Context, q Store, userID string) (*models.Item, error) {
	item, err := d.Draw(ctx, q)
	if err != nil || item == nil {
		return nil, err
	}
	if err := q.AddInventory(ctx, userID, item.ID, 1); err != nil {
		return nil, err
	}
	return item, nil
}

// GrantItem adds one of a specific item, as fixed boss and stage rewards do.
func GrantItem(ctx context.Context, q Store, userID, itemID string) (*models.Item, error) {
	item, err := q.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reward item %s: %w", itemID, err)
	}
	if err := q.AddInventory(ctx, userID, item.ID, 1); err != nil {
		return nil, err
	}
	return &item, nil
}

// Pick returns a uniform index in [0, n) from the dropper's source. Callers
// that roll for something other than items share the same randomness.
func (d *Dropper) Pick(n int) int {
	return d.intN(n)
}

// Roll reports true with probability p.
func (d *Dropper) Roll(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	const scale = 1_000_000
	return d.intN(scale) < int(p*scale)
}
