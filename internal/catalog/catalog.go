// Package catalog serves the read-only metric catalog and resolved axis
// weights, cached in memory between submissions.
package catalog

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/julianstephens/levelup/internal/constants"
	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage"
)

// Source is the subset of storage the catalog reads from.
type Source interface {
	GetActiveAxes(ctx context.Context) ([]models.Axis, error)
	GetActiveMetrics(ctx context.Context) ([]models.Metric, error)
	GetCoveringCycle(ctx context.Context, date string) (models.PriorityCycle, error)
}

// Snapshot is the active catalog at one point in time. Treat it as read-only.
type Snapshot struct {
	Axes    []models.Axis
	Metrics []models.Metric

	metrics map[string]models.Metric
}

// Metric returns the active metric with id.
func (s *Snapshot) Metric(id string) (models.Metric, bool) {
	m, ok := s.metrics[id]
	return m, ok
}

// Weights maps axis id to weight percentage for one date.
type Weights struct {
	// CycleID is empty when the equal-weight fallback was used.
	CycleID string
	ByAxis  map[string]float64
}

type Catalog struct {
	src   Source
	cache *lru.Cache
}

const snapshotKey = "snapshot"

// New wraps src with an LRU holding the snapshot and per-date weights.
func New(src Source, size int) (*Catalog, error) {
	if size <= 0 {
		size = constants.DefaultCatalogCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog cache: %w", err)
	}
	return &Catalog{src: src, cache: cache}, nil
}

// Snapshot returns the active axes and metrics.
func (c *Catalog) Snapshot(ctx context.Context) (*Snapshot, error) {
	if cached, ok := c.cache.Get(snapshotKey); ok {
		return cached.(*Snapshot), nil
	}

	axes, err := c.src.GetActiveAxes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load axes: %w", err)
	}
	metrics, err := c.src.GetActiveMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load metrics: %w", err)
	}

	snap := NewSnapshot(axes, metrics)
	c.cache.Add(snapshotKey, snap)
	return snap, nil
}

// NewSnapshot indexes metrics that are active and belong to an active axis.
func NewSnapshot(axes []models.Axis, metrics []models.Metric) *Snapshot {
	active := make(map[string]bool, len(axes))
	snap := &Snapshot{metrics: make(map[string]models.Metric, len(metrics))}
	for _, a := range axes {
		if a.Active {
			active[a.ID] = true
			snap.Axes = append(snap.Axes, a)
		}
	}
	for _, m := range metrics {
		if m.Active && active[m.AxisID] {
			snap.Metrics = append(snap.Metrics, m)
			snap.metrics[m.ID] = m
		}
	}
	return snap
}

// Weights resolves the axis weights that apply on date.
func (c *Catalog) Weights(ctx context.Context, date string) (Weights, error) {
	key := "weights:" + date
	if cached, ok := c.cache.Get(key); ok {
		return cached.(Weights), nil
	}

	snap, err := c.Snapshot(ctx)
	if err != nil {
		return Weights{}, err
	}

	var cycle *models.PriorityCycle
	found, err := c.src.GetCoveringCycle(ctx, date)
	switch {
	case err == nil:
		cycle = &found
	case errors.Is(err, storage.ErrNotFound):
	default:
		return Weights{}, fmt.Errorf("failed to resolve cycle for %s: %w", date, err)
	}

	w := ResolveWeights(snap.Axes, cycle)
	c.cache.Add(key, w)
	return w, nil
}

// ResolveWeights uses the cycle's weights when there is one, otherwise splits
// 100% evenly across the active axes.
func ResolveWeights(axes []models.Axis, cycle *models.PriorityCycle) Weights {
	w := Weights{ByAxis: make(map[string]float64)}
	if cycle != nil {
		w.CycleID = cycle.ID
		for _, aw := range cycle.Weights {
			w.ByAxis[aw.AxisID] += aw.WeightPercentage
		}
		return w
	}

	if len(axes) == 0 {
		return w
	}
	share := 100.0 / float64(len(axes))
	for _, a := range axes {
		w.ByAxis[a.ID] = share
	}
	return w
}

// Invalidate drops everything cached, e.g. after a catalog import.
func (c *Catalog) Invalidate() {
	c.cache.Purge()
}
