// Package storagetest provides sqlite-backed fixtures for package tests.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage/sqlite"
)

const (
	UserID = "user-1"

	AxisHealth = "health"
	AxisMind   = "mind"

	MetricWorkout = "workout"
	MetricReading = "reading"

	AttrStrength = "strength"

	ItemPotion = "potion"
)

// NewSQLite returns an initialized store in a temp dir, closed on cleanup.
func NewSQLite(t testing.TB) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func ptr[T any](v T) *T { return &v }

// SeedCatalog loads two axes weighted 50/50 by a long-running cycle:
// workout (boolean, 10 points, strength) on health and reading (scale_0_5,
// 20 points) on mind. One item is available for loot.
func SeedCatalog(t testing.TB, store *sqlite.Store) {
	t.Helper()
	ctx := context.Background()

	for _, a := range []models.Axis{
		{ID: AxisHealth, Name: "Health", Active: true},
		{ID: AxisMind, Name: "Mind", Active: true},
	} {
		if err := store.UpsertAxis(ctx, a); err != nil {
			t.Fatalf("failed to seed axis: %v", err)
		}
	}

	for _, m := range []models.Metric{
		{ID: MetricWorkout, AxisID: AxisHealth, Name: "Workout", MaxPoints: 10,
			InputType: models.InputBoolean, Active: true, RPGAttribute: ptr(AttrStrength)},
		{ID: MetricReading, AxisID: AxisMind, Name: "Reading", MaxPoints: 20,
			InputType: models.InputScale5, Active: true},
	} {
		if err := store.UpsertMetric(ctx, m); err != nil {
			t.Fatalf("failed to seed metric: %v", err)
		}
	}

	cycle := models.PriorityCycle{
		ID: "base", Name: "Base", StartDate: "2000-01-01", EndDate: "2099-12-31",
		Weights: []models.AxisWeight{
			{AxisID: AxisHealth, WeightPercentage: 50},
			{AxisID: AxisMind, WeightPercentage: 50},
		},
	}
	if err := store.UpsertCycle(ctx, cycle); err != nil {
		t.Fatalf("failed to seed cycle: %v", err)
	}

	if err := store.UpsertItem(ctx, models.Item{ID: ItemPotion, Name: "Potion", Rarity: "common"}); err != nil {
		t.Fatalf("failed to seed item: %v", err)
	}
}

// EnsureUser creates UserID and returns it.
func EnsureUser(t testing.TB, store *sqlite.Store) models.User {
	t.Helper()
	u, err := store.EnsureUser(context.Background(), UserID)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return u
}

// XPBalance returns the user's ledger balance or fails the test.
func XPBalance(t testing.TB, store *sqlite.Store, userID string) int {
	t.Helper()
	n, err := store.GetXPBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to get xp balance: %v", err)
	}
	return n
}
