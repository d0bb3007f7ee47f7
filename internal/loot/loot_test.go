package loot

import (
	"context"
	"testing"

	"github.com/julianstephens/levelup/internal/storage/storagetest"
)

func TestGrantAddsOneItem(t *testing.T) {
	store := storagetest.NewSQLite(t)
	storagetest.SeedCatalog(t, store)
	ctx := context.Background()

	item, err := NewSeededDropper(1).Grant(ctx, store, storagetest.UserID)
	if err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if item == nil || item.ID != storagetest.ItemPotion {
		t.Fatalf("item = %+v, want potion", item)
	}

	inv, _ := store.GetInventory(ctx, storagetest.UserID)
	if len(inv) != 1 || inv[0].Quantity != 1 {
		t.Errorf("inventory = %+v", inv)
	}
}

func TestDrawEmptyCatalog(t *testing.T) {
	store := storagetest.NewSQLite(t)
	item, err := NewDropper().Grant(context.Background(), store, "u1")
	if err != nil || item != nil {
		t.Errorf("Grant on empty catalog = %+v, %v, want nil, nil", item, err)
	}
}

func TestGrantItemUnknown(t *testing.T) {
	store := storagetest.NewSQLite(t)
	if _, err := GrantItem(context.Background(), store, "u1", "ghost"); err == nil {
		t.Error("expected error for unknown item")
	}
}

func TestRoll(t *testing.T) {
	d := NewSeededDropper(42)
	if d.Roll(0) {
		t.Error("Roll(0) succeeded")
	}
	if !d.Roll(1) {
		t.Error("Roll(1) failed")
	}

	hits := 0
	for i := 0; i < 10000; i++ {
		if d.Roll(0.25) {
			hits++
		}
	}
	if hits < 2000 || hits > 3000 {
		t.Errorf("Roll(0.25) hit %d/10000", hits)
	}
}

func TestDrawIsUniform(t *testing.T) {
	d := NewSeededDropper(7)
	counts := make([]int, 4)
	for i := 0; i < 8000; i++ {
		counts[d.Pick(4)]++
	}
	for i, c := range counts {
		if c < 1600 || c > 2400 {
			t.Errorf("index %d picked %d/8000 times", i, c)
		}
	}
}
