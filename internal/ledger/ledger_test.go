package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/julianstephens/levelup/internal/loot"
	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage"
	"github.com/julianstephens/levelup/internal/storage/sqlite"
	"github.com/julianstephens/levelup/internal/storage/storagetest"
)

func setupLedger(t *testing.T) (*Ledger, *sqlite.Store) {
	t.Helper()
	store := storagetest.NewSQLite(t)
	storagetest.SeedCatalog(t, store)
	storagetest.EnsureUser(t, store)
	now := func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return New(store, DefaultRewards(), loot.NewSeededDropper(1), now), store
}

func workoutEntry(minutes int) models.DailyEntry {
	return models.DailyEntry{UserID: storagetest.UserID, MetricID: storagetest.MetricWorkout,
		Date: "2024-03-01", Completed: true, TimeSpentMinutes: minutes}
}

var workoutAttrs = map[string]string{storagetest.MetricWorkout: storagetest.AttrStrength}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{-50, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{10000, 11},
	}
	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestAwardXPOnce(t *testing.T) {
	l, store := setupLedger(t)
	ctx := context.Background()

	for i, want := range []bool{true, false} {
		granted, err := l.AwardXPOnce(ctx, storagetest.UserID, "quest:q1", 30)
		if err != nil {
			t.Fatal(err)
		}
		if granted != want {
			t.Errorf("call %d granted = %v, want %v", i, granted, want)
		}
	}
	if bal := storagetest.XPBalance(t, store, storagetest.UserID); bal != 30 {
		t.Errorf("balance = %d, want 30", bal)
	}
}

func TestPenalizeOnceFloorsAtZero(t *testing.T) {
	l, store := setupLedger(t)
	ctx := context.Background()

	if err := l.AwardXP(ctx, storagetest.UserID, "seed", 40); err != nil {
		t.Fatal(err)
	}
	deducted, err := l.PenalizeOnce(ctx, storagetest.UserID, "boss_penalty:e1:2024-03-01", 100)
	if err != nil {
		t.Fatal(err)
	}
	if deducted != 40 {
		t.Errorf("deducted = %d, want 40", deducted)
	}
	if again, _ := l.PenalizeOnce(ctx, storagetest.UserID, "boss_penalty:e1:2024-03-01", 100); again != 0 {
		t.Errorf("second penalty deducted %d", again)
	}
	if bal := storagetest.XPBalance(t, store, storagetest.UserID); bal != 0 {
		t.Errorf("balance = %d, want 0", bal)
	}
}

func TestGrantDailyPerfectDayOnce(t *testing.T) {
	l, store := setupLedger(t)
	ctx := context.Background()
	in := DailyInput{UserID: storagetest.UserID, Date: "2024-03-01", Score: 100,
		Entries: []models.DailyEntry{workoutEntry(0)}, Attributes: workoutAttrs}

	first, err := l.GrantDaily(ctx, in)
	if err != nil {
		t.Fatalf("GrantDaily: %v", err)
	}
	wantXP := DefaultRewards().DailyLogXP + DefaultRewards().PerfectDayXP
	if first.XPGained != wantXP || first.Loot == nil {
		t.Errorf("first grant = %+v, want %d xp and loot", first, wantXP)
	}

	second, err := l.GrantDaily(ctx, in)
	if err != nil {
		t.Fatalf("second GrantDaily: %v", err)
	}
	if !second.AlreadyGranted || second.XPGained != 0 || second.Loot != nil {
		t.Errorf("second grant = %+v, want nothing", second)
	}

	if bal := storagetest.XPBalance(t, store, storagetest.UserID); bal != wantXP {
		t.Errorf("balance = %d, want %d", bal, wantXP)
	}
	inv, _ := store.GetInventory(ctx, storagetest.UserID)
	if len(inv) != 1 || inv[0].Quantity != 1 {
		t.Errorf("inventory = %+v, want exactly one item", inv)
	}
	u, _ := store.GetUser(ctx, storagetest.UserID)
	if want := DefaultRewards().DailyLogGold + DefaultRewards().PerfectDayGold; u.Gold != want {
		t.Errorf("gold = %d, want %d", u.Gold, want)
	}
	attr, _ := store.GetAttribute(ctx, storagetest.UserID, storagetest.AttrStrength)
	if attr.TotalXP != DefaultRewards().AttributeXP {
		t.Errorf("attribute xp = %d, want flat %d", attr.TotalXP, DefaultRewards().AttributeXP)
	}
}

func TestGrantDailyHardcore(t *testing.T) {
	t.Run("doubles attribute xp", func(t *testing.T) {
		l, store := setupLedger(t)
		ctx := context.Background()
		res, err := l.GrantDaily(ctx, DailyInput{UserID: storagetest.UserID, Date: "2024-03-01", Score: 70,
			Hardcore: true, Entries: []models.DailyEntry{workoutEntry(10)}, Attributes: workoutAttrs})
		if err != nil {
			t.Fatal(err)
		}
		if res.HardcoreLost || len(res.Attributes) != 1 || res.Attributes[0].XP != 200 {
			t.Errorf("result = %+v, want 200 doubled attribute xp", res)
		}
		attr, _ := store.GetAttribute(ctx, storagetest.UserID, storagetest.AttrStrength)
		if attr.TotalXP != 200 || attr.Level != 2 {
			t.Errorf("attribute = %+v, want 200 xp at level 2", attr)
		}
	})

	t.Run("low score ends hardcore", func(t *testing.T) {
		l, store := setupLedger(t)
		ctx := context.Background()
		if err := store.SetHardcore(ctx, storagetest.UserID, true); err != nil {
			t.Fatal(err)
		}
		if err := l.AwardXP(ctx, storagetest.UserID, "seed", 500); err != nil {
			t.Fatal(err)
		}

		res, err := l.GrantDaily(ctx, DailyInput{UserID: storagetest.UserID, Date: "2024-03-01", Score: 39,
			Hardcore: true, Entries: []models.DailyEntry{workoutEntry(10)}, Attributes: workoutAttrs})
		if err != nil {
			t.Fatal(err)
		}
		if !res.HardcoreLost || res.PenaltyXP != DefaultRewards().HardcorePenaltyXP {
			t.Errorf("result = %+v, want hardcore lost with penalty", res)
		}
		if res.Attributes[0].XP != 100 {
			t.Errorf("attribute xp = %d, want undoubled 100", res.Attributes[0].XP)
		}
		u, _ := store.GetUser(ctx, storagetest.UserID)
		if u.Hardcore {
			t.Error("hardcore still enabled")
		}
		want := 500 + DefaultRewards().DailyLogXP - DefaultRewards().HardcorePenaltyXP
		if bal := storagetest.XPBalance(t, store, storagetest.UserID); bal != want {
			t.Errorf("balance = %d, want %d", bal, want)
		}
	})
}

func TestGrantDailySkipsIncomplete(t *testing.T) {
	l, store := setupLedger(t)
	ctx := context.Background()
	entry := workoutEntry(30)
	entry.Completed = false

	res, err := l.GrantDaily(ctx, DailyInput{UserID: storagetest.UserID, Date: "2024-03-01", Score: 50,
		Entries: []models.DailyEntry{entry}, Attributes: workoutAttrs})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Attributes) != 0 || res.Loot != nil {
		t.Errorf("result = %+v, want no attribute xp and no loot", res)
	}
	if attrs, _ := store.GetAttributes(ctx, storagetest.UserID); len(attrs) != 0 {
		t.Errorf("attributes = %+v", attrs)
	}
}

// brokenAttributes fails attribute writes inside every transaction.
type brokenAttributes struct {
	*sqlite.Store
}

func (s brokenAttributes) WithTx(ctx context.Context, fn func(q storage.Queries) error) error {
	return s.Store.WithTx(ctx, func(q storage.Queries) error {
		return fn(failingAttribute{q})
	})
}

type failingAttribute struct {
	storage.Queries
}

func (failingAttribute) UpsertAttribute(context.Context, models.UserAttribute) error {
	return fmt.Errorf("attribute table locked")
}

func TestGrantDailyRollsBackOnFailure(t *testing.T) {
	good, store := setupLedger(t)
	broken := New(brokenAttributes{store}, DefaultRewards(), loot.NewSeededDropper(1), good.now)
	ctx := context.Background()

	in := DailyInput{
		UserID:     storagetest.UserID,
		Date:       "2024-03-01",
		Score:      100,
		Entries:    []models.DailyEntry{workoutEntry(10)},
		Attributes: workoutAttrs,
	}
	if _, err := broken.GrantDaily(ctx, in); err == nil {
		t.Fatal("expected the attribute failure to abort the grant")
	}

	if bal := storagetest.XPBalance(t, store, storagetest.UserID); bal != 0 {
		t.Errorf("balance = %d after rollback, want 0", bal)
	}
	if u, _ := store.GetUser(ctx, storagetest.UserID); u.Gold != 0 {
		t.Errorf("gold = %d after rollback, want 0", u.Gold)
	}
	if inv, _ := store.GetInventory(ctx, storagetest.UserID); len(inv) != 0 {
		t.Errorf("inventory = %+v after rollback, want empty", inv)
	}

	res, err := good.GrantDaily(ctx, in)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if res.AlreadyGranted {
		t.Fatal("a rolled back day must not count as rewarded")
	}
	rewards := DefaultRewards()
	if res.XPGained != rewards.DailyLogXP+rewards.PerfectDayXP || res.Loot == nil || len(res.Attributes) != 1 {
		t.Errorf("retry result = %+v, want the full reward", res)
	}
}
