package achievements

import (
	"context"
	"testing"
	"time"

	"github.com/julianstephens/levelup/internal/ledger"
	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage/sqlite"
	"github.com/julianstephens/levelup/internal/storage/storagetest"
)

const user = storagetest.UserID

func setupEvaluator(t *testing.T) (*Evaluator, *sqlite.Store) {
	t.Helper()
	store := storagetest.NewSQLite(t)
	storagetest.EnsureUser(t, store)

	defs := []models.Achievement{
		{ID: "first-log", Name: "First Log", Kind: models.AchievementDaysLogged, Threshold: 1, XPReward: 25},
		{ID: "week-streak", Name: "Week Streak", Kind: models.AchievementStreakMax, Threshold: 7, XPReward: 100},
		{ID: "perfect", Name: "Perfect", Kind: models.AchievementPerfectDays, Threshold: 1, XPReward: 50},
	}
	for _, d := range defs {
		if err := store.UpsertAchievement(context.Background(), d); err != nil {
			t.Fatal(err)
		}
	}
	return NewEvaluator(ledger.New(store, ledger.DefaultRewards(), nil, nil), nil), store
}

func TestMet(t *testing.T) {
	agg := Aggregates{LongestStreak: 7, MaxAttributeLevel: 3, PerfectDays: 0, DaysLogged: 12, CharacterLevel: 2}
	tests := []struct {
		def  models.Achievement
		want bool
	}{
		{models.Achievement{Kind: models.AchievementStreakMax, Threshold: 7}, true},
		{models.Achievement{Kind: models.AchievementStreakMax, Threshold: 8}, false},
		{models.Achievement{Kind: models.AchievementAttributeLevel, Threshold: 3}, true},
		{models.Achievement{Kind: models.AchievementPerfectDays, Threshold: 1}, false},
		{models.Achievement{Kind: models.AchievementDaysLogged, Threshold: 10}, true},
		{models.Achievement{Kind: models.AchievementCharacterLevel, Threshold: 5}, false},
		{models.Achievement{Kind: "unknown", Threshold: 0}, false},
	}
	for _, tt := range tests {
		if got := agg.Met(tt.def); got != tt.want {
			t.Errorf("Met(%s >= %d) = %v, want %v", tt.def.Kind, tt.def.Threshold, got, tt.want)
		}
	}
}

func TestEvaluateUnlocksOnce(t *testing.T) {
	e, store := setupEvaluator(t)
	ctx := context.Background()

	fresh, err := e.Evaluate(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 0 {
		t.Fatalf("unlocked %v with no activity", fresh)
	}

	sum := models.DailySummary{UserID: user, Date: "2024-03-01", TotalScore: 80, Mode: models.ModeStable, UpdatedAt: time.Now()}
	if err := store.UpsertSummary(ctx, sum); err != nil {
		t.Fatal(err)
	}
	streak := models.Streak{UserID: user, MetricID: "m", CurrentStreak: 1, LongestStreak: 7, LastLogDate: "2024-03-01"}
	if err := store.UpsertStreak(ctx, streak); err != nil {
		t.Fatal(err)
	}

	fresh, err = e.Evaluate(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 2 {
		t.Fatalf("unlocked %d achievements, want first-log and week-streak", len(fresh))
	}

	// Breaking the streak never re-locks.
	streak.LongestStreak = 7
	streak.CurrentStreak = 0
	if err := store.UpsertStreak(ctx, streak); err != nil {
		t.Fatal(err)
	}
	fresh, _ = e.Evaluate(ctx, user)
	if len(fresh) != 0 {
		t.Errorf("re-unlocked %v", fresh)
	}

	unlocked, _ := store.GetUnlockedAchievements(ctx, user)
	if len(unlocked) != 2 {
		t.Errorf("unlock rows = %d, want 2", len(unlocked))
	}
	if bal := storagetest.XPBalance(t, store, user); bal != 125 {
		t.Errorf("balance = %d, want 125", bal)
	}
}
