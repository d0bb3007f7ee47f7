package quests

import (
	"context"
	"testing"

	"github.com/julianstephens/levelup/internal/errors"
	"github.com/julianstephens/levelup/internal/ledger"
	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage/sqlite"
	"github.com/julianstephens/levelup/internal/storage/storagetest"
)

const user = storagetest.UserID

func setupTracker(t *testing.T) (*Tracker, *sqlite.Store) {
	t.Helper()
	store := storagetest.NewSQLite(t)
	storagetest.EnsureUser(t, store)
	l := ledger.New(store, ledger.DefaultRewards(), nil, nil)
	return NewTracker(l, nil), store
}

func completion(date, metricID string) []models.DailyEntry {
	return []models.DailyEntry{{UserID: user, MetricID: metricID, Date: date, Completed: true, TimeSpentMinutes: 90}}
}

func TestTrackCompletesAndRewardsOnce(t *testing.T) {
	tr, store := setupTracker(t)
	ctx := context.Background()

	q, err := tr.Create(ctx, user, "Read three times", "reading", 3, 150, "")
	if err != nil {
		t.Fatal(err)
	}

	for i, date := range []string{"2024-03-01", "2024-03-02"} {
		res, err := tr.Track(ctx, user, date, completion(date, "reading"))
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Progress) != 1 || res.Progress[0].CurrentValue != i+1 || res.Progress[0].Completed {
			t.Fatalf("day %d progress = %+v", i+1, res.Progress)
		}
	}

	res, err := tr.Track(ctx, user, "2024-03-03", completion("2024-03-03", "reading"))
	if err != nil {
		t.Fatal(err)
	}
	if res.XPGained != 150 || !res.Progress[0].Completed {
		t.Errorf("completion = %+v", res)
	}

	res, err = tr.Track(ctx, user, "2024-03-04", completion("2024-03-04", "reading"))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Progress) != 0 || res.XPGained != 0 {
		t.Errorf("completed quest progressed again: %+v", res)
	}

	got, _ := store.GetQuest(ctx, q.ID)
	if got.Status != models.QuestCompleted || got.CurrentValue != 3 || got.CompletedAt == nil {
		t.Errorf("quest = %+v", got)
	}
	if bal := storagetest.XPBalance(t, store, user); bal != 150 {
		t.Errorf("balance = %d, want 150", bal)
	}
}

func TestTrackIgnoresOtherMetricsAndMisses(t *testing.T) {
	tr, _ := setupTracker(t)
	ctx := context.Background()
	if _, err := tr.Create(ctx, user, "Run", "running", 2, 10, ""); err != nil {
		t.Fatal(err)
	}

	entries := append(completion("2024-03-01", "reading"),
		models.DailyEntry{UserID: user, MetricID: "running", Date: "2024-03-01", Completed: false})
	res, err := tr.Track(ctx, user, "2024-03-01", entries)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Progress) != 0 {
		t.Errorf("progress = %+v, want none", res.Progress)
	}
}

func TestTrackExpiresFirst(t *testing.T) {
	tr, store := setupTracker(t)
	ctx := context.Background()
	q, err := tr.Create(ctx, user, "Sprint", "reading", 1, 50, "2024-03-01")
	if err != nil {
		t.Fatal(err)
	}

	res, err := tr.Track(ctx, user, "2024-03-02", completion("2024-03-02", "reading"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Expired != 1 || len(res.Progress) != 0 {
		t.Errorf("result = %+v, want one expired and no progress", res)
	}
	got, _ := store.GetQuest(ctx, q.ID)
	if got.Status != models.QuestExpired {
		t.Errorf("status = %s, want expired", got.Status)
	}
}

func TestTrackOnLastValidDay(t *testing.T) {
	tr, _ := setupTracker(t)
	ctx := context.Background()
	if _, err := tr.Create(ctx, user, "Sprint", "reading", 1, 50, "2024-03-01"); err != nil {
		t.Fatal(err)
	}
	res, err := tr.Track(ctx, user, "2024-03-01", completion("2024-03-01", "reading"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Expired != 0 || res.XPGained != 50 {
		t.Errorf("result = %+v, want completion on expiry day", res)
	}
}

func TestCreateValidates(t *testing.T) {
	tr, _ := setupTracker(t)
	_, err := tr.Create(context.Background(), user, "Bad", "reading", 0, 10, "")
	if errors.CodeOf(err) != errors.CodeInvalidValue {
		t.Errorf("error = %v, want INVALID_VALUE", err)
	}
}

func TestTrackCountsEachDateOnce(t *testing.T) {
	tr, store := setupTracker(t)
	ctx := context.Background()

	q, err := tr.Create(ctx, user, "Read twice", "reading", 2, 80, "")
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		res, err := tr.Track(ctx, user, "2024-03-01", completion("2024-03-01", "reading"))
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Progress) != 1 || res.Progress[0].CurrentValue != 1 || res.Progress[0].Completed {
			t.Errorf("submission #%d progress = %+v, want 1 of 2", i+1, res.Progress)
		}
	}

	got, err := store.GetQuest(ctx, q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentValue != 1 || got.Status != models.QuestActive {
		t.Errorf("quest = %+v, want active at 1", got)
	}
	if bal := storagetest.XPBalance(t, store, user); bal != 0 {
		t.Errorf("balance = %d, want no reward yet", bal)
	}
}
