package postgres

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage"
)

// TestStore_Integration runs against a real database.
// Set LEVELUP_TEST_POSTGRES to run it, e.g.
// LEVELUP_TEST_POSTGRES="postgres://levelup@localhost:5432/levelup_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("LEVELUP_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("LEVELUP_TEST_POSTGRES not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	userID := "it-" + uuid.NewString()

	t.Run("Users", func(t *testing.T) {
		if _, err := store.EnsureUser(ctx, userID); err != nil {
			t.Fatalf("EnsureUser: %v", err)
		}
		if err := store.SetHardcore(ctx, userID, true); err != nil {
			t.Fatalf("SetHardcore: %v", err)
		}
		u, err := store.GetUser(ctx, userID)
		if err != nil || !u.Hardcore {
			t.Errorf("user = %+v, %v, want hardcore", u, err)
		}
	})

	t.Run("XPPrefix", func(t *testing.T) {
		tx := models.XPTransaction{ID: uuid.NewString(), UserID: userID, Amount: 50,
			Reason: "daily_log:2024-03-01", CreatedAt: time.Now()}
		if err := store.InsertXPTransaction(ctx, tx); err != nil {
			t.Fatalf("InsertXPTransaction: %v", err)
		}
		ok, err := store.HasXPReasonPrefix(ctx, userID, "daily_log:2024-03-01")
		if err != nil || !ok {
			t.Errorf("HasXPReasonPrefix = %v, %v", ok, err)
		}
		bal, err := store.GetXPBalance(ctx, userID)
		if err != nil || bal != 50 {
			t.Errorf("balance = %d, %v", bal, err)
		}
	})

	t.Run("LockDaySerializes", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 4)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- store.WithTx(ctx, func(q storage.Queries) error {
					if err := q.LockDay(ctx, userID, "2024-03-01"); err != nil {
						return err
					}
					return q.AddGold(ctx, userID, 1)
				})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("WithTx: %v", err)
			}
		}
		u, _ := store.GetUser(ctx, userID)
		if u.Gold != 4 {
			t.Errorf("gold = %d, want 4", u.Gold)
		}
	})
}
