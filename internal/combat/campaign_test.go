package combat

import (
	"context"
	"testing"

	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage/storagetest"
)

func seedStages(t *testing.T, e *Engine) {
	t.Helper()
	for _, st := range []models.CampaignStage{
		{Stage: 1, Name: "Goblin Camp", MaxHealth: 150, RewardXP: 100, RewardGold: 20},
		{Stage: 2, Name: "Dark Tower", MaxHealth: 200, RewardXP: 300},
	} {
		if err := e.q.UpsertCampaignStage(context.Background(), st); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCampaignWithoutStages(t *testing.T) {
	e, _ := setupEngine(t, 0)
	res, err := e.DealCampaignDamage(context.Background(), user, 90)
	if err != nil || res != nil {
		t.Errorf("no stages = %+v, %v, want nil", res, err)
	}
}

func TestCampaignProgression(t *testing.T) {
	e, store := setupEngine(t, 0)
	seedStages(t, e)
	ctx := context.Background()

	res, err := e.ResolveCampaignDay(ctx, user, "2024-03-01", 90)
	if err != nil {
		t.Fatal(err)
	}
	if res.Stage != 1 || res.RemainingHealth != 60 || res.Defeated {
		t.Fatalf("first day = %+v", res)
	}

	if res, _ := e.ResolveCampaignDay(ctx, user, "2024-03-02", 0); res != nil {
		t.Errorf("zero score dealt damage: %+v", res)
	}

	res, err = e.ResolveCampaignDay(ctx, user, "2024-03-02", 75)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Defeated || res.Damage != 60 || res.NextStage != 2 || res.Reward == nil {
		t.Fatalf("stage 1 defeat = %+v", res)
	}

	status, _ := store.GetCampaignStatus(ctx, user)
	if status.CurrentStage != 2 || status.CurrentHealth != 200 || status.MaxHealth != 200 {
		t.Errorf("status = %+v, want stage 2 at full health", status)
	}

	for _, date := range []string{"2024-03-03", "2024-03-04"} {
		if res, err = e.ResolveCampaignDay(ctx, user, date, 100); err != nil {
			t.Fatal(err)
		}
	}
	if !res.Completed || res.RemainingHealth != 0 {
		t.Errorf("final stage = %+v, want completed", res)
	}
	if res, _ := e.ResolveCampaignDay(ctx, user, "2024-03-05", 100); res != nil {
		t.Errorf("completed campaign still fighting: %+v", res)
	}

	if bal := storagetest.XPBalance(t, store, user); bal != 400 {
		t.Errorf("balance = %d, want 400 from two stage rewards", bal)
	}
	u, _ := store.GetUser(ctx, user)
	if u.Gold != 20 {
		t.Errorf("gold = %d, want 20", u.Gold)
	}
}

func TestCampaignDayHitsOnce(t *testing.T) {
	e, store := setupEngine(t, 0)
	seedStages(t, e)
	ctx := context.Background()

	first, err := e.ResolveCampaignDay(ctx, user, "2024-03-01", 90)
	if err != nil {
		t.Fatal(err)
	}
	if first.RemainingHealth != 60 || first.AlreadyHit {
		t.Fatalf("first submission = %+v", first)
	}

	for i := 0; i < 3; i++ {
		again, err := e.ResolveCampaignDay(ctx, user, "2024-03-01", 90)
		if err != nil {
			t.Fatal(err)
		}
		if !again.AlreadyHit || again.Damage != 0 || again.RemainingHealth != 60 {
			t.Errorf("resubmission #%d = %+v, want no damage", i+1, again)
		}
	}

	status, _ := store.GetCampaignStatus(ctx, user)
	if status.CurrentStage != 1 || status.CurrentHealth != 60 {
		t.Errorf("status = %+v, want stage 1 at 60", status)
	}
	if bal := storagetest.XPBalance(t, store, user); bal != 0 {
		t.Errorf("balance = %d, day markers must not pay xp", bal)
	}
}

func TestCampaignDefeatRollsBackOnRewardFailure(t *testing.T) {
	e, store := setupEngine(t, 0)
	ctx := context.Background()
	missing := "no-such-item"
	stage := models.CampaignStage{Stage: 1, Name: "Goblin Camp", MaxHealth: 50, RewardXP: 100, RewardGold: 20, RewardItemID: &missing}
	if err := store.UpsertCampaignStage(ctx, stage); err != nil {
		t.Fatal(err)
	}

	if _, err := e.ResolveCampaignDay(ctx, user, "2024-03-01", 90); err == nil {
		t.Fatal("expected the missing reward item to fail the defeat")
	}
	if bal := storagetest.XPBalance(t, store, user); bal != 0 {
		t.Errorf("balance = %d after rollback, want 0", bal)
	}
	if _, err := store.GetCampaignStatus(ctx, user); err == nil {
		t.Error("campaign status was saved despite the rollback")
	}

	stage.RewardItemID = nil
	if err := store.UpsertCampaignStage(ctx, stage); err != nil {
		t.Fatal(err)
	}
	res, err := e.ResolveCampaignDay(ctx, user, "2024-03-01", 90)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Defeated || res.Reward == nil || res.Reward.XP != 100 {
		t.Errorf("retry = %+v, want the stage defeated and paid", res)
	}
}
