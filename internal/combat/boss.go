package combat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage"
)

type BossDamageResult struct {
	Encounter *models.BossEncounter `json:"encounter,omitempty"`
	Damage    int                   `json:"damage"`
	Defeated  bool                  `json:"defeated"`
	Reward    *Reward               `json:"reward,omitempty"`
}

// BossFeedback reports one day's boss activity.
type BossFeedback struct {
	BossDamageResult
	BossName string                `json:"boss_name,omitempty"`
	Spawned  *models.BossEncounter `json:"spawned,omitempty"`
	// AlreadyHit is set when an earlier submission of the date dealt the damage.
	AlreadyHit bool `json:"already_hit,omitempty"`
}

func (e *Engine) activeEncounter(ctx context.Context, userID string) (*models.BossEncounter, error) {
	enc, err := e.q.GetActiveEncounter(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active encounter: %w", err)
	}
	return &enc, nil
}

// DealBossDamage applies amount to the user's active encounter. Health is
// clamped at zero and reaching zero pays the boss reward exactly once. Damage,
// defeat and reward commit together.
func (e *Engine) DealBossDamage(ctx context.Context, userID string, amount int) (BossDamageResult, error) {
	var res BossDamageResult
	err := e.atomic(ctx, func(te *Engine) error {
		var err error
		res, err = te.dealBossDamage(ctx, userID, amount)
		return err
	})
	if err != nil {
		return BossDamageResult{}, err
	}
	return res, nil
}

func (e *Engine) dealBossDamage(ctx context.Context, userID string, amount int) (BossDamageResult, error) {
	enc, err := e.activeEncounter(ctx, userID)
	if err != nil || enc == nil || amount <= 0 {
		return BossDamageResult{Encounter: enc}, err
	}

	res := BossDamageResult{Encounter: enc, Damage: min(amount, enc.CurrentHealth)}
	enc.CurrentHealth = max(0, enc.CurrentHealth-amount)

	if enc.CurrentHealth > 0 {
		if err := e.q.UpdateEncounterHealth(ctx, enc.ID, enc.CurrentHealth); err != nil {
			return res, fmt.Errorf("failed to update encounter health: %w", err)
		}
		return res, nil
	}

	now := e.now()
	defeated, err := e.q.DefeatEncounter(ctx, enc.ID, now)
	if err != nil {
		return res, fmt.Errorf("failed to defeat encounter: %w", err)
	}
	if !defeated {
		return res, nil
	}
	enc.IsActive = false
	enc.DefeatedAt = &now
	res.Defeated = true

	boss, err := e.q.GetBoss(ctx, enc.BossID)
	if err != nil {
		return res, fmt.Errorf("failed to load boss %s: %w", enc.BossID, err)
	}
	res.Reward, err = e.grant(ctx, userID, "boss_defeat:"+enc.ID, boss.RewardXP, boss.RewardGold, boss.RewardItemID)
	if err != nil {
		return res, err
	}
	log.Info("Boss defeated", "user", userID, "boss", boss.ID, "encounter", enc.ID)
	return res, nil
}

// CheckBossSpawn rolls for a new encounter when the user has none. Each user
// gets at most one roll per date, and never for a date before the last roll.
func (e *Engine) CheckBossSpawn(ctx context.Context, userID, date string) (*models.BossEncounter, error) {
	var enc *models.BossEncounter
	err := e.atomic(ctx, func(te *Engine) error {
		var err error
		enc, err = te.checkBossSpawn(ctx, userID, date)
		return err
	})
	if err != nil {
		return nil, err
	}
	return enc, nil
}

func (e *Engine) checkBossSpawn(ctx context.Context, userID, date string) (*models.BossEncounter, error) {
	active, err := e.activeEncounter(ctx, userID)
	if err != nil || active != nil {
		return nil, err
	}

	first, err := e.q.MarkSpawnCheck(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to record spawn check: %w", err)
	}
	if !first || !e.ledger.Dropper().Roll(e.spawnChance) {
		return nil, nil
	}

	level, err := e.ledger.Level(ctx, userID)
	if err != nil {
		return nil, err
	}
	bosses, err := e.q.GetBosses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bosses: %w", err)
	}
	var eligible []models.Boss
	for _, b := range bosses {
		if b.MinLevel <= level {
			eligible = append(eligible, b)
		}
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	boss := eligible[e.ledger.Dropper().Pick(len(eligible))]
	enc := models.BossEncounter{
		ID:            uuid.NewString(),
		UserID:        userID,
		BossID:        boss.ID,
		CurrentHealth: boss.MaxHealth,
		MaxHealth:     boss.MaxHealth,
		IsActive:      true,
		SpawnedAt:     e.now(),
	}
	if err := e.q.InsertEncounter(ctx, enc); err != nil {
		return nil, err
	}
	log.Info("Boss spawned", "user", userID, "boss", boss.ID, "level", level)
	return &enc, nil
}

// ResolveBossDay deals the day's damage, then rolls for a spawn if the user is
// left without an active encounter. Only the first damaging submission of a
// date hits the boss.
func (e *Engine) ResolveBossDay(ctx context.Context, userID, date string, score int) (*BossFeedback, error) {
	var fb *BossFeedback
	err := e.atomic(ctx, func(te *Engine) error {
		var err error
		fb, err = te.resolveBossDay(ctx, userID, date, score)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fb, nil
}

func (e *Engine) resolveBossDay(ctx context.Context, userID, date string, score int) (*BossFeedback, error) {
	fb := &BossFeedback{}
	amount := DamageForScore(score)

	enc, err := e.activeEncounter(ctx, userID)
	if err != nil {
		return nil, err
	}
	if enc != nil && amount > 0 {
		first, err := e.firstHit(ctx, userID, BossDayReason(date))
		if err != nil {
			return nil, err
		}
		if !first {
			fb.AlreadyHit = true
			amount = 0
		}
	}

	dmg, err := e.dealBossDamage(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	fb.BossDamageResult = dmg

	if dmg.Encounter != nil {
		if boss, err := e.q.GetBoss(ctx, dmg.Encounter.BossID); err == nil {
			fb.BossName = boss.Name
		}
	}

	if dmg.Encounter == nil || dmg.Defeated {
		if fb.Spawned, err = e.checkBossSpawn(ctx, userID, date); err != nil {
			return nil, err
		}
	}
	return fb, nil
}

type Penalty struct {
	UserID      string `json:"user_id"`
	EncounterID string `json:"encounter_id"`
	BossID      string `json:"boss_id"`
	Deducted    int    `json:"deducted"`
}

// ApplyDailyPenalties deducts each undefeated boss's daily penalty once per
// (encounter, date). Failures for one user are logged and skipped.
func (e *Engine) ApplyDailyPenalties(ctx context.Context, date string) ([]Penalty, error) {
	encounters, err := e.q.GetActiveEncounters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active encounters: %w", err)
	}

	var applied []Penalty
	for _, enc := range encounters {
		boss, err := e.q.GetBoss(ctx, enc.BossID)
		if err != nil {
			log.Warn("Skipping boss penalty", "user", enc.UserID, "boss", enc.BossID, "error", err)
			continue
		}
		if boss.DailyPenaltyXP <= 0 {
			continue
		}

		reason := fmt.Sprintf("boss_penalty:%s:%s", enc.ID, date)
		exists, err := e.q.HasXPReason(ctx, enc.UserID, reason)
		if err != nil {
			log.Warn("Skipping boss penalty", "user", enc.UserID, "boss", boss.ID, "error", err)
			continue
		}
		if exists {
			continue
		}

		deducted, err := e.ledger.PenalizeOnce(ctx, enc.UserID, reason, boss.DailyPenaltyXP)
		if err != nil {
			log.Warn("Skipping boss penalty", "user", enc.UserID, "boss", boss.ID, "error", err)
			continue
		}
		applied = append(applied, Penalty{UserID: enc.UserID, EncounterID: enc.ID, BossID: boss.ID, Deducted: deducted})
	}
	return applied, nil
}
