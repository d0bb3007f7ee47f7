// Package achievements unlocks rule-based achievements from live aggregates.
package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/levelup/internal/ledger"
	"github.com/julianstephens/levelup/internal/logger"
	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage"
)

// Aggregates are the per-user totals predicates are checked against.
type Aggregates struct {
	LongestStreak     int
	MaxAttributeLevel int
	PerfectDays       int
	DaysLogged        int
	CharacterLevel    int
}

// Met reports whether a satisfies the achievement's predicate.
func (a Aggregates) Met(def models.Achievement) bool {
	var value int
	switch def.Kind {
	case models.AchievementStreakMax:
		value = a.LongestStreak
	case models.AchievementAttributeLevel:
		value = a.MaxAttributeLevel
	case models.AchievementPerfectDays:
		value = a.PerfectDays
	case models.AchievementDaysLogged:
		value = a.DaysLogged
	case models.AchievementCharacterLevel:
		value = a.CharacterLevel
	default:
		return false
	}
	return value >= def.Threshold
}

var log = logger.For("achievements")

type Evaluator struct {
	q      storage.Queries
	ledger *ledger.Ledger
	now    func() time.Time
}

func NewEvaluator(l *ledger.Ledger, now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{q: l.Queries(), ledger: l, now: now}
}

func (e *Evaluator) Aggregates(ctx context.Context, userID string) (Aggregates, error) {
	var agg Aggregates

	streaks, err := e.q.GetStreaks(ctx, userID)
	if err != nil {
		return agg, fmt.Errorf("failed to load streaks: %w", err)
	}
	for _, s := range streaks {
		agg.LongestStreak = max(agg.LongestStreak, s.LongestStreak)
	}

	attrs, err := e.q.GetAttributes(ctx, userID)
	if err != nil {
		return agg, fmt.Errorf("failed to load attributes: %w", err)
	}
	for _, a := range attrs {
		agg.MaxAttributeLevel = max(agg.MaxAttributeLevel, a.Level)
	}

	if agg.PerfectDays, err = e.q.CountPerfectDays(ctx, userID); err != nil {
		return agg, fmt.Errorf("failed to count perfect days: %w", err)
	}
	if agg.DaysLogged, err = e.q.CountDaysLogged(ctx, userID); err != nil {
		return agg, fmt.Errorf("failed to count logged days: %w", err)
	}
	if agg.CharacterLevel, err = e.ledger.Level(ctx, userID); err != nil {
		return agg, err
	}
	return agg, nil
}

// Evaluate unlocks every achievement whose predicate now holds and that the
// user does not have yet, granting its XP. It returns only new unlocks.
func (e *Evaluator) Evaluate(ctx context.Context, userID string) ([]models.Achievement, error) {
	defs, err := e.q.GetAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	unlocked, err := e.q.GetUnlockedAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}
	have := make(map[string]bool, len(unlocked))
	for _, u := range unlocked {
		have[u.AchievementID] = true
	}

	agg, err := e.Aggregates(ctx, userID)
	if err != nil {
		return nil, err
	}

	var fresh []models.Achievement
	for _, def := range defs {
		if have[def.ID] || !agg.Met(def) {
			continue
		}
		inserted, err := e.unlock(ctx, userID, def)
		if err != nil {
			return fresh, err
		}
		if !inserted {
			continue
		}
		log.Info("Achievement unlocked", "user", userID, "achievement", def.ID)
		fresh = append(fresh, def)
	}
	return fresh, nil
}

// unlock inserts the unlock row and pays its XP in one transaction.
func (e *Evaluator) unlock(ctx context.Context, userID string, def models.Achievement) (bool, error) {
	var inserted bool
	err := e.ledger.Atomic(ctx, func(tl *ledger.Ledger) error {
		var err error
		inserted, err = tl.Queries().UnlockAchievement(ctx, userID, def.ID, e.now())
		if err != nil {
			return fmt.Errorf("failed to unlock %s: %w", def.ID, err)
		}
		if !inserted {
			return nil
		}
		if _, err := tl.AwardXPOnce(ctx, userID, "achievement:"+def.ID, def.XPReward); err != nil {
			return fmt.Errorf("failed to reward %s: %w", def.ID, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}
