// Package combat resolves a day's score against the user's active boss and
// the story campaign.
package combat

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/levelup/internal/constants"
	"github.com/julianstephens/levelup/internal/ledger"
	"github.com/julianstephens/levelup/internal/logger"
	"github.com/julianstephens/levelup/internal/loot"
	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage"
)

var log = logger.For("combat")

type Engine struct {
	q           storage.Queries
	ledger      *ledger.Ledger
	spawnChance float64
	now         func() time.Time
}

func New(l *ledger.Ledger, spawnChance float64, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{q: l.Queries(), ledger: l, spawnChance: spawnChance, now: now}
}

// atomic runs fn with an engine whose ledger and queries share one
// transaction.
func (e *Engine) atomic(ctx context.Context, fn func(te *Engine) error) error {
	return e.ledger.Atomic(ctx, func(tl *ledger.Ledger) error {
		bound := *e
		bound.ledger = tl
		bound.q = tl.Queries()
		return fn(&bound)
	})
}

// BossDayReason and CampaignDayReason mark a date whose score already dealt
// damage. They are zero-XP ledger rows so a resubmitted day hits only once.
func BossDayReason(date string) string {
	return "boss_day:" + date
}

func CampaignDayReason(date string) string {
	return "campaign_day:" + date
}

// firstHit records that date dealt damage and reports whether it had not
// already.
func (e *Engine) firstHit(ctx context.Context, userID, reason string) (bool, error) {
	first, err := e.ledger.AwardXPOnce(ctx, userID, reason, 0)
	if err != nil {
		return false, fmt.Errorf("failed to record %s: %w", reason, err)
	}
	return first, nil
}

// Reward is what a defeat paid out.
type Reward struct {
	XP   int          `json:"xp"`
	Gold int          `json:"gold"`
	Item *models.Item `json:"item,omitempty"`
}

// grant pays xp under reason once, and gold and the item only alongside it.
func (e *Engine) grant(ctx context.Context, userID, reason string, xp, gold int, itemID *string) (*Reward, error) {
	granted, err := e.ledger.AwardXPOnce(ctx, userID, reason, xp)
	if err != nil {
		return nil, fmt.Errorf("failed to grant %s: %w", reason, err)
	}
	if !granted {
		return nil, nil
	}

	reward := &Reward{XP: xp, Gold: gold}
	if err := e.ledger.AwardGold(ctx, userID, gold); err != nil {
		return nil, fmt.Errorf("failed to grant %s gold: %w", reason, err)
	}
	if itemID != nil && *itemID != "" {
		item, err := loot.GrantItem(ctx, e.q, userID, *itemID)
		if err != nil {
			return nil, err
		}
		reward.Item = item
	}
	return reward, nil
}

// DamageForScore is the boss damage a day's score deals.
func DamageForScore(score int) int {
	switch {
	case score >= 100:
		return constants.BossDamagePerfect
	case score >= constants.BossDamageThreshold:
		return constants.BossDamageNormal
	default:
		return 0
	}
}
