// Package ledger owns the append-only XP log, gold, character and attribute
// levels, and the once-per-day submission reward.
package ledger

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/levelup/internal/constants"
	"github.com/julianstephens/levelup/internal/logger"
	"github.com/julianstephens/levelup/internal/loot"
	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage"
)

var log = logger.For("ledger")

// Rewards are the fixed amounts granted by the daily reward.
type Rewards struct {
	DailyLogXP           int `toml:"daily_log_xp" env:"DAILY_LOG_XP"`
	PerfectDayXP         int `toml:"perfect_day_xp" env:"PERFECT_DAY_XP"`
	DailyLogGold         int `toml:"daily_log_gold" env:"DAILY_LOG_GOLD"`
	PerfectDayGold       int `toml:"perfect_day_gold" env:"PERFECT_DAY_GOLD"`
	AttributeXPPerMinute int `toml:"attribute_xp_per_minute" env:"ATTRIBUTE_XP_PER_MINUTE"`
	AttributeXP          int `toml:"attribute_xp" env:"ATTRIBUTE_XP"`
	HardcorePenaltyXP    int `toml:"hardcore_penalty_xp" env:"HARDCORE_PENALTY_XP"`
}

func DefaultRewards() Rewards {
	return Rewards{
		DailyLogXP:           constants.DefaultDailyLogXP,
		PerfectDayXP:         constants.DefaultPerfectDayXP,
		DailyLogGold:         constants.DefaultDailyLogGold,
		PerfectDayGold:       constants.DefaultPerfectDayGold,
		AttributeXPPerMinute: constants.DefaultAttributeXPPerMinute,
		AttributeXP:          constants.DefaultAttributeXP,
		HardcorePenaltyXP:    constants.DefaultHardcorePenaltyXP,
	}
}

type Ledger struct {
	q       storage.Queries
	rewards Rewards
	dropper *loot.Dropper
	now     func() time.Time
}

func New(q storage.Queries, rewards Rewards, dropper *loot.Dropper, now func() time.Time) *Ledger {
	if dropper == nil {
		dropper = loot.NewDropper()
	}
	if now == nil {
		now = time.Now
	}
	return &Ledger{q: q, rewards: rewards, dropper: dropper, now: now}
}

// Atomic runs fn with a ledger bound to one transaction, so every write fn
// makes commits or rolls back together. Storage without transactions, and a
// ledger already bound to one, run fn directly.
func (l *Ledger) Atomic(ctx context.Context, fn func(tl *Ledger) error) error {
	tx, ok := l.q.(storage.Transactor)
	if !ok {
		return fn(l)
	}
	return tx.WithTx(ctx, func(q storage.Queries) error {
		return fn(l.bind(q))
	})
}

func (l *Ledger) bind(q storage.Queries) *Ledger {
	bound := *l
	bound.q = q
	return &bound
}

// LevelForXP is the shared curve for character and attribute levels.
func LevelForXP(xp int) int {
	if xp <= 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(xp))/10)) + 1
}

// AwardXP appends one transaction. Use AwardXPOnce for anything that must not
// be granted twice.
func (l *Ledger) AwardXP(ctx context.Context, userID, reason string, amount int) error {
	return l.q.InsertXPTransaction(ctx, models.XPTransaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: l.now(),
	})
}

// AwardXPOnce grants amount unless a transaction with exactly this reason
// exists, reporting whether it granted.
func (l *Ledger) AwardXPOnce(ctx context.Context, userID, reason string, amount int) (bool, error) {
	var granted bool
	err := l.Atomic(ctx, func(tl *Ledger) error {
		exists, err := tl.q.HasXPReason(ctx, userID, reason)
		if err != nil || exists {
			return err
		}
		if err := tl.AwardXP(ctx, userID, reason, amount); err != nil {
			return err
		}
		granted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return granted, nil
}

// PenalizeOnce deducts up to amount, never taking the balance below zero, and
// returns what was deducted. The transaction is recorded even when nothing
// could be taken so the reason still marks the penalty as applied.
func (l *Ledger) PenalizeOnce(ctx context.Context, userID, reason string, amount int) (int, error) {
	var deducted int
	err := l.Atomic(ctx, func(tl *Ledger) error {
		exists, err := tl.q.HasXPReason(ctx, userID, reason)
		if err != nil || exists {
			return err
		}

		balance, err := tl.q.GetXPBalance(ctx, userID)
		if err != nil {
			return err
		}
		deduct := min(amount, max(balance, 0))
		if err := tl.AwardXP(ctx, userID, reason, -deduct); err != nil {
			return err
		}
		deducted = deduct
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deducted, nil
}

func (l *Ledger) AwardGold(ctx context.Context, userID string, amount int) error {
	if amount == 0 {
		return nil
	}
	return l.q.AddGold(ctx, userID, amount)
}

// Level is the user's character level from the ledger balance.
func (l *Ledger) Level(ctx context.Context, userID string) (int, error) {
	balance, err := l.q.GetXPBalance(ctx, userID)
	if err != nil {
		return 0, err
	}
	return LevelForXP(balance), nil
}

// Dropper exposes the loot source so reward grants share one randomness.
func (l *Ledger) Dropper() *loot.Dropper {
	return l.dropper
}

// Queries returns the storage the ledger writes through.
func (l *Ledger) Queries() storage.Queries {
	return l.q
}
