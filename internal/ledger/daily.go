package ledger

import (
	"context"
	"fmt"

	"github.com/julianstephens/levelup/internal/constants"
	"github.com/julianstephens/levelup/internal/models"
)

// DailyInput is what the daily reward needs from one committed submission.
type DailyInput struct {
	UserID string
	Date   string
	Score  int
	// Hardcore is the user's mode as read at the start of the submission.
	Hardcore bool
	Entries  []models.DailyEntry
	// Attributes maps metric id to its rpg attribute, for metrics that have one.
	Attributes map[string]string
}

type XPResult struct {
	// AlreadyGranted is set when an earlier submission for the date was rewarded.
	AlreadyGranted bool            `json:"already_granted"`
	XPGained       int             `json:"xp_gained"`
	GoldGained     int             `json:"gold_gained"`
	PenaltyXP      int             `json:"penalty_xp,omitempty"`
	LevelBefore    int             `json:"level_before"`
	LevelAfter     int             `json:"level_after"`
	Attributes     []AttributeGain `json:"attributes,omitempty"`
	Loot           *models.Item    `json:"loot,omitempty"`
	HardcoreLost   bool            `json:"hardcore_lost"`
}

func DailyReason(date string) string {
	return "daily_log:" + date
}

// GrantDaily rewards the first submission of a day. Any daily_log:<date>
// transaction, including the perfect bonus, means the day was already
// rewarded and nothing is granted or penalized again. The whole reward is one
// transaction, so a failure leaves the day unrewarded and open to a retry.
func (l *Ledger) GrantDaily(ctx context.Context, in DailyInput) (*XPResult, error) {
	var res *XPResult
	err := l.Atomic(ctx, func(tl *Ledger) error {
		var err error
		res, err = tl.grantDaily(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (l *Ledger) grantDaily(ctx context.Context, in DailyInput) (*XPResult, error) {
	reason := DailyReason(in.Date)

	levelBefore, err := l.Level(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	res := &XPResult{LevelBefore: levelBefore, LevelAfter: levelBefore}

	granted, err := l.q.HasXPReasonPrefix(ctx, in.UserID, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to check daily reward: %w", err)
	}
	if granted {
		res.AlreadyGranted = true
		return res, nil
	}

	failedHardcore := in.Hardcore && in.Score < constants.HardcoreFailScore
	doubled := in.Hardcore && !failedHardcore

	if err := l.AwardXP(ctx, in.UserID, reason, l.rewards.DailyLogXP); err != nil {
		return nil, err
	}
	res.XPGained += l.rewards.DailyLogXP
	gold := l.rewards.DailyLogGold

	if in.Score == 100 {
		if err := l.AwardXP(ctx, in.UserID, reason+":perfect", l.rewards.PerfectDayXP); err != nil {
			return nil, err
		}
		res.XPGained += l.rewards.PerfectDayXP
		gold += l.rewards.PerfectDayGold

		item, err := l.dropper.Grant(ctx, l.q, in.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to grant perfect day loot: %w", err)
		}
		res.Loot = item
	}

	if err := l.AwardGold(ctx, in.UserID, gold); err != nil {
		return nil, fmt.Errorf("failed to grant gold: %w", err)
	}
	res.GoldGained = gold

	for _, e := range in.Entries {
		attr, ok := in.Attributes[e.MetricID]
		if !e.Completed || !ok || attr == "" {
			continue
		}
		gain, err := l.AwardAttributeXP(ctx, in.UserID, attr, l.attributeXP(e.TimeSpentMinutes, doubled))
		if err != nil {
			return nil, err
		}
		res.Attributes = append(res.Attributes, gain)
	}

	if failedHardcore {
		if err := l.q.SetHardcore(ctx, in.UserID, false); err != nil {
			return nil, fmt.Errorf("failed to end hardcore mode: %w", err)
		}
		res.HardcoreLost = true

		deducted, err := l.PenalizeOnce(ctx, in.UserID, "hardcore_penalty:"+in.Date, l.rewards.HardcorePenaltyXP)
		if err != nil {
			return nil, err
		}
		res.PenaltyXP = deducted
		log.Info("Hardcore mode lost", "user", in.UserID, "date", in.Date, "score", in.Score, "penalty", deducted)
	}

	if res.LevelAfter, err = l.Level(ctx, in.UserID); err != nil {
		return nil, err
	}
	return res, nil
}
