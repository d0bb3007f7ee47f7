// Package quests advances time-boxed quests from completed metrics.
package quests

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/levelup/internal/errors"
	"github.com/julianstephens/levelup/internal/ledger"
	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage"
)

type Tracker struct {
	q      storage.Queries
	ledger *ledger.Ledger
	now    func() time.Time
}

func NewTracker(l *ledger.Ledger, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{q: l.Queries(), ledger: l, now: now}
}

type Progress struct {
	QuestID      string `json:"quest_id"`
	Title        string `json:"title"`
	CurrentValue int    `json:"current_value"`
	TargetValue  int    `json:"target_value"`
	Completed    bool   `json:"completed"`
	XPAwarded    int    `json:"xp_awarded,omitempty"`
}

type Result struct {
	Progress []Progress `json:"progress,omitempty"`
	XPGained int        `json:"xp_gained"`
	Expired  int        `json:"expired,omitempty"`
}

// Track expires stale quests, then adds one to every active quest tied to a
// metric completed on date. Each date counts once per quest, so resubmitting
// a day does not progress it again. Progress and rewards commit together.
func (t *Tracker) Track(ctx context.Context, userID, date string, entries []models.DailyEntry) (*Result, error) {
	var res *Result
	err := t.ledger.Atomic(ctx, func(tl *ledger.Ledger) error {
		bound := *t
		bound.ledger = tl
		bound.q = tl.Queries()

		var err error
		res, err = bound.track(ctx, userID, date, entries)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (t *Tracker) track(ctx context.Context, userID, date string, entries []models.DailyEntry) (*Result, error) {
	expired, err := t.q.ExpireQuests(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to expire quests: %w", err)
	}
	res := &Result{Expired: expired}

	seen := make(map[string]bool)
	for _, e := range entries {
		if !e.Completed || seen[e.MetricID] {
			continue
		}
		seen[e.MetricID] = true

		active, err := t.q.GetActiveQuestsForMetric(ctx, userID, e.MetricID)
		if err != nil {
			return nil, fmt.Errorf("failed to load quests for %s: %w", e.MetricID, err)
		}
		for _, q := range active {
			p, err := t.advance(ctx, q, date)
			if err != nil {
				return nil, err
			}
			res.XPGained += p.XPAwarded
			res.Progress = append(res.Progress, p)
		}
	}
	return res, nil
}

// DayReason marks a date that already advanced a quest.
func DayReason(questID, date string) string {
	return "quest_day:" + questID + ":" + date
}

func (t *Tracker) advance(ctx context.Context, q models.Quest, date string) (Progress, error) {
	first, err := t.ledger.AwardXPOnce(ctx, q.UserID, DayReason(q.ID, date), 0)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to record quest %s progress: %w", q.ID, err)
	}
	if !first {
		return Progress{QuestID: q.ID, Title: q.Title, CurrentValue: q.CurrentValue, TargetValue: q.TargetValue}, nil
	}

	value, err := t.q.IncrementQuest(ctx, q.ID)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to advance quest %s: %w", q.ID, err)
	}
	p := Progress{QuestID: q.ID, Title: q.Title, CurrentValue: value, TargetValue: q.TargetValue}
	if value < q.TargetValue {
		return p, nil
	}

	completed, err := t.q.CompleteQuest(ctx, q.ID, t.now())
	if err != nil {
		return p, fmt.Errorf("failed to complete quest %s: %w", q.ID, err)
	}
	if !completed {
		return p, nil
	}
	p.Completed = true

	granted, err := t.ledger.AwardXPOnce(ctx, q.UserID, "quest:"+q.ID, q.XPReward)
	if err != nil {
		return p, fmt.Errorf("failed to reward quest %s: %w", q.ID, err)
	}
	if granted {
		p.XPAwarded = q.XPReward
	}
	return p, nil
}

// Create starts a new active quest. expiresAt is the last valid day, or empty
// for no deadline.
func (t *Tracker) Create(ctx context.Context, userID, title, metricID string, target, xpReward int, expiresAt string) (models.Quest, error) {
	if target <= 0 {
		return models.Quest{}, errors.New(errors.CodeInvalidValue, "quest target must be positive, got %d", target)
	}
	if xpReward < 0 {
		return models.Quest{}, errors.New(errors.CodeInvalidValue, "quest reward must not be negative, got %d", xpReward)
	}

	q := models.Quest{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		MetricID:    metricID,
		TargetValue: target,
		Status:      models.QuestActive,
		XPReward:    xpReward,
		ExpiresAt:   expiresAt,
		CreatedAt:   t.now(),
	}
	if err := t.q.InsertQuest(ctx, q); err != nil {
		return models.Quest{}, err
	}
	return q, nil
}
