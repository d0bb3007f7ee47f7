// Package streaks advances per-metric completion streaks.
package streaks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/levelup/internal/constants"
	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage"
)

type Store interface {
	GetStreak(ctx context.Context, userID, metricID string) (models.Streak, error)
	UpsertStreak(ctx context.Context, streak models.Streak) error
}

// daysBetween returns to minus from in whole calendar days.
func daysBetween(from, to string) (int, error) {
	a, err := time.Parse(constants.DateFormat, from)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", from, err)
	}
	b, err := time.Parse(constants.DateFormat, to)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", to, err)
	}
	return int(b.Sub(a).Hours() / 24), nil
}

// Advance applies one completion on date to prev (nil when the metric has no
// streak yet). It reports false when the streak must not be written, which
// covers same-day resubmissions and backfills older than the last log.
func Advance(prev *models.Streak, userID, metricID, date string) (models.Streak, bool, error) {
	if prev == nil {
		return models.Streak{
			UserID:        userID,
			MetricID:      metricID,
			CurrentStreak: 1,
			LongestStreak: 1,
			LastLogDate:   date,
		}, true, nil
	}

	gap, err := daysBetween(prev.LastLogDate, date)
	if err != nil {
		return *prev, false, err
	}

	next := *prev
	switch {
	case gap <= 0:
		return next, false, nil
	case gap == 1:
		next.CurrentStreak++
	default:
		next.CurrentStreak = 1
	}
	next.LongestStreak = max(next.LongestStreak, next.CurrentStreak)
	next.LastLogDate = date
	return next, true, nil
}

// Apply advances the streak of every completed entry and returns the streaks
// that were written.
func Apply(ctx context.Context, q Store, entries []models.DailyEntry) ([]models.Streak, error) {
	var updated []models.Streak
	for _, e := range entries {
		if !e.Completed {
			continue
		}

		var prev *models.Streak
		existing, err := q.GetStreak(ctx, e.UserID, e.MetricID)
		switch {
		case err == nil:
			prev = &existing
		case errors.Is(err, storage.ErrNotFound):
		default:
			return nil, fmt.Errorf("failed to get streak for %s: %w", e.MetricID, err)
		}

		next, changed, err := Advance(prev, e.UserID, e.MetricID, e.Date)
		if err != nil {
			return nil, err
		}
		if !changed {
			continue
		}
		if err := q.UpsertStreak(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to save streak for %s: %w", e.MetricID, err)
		}
		updated = append(updated, next)
	}
	return updated, nil
}
