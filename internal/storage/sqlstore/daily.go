package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/levelup/internal/models"
)

func (s *Store) DeleteEntries(ctx context.Context, userID, date string) error {
	_, err := s.exec(ctx, `DELETE FROM daily_entries WHERE user_id = ? AND date = ?`, userID, date)
	return err
}

func (s *Store) InsertEntry(ctx context.Context, e models.DailyEntry) error {
	var scoreValue sql.NullFloat64
	if e.ScoreValue != nil {
		scoreValue = sql.NullFloat64{Float64: *e.ScoreValue, Valid: true}
	}
	_, err := s.exec(ctx, `
		INSERT INTO daily_entries (id, user_id, metric_id, date, completed, score_awarded,
			score_value, time_spent_minutes, review)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.MetricID, e.Date, e.Completed, e.ScoreAwarded,
		scoreValue, e.TimeSpentMinutes, e.Review)
	if err != nil {
		return fmt.Errorf("failed to insert entry for %s: %w", e.MetricID, err)
	}
	return nil
}

func (s *Store) GetEntries(ctx context.Context, userID, date string) ([]models.DailyEntry, error) {
	rows, err := s.query(ctx, `
		SELECT id, user_id, metric_id, date, completed, score_awarded, score_value,
			time_spent_minutes, review
		FROM daily_entries WHERE user_id = ? AND date = ?
		ORDER BY metric_id`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.DailyEntry
	for rows.Next() {
		var e models.DailyEntry
		var scoreValue sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.UserID, &e.MetricID, &e.Date, &e.Completed, &e.ScoreAwarded,
			&scoreValue, &e.TimeSpentMinutes, &e.Review); err != nil {
			return nil, err
		}
		if scoreValue.Valid {
			v := scoreValue.Float64
			e.ScoreValue = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) UpsertSummary(ctx context.Context, sum models.DailySummary) error {
	_, err := s.exec(ctx, `
		INSERT INTO daily_summaries (user_id, date, total_score, mode, burnout_flag,
			procrastination_flag, total_time_minutes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			total_score = excluded.total_score,
			mode = excluded.mode,
			burnout_flag = excluded.burnout_flag,
			procrastination_flag = excluded.procrastination_flag,
			total_time_minutes = excluded.total_time_minutes,
			updated_at = excluded.updated_at`,
		sum.UserID, sum.Date, sum.TotalScore, string(sum.Mode), sum.BurnoutFlag,
		sum.ProcrastinationFlag, sum.TotalTimeMinutes, formatTime(sum.UpdatedAt))
	return err
}

const summaryColumns = `user_id, date, total_score, mode, burnout_flag, procrastination_flag,
	total_time_minutes, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (models.DailySummary, error) {
	var sum models.DailySummary
	var mode, updatedAt string
	if err := row.Scan(&sum.UserID, &sum.Date, &sum.TotalScore, &mode, &sum.BurnoutFlag,
		&sum.ProcrastinationFlag, &sum.TotalTimeMinutes, &updatedAt); err != nil {
		return models.DailySummary{}, err
	}
	sum.Mode = models.Mode(mode)

	var err error
	sum.UpdatedAt, err = parseTime(updatedAt, "updated_at")
	if err != nil {
		return models.DailySummary{}, err
	}
	return sum, nil
}

func (s *Store) GetSummary(ctx context.Context, userID, date string) (models.DailySummary, error) {
	row := s.queryRow(ctx, `SELECT `+summaryColumns+`
		FROM daily_summaries WHERE user_id = ? AND date = ?`, userID, date)
	sum, err := scanSummary(row)
	if err != nil {
		return models.DailySummary{}, notFound(err)
	}
	return sum, nil
}

func (s *Store) GetRecentSummaries(ctx context.Context, userID, date string, limit int) ([]models.DailySummary, error) {
	rows, err := s.query(ctx, `SELECT `+summaryColumns+`
		FROM daily_summaries WHERE user_id = ? AND date < ?
		ORDER BY date DESC LIMIT ?`, userID, date, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sums []models.DailySummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		sums = append(sums, sum)
	}
	return sums, rows.Err()
}

func (s *Store) CountPerfectDays(ctx context.Context, userID string) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM daily_summaries WHERE user_id = ? AND total_score >= 100`, userID)
}

func (s *Store) CountDaysLogged(ctx context.Context, userID string) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM daily_summaries WHERE user_id = ?`, userID)
}

func (s *Store) GetStreak(ctx context.Context, userID, metricID string) (models.Streak, error) {
	row := s.queryRow(ctx, `
		SELECT user_id, metric_id, current_streak, longest_streak, last_log_date
		FROM streaks WHERE user_id = ? AND metric_id = ?`, userID, metricID)

	var st models.Streak
	if err := row.Scan(&st.UserID, &st.MetricID, &st.CurrentStreak, &st.LongestStreak, &st.LastLogDate); err != nil {
		return models.Streak{}, notFound(err)
	}
	return st, nil
}

func (s *Store) UpsertStreak(ctx context.Context, st models.Streak) error {
	_, err := s.exec(ctx, `
		INSERT INTO streaks (user_id, metric_id, current_streak, longest_streak, last_log_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, metric_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_log_date = excluded.last_log_date`,
		st.UserID, st.MetricID, st.CurrentStreak, st.LongestStreak, st.LastLogDate)
	return err
}

func (s *Store) GetStreaks(ctx context.Context, userID string) ([]models.Streak, error) {
	rows, err := s.query(ctx, `
		SELECT user_id, metric_id, current_streak, longest_streak, last_log_date
		FROM streaks WHERE user_id = ? ORDER BY metric_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var streaks []models.Streak
	for rows.Next() {
		var st models.Streak
		if err := rows.Scan(&st.UserID, &st.MetricID, &st.CurrentStreak, &st.LongestStreak, &st.LastLogDate); err != nil {
			return nil, err
		}
		streaks = append(streaks, st)
	}
	return streaks, rows.Err()
}

func (s *Store) AddRetroGrant(ctx context.Context, g models.RetroEditGrant) error {
	_, err := s.exec(ctx, `
		INSERT INTO retro_edit_grants (id, user_id, expires_at, used_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.UserID, formatTime(g.ExpiresAt), nullTime(g.UsedAt), formatTime(g.CreatedAt))
	return err
}

// Grant timestamps are stored as fixed-width RFC3339 UTC, so string
// comparison orders them correctly.
func (s *Store) HasRetroGrant(ctx context.Context, userID string, now time.Time) (bool, error) {
	n, err := s.count(ctx, `
		SELECT COUNT(*) FROM retro_edit_grants
		WHERE user_id = ? AND used_at IS NULL AND expires_at > ?`,
		userID, formatTime(now))
	return n > 0, err
}

func (s *Store) ConsumeRetroGrant(ctx context.Context, userID string, now time.Time) (bool, error) {
	stamp := formatTime(now)
	return s.execAffected(ctx, `
		UPDATE retro_edit_grants SET used_at = ?
		WHERE used_at IS NULL AND id = (
			SELECT id FROM retro_edit_grants
			WHERE user_id = ? AND used_at IS NULL AND expires_at > ?
			ORDER BY expires_at, id LIMIT 1
		)`, stamp, userID, stamp)
}
