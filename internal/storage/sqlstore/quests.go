package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/levelup/internal/models"
)

const questColumns = `id, user_id, title, metric_id, target_value, current_value, status,
	xp_reward, expires_at, completed_at, created_at`

func scanQuest(row scanner) (models.Quest, error) {
	var q models.Quest
	var status, createdAt string
	var completedAt sql.NullString
	if err := row.Scan(&q.ID, &q.UserID, &q.Title, &q.MetricID, &q.TargetValue, &q.CurrentValue,
		&status, &q.XPReward, &q.ExpiresAt, &completedAt, &createdAt); err != nil {
		return models.Quest{}, err
	}
	q.Status = models.QuestStatus(status)

	var err error
	if q.CompletedAt, err = parseNullTime(completedAt, "completed_at"); err != nil {
		return models.Quest{}, err
	}
	if q.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.Quest{}, err
	}
	return q, nil
}

func (s *Store) scanQuests(ctx context.Context, query string, args ...any) ([]models.Quest, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quests []models.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		quests = append(quests, q)
	}
	return quests, rows.Err()
}

func (s *Store) InsertQuest(ctx context.Context, q models.Quest) error {
	_, err := s.exec(ctx, `
		INSERT INTO quests (`+questColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.UserID, q.Title, q.MetricID, q.TargetValue, q.CurrentValue, string(q.Status),
		q.XPReward, q.ExpiresAt, nullTime(q.CompletedAt), formatTime(q.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert quest: %w", err)
	}
	return nil
}

func (s *Store) GetQuest(ctx context.Context, id string) (models.Quest, error) {
	q, err := scanQuest(s.queryRow(ctx, `SELECT `+questColumns+` FROM quests WHERE id = ?`, id))
	if err != nil {
		return models.Quest{}, notFound(err)
	}
	return q, nil
}

func (s *Store) GetQuests(ctx context.Context, userID string) ([]models.Quest, error) {
	return s.scanQuests(ctx, `SELECT `+questColumns+`
		FROM quests WHERE user_id = ? ORDER BY created_at, id`, userID)
}

func (s *Store) GetActiveQuestsForMetric(ctx context.Context, userID, metricID string) ([]models.Quest, error) {
	return s.scanQuests(ctx, `SELECT `+questColumns+`
		FROM quests WHERE user_id = ? AND metric_id = ? AND status = ?
		ORDER BY created_at, id`, userID, metricID, string(models.QuestActive))
}

func (s *Store) IncrementQuest(ctx context.Context, id string) (int, error) {
	ok, err := s.execAffected(ctx, `
		UPDATE quests SET current_value = current_value + 1
		WHERE id = ? AND status = ?`, id, string(models.QuestActive))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("quest %s is not active", id)
	}
	return s.count(ctx, `SELECT current_value FROM quests WHERE id = ?`, id)
}

func (s *Store) CompleteQuest(ctx context.Context, id string, at time.Time) (bool, error) {
	return s.execAffected(ctx, `
		UPDATE quests SET status = ?, completed_at = ?
		WHERE id = ? AND status = ?`,
		string(models.QuestCompleted), formatTime(at), id, string(models.QuestActive))
}

// ExpireQuests treats expires_at as the last valid day; an empty value never expires.
func (s *Store) ExpireQuests(ctx context.Context, userID, date string) (int, error) {
	result, err := s.exec(ctx, `
		UPDATE quests SET status = ?
		WHERE user_id = ? AND status = ? AND expires_at <> '' AND expires_at < ?`,
		string(models.QuestExpired), userID, string(models.QuestActive), date)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

func (s *Store) UpsertAchievement(ctx context.Context, a models.Achievement) error {
	_, err := s.exec(ctx, `
		INSERT INTO achievements (id, name, description, kind, threshold, xp_reward)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			kind = excluded.kind,
			threshold = excluded.threshold,
			xp_reward = excluded.xp_reward`,
		a.ID, a.Name, a.Description, string(a.Kind), a.Threshold, a.XPReward)
	return err
}

func (s *Store) GetAchievements(ctx context.Context) ([]models.Achievement, error) {
	rows, err := s.query(ctx, `
		SELECT id, name, description, kind, threshold, xp_reward
		FROM achievements ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Achievement
	for rows.Next() {
		var a models.Achievement
		var kind string
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &kind, &a.Threshold, &a.XPReward); err != nil {
			return nil, err
		}
		a.Kind = models.AchievementKind(kind)
		list = append(list, a)
	}
	return list, rows.Err()
}

func (s *Store) GetUnlockedAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	rows, err := s.query(ctx, `
		SELECT user_id, achievement_id, unlocked_at
		FROM user_achievements WHERE user_id = ? ORDER BY unlocked_at, achievement_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.UserAchievement
	for rows.Next() {
		var ua models.UserAchievement
		var unlockedAt string
		if err := rows.Scan(&ua.UserID, &ua.AchievementID, &unlockedAt); err != nil {
			return nil, err
		}
		if ua.UnlockedAt, err = parseTime(unlockedAt, "unlocked_at"); err != nil {
			return nil, err
		}
		list = append(list, ua)
	}
	return list, rows.Err()
}

func (s *Store) UnlockAchievement(ctx context.Context, userID, achievementID string, at time.Time) (bool, error) {
	return s.execAffected(ctx, `
		INSERT INTO user_achievements (user_id, achievement_id, unlocked_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id, achievement_id) DO NOTHING`,
		userID, achievementID, formatTime(at))
}
