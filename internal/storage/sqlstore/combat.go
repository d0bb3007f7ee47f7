package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/levelup/internal/models"
)

const bossColumns = `id, name, max_health, reward_xp, reward_gold, reward_item_id, daily_penalty_xp, min_level`

func scanBoss(row scanner) (models.Boss, error) {
	var b models.Boss
	var itemID sql.NullString
	if err := row.Scan(&b.ID, &b.Name, &b.MaxHealth, &b.RewardXP, &b.RewardGold, &itemID,
		&b.DailyPenaltyXP, &b.MinLevel); err != nil {
		return models.Boss{}, err
	}
	b.RewardItemID = stringPtr(itemID)
	return b, nil
}

func (s *Store) UpsertBoss(ctx context.Context, b models.Boss) error {
	_, err := s.exec(ctx, `
		INSERT INTO bosses (`+bossColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			max_health = excluded.max_health,
			reward_xp = excluded.reward_xp,
			reward_gold = excluded.reward_gold,
			reward_item_id = excluded.reward_item_id,
			daily_penalty_xp = excluded.daily_penalty_xp,
			min_level = excluded.min_level`,
		b.ID, b.Name, b.MaxHealth, b.RewardXP, b.RewardGold, nullString(b.RewardItemID),
		b.DailyPenaltyXP, b.MinLevel)
	return err
}

func (s *Store) GetBoss(ctx context.Context, id string) (models.Boss, error) {
	b, err := scanBoss(s.queryRow(ctx, `SELECT `+bossColumns+` FROM bosses WHERE id = ?`, id))
	if err != nil {
		return models.Boss{}, notFound(err)
	}
	return b, nil
}

func (s *Store) GetBosses(ctx context.Context) ([]models.Boss, error) {
	rows, err := s.query(ctx, `SELECT `+bossColumns+` FROM bosses ORDER BY min_level, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bosses []models.Boss
	for rows.Next() {
		b, err := scanBoss(rows)
		if err != nil {
			return nil, err
		}
		bosses = append(bosses, b)
	}
	return bosses, rows.Err()
}

const encounterColumns = `id, user_id, boss_id, current_health, max_health, is_active, spawned_at, defeated_at`

func scanEncounter(row scanner) (models.BossEncounter, error) {
	var e models.BossEncounter
	var spawnedAt string
	var defeatedAt sql.NullString
	if err := row.Scan(&e.ID, &e.UserID, &e.BossID, &e.CurrentHealth, &e.MaxHealth, &e.IsActive,
		&spawnedAt, &defeatedAt); err != nil {
		return models.BossEncounter{}, err
	}

	var err error
	if e.SpawnedAt, err = parseTime(spawnedAt, "spawned_at"); err != nil {
		return models.BossEncounter{}, err
	}
	if e.DefeatedAt, err = parseNullTime(defeatedAt, "defeated_at"); err != nil {
		return models.BossEncounter{}, err
	}
	return e, nil
}

func (s *Store) InsertEncounter(ctx context.Context, e models.BossEncounter) error {
	_, err := s.exec(ctx, `
		INSERT INTO boss_encounters (`+encounterColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.BossID, e.CurrentHealth, e.MaxHealth, e.IsActive,
		formatTime(e.SpawnedAt), nullTime(e.DefeatedAt))
	if err != nil {
		return fmt.Errorf("failed to spawn encounter: %w", err)
	}
	return nil
}

func (s *Store) GetActiveEncounter(ctx context.Context, userID string) (models.BossEncounter, error) {
	e, err := scanEncounter(s.queryRow(ctx, `SELECT `+encounterColumns+`
		FROM boss_encounters WHERE user_id = ? AND is_active = ?
		ORDER BY spawned_at DESC LIMIT 1`, userID, true))
	if err != nil {
		return models.BossEncounter{}, notFound(err)
	}
	return e, nil
}

func (s *Store) GetActiveEncounters(ctx context.Context) ([]models.BossEncounter, error) {
	rows, err := s.query(ctx, `SELECT `+encounterColumns+`
		FROM boss_encounters WHERE is_active = ? ORDER BY user_id`, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var encs []models.BossEncounter
	for rows.Next() {
		e, err := scanEncounter(rows)
		if err != nil {
			return nil, err
		}
		encs = append(encs, e)
	}
	return encs, rows.Err()
}

func (s *Store) UpdateEncounterHealth(ctx context.Context, id string, health int) error {
	_, err := s.exec(ctx, `UPDATE boss_encounters SET current_health = ? WHERE id = ?`, health, id)
	return err
}

func (s *Store) DefeatEncounter(ctx context.Context, id string, at time.Time) (bool, error) {
	return s.execAffected(ctx, `
		UPDATE boss_encounters SET is_active = ?, current_health = 0, defeated_at = ?
		WHERE id = ? AND is_active = ?`,
		false, formatTime(at), id, true)
}

const stageColumns = `stage, name, max_health, reward_xp, reward_gold, reward_item_id`

func scanStage(row scanner) (models.CampaignStage, error) {
	var st models.CampaignStage
	var itemID sql.NullString
	if err := row.Scan(&st.Stage, &st.Name, &st.MaxHealth, &st.RewardXP, &st.RewardGold, &itemID); err != nil {
		return models.CampaignStage{}, err
	}
	st.RewardItemID = stringPtr(itemID)
	return st, nil
}

func (s *Store) UpsertCampaignStage(ctx context.Context, st models.CampaignStage) error {
	_, err := s.exec(ctx, `
		INSERT INTO campaign_stages (`+stageColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(stage) DO UPDATE SET
			name = excluded.name,
			max_health = excluded.max_health,
			reward_xp = excluded.reward_xp,
			reward_gold = excluded.reward_gold,
			reward_item_id = excluded.reward_item_id`,
		st.Stage, st.Name, st.MaxHealth, st.RewardXP, st.RewardGold, nullString(st.RewardItemID))
	return err
}

func (s *Store) GetCampaignStage(ctx context.Context, stage int) (models.CampaignStage, error) {
	st, err := scanStage(s.queryRow(ctx, `SELECT `+stageColumns+` FROM campaign_stages WHERE stage = ?`, stage))
	if err != nil {
		return models.CampaignStage{}, notFound(err)
	}
	return st, nil
}

func (s *Store) GetCampaignStages(ctx context.Context) ([]models.CampaignStage, error) {
	rows, err := s.query(ctx, `SELECT `+stageColumns+` FROM campaign_stages ORDER BY stage`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stages []models.CampaignStage
	for rows.Next() {
		st, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		stages = append(stages, st)
	}
	return stages, rows.Err()
}

func (s *Store) GetCampaignStatus(ctx context.Context, userID string) (models.CampaignStatus, error) {
	var cs models.CampaignStatus
	err := s.queryRow(ctx, `
		SELECT user_id, current_stage, current_health, max_health, completed
		FROM campaign_status WHERE user_id = ?`, userID).
		Scan(&cs.UserID, &cs.CurrentStage, &cs.CurrentHealth, &cs.MaxHealth, &cs.Completed)
	if err != nil {
		return models.CampaignStatus{}, notFound(err)
	}
	return cs, nil
}

func (s *Store) UpsertCampaignStatus(ctx context.Context, cs models.CampaignStatus) error {
	_, err := s.exec(ctx, `
		INSERT INTO campaign_status (user_id, current_stage, current_health, max_health, completed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			current_stage = excluded.current_stage,
			current_health = excluded.current_health,
			max_health = excluded.max_health,
			completed = excluded.completed`,
		cs.UserID, cs.CurrentStage, cs.CurrentHealth, cs.MaxHealth, cs.Completed)
	return err
}
