package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/levelup/internal/models"
)

// EnsureUser returns the user, creating an empty profile on first sight.
func (s *Store) EnsureUser(ctx context.Context, id string) (models.User, error) {
	_, err := s.exec(ctx, `
		INSERT INTO users (id, hardcore, gold, last_spawn_check, created_at)
		VALUES (?, ?, 0, '', ?)
		ON CONFLICT(id) DO NOTHING`,
		id, false, formatTime(time.Now()))
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return s.GetUser(ctx, id)
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	row := s.queryRow(ctx, `
		SELECT id, hardcore, gold, last_spawn_check, created_at
		FROM users WHERE id = ?`, id)

	var u models.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Hardcore, &u.Gold, &u.LastSpawnCheck, &createdAt); err != nil {
		return models.User{}, notFound(err)
	}

	var err error
	u.CreatedAt, err = parseTime(createdAt, "created_at")
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetAllUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.query(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) SetHardcore(ctx context.Context, userID string, enabled bool) error {
	ok, err := s.execAffected(ctx, `UPDATE users SET hardcore = ? WHERE id = ?`, enabled, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}

func (s *Store) AddGold(ctx context.Context, userID string, amount int) error {
	ok, err := s.execAffected(ctx, `UPDATE users SET gold = gold + ? WHERE id = ?`, amount, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}

func (s *Store) MarkSpawnCheck(ctx context.Context, userID, date string) (bool, error) {
	return s.execAffected(ctx, `
		UPDATE users SET last_spawn_check = ?
		WHERE id = ? AND last_spawn_check < ?`,
		date, userID, date)
}
