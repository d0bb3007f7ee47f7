package sqlstore

import (
	"context"
	"fmt"

	"github.com/julianstephens/levelup/internal/models"
)

func (s *Store) InsertXPTransaction(ctx context.Context, tx models.XPTransaction) error {
	_, err := s.exec(ctx, `
		INSERT INTO xp_transactions (id, user_id, amount, reason, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Amount, tx.Reason, formatTime(tx.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to record xp %q: %w", tx.Reason, err)
	}
	return nil
}

func (s *Store) HasXPReason(ctx context.Context, userID, reason string) (bool, error) {
	n, err := s.count(ctx, `
		SELECT COUNT(*) FROM xp_transactions WHERE user_id = ? AND reason = ?`,
		userID, reason)
	return n > 0, err
}

// HasXPReasonPrefix matches with substr rather than LIKE so '_' and '%' in
// reasons are literal.
func (s *Store) HasXPReasonPrefix(ctx context.Context, userID, prefix string) (bool, error) {
	n, err := s.count(ctx, `
		SELECT COUNT(*) FROM xp_transactions
		WHERE user_id = ? AND substr(reason, 1, ?) = ?`,
		userID, len(prefix), prefix)
	return n > 0, err
}

func (s *Store) GetXPBalance(ctx context.Context, userID string) (int, error) {
	return s.count(ctx, `SELECT COALESCE(SUM(amount), 0) FROM xp_transactions WHERE user_id = ?`, userID)
}

func (s *Store) GetXPTransactions(ctx context.Context, userID string) ([]models.XPTransaction, error) {
	rows, err := s.query(ctx, `
		SELECT id, user_id, amount, reason, created_at
		FROM xp_transactions WHERE user_id = ?
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.XPTransaction
	for rows.Next() {
		var tx models.XPTransaction
		var createdAt string
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Reason, &createdAt); err != nil {
			return nil, err
		}
		if tx.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *Store) GetAttribute(ctx context.Context, userID, name string) (models.UserAttribute, error) {
	row := s.queryRow(ctx, `
		SELECT user_id, attribute_name, total_xp, level
		FROM user_attributes WHERE user_id = ? AND attribute_name = ?`, userID, name)

	var a models.UserAttribute
	if err := row.Scan(&a.UserID, &a.AttributeName, &a.TotalXP, &a.Level); err != nil {
		return models.UserAttribute{}, notFound(err)
	}
	return a, nil
}

func (s *Store) UpsertAttribute(ctx context.Context, a models.UserAttribute) error {
	_, err := s.exec(ctx, `
		INSERT INTO user_attributes (user_id, attribute_name, total_xp, level)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, attribute_name) DO UPDATE SET
			total_xp = excluded.total_xp,
			level = excluded.level`,
		a.UserID, a.AttributeName, a.TotalXP, a.Level)
	return err
}

func (s *Store) GetAttributes(ctx context.Context, userID string) ([]models.UserAttribute, error) {
	rows, err := s.query(ctx, `
		SELECT user_id, attribute_name, total_xp, level
		FROM user_attributes WHERE user_id = ? ORDER BY attribute_name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attrs []models.UserAttribute
	for rows.Next() {
		var a models.UserAttribute
		if err := rows.Scan(&a.UserID, &a.AttributeName, &a.TotalXP, &a.Level); err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

func (s *Store) UpsertItem(ctx context.Context, item models.Item) error {
	_, err := s.exec(ctx, `
		INSERT INTO items (id, name, rarity) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			rarity = excluded.rarity`,
		item.ID, item.Name, item.Rarity)
	return err
}

func (s *Store) GetItem(ctx context.Context, id string) (models.Item, error) {
	var item models.Item
	err := s.queryRow(ctx, `SELECT id, name, rarity FROM items WHERE id = ?`, id).
		Scan(&item.ID, &item.Name, &item.Rarity)
	if err != nil {
		return models.Item{}, notFound(err)
	}
	return item, nil
}

func (s *Store) GetItems(ctx context.Context) ([]models.Item, error) {
	rows, err := s.query(ctx, `SELECT id, name, rarity FROM items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Rarity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) AddInventory(ctx context.Context, userID, itemID string, quantity int) error {
	_, err := s.exec(ctx, `
		INSERT INTO inventory (user_id, item_id, quantity) VALUES (?, ?, ?)
		ON CONFLICT(user_id, item_id) DO UPDATE SET
			quantity = inventory.quantity + excluded.quantity`,
		userID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("failed to add %s to inventory: %w", itemID, err)
	}
	return nil
}

func (s *Store) GetInventory(ctx context.Context, userID string) ([]models.InventoryItem, error) {
	rows, err := s.query(ctx, `
		SELECT user_id, item_id, quantity FROM inventory
		WHERE user_id = ? AND quantity > 0 ORDER BY item_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inv []models.InventoryItem
	for rows.Next() {
		var it models.InventoryItem
		if err := rows.Scan(&it.UserID, &it.ItemID, &it.Quantity); err != nil {
			return nil, err
		}
		inv = append(inv, it)
	}
	return inv, rows.Err()
}
