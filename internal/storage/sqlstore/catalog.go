package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/levelup/internal/models"
)

func (s *Store) UpsertAxis(ctx context.Context, axis models.Axis) error {
	_, err := s.exec(ctx, `
		INSERT INTO axes (id, name, active) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			active = excluded.active`,
		axis.ID, axis.Name, axis.Active)
	return err
}

func (s *Store) UpsertMetric(ctx context.Context, m models.Metric) error {
	_, err := s.exec(ctx, `
		INSERT INTO metrics (id, axis_id, name, max_points, input_type, active, rpg_attribute)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			axis_id = excluded.axis_id,
			name = excluded.name,
			max_points = excluded.max_points,
			input_type = excluded.input_type,
			active = excluded.active,
			rpg_attribute = excluded.rpg_attribute`,
		m.ID, m.AxisID, m.Name, m.MaxPoints, string(m.InputType), m.Active, nullString(m.RPGAttribute))
	return err
}

// UpsertCycle replaces the cycle and its full weight set.
func (s *Store) UpsertCycle(ctx context.Context, c models.PriorityCycle) error {
	_, err := s.exec(ctx, `
		INSERT INTO priority_cycles (id, name, start_date, end_date) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			end_date = excluded.end_date`,
		c.ID, c.Name, c.StartDate, c.EndDate)
	if err != nil {
		return fmt.Errorf("failed to save cycle %s: %w", c.ID, err)
	}

	if _, err := s.exec(ctx, `DELETE FROM axis_weights WHERE cycle_id = ?`, c.ID); err != nil {
		return fmt.Errorf("failed to clear weights for cycle %s: %w", c.ID, err)
	}
	for _, w := range c.Weights {
		if _, err := s.exec(ctx, `
			INSERT INTO axis_weights (cycle_id, axis_id, weight_percentage) VALUES (?, ?, ?)`,
			c.ID, w.AxisID, w.WeightPercentage); err != nil {
			return fmt.Errorf("failed to save weight %s/%s: %w", c.ID, w.AxisID, err)
		}
	}
	return nil
}

func (s *Store) GetActiveAxes(ctx context.Context) ([]models.Axis, error) {
	rows, err := s.query(ctx, `SELECT id, name, active FROM axes WHERE active = ? ORDER BY name, id`, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var axes []models.Axis
	for rows.Next() {
		var a models.Axis
		if err := rows.Scan(&a.ID, &a.Name, &a.Active); err != nil {
			return nil, err
		}
		axes = append(axes, a)
	}
	return axes, rows.Err()
}

func (s *Store) GetActiveMetrics(ctx context.Context) ([]models.Metric, error) {
	rows, err := s.query(ctx, `
		SELECT id, axis_id, name, max_points, input_type, active, rpg_attribute
		FROM metrics WHERE active = ? ORDER BY axis_id, name, id`, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []models.Metric
	for rows.Next() {
		var m models.Metric
		var inputType string
		var attr sql.NullString
		if err := rows.Scan(&m.ID, &m.AxisID, &m.Name, &m.MaxPoints, &inputType, &m.Active, &attr); err != nil {
			return nil, err
		}
		m.InputType = models.InputType(inputType)
		m.RPGAttribute = stringPtr(attr)
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

func (s *Store) GetCoveringCycle(ctx context.Context, date string) (models.PriorityCycle, error) {
	row := s.queryRow(ctx, `
		SELECT id, name, start_date, end_date FROM priority_cycles
		WHERE start_date <= ? AND end_date >= ?
		ORDER BY start_date DESC, id ASC
		LIMIT 1`, date, date)

	var c models.PriorityCycle
	if err := row.Scan(&c.ID, &c.Name, &c.StartDate, &c.EndDate); err != nil {
		return models.PriorityCycle{}, notFound(err)
	}

	rows, err := s.query(ctx, `
		SELECT axis_id, weight_percentage FROM axis_weights
		WHERE cycle_id = ? ORDER BY axis_id`, c.ID)
	if err != nil {
		return models.PriorityCycle{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var w models.AxisWeight
		if err := rows.Scan(&w.AxisID, &w.WeightPercentage); err != nil {
			return models.PriorityCycle{}, err
		}
		c.Weights = append(c.Weights, w)
	}
	return c, rows.Err()
}
