package catalog

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/julianstephens/levelup/internal/constants"
	"github.com/julianstephens/levelup/internal/errors"
	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage"
)

// File is the TOML layout accepted by `levelup catalog import`.
type File struct {
	Axes         []models.Axis          `toml:"axes"`
	Metrics      []models.Metric        `toml:"metrics"`
	Cycles       []models.PriorityCycle `toml:"cycles"`
	Items        []models.Item          `toml:"items"`
	Bosses       []models.Boss          `toml:"bosses"`
	Campaign     []models.CampaignStage `toml:"campaign"`
	Achievements []models.Achievement   `toml:"achievements"`
}

// Decode reads a catalog file, rejecting unknown keys.
func Decode(r io.Reader) (File, error) {
	var f File
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&f); err != nil {
		return File{}, errors.Wrap(errors.CodeInvalidCatalog, err, "failed to decode catalog")
	}
	return f, nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.CodeInvalidCatalog, format, args...)
}

// Validate checks references within the file. Metrics may only name axes
// defined in the same file.
func (f File) Validate() error {
	axes := make(map[string]bool, len(f.Axes))
	for _, a := range f.Axes {
		if a.ID == "" {
			return invalid("axis id is required")
		}
		if axes[a.ID] {
			return invalid("axis %s defined twice", a.ID)
		}
		axes[a.ID] = true
	}

	metrics := make(map[string]bool, len(f.Metrics))
	for _, m := range f.Metrics {
		switch {
		case m.ID == "":
			return invalid("metric id is required")
		case metrics[m.ID]:
			return invalid("metric %s defined twice", m.ID)
		case !axes[m.AxisID]:
			return invalid("metric %s references unknown axis %q", m.ID, m.AxisID)
		case !m.InputType.IsValid():
			return invalid("metric %s has unknown input type %q", m.ID, m.InputType)
		case m.MaxPoints < 0:
			return invalid("metric %s has negative max points", m.ID)
		}
		metrics[m.ID] = true
	}

	for _, c := range f.Cycles {
		if err := validateCycle(c, axes); err != nil {
			return err
		}
	}

	items := make(map[string]bool, len(f.Items))
	for _, it := range f.Items {
		if it.ID == "" {
			return invalid("item id is required")
		}
		items[it.ID] = true
	}
	rewardItem := func(owner string, id *string) error {
		if id != nil && !items[*id] {
			return invalid("%s rewards unknown item %q", owner, *id)
		}
		return nil
	}

	for _, b := range f.Bosses {
		if b.ID == "" || b.MaxHealth <= 0 {
			return invalid("boss %q needs an id and positive max_health", b.ID)
		}
		if err := rewardItem("boss "+b.ID, b.RewardItemID); err != nil {
			return err
		}
	}

	for i, s := range f.Campaign {
		if s.Stage != i+1 {
			return invalid("campaign stages must be numbered 1..n in order, got %d at position %d", s.Stage, i+1)
		}
		if s.MaxHealth <= 0 {
			return invalid("campaign stage %d needs positive max_health", s.Stage)
		}
		if err := rewardItem(fmt.Sprintf("campaign stage %d", s.Stage), s.RewardItemID); err != nil {
			return err
		}
	}

	for _, a := range f.Achievements {
		if a.ID == "" || !a.Kind.IsValid() {
			return invalid("achievement %q needs an id and a known kind", a.ID)
		}
		if a.Threshold <= 0 {
			return invalid("achievement %s needs a positive threshold", a.ID)
		}
	}
	return nil
}

func validateCycle(c models.PriorityCycle, axes map[string]bool) error {
	if c.ID == "" {
		return invalid("cycle id is required")
	}
	start, err := time.Parse(constants.DateFormat, c.StartDate)
	if err != nil {
		return invalid("cycle %s has invalid start_date %q", c.ID, c.StartDate)
	}
	end, err := time.Parse(constants.DateFormat, c.EndDate)
	if err != nil {
		return invalid("cycle %s has invalid end_date %q", c.ID, c.EndDate)
	}
	if end.Before(start) {
		return invalid("cycle %s ends before it starts", c.ID)
	}

	var total float64
	for _, w := range c.Weights {
		if !axes[w.AxisID] {
			return invalid("cycle %s weights unknown axis %q", c.ID, w.AxisID)
		}
		if w.WeightPercentage < 0 {
			return invalid("cycle %s has a negative weight for %s", c.ID, w.AxisID)
		}
		total += w.WeightPercentage
	}
	if total > 100 {
		return invalid("cycle %s weights sum to %.1f, more than 100", c.ID, total)
	}
	return nil
}

// Counts reports how many rows of each kind an import wrote.
type Counts struct {
	Axes, Metrics, Cycles, Items, Bosses, Stages, Achievements int
}

// Import validates f and upserts everything in one transaction, parents
// before children.
func Import(ctx context.Context, store storage.Provider, f File) (Counts, error) {
	if err := f.Validate(); err != nil {
		return Counts{}, err
	}

	var n Counts
	err := store.WithTx(ctx, func(q storage.Queries) error {
		for _, a := range f.Axes {
			if err := q.UpsertAxis(ctx, a); err != nil {
				return fmt.Errorf("failed to save axis %s: %w", a.ID, err)
			}
			n.Axes++
		}
		for _, m := range f.Metrics {
			if err := q.UpsertMetric(ctx, m); err != nil {
				return fmt.Errorf("failed to save metric %s: %w", m.ID, err)
			}
			n.Metrics++
		}
		for _, c := range f.Cycles {
			if err := q.UpsertCycle(ctx, c); err != nil {
				return fmt.Errorf("failed to save cycle %s: %w", c.ID, err)
			}
			n.Cycles++
		}
		for _, it := range f.Items {
			if err := q.UpsertItem(ctx, it); err != nil {
				return fmt.Errorf("failed to save item %s: %w", it.ID, err)
			}
			n.Items++
		}
		for _, b := range f.Bosses {
			if err := q.UpsertBoss(ctx, b); err != nil {
				return fmt.Errorf("failed to save boss %s: %w", b.ID, err)
			}
			n.Bosses++
		}
		for _, s := range f.Campaign {
			if err := q.UpsertCampaignStage(ctx, s); err != nil {
				return fmt.Errorf("failed to save campaign stage %d: %w", s.Stage, err)
			}
			n.Stages++
		}
		for _, a := range f.Achievements {
			if err := q.UpsertAchievement(ctx, a); err != nil {
				return fmt.Errorf("failed to save achievement %s: %w", a.ID, err)
			}
			n.Achievements++
		}
		return nil
	})
	if err != nil {
		return Counts{}, err
	}
	return n, nil
}
