package progress

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/julianstephens/levelup/internal/cli"
	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	app, err := ctx.App()
	if err != nil {
		return err
	}
	bg := context.Background()
	q := ctx.Store

	user, err := q.EnsureUser(bg, ctx.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	xp, err := q.GetXPBalance(bg, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load xp: %w", err)
	}
	level, err := app.Ledger.Level(bg, user.ID)
	if err != nil {
		return err
	}

	hero := cli.NewSection("Character " + user.ID)
	hero.Row("Level", "%d", level)
	hero.Row("XP", "%d", xp)
	hero.Row("Gold", "%d", user.Gold)
	if user.Hardcore {
		hero.Row("Hardcore", "%s", cli.Warn("on"))
	}

	today, err := ctx.Today()
	if err != nil {
		return err
	}
	summary, err := q.GetSummary(bg, user.ID, today)
	switch {
	case err == nil:
		hero.Row("Today", "%d/100 (%s)", summary.TotalScore, summary.Mode)
	case errors.Is(err, storage.ErrNotFound):
		hero.Row("Today", "not logged yet")
	default:
		return fmt.Errorf("failed to load today's summary: %w", err)
	}
	hero.Render(ctx.Out)

	if err := renderProgress(bg, ctx, q, user.ID); err != nil {
		return err
	}
	return renderCombat(bg, ctx, q, user.ID)
}

func renderProgress(bg context.Context, ctx *cli.Context, q storage.Queries, userID string) error {
	s := cli.NewSection("Progress")

	attrs, err := q.GetAttributes(bg, userID)
	if err != nil {
		return fmt.Errorf("failed to load attributes: %w", err)
	}
	for _, a := range attrs {
		s.Row(a.AttributeName, "level %d (%d xp)", a.Level, a.TotalXP)
	}

	streaks, err := q.GetStreaks(bg, userID)
	if err != nil {
		return fmt.Errorf("failed to load streaks: %w", err)
	}
	sort.Slice(streaks, func(i, j int) bool { return streaks[i].CurrentStreak > streaks[j].CurrentStreak })
	for _, st := range streaks {
		s.Row(st.MetricID, "streak %d (best %d)", st.CurrentStreak, st.LongestStreak)
	}

	quests, err := q.GetQuests(bg, userID)
	if err != nil {
		return fmt.Errorf("failed to load quests: %w", err)
	}
	for _, qu := range quests {
		if qu.Status != models.QuestActive {
			continue
		}
		s.Row("Quest", "%s %d/%d", qu.Title, qu.CurrentValue, qu.TargetValue)
	}

	inv, err := q.GetInventory(bg, userID)
	if err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}
	for _, it := range inv {
		name := it.ItemID
		if item, err := q.GetItem(bg, it.ItemID); err == nil {
			name = item.Name
		}
		s.Row("Item", "%s × %d", name, it.Quantity)
	}

	unlocked, err := q.GetUnlockedAchievements(bg, userID)
	if err != nil {
		return fmt.Errorf("failed to load achievements: %w", err)
	}
	if len(unlocked) > 0 {
		s.Row("Achievements", "%d unlocked", len(unlocked))
	}

	if !s.Empty() {
		s.Render(ctx.Out)
	}
	return nil
}

func renderCombat(bg context.Context, ctx *cli.Context, q storage.Queries, userID string) error {
	s := cli.NewSection("Combat")

	enc, err := q.GetActiveEncounter(bg, userID)
	switch {
	case err == nil:
		name := enc.BossID
		if boss, err := q.GetBoss(bg, enc.BossID); err == nil {
			name = boss.Name
		}
		s.Row("Boss", "%s", name)
		s.Row("", "%s", cli.Bar(enc.CurrentHealth, enc.MaxHealth, 20))
	case errors.Is(err, storage.ErrNotFound):
	default:
		return fmt.Errorf("failed to load encounter: %w", err)
	}

	status, err := q.GetCampaignStatus(bg, userID)
	switch {
	case err == nil && status.Completed:
		s.Row("Campaign", "%s", cli.Good("complete"))
	case err == nil:
		s.Row("Campaign", "stage %d", status.CurrentStage)
		s.Row("", "%s", cli.Bar(status.CurrentHealth, status.MaxHealth, 20))
	case errors.Is(err, storage.ErrNotFound):
	default:
		return fmt.Errorf("failed to load campaign: %w", err)
	}

	if !s.Empty() {
		s.Render(ctx.Out)
	}
	return nil
}
