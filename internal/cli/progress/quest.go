package progress

import (
	"context"
	"fmt"

	"github.com/julianstephens/levelup/internal/cli"
)

type QuestAddCmd struct {
	Title   string `arg:"" help:"Quest title."`
	Metric  string `required:"" help:"Metric whose completions count toward the quest."`
	Target  int    `default:"5" help:"Completions needed."`
	XP      int    `name:"xp" default:"100" help:"XP paid on completion."`
	Expires string `help:"Last valid day (YYYY-MM-DD). Empty means no expiry."`
}

func (c *QuestAddCmd) Run(ctx *cli.Context) error {
	app, err := ctx.App()
	if err != nil {
		return err
	}
	bg := context.Background()
	if _, err := ctx.Store.EnsureUser(bg, ctx.UserID); err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	q, err := app.Quests.Create(bg, ctx.UserID, c.Title, c.Metric, c.Target, c.XP, c.Expires)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "%s quest %q (%s): %d × %s for %d xp\n",
		cli.Good("Added"), q.Title, q.ID, q.TargetValue, q.MetricID, q.XPReward)
	return nil
}
