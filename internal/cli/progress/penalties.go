package progress

import (
	"context"
	"fmt"

	"github.com/julianstephens/levelup/internal/cli"
)

// PenaltiesCmd runs the daily boss penalty job. It is safe to run more than
// once per date.
type PenaltiesCmd struct {
	Date string `help:"Date to charge (YYYY-MM-DD). Defaults to today."`
}

func (c *PenaltiesCmd) Run(ctx *cli.Context) error {
	app, err := ctx.App()
	if err != nil {
		return err
	}
	date := c.Date
	if date == "" {
		if date, err = ctx.Today(); err != nil {
			return err
		}
	}

	penalties, err := app.Combat.ApplyDailyPenalties(context.Background(), date)
	if err != nil {
		return err
	}
	if len(penalties) == 0 {
		fmt.Fprintf(ctx.Out, "No penalties applied for %s\n", date)
		return nil
	}

	s := cli.NewSection("Boss penalties " + date)
	for _, p := range penalties {
		s.Row(p.UserID, "%s -%d xp", p.BossID, p.Deducted)
	}
	s.Render(ctx.Out)
	return nil
}
