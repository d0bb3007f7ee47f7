package progress

import (
	"context"
	"fmt"

	"github.com/julianstephens/levelup/internal/cli"
)

type HardcoreCmd struct {
	State string `arg:"" enum:"on,off" help:"Turn hardcore mode on or off."`
}

func (c *HardcoreCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if _, err := ctx.Store.EnsureUser(bg, ctx.UserID); err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	enabled := c.State == "on"
	if err := ctx.Store.SetHardcore(bg, ctx.UserID, enabled); err != nil {
		return fmt.Errorf("failed to update hardcore mode: %w", err)
	}
	if enabled {
		fmt.Fprintln(ctx.Out, cli.Warn("Hardcore mode on: attribute XP is doubled, a day under 40 costs XP and ends it"))
	} else {
		fmt.Fprintln(ctx.Out, "Hardcore mode off")
	}
	return nil
}
