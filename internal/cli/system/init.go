package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/levelup/internal/cli"
	"github.com/julianstephens/levelup/internal/config"
)

type InitCmd struct {
	Force bool `help:"Delete an existing sqlite database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && ctx.Config.Database.Backend == config.BackendSQLite {
		dbPath := ctx.Store.GetConfigPath()
		snapshotBefore(ctx, "init --force")
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Fprintf(ctx.Out, "Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Initialized levelup storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
