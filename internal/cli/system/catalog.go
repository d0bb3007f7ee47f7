package system

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/levelup/internal/catalog"
	"github.com/julianstephens/levelup/internal/cli"
	"github.com/julianstephens/levelup/internal/logger"
)

type CatalogImportCmd struct {
	File string `arg:"" help:"Catalog TOML file." type:"existingfile"`
}

func (c *CatalogImportCmd) Run(ctx *cli.Context) error {
	fh, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer fh.Close()

	f, err := catalog.Decode(fh)
	if err != nil {
		return err
	}
	n, err := catalog.Import(context.Background(), ctx.Store, f)
	if err != nil {
		return err
	}
	if app, err := ctx.App(); err == nil {
		app.Catalog.Invalidate()
	}
	logger.Info("Catalog imported", "file", c.File, "metrics", n.Metrics, "bosses", n.Bosses)

	cli.NewSection("Catalog imported").
		Row("Axes", "%d", n.Axes).
		Row("Metrics", "%d", n.Metrics).
		Row("Cycles", "%d", n.Cycles).
		Row("Items", "%d", n.Items).
		Row("Bosses", "%d", n.Bosses).
		Row("Campaign", "%d stages", n.Stages).
		Row("Achievements", "%d", n.Achievements).
		Render(ctx.Out)
	return nil
}
