package system

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/levelup/internal/backup"
	"github.com/julianstephens/levelup/internal/cli"
	"github.com/julianstephens/levelup/internal/config"
	"github.com/julianstephens/levelup/internal/logger"
)

var errBackupBackend = errors.New("backups are only supported for the sqlite backend")

func backupManager(ctx *cli.Context) (*backup.Manager, error) {
	if ctx.Config.Database.Backend != config.BackendSQLite {
		return nil, errBackupBackend
	}
	return backup.NewManager(ctx.Store.GetConfigPath()), nil
}

// snapshotBefore takes a best-effort backup ahead of a destructive operation.
func snapshotBefore(ctx *cli.Context, op string) {
	mgr, err := backupManager(ctx)
	if err != nil {
		return
	}
	path, err := mgr.CreateIfExists()
	if err != nil {
		logger.Warn("Automatic backup failed", "operation", op, "error", err)
		return
	}
	if path != "" {
		fmt.Fprintf(ctx.Out, "Backed up database to %s\n", path)
	}
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Create()
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "%s %s\n", cli.Good("✓ Backup created:"), path)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Fprintf(ctx.Out, "No backups in %s\n", mgr.Dir())
		return nil
	}

	s := cli.NewSection("Backups in " + mgr.Dir())
	for _, b := range backups {
		s.Row(b.Timestamp.Format(time.DateTime), "%s  %s", filepath.Base(b.Path), humanize.Bytes(uint64(b.Size)))
	}
	s.Render(ctx.Out)
	return nil
}

type BackupRestoreCmd struct {
	File string `arg:"" help:"Backup file to restore." type:"existingfile"`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	if err := mgr.Restore(c.File); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "%s %s\n", cli.Good("✓ Restored database from"), c.File)
	return nil
}
