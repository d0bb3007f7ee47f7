package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/levelup/internal/cli"
	"github.com/julianstephens/levelup/internal/cli/progress"
	"github.com/julianstephens/levelup/internal/cli/system"
	"github.com/julianstephens/levelup/internal/config"
	"github.com/julianstephens/levelup/internal/constants"
	"github.com/julianstephens/levelup/internal/errors"
	"github.com/julianstephens/levelup/internal/logger"
	"github.com/julianstephens/levelup/internal/storage"
	"github.com/julianstephens/levelup/internal/telemetry"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"string" default:"~/.config/levelup/config.toml" env:"LEVELUP_CONFIG"`
	User    string `help:"User id to act as." default:"player" env:"LEVELUP_USER"`

	Init    system.InitCmd    `cmd:"" help:"Initialize levelup storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Catalog struct {
		Import system.CatalogImportCmd `cmd:"" help:"Import axes, metrics, cycles, items, bosses, campaign stages and achievements."`
	} `cmd:"" help:"Manage the metric and game catalog."`
	Submit     progress.SubmitCmd     `cmd:"" help:"Log a day of metric inputs."`
	Status     progress.StatusCmd     `cmd:"" help:"Show character, streaks and combat status." default:"1"`
	GrantRetro progress.GrantRetroCmd `cmd:"" name:"grant-retro" help:"Allow one submission for a past date."`
	Penalties  progress.PenaltiesCmd  `cmd:"" help:"Apply daily boss penalties."`
	Hardcore   progress.HardcoreCmd   `cmd:"" help:"Toggle hardcore mode."`
	Quest      struct {
		Add progress.QuestAddCmd `cmd:"" help:"Start a new quest."`
	} `cmd:"" help:"Manage quests."`
	Backup struct {
		Create  system.BackupCreateCmd  `cmd:"" help:"Create a backup." default:"1"`
		List    system.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore system.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage sqlite database backups."`
	DB struct {
		SetConnection    system.DBSetConnectionCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		ShowConnection   system.DBShowConnectionCmd   `cmd:"" help:"Show the stored connection string with the password masked."`
		DeleteConnection system.DBDeleteConnectionCmd `cmd:"" help:"Remove the stored connection string."`
		Status           system.DBStatusCmd           `cmd:"" help:"Show the configured backend and keyring state."`
	} `cmd:"" name:"db" help:"Manage database credentials."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily scoring and RPG progression for your habits"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)
	command := ctx.Command()
	// init and migrate open the database themselves; db only touches the keyring.
	needsDB := !strings.HasPrefix(command, "init") &&
		!strings.HasPrefix(command, "migrate") &&
		!strings.HasPrefix(command, "db ")

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, Level: cfg.LogLevel, ConfigDir: cfg.Dir()}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	shutdown, err := telemetry.Setup(context.Background(), constants.AppName, cfg.OTelEndpoint)
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	}

	store, err := cli.OpenStore(cfg)
	if err != nil && !strings.HasPrefix(command, "db ") {
		errors.Fatal(err)
	}

	appCtx := &cli.Context{
		Config: cfg,
		Store:  store,
		UserID: CLI.User,
		Out:    os.Stdout,
	}

	if needsDB {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	closeStore(store)
	_ = shutdown(context.Background())
	errors.Fatal(err)
}

func closeStore(store storage.Provider) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logger.Warn("Failed to close database", "error", err)
	}
}
