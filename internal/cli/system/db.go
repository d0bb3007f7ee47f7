package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/levelup/internal/cli"
	"github.com/julianstephens/levelup/internal/keyring"
	"github.com/julianstephens/levelup/internal/storage/postgres"
)

// DBSetConnectionCmd stores a password-free postgres connection string in the
// OS keyring.
type DBSetConnectionCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string without a password."`
}

func (c *DBSetConnectionCmd) Run(ctx *cli.Context) error {
	if !strings.HasPrefix(c.ConnectionString, "postgres://") &&
		!strings.HasPrefix(c.ConnectionString, "postgresql://") &&
		!strings.Contains(c.ConnectionString, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}
	if _, err := postgres.ValidateConnString(c.ConnectionString); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return errors.New("connection string contains a password. Keep the password in .pgpass or PGPASSWORD and store only the rest")
		}
		return fmt.Errorf("invalid connection string: %w", err)
	}

	if err := keyring.Set(c.ConnectionString); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, cli.Good("✓ Connection string stored in OS keyring"))
	fmt.Fprintln(ctx.Out, "  Set database.backend = \"postgres\" (or LEVELUP_DB_BACKEND=postgres) to use it")
	return nil
}

type DBShowConnectionCmd struct{}

func (c *DBShowConnectionCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.Get()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'levelup db set-connection' to store one")
		}
		return err
	}
	fmt.Fprintln(ctx.Out, keyring.Mask(connStr))
	return nil
}

type DBDeleteConnectionCmd struct{}

func (c *DBDeleteConnectionCmd) Run(ctx *cli.Context) error {
	if err := keyring.Delete(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return err
	}
	fmt.Fprintln(ctx.Out, cli.Good("✓ Connection string deleted from OS keyring"))
	return nil
}

type DBStatusCmd struct{}

func (c *DBStatusCmd) Run(ctx *cli.Context) error {
	s := cli.NewSection("Database")
	s.Row("Backend", "%s", ctx.Config.Database.Backend)
	if ctx.Store != nil {
		s.Row("Location", "%s", ctx.Store.GetConfigPath())
	}
	if keyring.IsAvailable() {
		if _, err := keyring.Get(); err == nil {
			s.Row("Keyring", "%s", cli.Good("connection string stored"))
		} else {
			s.Row("Keyring", "available, nothing stored")
		}
	} else {
		s.Row("Keyring", "%s", cli.Warn("unavailable"))
	}
	s.Render(ctx.Out)
	return nil
}
