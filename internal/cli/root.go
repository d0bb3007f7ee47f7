package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/julianstephens/levelup/internal/achievements"
	"github.com/julianstephens/levelup/internal/catalog"
	"github.com/julianstephens/levelup/internal/combat"
	"github.com/julianstephens/levelup/internal/config"
	"github.com/julianstephens/levelup/internal/constants"
	"github.com/julianstephens/levelup/internal/keyring"
	"github.com/julianstephens/levelup/internal/ledger"
	"github.com/julianstephens/levelup/internal/loot"
	"github.com/julianstephens/levelup/internal/quests"
	"github.com/julianstephens/levelup/internal/storage"
	"github.com/julianstephens/levelup/internal/storage/postgres"
	"github.com/julianstephens/levelup/internal/storage/sqlite"
	"github.com/julianstephens/levelup/internal/submission"
)

type Context struct {
	Config config.Config
	Store  storage.Provider
	UserID string
	Out    io.Writer
	Now    func() time.Time

	app *App
}

// App is the engine wired over one store.
type App struct {
	Catalog      *catalog.Catalog
	Ledger       *ledger.Ledger
	Combat       *combat.Engine
	Quests       *quests.Tracker
	Achievements *achievements.Evaluator
	Coordinator  *submission.Coordinator
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Today is the current date in the configured timezone.
func (c *Context) Today() (string, error) {
	loc, err := c.Config.Location()
	if err != nil {
		return "", err
	}
	return c.now().In(loc).Format(constants.DateFormat), nil
}

// App builds the engine on first use.
func (c *Context) App() (*App, error) {
	if c.app != nil {
		return c.app, nil
	}
	loc, err := c.Config.Location()
	if err != nil {
		return nil, err
	}

	cat, err := catalog.New(c.Store, c.Config.CatalogCacheSize)
	if err != nil {
		return nil, err
	}
	l := ledger.New(c.Store, c.Config.Rewards, loot.NewDropper(), c.now)
	engine := combat.New(l, c.Config.BossSpawnChance, c.now)
	tracker := quests.NewTracker(l, c.now)
	evaluator := achievements.NewEvaluator(l, c.now)

	c.app = &App{
		Catalog:      cat,
		Ledger:       l,
		Combat:       engine,
		Quests:       tracker,
		Achievements: evaluator,
		Coordinator: submission.New(submission.Deps{
			Store:        c.Store,
			Catalog:      cat,
			XP:           l,
			Bosses:       engine,
			Campaign:     engine,
			Quests:       tracker,
			Achievements: evaluator,
			Location:     loc,
			Now:          c.now,
		}),
	}
	return c.app, nil
}

// OpenStore picks the backend named by cfg. Postgres connection strings come
// from LEVELUP_DB_CONNECTION or the OS keyring and must not embed a password.
func OpenStore(cfg config.Config) (storage.Provider, error) {
	switch cfg.Database.Backend {
	case config.BackendPostgres:
		connStr, err := keyring.Resolve(cfg.Database.Connection)
		if err != nil {
			return nil, err
		}
		if _, err := postgres.ValidateConnString(connStr); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection string contains an embedded password. Use .pgpass or PGPASSWORD instead")
			}
			return nil, err
		}
		return postgres.New(connStr), nil
	case config.BackendSQLite, "":
		return sqlite.NewStore(cfg.Database.Path), nil
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
}
