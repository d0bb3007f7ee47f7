package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/levelup/internal/models"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Queries is every read and write the engine performs. It is satisfied both by
// a Provider and by the transaction handle passed to Provider.WithTx.
type Queries interface {
	// Users
	EnsureUser(ctx context.Context, id string) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	GetAllUserIDs(ctx context.Context) ([]string, error)
	SetHardcore(ctx context.Context, userID string, enabled bool) error
	AddGold(ctx context.Context, userID string, amount int) error
	// MarkSpawnCheck advances the user's spawn roll day to date and reports
	// whether it moved. A date on or before the recorded day never rolls.
	MarkSpawnCheck(ctx context.Context, userID, date string) (bool, error)

	// Catalog
	UpsertAxis(ctx context.Context, axis models.Axis) error
	UpsertMetric(ctx context.Context, metric models.Metric) error
	UpsertCycle(ctx context.Context, cycle models.PriorityCycle) error
	GetActiveAxes(ctx context.Context) ([]models.Axis, error)
	GetActiveMetrics(ctx context.Context) ([]models.Metric, error)
	// GetCoveringCycle returns the cycle whose range contains date, preferring
	// the latest start date. Returns ErrNotFound when no cycle covers date.
	GetCoveringCycle(ctx context.Context, date string) (models.PriorityCycle, error)

	// Daily log
	LockDay(ctx context.Context, userID, date string) error
	DeleteEntries(ctx context.Context, userID, date string) error
	InsertEntry(ctx context.Context, entry models.DailyEntry) error
	GetEntries(ctx context.Context, userID, date string) ([]models.DailyEntry, error)
	UpsertSummary(ctx context.Context, summary models.DailySummary) error
	GetSummary(ctx context.Context, userID, date string) (models.DailySummary, error)
	// GetRecentSummaries returns up to limit summaries dated strictly before
	// date, newest first.
	GetRecentSummaries(ctx context.Context, userID, date string, limit int) ([]models.DailySummary, error)
	CountPerfectDays(ctx context.Context, userID string) (int, error)
	CountDaysLogged(ctx context.Context, userID string) (int, error)

	// Streaks
	GetStreak(ctx context.Context, userID, metricID string) (models.Streak, error)
	UpsertStreak(ctx context.Context, streak models.Streak) error
	GetStreaks(ctx context.Context, userID string) ([]models.Streak, error)

	// Retroactive edit grants
	AddRetroGrant(ctx context.Context, grant models.RetroEditGrant) error
	HasRetroGrant(ctx context.Context, userID string, now time.Time) (bool, error)
	// ConsumeRetroGrant marks the soonest-expiring usable grant as used and
	// reports whether one existed.
	ConsumeRetroGrant(ctx context.Context, userID string, now time.Time) (bool, error)

	// XP ledger
	InsertXPTransaction(ctx context.Context, tx models.XPTransaction) error
	HasXPReason(ctx context.Context, userID, reason string) (bool, error)
	HasXPReasonPrefix(ctx context.Context, userID, prefix string) (bool, error)
	GetXPBalance(ctx context.Context, userID string) (int, error)
	GetXPTransactions(ctx context.Context, userID string) ([]models.XPTransaction, error)

	// Attributes
	GetAttribute(ctx context.Context, userID, name string) (models.UserAttribute, error)
	UpsertAttribute(ctx context.Context, attr models.UserAttribute) error
	GetAttributes(ctx context.Context, userID string) ([]models.UserAttribute, error)

	// Items and inventory
	UpsertItem(ctx context.Context, item models.Item) error
	GetItem(ctx context.Context, id string) (models.Item, error)
	GetItems(ctx context.Context) ([]models.Item, error)
	AddInventory(ctx context.Context, userID, itemID string, quantity int) error
	GetInventory(ctx context.Context, userID string) ([]models.InventoryItem, error)

	// Bosses
	UpsertBoss(ctx context.Context, boss models.Boss) error
	GetBoss(ctx context.Context, id string) (models.Boss, error)
	GetBosses(ctx context.Context) ([]models.Boss, error)
	InsertEncounter(ctx context.Context, enc models.BossEncounter) error
	GetActiveEncounter(ctx context.Context, userID string) (models.BossEncounter, error)
	GetActiveEncounters(ctx context.Context) ([]models.BossEncounter, error)
	UpdateEncounterHealth(ctx context.Context, id string, health int) error
	// DefeatEncounter deactivates an active encounter at zero health. It
	// reports false when the encounter was already inactive.
	DefeatEncounter(ctx context.Context, id string, at time.Time) (bool, error)

	// Campaign
	UpsertCampaignStage(ctx context.Context, stage models.CampaignStage) error
	GetCampaignStage(ctx context.Context, stage int) (models.CampaignStage, error)
	GetCampaignStages(ctx context.Context) ([]models.CampaignStage, error)
	GetCampaignStatus(ctx context.Context, userID string) (models.CampaignStatus, error)
	UpsertCampaignStatus(ctx context.Context, status models.CampaignStatus) error

	// Quests
	InsertQuest(ctx context.Context, quest models.Quest) error
	GetQuest(ctx context.Context, id string) (models.Quest, error)
	GetQuests(ctx context.Context, userID string) ([]models.Quest, error)
	GetActiveQuestsForMetric(ctx context.Context, userID, metricID string) ([]models.Quest, error)
	// IncrementQuest adds one to an active quest's counter and returns the new value.
	IncrementQuest(ctx context.Context, id string) (int, error)
	// CompleteQuest flips an active quest to completed, reporting false if it
	// was not active.
	CompleteQuest(ctx context.Context, id string, at time.Time) (bool, error)
	// ExpireQuests marks active quests whose last valid day is before date.
	ExpireQuests(ctx context.Context, userID, date string) (int, error)

	// Achievements
	UpsertAchievement(ctx context.Context, a models.Achievement) error
	GetAchievements(ctx context.Context) ([]models.Achievement, error)
	GetUnlockedAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error)
	// UnlockAchievement inserts the unlock row if absent and reports whether it
	// was inserted by this call.
	UnlockAchievement(ctx context.Context, userID, achievementID string, at time.Time) (bool, error)
}

// Transactor runs fn inside one database transaction. fn must use only the
// Queries it is given; returning an error rolls everything back. Calling
// WithTx on the Queries of an open transaction joins that transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(q Queries) error) error
}

// Provider is a storage backend.
type Provider interface {
	Queries
	Transactor

	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by backends that can apply pending schema migrations
// to an already initialized database.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
}
