// Package submission accepts a user's day of metric inputs, scores it, stores
// it atomically, and then runs the rewards that hang off a logged day.
package submission

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/julianstephens/levelup/internal/catalog"
	"github.com/julianstephens/levelup/internal/combat"
	"github.com/julianstephens/levelup/internal/constants"
	"github.com/julianstephens/levelup/internal/errors"
	"github.com/julianstephens/levelup/internal/ledger"
	"github.com/julianstephens/levelup/internal/logger"
	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/quests"
	"github.com/julianstephens/levelup/internal/scoring"
	"github.com/julianstephens/levelup/internal/storage"
	"github.com/julianstephens/levelup/internal/streaks"
	"github.com/julianstephens/levelup/internal/telemetry"
)

// Submission is one day of metric inputs for a user.
type Submission struct {
	UserID string               `json:"user_id" toml:"user_id"`
	Date   string               `json:"date" toml:"date"`
	Inputs []models.MetricInput `json:"inputs" toml:"inputs"`
}

// Result is what the caller gets back. Side-effect fields are nil when that
// step failed or had nothing to report.
type Result struct {
	Summary      models.DailySummary    `json:"summary"`
	Entries      []models.DailyEntry    `json:"entries"`
	AxisScores   []scoring.AxisScore    `json:"axis_scores"`
	TotalTime    int                    `json:"total_time"`
	XP           *ledger.XPResult       `json:"xp_result,omitempty"`
	QuestXP      *quests.Result         `json:"quest_xp_result,omitempty"`
	Achievements []models.Achievement   `json:"newly_unlocked_achievements,omitempty"`
	Loot         *models.Item           `json:"loot_drop,omitempty"`
	Boss         *combat.BossFeedback   `json:"boss_feedback,omitempty"`
	Campaign     *combat.CampaignResult `json:"campaign_feedback,omitempty"`
}

type CatalogReader interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
	Weights(ctx context.Context, date string) (catalog.Weights, error)
}

type XPGranter interface {
	GrantDaily(ctx context.Context, in ledger.DailyInput) (*ledger.XPResult, error)
}

type BossResolver interface {
	ResolveBossDay(ctx context.Context, userID, date string, score int) (*combat.BossFeedback, error)
}

type CampaignResolver interface {
	ResolveCampaignDay(ctx context.Context, userID, date string, score int) (*combat.CampaignResult, error)
}

type QuestTracker interface {
	Track(ctx context.Context, userID, date string, entries []models.DailyEntry) (*quests.Result, error)
}

type AchievementEvaluator interface {
	Evaluate(ctx context.Context, userID string) ([]models.Achievement, error)
}

// Deps are the collaborators of a Coordinator. Any side-effect dependency may
// be nil, in which case that step is skipped.
type Deps struct {
	Store        storage.Provider
	Catalog      CatalogReader
	XP           XPGranter
	Bosses       BossResolver
	Campaign     CampaignResolver
	Quests       QuestTracker
	Achievements AchievementEvaluator
	// Location decides what "today" is. Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
}

type Coordinator struct {
	Deps
	tracer trace.Tracer
}

func New(d Deps) *Coordinator {
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Coordinator{Deps: d, tracer: telemetry.Tracer()}
}

// Today is the current date in the coordinator's timezone.
func (c *Coordinator) Today() string {
	return c.Now().In(c.Location).Format(constants.DateFormat)
}

// Submit validates, scores and persists sub, then dispatches the dependent
// rewards. An error means nothing was written.
func (c *Coordinator) Submit(ctx context.Context, sub Submission) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "submission.Submit", trace.WithAttributes(
		attribute.String("user", sub.UserID),
		attribute.String("date", sub.Date),
	))
	defer span.End()

	today := c.Today()
	if err := Validate(sub, today); err != nil {
		span.RecordError(err)
		return nil, err
	}
	retro := sub.Date < today

	if retro {
		ok, err := c.Store.HasRetroGrant(ctx, sub.UserID, c.Now())
		if err != nil {
			return nil, errors.Retryable(errors.Wrap(errors.CodeTxFailed, err, "failed to check retroactive edit grant"))
		}
		if !ok {
			return nil, retroRequired(sub.Date)
		}
	}

	// The profile row is created inside the transaction; a first-time user
	// reads as a fresh profile until then.
	user, err := c.Store.GetUser(ctx, sub.UserID)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		user = models.User{ID: sub.UserID}
	default:
		return nil, errors.Retryable(errors.Wrap(errors.CodeTxFailed, err, "failed to load user %s", sub.UserID))
	}

	snap, err := c.Catalog.Snapshot(ctx)
	if err != nil {
		return nil, errors.Retryable(errors.Wrap(errors.CodeTxFailed, err, "failed to load catalog"))
	}
	weights, err := c.Catalog.Weights(ctx, sub.Date)
	if err != nil {
		return nil, errors.Retryable(errors.Wrap(errors.CodeTxFailed, err, "failed to resolve weights"))
	}
	recent, err := c.Store.GetRecentSummaries(ctx, sub.UserID, sub.Date, constants.BurnoutLookback)
	if err != nil {
		return nil, errors.Retryable(errors.Wrap(errors.CodeTxFailed, err, "failed to load recent summaries"))
	}

	scored := scoring.Calculate(sub.UserID, sub.Date, snap, weights, sub.Inputs)
	flags := scoring.Detect(scored.TotalScore, scored.TotalTime, recent)
	for i := range scored.Entries {
		scored.Entries[i].ID = uuid.NewString()
	}

	summary := models.DailySummary{
		UserID:              sub.UserID,
		Date:                sub.Date,
		TotalScore:          scored.TotalScore,
		Mode:                flags.Mode,
		BurnoutFlag:         flags.Burnout,
		ProcrastinationFlag: flags.Procrastination,
		TotalTimeMinutes:    scored.TotalTime,
		UpdatedAt:           c.Now().UTC(),
	}

	err = c.Store.WithTx(ctx, func(q storage.Queries) error {
		return persist(ctx, q, summary, scored.Entries, retro, c.Now())
	})
	if err != nil {
		span.RecordError(err)
		if errors.CodeOf(err) == errors.CodeRetroEditRequired {
			return nil, err
		}
		return nil, errors.Retryable(errors.Wrap(errors.CodeTxFailed, err, "failed to save daily log for %s", sub.Date))
	}
	logger.Info("Daily log saved", "user", sub.UserID, "date", sub.Date, "score", summary.TotalScore, "mode", summary.Mode)

	res := &Result{
		Summary:    summary,
		Entries:    scored.Entries,
		AxisScores: scored.AxisScores,
		TotalTime:  scored.TotalTime,
	}
	c.dispatch(ctx, sub, user, snap, res)
	return res, nil
}

func persist(ctx context.Context, q storage.Queries, summary models.DailySummary, entries []models.DailyEntry, retro bool, now time.Time) error {
	if err := q.LockDay(ctx, summary.UserID, summary.Date); err != nil {
		return fmt.Errorf("failed to lock day: %w", err)
	}
	if _, err := q.EnsureUser(ctx, summary.UserID); err != nil {
		return err
	}
	if retro {
		ok, err := q.ConsumeRetroGrant(ctx, summary.UserID, now)
		if err != nil {
			return fmt.Errorf("failed to consume retroactive edit grant: %w", err)
		}
		if !ok {
			return retroRequired(summary.Date)
		}
	}
	if err := q.DeleteEntries(ctx, summary.UserID, summary.Date); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	for _, e := range entries {
		if err := q.InsertEntry(ctx, e); err != nil {
			return fmt.Errorf("failed to insert entry for %s: %w", e.MetricID, err)
		}
	}
	if err := q.UpsertSummary(ctx, summary); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	if _, err := streaks.Apply(ctx, q, entries); err != nil {
		return err
	}
	return nil
}

func retroRequired(date string) error {
	return errors.New(errors.CodeRetroEditRequired, "editing %s requires an unused retroactive edit grant", date)
}

// Validate rejects malformed submissions before anything is read or written.
func Validate(sub Submission, today string) error {
	if sub.UserID == "" {
		return errors.New(errors.CodeInvalidUser, "user id is required")
	}
	day, err := time.Parse(constants.DateFormat, sub.Date)
	if err != nil || day.Format(constants.DateFormat) != sub.Date {
		return errors.New(errors.CodeInvalidDate, "date %q must be YYYY-MM-DD", sub.Date)
	}
	if sub.Date > today {
		return errors.New(errors.CodeFutureDate, "date %s is after today (%s)", sub.Date, today)
	}

	seen := make(map[string]bool, len(sub.Inputs))
	for _, in := range sub.Inputs {
		if in.MetricID == "" {
			return errors.New(errors.CodeInvalidInput, "metric id is required")
		}
		if seen[in.MetricID] {
			return errors.New(errors.CodeDuplicateMetric, "metric %s submitted more than once", in.MetricID)
		}
		seen[in.MetricID] = true

		if in.ScoreValue != nil && (math.IsNaN(*in.ScoreValue) || math.IsInf(*in.ScoreValue, 0)) {
			return errors.New(errors.CodeInvalidValue, "metric %s has a non-finite value", in.MetricID)
		}
		if in.TimeSpentMinutes < 0 {
			return errors.New(errors.CodeInvalidValue, "metric %s has negative time spent", in.MetricID)
		}
	}
	return nil
}
