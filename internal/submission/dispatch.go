package submission

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"

	"github.com/julianstephens/levelup/internal/catalog"
	"github.com/julianstephens/levelup/internal/combat"
	"github.com/julianstephens/levelup/internal/ledger"
	"github.com/julianstephens/levelup/internal/logger"
	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/quests"
)

// dispatch runs each post-commit step on its own. A failing or panicking step
// is logged and leaves its result field nil; the others still run.
func (c *Coordinator) dispatch(ctx context.Context, sub Submission, user models.User, snap *catalog.Snapshot, res *Result) {
	score := res.Summary.TotalScore

	if c.XP != nil {
		in := ledger.DailyInput{
			UserID:     sub.UserID,
			Date:       sub.Date,
			Score:      score,
			Hardcore:   user.Hardcore,
			Entries:    res.Entries,
			Attributes: attributeMap(snap),
		}
		res.XP = isolate(ctx, c, "xp", sub, func(ctx context.Context) (*ledger.XPResult, error) {
			return c.XP.GrantDaily(ctx, in)
		})
		if res.XP != nil {
			res.Loot = res.XP.Loot
		}
	}

	if c.Bosses != nil {
		res.Boss = isolate(ctx, c, "boss", sub, func(ctx context.Context) (*combat.BossFeedback, error) {
			return c.Bosses.ResolveBossDay(ctx, sub.UserID, sub.Date, score)
		})
	}

	if c.Campaign != nil {
		res.Campaign = isolate(ctx, c, "campaign", sub, func(ctx context.Context) (*combat.CampaignResult, error) {
			return c.Campaign.ResolveCampaignDay(ctx, sub.UserID, sub.Date, score)
		})
	}

	if c.Quests != nil {
		res.QuestXP = isolate(ctx, c, "quests", sub, func(ctx context.Context) (*quests.Result, error) {
			return c.Quests.Track(ctx, sub.UserID, sub.Date, res.Entries)
		})
	}

	if c.Achievements != nil {
		res.Achievements = isolate(ctx, c, "achievements", sub, func(ctx context.Context) ([]models.Achievement, error) {
			return c.Achievements.Evaluate(ctx, sub.UserID)
		})
	}
}

// isolate runs fn in its own span, turning errors and panics into a zero
// result and a log line.
func isolate[T any](ctx context.Context, c *Coordinator, component string, sub Submission, fn func(context.Context) (T, error)) (out T) {
	ctx, span := c.tracer.Start(ctx, "submission."+component)
	span.SetAttributes(attribute.String("user", sub.UserID), attribute.String("date", sub.Date))
	defer span.End()

	log := logger.For(component).With("user", sub.UserID, "date", sub.Date)

	defer func() {
		if r := recover(); r != nil {
			var zero T
			out = zero
			err := fmt.Errorf("panic: %v", r)
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, "panic")
			log.Error("Side effect panicked", "error", err)
		}
	}()

	out, err := fn(ctx)
	if err != nil {
		var zero T
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		log.Warn("Side effect failed", "error", err)
		return zero
	}
	log.Debug("Side effect done")
	return out
}

// attributeMap maps each metric to the RPG attribute it trains.
func attributeMap(snap *catalog.Snapshot) map[string]string {
	attrs := make(map[string]string)
	for _, m := range snap.Metrics {
		if m.RPGAttribute != nil && *m.RPGAttribute != "" {
			attrs[m.ID] = *m.RPGAttribute
		}
	}
	return attrs
}
