package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage"
)

type AttributeGain struct {
	Attribute   string `json:"attribute"`
	XP          int    `json:"xp"`
	LevelBefore int    `json:"level_before"`
	LevelAfter  int    `json:"level_after"`
}

func (g AttributeGain) LeveledUp() bool {
	return g.LevelAfter > g.LevelBefore
}

// AwardAttributeXP adds xp to one attribute and persists its recomputed level.
func (l *Ledger) AwardAttributeXP(ctx context.Context, userID, attribute string, xp int) (AttributeGain, error) {
	if xp < 0 {
		return AttributeGain{}, fmt.Errorf("attribute xp must not be negative: %d", xp)
	}

	attr, err := l.q.GetAttribute(ctx, userID, attribute)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		attr = models.UserAttribute{UserID: userID, AttributeName: attribute, Level: 1}
	default:
		return AttributeGain{}, fmt.Errorf("failed to get attribute %s: %w", attribute, err)
	}

	gain := AttributeGain{Attribute: attribute, XP: xp, LevelBefore: LevelForXP(attr.TotalXP)}
	attr.TotalXP += xp
	attr.Level = LevelForXP(attr.TotalXP)
	gain.LevelAfter = attr.Level

	if err := l.q.UpsertAttribute(ctx, attr); err != nil {
		return AttributeGain{}, fmt.Errorf("failed to save attribute %s: %w", attribute, err)
	}
	return gain, nil
}

// attributeXP is the grant for one completed entry.
func (l *Ledger) attributeXP(minutes int, doubled bool) int {
	xp := l.rewards.AttributeXP
	if minutes > 0 {
		xp = minutes * l.rewards.AttributeXPPerMinute
	}
	if doubled {
		xp *= 2
	}
	return xp
}
