package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/levelup/internal/cli"
	"github.com/julianstephens/levelup/internal/models"
)

type GrantRetroCmd struct {
	Hours int `help:"Hours the grant stays usable. Defaults to retro_grant_hours from the config."`
}

func (c *GrantRetroCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if _, err := ctx.Store.EnsureUser(bg, ctx.UserID); err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	ttl := ctx.Config.RetroGrantTTL()
	if c.Hours > 0 {
		ttl = time.Duration(c.Hours) * time.Hour
	}
	now := time.Now()
	if ctx.Now != nil {
		now = ctx.Now()
	}
	grant := models.RetroEditGrant{
		ID:        uuid.NewString(),
		UserID:    ctx.UserID,
		ExpiresAt: now.Add(ttl).UTC(),
		CreatedAt: now.UTC(),
	}
	if err := ctx.Store.AddRetroGrant(bg, grant); err != nil {
		return fmt.Errorf("failed to add retroactive edit grant: %w", err)
	}

	fmt.Fprintf(ctx.Out, "%s one past-day edit for %s, usable until %s\n",
		cli.Good("Granted"), ctx.UserID, grant.ExpiresAt.Local().Format(time.DateTime))
	return nil
}
