package combat

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/storage"
)

type CampaignResult struct {
	Stage           int     `json:"stage"`
	StageName       string  `json:"stage_name"`
	Damage          int     `json:"damage"`
	Defeated        bool    `json:"defeated"`
	Reward          *Reward `json:"reward,omitempty"`
	RemainingHealth int     `json:"remaining_health"`
	// NextStage is the stage now being fought, zero once the campaign is complete.
	NextStage int  `json:"next_stage,omitempty"`
	Completed bool `json:"completed"`
	// AlreadyHit is set when an earlier submission of the date dealt the damage.
	AlreadyHit bool `json:"already_hit,omitempty"`
}

// campaignStatus loads the user's progress, starting new users at stage 1 with
// full health. It returns nil when there is nothing left to fight.
func (e *Engine) campaignStatus(ctx context.Context, userID string) (*models.CampaignStatus, *models.CampaignStage, error) {
	status, err := e.q.GetCampaignStatus(ctx, userID)
	switch {
	case err == nil:
		if status.Completed {
			return nil, nil, nil
		}
	case errors.Is(err, storage.ErrNotFound):
		status = models.CampaignStatus{UserID: userID, CurrentStage: 1}
	default:
		return nil, nil, fmt.Errorf("failed to get campaign status: %w", err)
	}

	stage, err := e.q.GetCampaignStage(ctx, status.CurrentStage)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load campaign stage %d: %w", status.CurrentStage, err)
	}
	if status.MaxHealth == 0 {
		status.MaxHealth = stage.MaxHealth
		status.CurrentHealth = stage.MaxHealth
	}
	return &status, &stage, nil
}

// DealCampaignDamage applies amount to the current stage boss. Defeat pays
// the stage reward and advances to the next stage, or completes the campaign
// after the last one. It returns nil when there is no campaign to fight.
// Damage, reward and the stage advance commit together.
func (e *Engine) DealCampaignDamage(ctx context.Context, userID string, amount int) (*CampaignResult, error) {
	var res *CampaignResult
	err := e.atomic(ctx, func(te *Engine) error {
		status, stage, err := te.campaignStatus(ctx, userID)
		if err != nil || status == nil {
			return err
		}
		res, err = te.dealCampaignDamage(ctx, userID, status, stage, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) dealCampaignDamage(ctx context.Context, userID string, status *models.CampaignStatus, stage *models.CampaignStage, amount int) (*CampaignResult, error) {
	res := &CampaignResult{
		Stage:     stage.Stage,
		StageName: stage.Name,
		Damage:    min(max(amount, 0), status.CurrentHealth),
		NextStage: stage.Stage,
	}
	status.CurrentHealth = max(0, status.CurrentHealth-max(amount, 0))
	res.RemainingHealth = status.CurrentHealth

	if status.CurrentHealth == 0 {
		res.Defeated = true
		reward, err := e.grant(ctx, userID, "campaign_stage:"+strconv.Itoa(stage.Stage),
			stage.RewardXP, stage.RewardGold, stage.RewardItemID)
		if err != nil {
			return nil, err
		}
		res.Reward = reward

		next, err := e.q.GetCampaignStage(ctx, stage.Stage+1)
		switch {
		case err == nil:
			status.CurrentStage = next.Stage
			status.CurrentHealth = next.MaxHealth
			status.MaxHealth = next.MaxHealth
			res.NextStage = next.Stage
		case errors.Is(err, storage.ErrNotFound):
			status.Completed = true
			res.Completed = true
			res.NextStage = 0
		default:
			return nil, fmt.Errorf("failed to load campaign stage %d: %w", stage.Stage+1, err)
		}
		log.Info("Campaign stage cleared", "user", userID, "stage", stage.Stage, "completed", res.Completed)
	}

	if err := e.q.UpsertCampaignStatus(ctx, *status); err != nil {
		return nil, fmt.Errorf("failed to save campaign status: %w", err)
	}
	return res, nil
}

// ResolveCampaignDay deals the day's score as campaign damage. Zero-score
// days leave the campaign untouched, and only the first scoring submission of
// a date deals damage.
func (e *Engine) ResolveCampaignDay(ctx context.Context, userID, date string, score int) (*CampaignResult, error) {
	if score <= 0 {
		return nil, nil
	}

	var res *CampaignResult
	err := e.atomic(ctx, func(te *Engine) error {
		status, stage, err := te.campaignStatus(ctx, userID)
		if err != nil || status == nil {
			return err
		}
		first, err := te.firstHit(ctx, userID, CampaignDayReason(date))
		if err != nil {
			return err
		}
		if !first {
			res = &CampaignResult{
				Stage:           stage.Stage,
				StageName:       stage.Name,
				RemainingHealth: status.CurrentHealth,
				NextStage:       stage.Stage,
				AlreadyHit:      true,
			}
			return nil
		}
		res, err = te.dealCampaignDamage(ctx, userID, status, stage, score)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
