package models

import "time"

// Boss is a boss definition. Encounters copy MaxHealth at spawn time.
type Boss struct {
	ID             string  `json:"id" toml:"id"`
	Name           string  `json:"name" toml:"name"`
	MaxHealth      int     `json:"max_health" toml:"max_health"`
	RewardXP       int     `json:"reward_xp" toml:"reward_xp"`
	RewardGold     int     `json:"reward_gold" toml:"reward_gold"`
	RewardItemID   *string `json:"reward_item_id,omitempty" toml:"reward_item_id,omitempty"`
	DailyPenaltyXP int     `json:"daily_penalty_xp" toml:"daily_penalty_xp"`
	MinLevel       int     `json:"min_level" toml:"min_level"`
}

type BossEncounter struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	BossID        string     `json:"boss_id"`
	CurrentHealth int        `json:"current_health"`
	MaxHealth     int        `json:"max_health"`
	IsActive      bool       `json:"is_active"`
	SpawnedAt     time.Time  `json:"spawned_at"`
	DefeatedAt    *time.Time `json:"defeated_at,omitempty"`
}

// CampaignStage is one rung of the story-boss ladder, ordered by Stage.
type CampaignStage struct {
	Stage        int     `json:"stage" toml:"stage"`
	Name         string  `json:"name" toml:"name"`
	MaxHealth    int     `json:"max_health" toml:"max_health"`
	RewardXP     int     `json:"reward_xp" toml:"reward_xp"`
	RewardGold   int     `json:"reward_gold" toml:"reward_gold"`
	RewardItemID *string `json:"reward_item_id,omitempty" toml:"reward_item_id,omitempty"`
}

type CampaignStatus struct {
	UserID        string `json:"user_id"`
	CurrentStage  int    `json:"current_stage"`
	CurrentHealth int    `json:"current_health"`
	MaxHealth     int    `json:"max_health"`
	Completed     bool   `json:"completed"`
}
