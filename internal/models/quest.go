package models

import "time"

type QuestStatus string

const (
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
	QuestExpired   QuestStatus = "expired"
)

// Quest is a short-term counter challenge tied to one metric.
type Quest struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Title        string      `json:"title"`
	MetricID     string      `json:"metric_id"`
	TargetValue  int         `json:"target_value"`
	CurrentValue int         `json:"current_value"`
	Status       QuestStatus `json:"status"`
	XPReward     int         `json:"xp_reward"`
	ExpiresAt    string      `json:"expires_at,omitempty"` // YYYY-MM-DD format, last valid day
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

type AchievementKind string

const (
	AchievementStreakMax      AchievementKind = "streak_max"
	AchievementAttributeLevel AchievementKind = "attribute_level"
	AchievementPerfectDays    AchievementKind = "perfect_days"
	AchievementDaysLogged     AchievementKind = "days_logged"
	AchievementCharacterLevel AchievementKind = "character_level"
)

func (k AchievementKind) IsValid() bool {
	switch k {
	case AchievementStreakMax, AchievementAttributeLevel, AchievementPerfectDays,
		AchievementDaysLogged, AchievementCharacterLevel:
		return true
	default:
		return false
	}
}

type Achievement struct {
	ID          string          `json:"id" toml:"id"`
	Name        string          `json:"name" toml:"name"`
	Description string          `json:"description" toml:"description"`
	Kind        AchievementKind `json:"kind" toml:"kind"`
	Threshold   int             `json:"threshold" toml:"threshold"`
	XPReward    int             `json:"xp_reward" toml:"xp_reward"`
}

type UserAchievement struct {
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
