package models

import "time"

type Mode string

const (
	ModeGrowth      Mode = "Growth"
	ModeStable      Mode = "Stable"
	ModeRecovery    Mode = "Recovery"
	ModeBurnoutRisk Mode = "Burnout Risk"
	ModeSlump       Mode = "Slump"
)

// MetricInput is one metric's raw value as submitted by the user for a day.
type MetricInput struct {
	MetricID         string   `json:"metric_id" toml:"metric_id"`
	Completed        bool     `json:"completed" toml:"completed"`
	ScoreValue       *float64 `json:"score_value,omitempty" toml:"score_value,omitempty"`
	TimeSpentMinutes int      `json:"time_spent_minutes" toml:"time_spent_minutes"`
	Review           string   `json:"review,omitempty" toml:"review,omitempty"`
}

type DailyEntry struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id"`
	MetricID         string   `json:"metric_id"`
	Date             string   `json:"date"` // YYYY-MM-DD format
	Completed        bool     `json:"completed"`
	ScoreAwarded     int      `json:"score_awarded"`
	ScoreValue       *float64 `json:"score_value,omitempty"`
	TimeSpentMinutes int      `json:"time_spent_minutes"`
	Review           string   `json:"review,omitempty"`
}

type DailySummary struct {
	UserID              string    `json:"user_id"`
	Date                string    `json:"date"` // YYYY-MM-DD format
	TotalScore          int       `json:"total_score"`
	Mode                Mode      `json:"mode"`
	BurnoutFlag         bool      `json:"burnout_flag"`
	ProcrastinationFlag bool      `json:"procrastination_flag"`
	TotalTimeMinutes    int       `json:"total_time_minutes"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Streak is the consecutive-day completion counter for one (user, metric).
type Streak struct {
	UserID        string `json:"user_id"`
	MetricID      string `json:"metric_id"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	LastLogDate   string `json:"last_log_date"` // YYYY-MM-DD format
}

// RetroEditGrant allows exactly one submission for a past date before it expires.
type RetroEditGrant struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
