package models

type InputType string

const (
	InputBoolean  InputType = "boolean"
	InputEmoji5   InputType = "emoji_5"
	InputScale5   InputType = "scale_0_5"
	InputScale10  InputType = "scale_0_10"
)

func (t InputType) IsValid() bool {
	switch t {
	case InputBoolean, InputEmoji5, InputScale5, InputScale10:
		return true
	default:
		return false
	}
}

// Axis is a life dimension grouping related metrics (e.g. Health, Mind).
type Axis struct {
	ID     string `json:"id" toml:"id"`
	Name   string `json:"name" toml:"name"`
	Active bool   `json:"active" toml:"active"`
}

// Metric is a trackable habit with a scoring rule and a point value.
type Metric struct {
	ID           string    `json:"id" toml:"id"`
	AxisID       string    `json:"axis_id" toml:"axis_id"`
	Name         string    `json:"name" toml:"name"`
	MaxPoints    int       `json:"max_points" toml:"max_points"`
	InputType    InputType `json:"input_type" toml:"input_type"`
	Active       bool      `json:"active" toml:"active"`
	RPGAttribute *string   `json:"rpg_attribute,omitempty" toml:"rpg_attribute,omitempty"`
}

// PriorityCycle is a date range carrying axis weight percentages.
type PriorityCycle struct {
	ID        string       `json:"id" toml:"id"`
	Name      string       `json:"name" toml:"name"`
	StartDate string       `json:"start_date" toml:"start_date"` // YYYY-MM-DD format
	EndDate   string       `json:"end_date" toml:"end_date"`     // YYYY-MM-DD format, inclusive
	Weights   []AxisWeight `json:"weights" toml:"weights"`
}

type AxisWeight struct {
	AxisID           string  `json:"axis_id" toml:"axis_id"`
	WeightPercentage float64 `json:"weight_percentage" toml:"weight_percentage"`
}

// Covers reports whether the cycle's inclusive date range contains day.
func (c PriorityCycle) Covers(day string) bool {
	return c.StartDate <= day && day <= c.EndDate
}
