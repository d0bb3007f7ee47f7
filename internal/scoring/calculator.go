// Package scoring turns one day's metric inputs into entries, per-axis scores
// and a weighted total, and derives the day's flags and mode.
package scoring

import (
	"math"

	"github.com/julianstephens/levelup/internal/catalog"
	"github.com/julianstephens/levelup/internal/models"
)

// AxisScore is the per-axis breakdown reported alongside the total.
type AxisScore struct {
	AxisID       string  `json:"axis_id"`
	Raw          int     `json:"raw"`
	Max          int     `json:"max"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

type Result struct {
	// Entries holds one entry per input that matched an active metric, in
	// input order. IDs are left for the caller to assign.
	Entries    []models.DailyEntry
	AxisScores []AxisScore
	TotalScore int
	TotalTime  int
}

// RoundHalfUp rounds to the nearest integer with .5 going up. The epsilon
// absorbs float error in products like 0.7*50.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5 + 1e-9))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// AwardPoints scores one input against its metric's rule.
func AwardPoints(m models.Metric, in models.MetricInput) int {
	switch m.InputType {
	case models.InputBoolean:
		if in.Completed {
			return m.MaxPoints
		}
		return 0
	case models.InputEmoji5, models.InputScale5:
		return scaled(m.MaxPoints, in.ScoreValue, 5)
	case models.InputScale10:
		return scaled(m.MaxPoints, in.ScoreValue, 10)
	default:
		return 0
	}
}

func scaled(maxPoints int, value *float64, top float64) int {
	if value == nil {
		return 0
	}
	return RoundHalfUp(clamp(*value, 0, top) / top * float64(maxPoints))
}

// IsCompleted reports whether an input counts as a completion for streaks,
// quests and attribute XP.
func IsCompleted(m models.Metric, in models.MetricInput) bool {
	if in.Completed {
		return true
	}
	if m.InputType == models.InputBoolean {
		return false
	}
	return in.ScoreValue != nil && *in.ScoreValue > 0
}

// Calculate scores inputs for userID on date. Inputs naming unknown or
// inactive metrics are skipped.
func Calculate(userID, date string, snap *catalog.Snapshot, weights catalog.Weights, inputs []models.MetricInput) Result {
	var res Result

	raw := make(map[string]int)
	for _, in := range inputs {
		m, ok := snap.Metric(in.MetricID)
		if !ok {
			continue
		}
		points := AwardPoints(m, in)
		raw[m.AxisID] += points
		res.TotalTime += in.TimeSpentMinutes

		res.Entries = append(res.Entries, models.DailyEntry{
			UserID:           userID,
			MetricID:         m.ID,
			Date:             date,
			Completed:        IsCompleted(m, in),
			ScoreAwarded:     points,
			ScoreValue:       in.ScoreValue,
			TimeSpentMinutes: in.TimeSpentMinutes,
			Review:           in.Review,
		})
	}

	maxPoints := make(map[string]int)
	for _, m := range snap.Metrics {
		maxPoints[m.AxisID] += m.MaxPoints
	}

	var total float64
	for _, axis := range snap.Axes {
		score := AxisScore{
			AxisID: axis.ID,
			Raw:    raw[axis.ID],
			Max:    maxPoints[axis.ID],
			Weight: weights.ByAxis[axis.ID],
		}
		if score.Max > 0 {
			score.Contribution = float64(score.Raw) / float64(score.Max) * score.Weight
			total += score.Contribution
		}
		res.AxisScores = append(res.AxisScores, score)
	}

	res.TotalScore = RoundHalfUp(clamp(total, 0, 100))
	return res
}
