package scoring

import (
	"github.com/julianstephens/levelup/internal/constants"
	"github.com/julianstephens/levelup/internal/models"
)

type Flags struct {
	Burnout         bool
	Procrastination bool
	Mode            models.Mode
}

// Detect derives the day's flags. recent holds the summaries before the
// submission date, newest first; only the first few are consulted.
func Detect(score, totalTime int, recent []models.DailySummary) Flags {
	var f Flags

	f.Burnout = totalTime > constants.BurnoutTimeMinutes && score < constants.BurnoutScore
	if !f.Burnout && score < constants.BurnoutStickyScore {
		for i, s := range recent {
			if i >= constants.BurnoutLookback {
				break
			}
			if s.BurnoutFlag {
				f.Burnout = true
				break
			}
		}
	}

	f.Procrastination = totalTime < constants.ProcrastinationTimeMinutes && score < constants.ProcrastinationScore

	switch {
	case f.Burnout:
		f.Mode = models.ModeBurnoutRisk
	case f.Procrastination:
		f.Mode = models.ModeSlump
	case score > constants.GrowthScore:
		f.Mode = models.ModeGrowth
	case score < constants.RecoveryScore:
		f.Mode = models.ModeRecovery
	default:
		f.Mode = models.ModeStable
	}
	return f
}
