package cli

import (
	"io"

	"github.com/julianstephens/levelup/internal/models"
	"github.com/julianstephens/levelup/internal/submission"
)

func modeText(m models.Mode) string {
	switch m {
	case models.ModeGrowth:
		return Good(string(m))
	case models.ModeBurnoutRisk, models.ModeSlump:
		return Bad(string(m))
	case models.ModeRecovery:
		return Warn(string(m))
	default:
		return string(m)
	}
}

// RenderResult prints a submission outcome.
func RenderResult(w io.Writer, res *submission.Result) {
	day := NewSection("Day " + res.Summary.Date)
	day.Row("Score", "%d/100", res.Summary.TotalScore)
	day.Row("Mode", "%s", modeText(res.Summary.Mode))
	day.Row("Time", "%d min", res.TotalTime)
	if res.Summary.BurnoutFlag {
		day.Line("%s", Bad("Burnout risk: long hours with a low score"))
	}
	if res.Summary.ProcrastinationFlag {
		day.Line("%s", Warn("Procrastination: little time and a low score"))
	}
	for _, a := range res.AxisScores {
		day.Row(a.AxisID, "%d/%d pts  weight %.0f%%  +%.1f", a.Raw, a.Max, a.Weight, a.Contribution)
	}
	day.Render(w)

	rewards := NewSection("Rewards")
	if xp := res.XP; xp != nil {
		if xp.AlreadyGranted {
			rewards.Line("Daily reward already claimed for this date")
		} else {
			rewards.Row("XP", "+%d", xp.XPGained)
			rewards.Row("Gold", "+%d", xp.GoldGained)
		}
		if xp.LevelAfter > xp.LevelBefore {
			rewards.Line(Good("Level up! %d → %d"), xp.LevelBefore, xp.LevelAfter)
		}
		for _, g := range xp.Attributes {
			rewards.Row(g.Attribute, "+%d xp (level %d)", g.XP, g.LevelAfter)
		}
		if xp.HardcoreLost {
			rewards.Line(Bad("Hardcore mode lost: -%d XP"), xp.PenaltyXP)
		}
	}
	if res.Loot != nil {
		rewards.Row("Loot", "%s (%s)", res.Loot.Name, res.Loot.Rarity)
	}
	if q := res.QuestXP; q != nil {
		for _, p := range q.Progress {
			if p.Completed {
				rewards.Row("Quest", "%s complete +%d xp", p.Title, p.XPAwarded)
			} else {
				rewards.Row("Quest", "%s %d/%d", p.Title, p.CurrentValue, p.TargetValue)
			}
		}
		if q.Expired > 0 {
			rewards.Line(Warn("%d quest(s) expired"), q.Expired)
		}
	}
	for _, a := range res.Achievements {
		rewards.Row("Achievement", "%s +%d xp", a.Name, a.XPReward)
	}
	if !rewards.Empty() {
		rewards.Render(w)
	}

	fight := NewSection("Combat")
	if b := res.Boss; b != nil {
		if b.Encounter != nil {
			name := b.BossName
			if name == "" {
				name = b.Encounter.BossID
			}
			fight.Row("Boss", "%s  -%d", name, b.Damage)
			fight.Row("", "%s", Bar(b.Encounter.CurrentHealth, b.Encounter.MaxHealth, 20))
			if b.Defeated {
				fight.Line("%s", Good("Boss defeated!"))
			}
			if b.AlreadyHit {
				fight.Line("%s", Warn("Today's hit already landed"))
			}
		}
		if b.Spawned != nil {
			fight.Line(Warn("A new boss appears: %s"), b.Spawned.BossID)
		}
	}
	if c := res.Campaign; c != nil {
		fight.Row("Campaign", "stage %d %s  -%d", c.Stage, c.StageName, c.Damage)
		if c.Defeated {
			fight.Line("%s", Good("Stage cleared!"))
		} else {
			fight.Row("", "%d health left", c.RemainingHealth)
		}
		if c.AlreadyHit {
			fight.Line("%s", Warn("Today's hit already landed"))
		}
		if c.Completed {
			fight.Line("%s", Good("Campaign complete"))
		}
	}
	if !fight.Empty() {
		fight.Render(w)
	}
}
