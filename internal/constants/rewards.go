package constants

const (
	// Daily log rewards
	DefaultDailyLogXP     = 50
	DefaultPerfectDayXP   = 50
	DefaultDailyLogGold   = 10
	DefaultPerfectDayGold = 25

	// Attribute mastery: XP per logged minute, flat XP when no time was logged
	DefaultAttributeXPPerMinute = 10
	DefaultAttributeXP          = 50

	// Hardcore mode
	DefaultHardcorePenaltyXP = 100
	HardcoreFailScore        = 40

	// Boss combat
	BossDamageThreshold  = 80
	BossDamageNormal     = 50
	BossDamagePerfect    = 100
	DefaultBossSpawnRate = 0.25

	// Flag detection
	BurnoutTimeMinutes         = 480
	BurnoutScore               = 50
	BurnoutStickyScore         = 60
	BurnoutLookback            = 3
	ProcrastinationTimeMinutes = 30
	ProcrastinationScore       = 40
	GrowthScore                = 85
	RecoveryScore              = 60

	// Retroactive edit grants
	DefaultRetroGrantHours = 24
)
