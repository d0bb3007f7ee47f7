package constants

import "time"

const (
	AppName            = "levelup"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/levelup/levelup.db"
	DefaultConfigFile  = "~/.config/levelup/config.toml"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DefaultTimezone decides what "today" means for a submission
	DefaultTimezone = "Local"

	// Catalog cache
	DefaultCatalogCacheSize = 64

	// SQLite busy timeout applied to every connection
	SQLiteBusyTimeout = 5 * time.Second
)
