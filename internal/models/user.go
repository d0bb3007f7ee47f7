package models

import "time"

// User is the progression aggregate. Hardcore is read once per submission
// and passed explicitly to the reward calls.
type User struct {
	ID             string    `json:"id"`
	Hardcore       bool      `json:"hardcore"`
	Gold           int       `json:"gold"`
	LastSpawnCheck string    `json:"last_spawn_check,omitempty"` // YYYY-MM-DD format
	CreatedAt      time.Time `json:"created_at"`
}

type XPTransaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type UserAttribute struct {
	UserID        string `json:"user_id"`
	AttributeName string `json:"attribute_name"`
	TotalXP       int    `json:"total_xp"`
	Level         int    `json:"level"`
}

type Item struct {
	ID     string `json:"id" toml:"id"`
	Name   string `json:"name" toml:"name"`
	Rarity string `json:"rarity" toml:"rarity"`
}

type InventoryItem struct {
	UserID   string `json:"user_id"`
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}
