package model

import "time"

// WatchlistItem is a favorited ticker. Pure convenience data, no ledger
// or lifecycle involvement.
type WatchlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"size:20;uniqueIndex;not null" json:"symbol"`
	Note      string    `gorm:"size:512" json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WatchlistItem) TableName() string {
	return "watchlist_items"
}
