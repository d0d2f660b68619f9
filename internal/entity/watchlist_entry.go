package entity

import "time"

// WatchlistEntry is a symbol an account follows.
type WatchlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"not null;uniqueIndex:idx_watchlist_account_symbol" json:"account_id"`
	Symbol    string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_watchlist_account_symbol" json:"symbol"`
	Name      string    `json:"name"`
	AddedAt   time.Time `gorm:"autoCreateTime" json:"added_at"`
}

func (WatchlistEntry) TableName() string {
	return "watchlist_entries"
}
