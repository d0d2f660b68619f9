package entity

import (
	"time"
)

// Role is the authorization role of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AccountStatus is the lifecycle status of an account.
type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "active"
	AccountStatusBanned  AccountStatus = "banned"
	AccountStatusPending AccountStatus = "pending"
)

// Valid reports whether s is one of the known statuses.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusBanned, AccountStatusPending:
		return true
	}
	return false
}

// Account represents a registered user of the tracker.
type Account struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	Name         string             `gorm:"not null" json:"name"`
	Email        string             `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string             `gorm:"not null" json:"-"`
	Role         Role               `gorm:"type:varchar(16);not null;default:user" json:"role"`
	Status       AccountStatus      `gorm:"type:varchar(16);not null;default:active;index" json:"status"`
	LastLogin    *time.Time         `json:"last_login,omitempty"`
	CreatedAt    time.Time          `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
	Watchlist    []WatchlistEntry   `gorm:"foreignKey:AccountID" json:"watchlist,omitempty"`
	Predictions  []PredictionRecord `gorm:"foreignKey:AccountID" json:"predictions,omitempty"`
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

// IsAdmin reports whether the account holds the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsBanned reports whether the account has been banned.
func (a *Account) IsBanned() bool {
	return a.Status == AccountStatusBanned
}
