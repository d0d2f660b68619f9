package repository

import (
	"context"
	"strings"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/apperror"

	"gorm.io/gorm"
)

const (
	msgAccountNotFound = "User not found"
	msgEmailTaken      = "User already exists with this email"
)

// AccountFilter narrows an account listing.
type AccountFilter struct {
	Status entity.AccountStatus
	Search string
	Offset int
	Limit  int
}

// AccountRepository defines the interface for account data operations.
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	FindByID(ctx context.Context, id uint) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	Update(ctx context.Context, account *entity.Account) error
	UpdateStatus(ctx context.Context, id uint, status entity.AccountStatus) error
	UpdateRole(ctx context.Context, id uint, role entity.Role) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	List(ctx context.Context, filter AccountFilter) ([]entity.Account, int64, error)
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[entity.AccountStatus]int64, error)
	CountByRole(ctx context.Context, role entity.Role) (int64, error)
	CountLoggedInSince(ctx context.Context, since time.Time) (int64, error)
	CountCreatedBefore(ctx context.Context, before time.Time) (int64, error)
	Recent(ctx context.Context, limit int) ([]entity.Account, error)
}

// NewAccountRepository creates a new GORM-based account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

type accountRepository struct {
	db *gorm.DB
}

// NormalizeEmail lower-cases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new account. A registered email yields a Conflict error.
func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	account.Email = NormalizeEmail(account.Email)

	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Account{}).Where("email = ?", account.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict(msgEmailTaken)
	}

	return translateError(r.db.WithContext(ctx).Create(account).Error, msgAccountNotFound, msgEmailTaken)
}

// FindByID retrieves an account by its ID.
func (r *accountRepository) FindByID(ctx context.Context, id uint) (*entity.Account, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, translateError(err, msgAccountNotFound, "")
	}
	return &account, nil
}

// FindByEmail retrieves an account by its email, case-insensitively.
func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&account).Error; err != nil {
		return nil, translateError(err, msgAccountNotFound, "")
	}
	return &account, nil
}

// Update persists the mutable profile fields of an account.
func (r *accountRepository) Update(ctx context.Context, account *entity.Account) error {
	account.Email = NormalizeEmail(account.Email)

	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Account{}).
		Where("email = ? AND id <> ?", account.Email, account.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict(msgEmailTaken)
	}

	res := r.db.WithContext(ctx).Model(&entity.Account{}).Where("id = ?", account.ID).Updates(map[string]interface{}{
		"name":       account.Name,
		"email":      account.Email,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return translateError(res.Error, msgAccountNotFound, msgEmailTaken)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(msgAccountNotFound)
	}
	return nil
}

// UpdateStatus sets the lifecycle status of an account.
func (r *accountRepository) UpdateStatus(ctx context.Context, id uint, status entity.AccountStatus) error {
	res := r.db.WithContext(ctx).Model(&entity.Account{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(msgAccountNotFound)
	}
	return nil
}

// UpdateRole sets the role of an account.
func (r *accountRepository) UpdateRole(ctx context.Context, id uint, role entity.Role) error {
	res := r.db.WithContext(ctx).Model(&entity.Account{}).Where("id = ?", id).Updates(map[string]interface{}{
		"role":       role,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(msgAccountNotFound)
	}
	return nil
}

// UpdateLastLogin records a successful login.
func (r *accountRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Account{}).Where("id = ?", id).UpdateColumn("last_login", at).Error
}

// List returns a page of accounts, newest first, together with the total number of matches.
func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]entity.Account, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if s := strings.TrimSpace(filter.Search); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			db = db.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Account{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []entity.Account
	err := r.db.WithContext(ctx).Scopes(scope).
		Order("created_at DESC").Order("id DESC").
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&accounts).Error
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// Delete removes an account along with its watchlist and prediction history.
func (r *accountRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", id).Delete(&entity.WatchlistEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", id).Delete(&entity.PredictionRecord{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Account{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound(msgAccountNotFound)
		}
		return nil
	})
}

// CountByStatus returns the number of accounts per status.
func (r *accountRepository) CountByStatus(ctx context.Context) (map[entity.AccountStatus]int64, error) {
	var rows []struct {
		Status entity.AccountStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Account{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entity.AccountStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *accountRepository) CountByRole(ctx context.Context, role entity.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Account{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *accountRepository) CountLoggedInSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Account{}).Where("last_login >= ?", since).Count(&count).Error
	return count, err
}

func (r *accountRepository) CountCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Account{}).Where("created_at < ?", before).Count(&count).Error
	return count, err
}

// Recent returns the most recently registered accounts.
func (r *accountRepository) Recent(ctx context.Context, limit int) ([]entity.Account, error) {
	var accounts []entity.Account
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&accounts).Error
	return accounts, err
}
