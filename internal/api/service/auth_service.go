package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/internal/api/repository"
	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/apperror"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/telegram"
	"golang-stock-tracker/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

const msgInvalidCredentials = "Invalid credentials"

// AuthService defines the interface for registration, login and token resolution.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Authenticate(ctx context.Context, token string) (*entity.Account, error)
}

// NewAuthService creates a new auth service.
func NewAuthService(accountRepo repository.AccountRepository, tokens TokenService, notifier telegram.Notifier, bcryptCost int, logger *logger.Logger) AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		accountRepo: accountRepo,
		tokens:      tokens,
		notifier:    notifier,
		bcryptCost:  bcryptCost,
		logger:      logger,
		now:         time.Now,
	}
}

type authService struct {
	accountRepo repository.AccountRepository
	tokens      TokenService
	notifier    telegram.Notifier
	bcryptCost  int
	logger      *logger.Logger
	now         func() time.Time
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register creates a user account and signs a token for it.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	hash, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, apperror.Internal("Failed to hash password", err)
	}

	account := &entity.Account{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         entity.RoleUser,
		Status:       entity.AccountStatusActive,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if apperror.KindOf(err) != apperror.KindConflict {
			s.logger.ErrorContext(ctx, "Failed to create account", logger.ErrorField(err))
		}
		return nil, err
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Account registered", logger.Field("account_id", account.ID))
	s.notify(telegram.AccountEvent{Type: "registered", Name: account.Name, Email: account.Email, At: s.now()})

	return &dto.AuthResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    ToAccountResponse(account),
	}, nil
}

// Login verifies credentials. Banned accounts are refused even with the right password.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	account, err := s.accountRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(msgInvalidCredentials)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	if account.IsBanned() {
		s.logger.WarnContext(ctx, "Banned account attempted login", logger.Field("account_id", account.ID))
		return nil, apperror.Forbidden("Account has been banned")
	}

	now := s.now()
	if err := s.accountRepo.UpdateLastLogin(ctx, account.ID, now); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update last login", logger.ErrorField(err), logger.Field("account_id", account.ID))
	} else {
		account.LastLogin = utils.ToPointer(now)
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    ToAccountResponse(account),
	}, nil
}

// Authenticate resolves a bearer token to a live, non-banned account.
func (s *authService) Authenticate(ctx context.Context, token string) (*entity.Account, error) {
	if token == "" {
		return nil, apperror.Unauthorized("No token, authorization denied")
	}
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Token is not valid")
		}
		return nil, err
	}
	if account.IsBanned() {
		return nil, apperror.Forbidden("Account has been banned")
	}
	return account, nil
}

func (s *authService) notify(ev telegram.AccountEvent) {
	notifyAsync(s.notifier, s.logger, ev)
}
