package main

import (
	"context"
	"fmt"
	"os"
	"time"

	apiconfig "golang-stock-tracker/internal/api/config"
	"golang-stock-tracker/internal/api/database"
	"golang-stock-tracker/internal/api/repository"
	"golang-stock-tracker/internal/api/service"
	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/apperror"

	"github.com/spf13/cobra"
)

var (
	configPath string
	adminName  string
	adminEmail string
	adminPass  string
)

var rootCmd = &cobra.Command{
	Use:   "account-cli",
	Short: "A CLI for managing Stock Tracker accounts",
	Long:  `account-cli performs account operations that have no HTTP route, such as bootstrapping the first administrator.`,
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account, or promote an existing account to admin",
	RunE:  runCreateAdmin,
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	cfg, err := apiconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	accounts := repository.NewAccountRepository(db.DB)
	email := repository.NormalizeEmail(adminEmail)

	existing, err := accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := accounts.UpdateRole(ctx, existing.ID, entity.RoleAdmin); err != nil {
			return fmt.Errorf("failed to promote account: %w", err)
		}
		if err := accounts.UpdateStatus(ctx, existing.ID, entity.AccountStatusActive); err != nil {
			return fmt.Errorf("failed to activate account: %w", err)
		}
		fmt.Printf("Promoted %s to admin.\n", email)
		return nil
	case apperror.KindOf(err) != apperror.KindNotFound:
		return fmt.Errorf("failed to look up account: %w", err)
	}

	if len(adminPass) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	hash, err := service.HashPassword(adminPass, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	account := &entity.Account{
		Name:         adminName,
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
		Status:       entity.AccountStatusActive,
	}
	if err := accounts.Create(ctx, account); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	fmt.Printf("Created admin %s (id %d).\n", email, account.ID)
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-api.yaml", "Path to the configuration file")

	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "Display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Email address")
	createAdminCmd.Flags().StringVar(&adminPass, "password", "", "Password (ignored when promoting an existing account)")
	_ = createAdminCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(createAdminCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'\n", err)
		os.Exit(1)
	}
}
