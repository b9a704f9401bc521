// seed-admin creates or refreshes a profile and grants it the PM role.
// With --issue-token it also stores a session token in redis for that user.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin --user pm-1 --email pm@example.com
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/barrosyan/sistema-pronto/config"
	"github.com/barrosyan/sistema-pronto/middlewares"
	"github.com/barrosyan/sistema-pronto/models"
	"github.com/barrosyan/sistema-pronto/utils"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type seedOptions struct {
	userId     string
	email      string
	fullName   string
	issueToken bool
	tokenTTL   time.Duration
}

func newSeedCmd() *cobra.Command {
	var opts seedOptions
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Grant the PM role to a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.ConnectDatabaseWithRetry()
			db := config.GetDB()
			if db == nil {
				return fmt.Errorf("database not initialized (config.GetDB returned nil). Set DB_* env vars")
			}
			if err := models.MigrateTable(db); err != nil {
				return err
			}
			if opts.issueToken {
				config.ConnectRedisWithRetry()
			}
			token, err := seed(cmd.Context(), db, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now a PM\n", opts.userId)
			if token != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "token: %s (expires in %s)\n", token, opts.tokenTTL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.userId, "user", "", "Owner id of the user (required)")
	cmd.Flags().StringVar(&opts.email, "email", "", "Profile email")
	cmd.Flags().StringVar(&opts.fullName, "name", "", "Profile full name")
	cmd.Flags().BoolVar(&opts.issueToken, "issue-token", false, "Store a session token in redis")
	cmd.Flags().DurationVar(&opts.tokenTTL, "token-ttl", 24*time.Hour, "Lifetime of the issued token")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// seed runs as the user itself so owner scoping stays on.
func seed(ctx context.Context, db *gorm.DB, opts seedOptions) (string, error) {
	userId := strings.TrimSpace(opts.userId)
	if userId == "" {
		return "", fmt.Errorf("user id is required")
	}
	ctx = utils.SetUserIdInContext(ctx, userId)
	ctx = utils.SetUsernameInContext(ctx, "Seed")

	if _, err := models.UpsertProfile(ctx, db, &models.NewProfile{
		ID:       userId,
		Email:    utils.NilIfEmpty(strings.TrimSpace(opts.email)),
		FullName: utils.NilIfEmpty(strings.TrimSpace(opts.fullName)),
	}); err != nil {
		return "", fmt.Errorf("failed to upsert profile: %w", err)
	}
	if err := models.GrantPrivileged(ctx, db, userId); err != nil {
		return "", fmt.Errorf("failed to grant PM role: %w", err)
	}
	middlewares.ForgetPrivileged(userId)

	if !opts.issueToken {
		return "", nil
	}
	token, err := middlewares.IssueToken(middlewares.Session{UserId: userId, Username: opts.fullName}, opts.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

func main() {
	if err := newSeedCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
