package main

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dentcheck/internal/access"
	"dentcheck/internal/config"
	"dentcheck/internal/database"
	"dentcheck/internal/repository"
	"dentcheck/pkg/logger"
)

var tokenUserID string

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a directory user",
		Run:   runToken,
	}
	cmd.Flags().StringVarP(&tokenUserID, "user", "u", "", "User ID (Required)")
	cmd.MarkFlagRequired("user")
	return cmd
}

func runToken(cmd *cobra.Command, args []string) {
	database.InitDB()
	defer database.Close(database.DB)

	u, err := repository.NewUserRepository(database.DB).FindByID(context.Background(), tokenUserID)
	if err != nil {
		logger.LogFatal("Unknown user %s: %v", tokenUserID, err)
	}

	policy := access.NewPolicy(config.AppConfig.Security.JWTSecret, config.Duration(config.AppConfig.Security.TokenTTL, 24*time.Hour))
	token, expiresAt, err := policy.Issue(u.ID, access.Role(u.Role))
	if err != nil {
		logger.LogFatal("Could not issue token: %v", err)
	}

	pterm.Info.Printf("%s (%s), expires %s\n", u.Name, u.Role, expiresAt.Format(time.RFC3339))
	pterm.Println(token)
}
