package main

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dentcheck/internal/access"
	"dentcheck/internal/apperr"
	"dentcheck/internal/config"
	"dentcheck/internal/database"
	"dentcheck/internal/repository"
	"dentcheck/pkg/logger"
)

var demoUsers = []database.User{
	{Name: "Dr. Ada Molar", Email: "ada.molar@dentcheck.local", PhoneNumber: "+1-555-0101", Role: string(access.RoleDentist)},
	{Name: "Dr. Ben Crown", Email: "ben.crown@dentcheck.local", PhoneNumber: "+1-555-0102", Role: string(access.RoleDentist)},
	{Name: "Pat Smiles", Email: "pat.smiles@dentcheck.local", PhoneNumber: "+1-555-0201", Role: string(access.RolePatient)},
	{Name: "Sam Floss", Email: "sam.floss@dentcheck.local", PhoneNumber: "+1-555-0202", Role: string(access.RolePatient)},
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create demo patients and dentists and print their tokens",
		Run:   runSeed,
	}
}

func runSeed(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	database.InitDB()
	defer database.Close(database.DB)

	users := repository.NewUserRepository(database.DB)
	policy := access.NewPolicy(config.AppConfig.Security.JWTSecret, config.Duration(config.AppConfig.Security.TokenTTL, 24*time.Hour))

	pterm.DefaultHeader.WithFullWidth().WithBackgroundStyle(pterm.NewStyle(pterm.BgLightCyan)).WithTextStyle(pterm.NewStyle(pterm.FgBlack)).Println("DENTCHECK DEMO USERS")
	pterm.Println()

	data := pterm.TableData{{"Role", "Name", "ID", "Token"}}
	for _, demo := range demoUsers {
		u := demo

		existing, err := users.FindByEmail(ctx, u.Email)
		switch {
		case err == nil:
			u = *existing
		case apperr.IsNotFound(err):
			if err := users.Create(ctx, &u); err != nil {
				logger.LogFatal("Could not create %s: %v", u.Email, err)
			}
		default:
			logger.LogFatal("Could not look up %s: %v", u.Email, err)
		}

		token, _, err := policy.Issue(u.ID, access.Role(u.Role))
		if err != nil {
			logger.LogFatal("Could not issue token for %s: %v", u.Email, err)
		}
		data = append(data, []string{u.Role, u.Name, u.ID, token})
	}

	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
	pterm.Println()
	pterm.Success.Printf("Seeded %d users.\n", len(demoUsers))
}
