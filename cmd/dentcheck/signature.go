package main

import (
	"fmt"

	"github.com/fatih/color"

	"dentcheck/internal/config"
)

func printSignature(app config.AppSettings) {
	cyan := color.New(color.FgHiCyan, color.Bold).SprintFunc()
	white := color.New(color.FgWhite).SprintFunc()

	fmt.Println()
	fmt.Printf("%s : %s\n", cyan("Service    "), white(app.Name))
	fmt.Printf("%s : %s\n", cyan("Version    "), white(app.Version))
	fmt.Println()
}
