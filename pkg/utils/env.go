package utils

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"dentcheck/pkg/logger"
)

// LoadEnv loads a .env file from the working directory when present.
// Variables already set in the environment win.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		logger.LogWarn("Failed to load .env file: %v", err)
	}
}
