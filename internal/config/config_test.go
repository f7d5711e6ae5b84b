package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "/uploads/", cfg.Storage.PublicPrefix)
	assert.Equal(t, "http://localhost:8040", cfg.GetBaseUrl())
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Env = "production"

	assert.Error(t, cfg.Validate())

	cfg.Security.JWTSecret = "a-real-secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateDrivers(t *testing.T) {
	cfg := Defaults()
	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Database.Driver = "postgres"
	assert.Error(t, cfg.Validate(), "postgres needs a dsn")
	cfg.Database.DSN = "postgres://localhost/dentcheck"
	assert.NoError(t, cfg.Validate())

	cfg = Defaults()
	cfg.Storage.Driver = "s3"
	assert.Error(t, cfg.Validate(), "s3 needs a bucket")
}

func TestValidateDurations(t *testing.T) {
	cfg := Defaults()
	cfg.Cache.TTL = "soon"
	assert.Error(t, cfg.Validate())
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 2*time.Hour, Duration("2h", time.Minute))
	assert.Equal(t, time.Minute, Duration("", time.Minute))
	assert.Equal(t, time.Minute, Duration("-5s", time.Minute))
}

func TestDefaultsAppSettings(t *testing.T) {
	var app AppSettings = Defaults().App

	assert.Equal(t, "Dentcheck", app.Name)
	assert.Equal(t, "0.1.0", app.Version)
	assert.True(t, app.StartMessage)
}
