package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("POSTGRES_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "mongodb://localhost:27017/", cfg.Mongo.URI)
	assert.Equal(t, "medai", cfg.Mongo.Database)
	assert.Equal(t, "calls", cfg.Mongo.Collection)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "medai_metrics", cfg.Postgres.Database)
	assert.Equal(t, "admin", cfg.Postgres.User)
	assert.Equal(t, 7090, cfg.HTTP.Port)
	assert.Equal(t, 300, cfg.Export.TimeoutSeconds)
}

func TestLoadRequiresPostgresPassword(t *testing.T) {
	t.Setenv("POSTGRES_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_PASSWORD")
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("MONGO_DB_NAME", "medai_staging")
	t.Setenv("EXPORT_TIMEOUT_SECONDS", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "medai_staging", cfg.Mongo.Database)
	assert.Equal(t, 60, cfg.Export.TimeoutSeconds)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "admin", Password: "pw", Database: "metrics"}
	assert.Equal(t, "host=db port=5433 user=admin password=pw dbname=metrics sslmode=disable", p.DSN())
}
