package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

type HTTPConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	AccessSecret string
}

// ExportConfig drives the trigger service: where the exporter binary lives
// and how long one run may take before it is killed.
type ExportConfig struct {
	ExporterBin    string
	TimeoutSeconds int
}

type Config struct {
	Environment string
	Mongo       MongoConfig
	Postgres    PostgresConfig
	HTTP        HTTPConfig
	Auth        AuthConfig
	Export      ExportConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		Mongo: MongoConfig{
			URI:        v.GetString("MONGO_URI"),
			Database:   v.GetString("MONGO_DB_NAME"),
			Collection: v.GetString("MONGO_COLLECTION_NAME"),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetInt("POSTGRES_PORT"),
			Database: v.GetString("POSTGRES_DB"),
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
		},
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Export: ExportConfig{
			ExporterBin:    v.GetString("EXPORTER_BIN"),
			TimeoutSeconds: v.GetInt("EXPORT_TIMEOUT_SECONDS"),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = "mongodb://localhost:27017/"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "medai"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "calls"
	}
	if cfg.Postgres.Host == "" {
		cfg.Postgres.Host = "localhost"
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = 5432
	}
	if cfg.Postgres.Database == "" {
		cfg.Postgres.Database = "medai_metrics"
	}
	if cfg.Postgres.User == "" {
		cfg.Postgres.User = "admin"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Export.ExporterBin == "" {
		cfg.Export.ExporterBin = "./exporter"
	}
	if cfg.Export.TimeoutSeconds <= 0 {
		cfg.Export.TimeoutSeconds = 300
	}
}

func validate(cfg *Config) error {
	if cfg.Postgres.Password == "" {
		return fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	return nil
}

// DSN renders the Postgres connection string for the gorm driver.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}
