package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"nfl-pickem-go/logging"
)

// Config is the full application configuration, resolved from the
// environment with development-friendly defaults.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Auth     AuthConfig
	App      AppConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	Environment    string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Timeout  time.Duration
}

type LoggingConfig struct {
	Level       string
	Prefix      string
	EnableColor bool
}

type AuthConfig struct {
	JWTSecret string
}

// AppConfig holds the pick'em specific knobs: which season the API serves
// by default and how the background score updater is paced.
type AppConfig struct {
	CurrentSeason  int
	IsDevelopment  bool
	UpdaterEnabled bool
	UpdateInterval time.Duration
	UpdateCooldown time.Duration
}

const devSecretPlaceholder = "dev-secret-do-not-deploy"

// Load resolves the configuration from the environment, reading .env first
// when present, and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// no .env in production deployments
		logging.Warnf("No .env file loaded: %v", err)
	}

	env := envString("ENVIRONMENT", "development")

	cfg := &Config{
		Server: ServerConfig{
			Host:           envString("SERVER_HOST", "0.0.0.0"),
			Port:           envString("SERVER_PORT", "8080"),
			Environment:    env,
			AllowedOrigins: strings.Split(envString("ALLOWED_ORIGINS", "*"), ","),
		},
		Database: DatabaseConfig{
			Host:     envString("DB_HOST", "localhost"),
			Port:     envString("DB_PORT", "27017"),
			Username: envString("DB_USERNAME", "pickem"),
			Password: envString("DB_PASSWORD", ""),
			Database: envString("DB_NAME", "nfl_pickem"),
			Timeout:  envDuration("DB_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:       envString("LOG_LEVEL", "debug"),
			Prefix:      envString("LOG_PREFIX", "pickem"),
			EnableColor: envBool("LOG_COLOR", true),
		},
		Auth: AuthConfig{
			JWTSecret: envString("JWT_SECRET", devSecretPlaceholder),
		},
		App: AppConfig{
			CurrentSeason:  envInt("CURRENT_SEASON", time.Now().Year()),
			IsDevelopment:  strings.EqualFold(env, "development"),
			UpdaterEnabled: envBool("UPDATER_ENABLED", true),
			UpdateInterval: envDuration("UPDATE_INTERVAL", 5*time.Minute),
			UpdateCooldown: envDuration("UPDATE_COOLDOWN", 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Server.Port == "":
		return fmt.Errorf("SERVER_PORT must not be empty")
	case c.Database.Host == "" || c.Database.Port == "":
		return fmt.Errorf("DB_HOST and DB_PORT must not be empty")
	case c.Database.Database == "":
		return fmt.Errorf("DB_NAME must not be empty")
	case c.Auth.JWTSecret == "":
		return fmt.Errorf("JWT_SECRET must not be empty")
	case c.Auth.JWTSecret == devSecretPlaceholder && !c.App.IsDevelopment:
		return fmt.Errorf("JWT_SECRET must be set outside development")
	case c.App.CurrentSeason < 2020 || c.App.CurrentSeason > 2035:
		return fmt.Errorf("CURRENT_SEASON %d out of range", c.App.CurrentSeason)
	case c.App.UpdateInterval < time.Minute:
		return fmt.Errorf("UPDATE_INTERVAL %v is below the 1m floor", c.App.UpdateInterval)
	}
	return nil
}

func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LogConfiguration logs the resolved configuration, with secrets reduced
// to presence flags.
func (c *Config) LogConfiguration() {
	logging.Infof("Server %s, environment %s", c.GetServerAddress(), c.Server.Environment)
	logging.Infof("Database %s:%s/%s, user %s, auth %t",
		c.Database.Host, c.Database.Port, c.Database.Database,
		c.Database.Username, c.Database.Password != "")
	logging.Infof("Season %d, updater enabled %t, interval %v, cooldown %v",
		c.App.CurrentSeason, c.App.UpdaterEnabled, c.App.UpdateInterval, c.App.UpdateCooldown)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
