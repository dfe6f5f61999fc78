package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Server struct {
		Port int
		Mode string
	}
	Database struct {
		Driver string
		Path   string
	}
	Auth struct {
		JWTSecret  string
		TokenTTL   time.Duration
		BcryptCost int
	}
	Stats struct {
		Timezone string
	}
	Leaderboard struct {
		Size int
	}
	Log struct {
		Level  string
		Pretty bool
	}
	CORS struct {
		AllowedOrigins []string
	}
}

// Location resolves Stats.Timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Stats.Timezone)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.path", "ecotrack.db")
	v.SetDefault("auth.jwt_secret", "change-me")
	v.SetDefault("auth.token_ttl", "168h")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("stats.timezone", "UTC")
	v.SetDefault("leaderboard.size", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Load reads config.yaml from the given paths (the working directory when none
// are given) and applies ECOTRACK_* environment overrides. A missing config
// file is not an error.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	setDefaults(v)

	v.SetEnvPrefix("ecotrack")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// plain names understood by the original deployment scripts
	_ = v.BindEnv("server.port", "ECOTRACK_SERVER_PORT", "PORT")
	_ = v.BindEnv("auth.jwt_secret", "ECOTRACK_AUTH_JWT_SECRET", "JWT_SECRET")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	c.Server.Port = v.GetInt("server.port")
	c.Server.Mode = v.GetString("server.mode")
	c.Database.Driver = v.GetString("database.driver")
	c.Database.Path = v.GetString("database.path")
	c.Auth.JWTSecret = v.GetString("auth.jwt_secret")
	c.Auth.TokenTTL = v.GetDuration("auth.token_ttl")
	c.Auth.BcryptCost = v.GetInt("auth.bcrypt_cost")
	c.Stats.Timezone = v.GetString("stats.timezone")
	c.Leaderboard.Size = v.GetInt("leaderboard.size")
	c.Log.Level = v.GetString("log.level")
	c.Log.Pretty = v.GetBool("log.pretty")
	c.CORS.AllowedOrigins = v.GetStringSlice("cors.allowed_origins")

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode %q must be debug, release or test", c.Server.Mode)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.Auth.BcryptCost != 0 && (c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost) {
		return fmt.Errorf("auth.bcrypt_cost %d must be between %d and %d", c.Auth.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Leaderboard.Size <= 0 {
		return errors.New("leaderboard.size must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("stats.timezone: %w", err)
	}
	return nil
}
