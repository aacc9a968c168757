package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds everything the app needs to start. Values come from the
// environment (optionally via a .env file) or a config.yaml next to the
// binary, with dev-friendly defaults for anything not set.
type Config struct {
	Port         int
	Env          string
	Pepper       string
	TokenSecret  string
	ClientOrigin string
	RedisAddr    string
	Database     PostgresConfig
}

// IsProd reports whether the app runs in production mode.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// ConnectionInfo assembles the postgres connection string.
func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

// LoadConfig loads the config using viper and returns it.
func LoadConfig() Config {
	viper.SetDefault("PORT", 1111)
	viper.SetDefault("ENV", "dev")
	viper.SetDefault("PEPPER", "secret-random-string")
	viper.SetDefault("TOKEN_SECRET", "secret-token-key")
	viper.SetDefault("CLIENT_ORIGIN", "http://localhost:3000")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_NAME", "chirper")
	// Optional: REDIS_ADDR enables the feed cache when set.

	viper.AutomaticEnv()

	// Optional config file support.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	return Config{
		Port:         viper.GetInt("PORT"),
		Env:          viper.GetString("ENV"),
		Pepper:       viper.GetString("PEPPER"),
		TokenSecret:  viper.GetString("TOKEN_SECRET"),
		ClientOrigin: viper.GetString("CLIENT_ORIGIN"),
		RedisAddr:    viper.GetString("REDIS_ADDR"),
		Database: PostgresConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
	}
}
