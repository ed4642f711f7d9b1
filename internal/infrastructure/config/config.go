// Package config loads service configuration from the environment via viper.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all service configuration
type Config struct {
	Environment string
	LogLevel    string

	Server         ServerConfig
	Database       DatabaseConfig
	PayPal         PayPalConfig
	Media          MediaConfig
	Reconciliation ReconciliationConfig
	Wallet         WalletConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         int
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig holds postgres connection settings
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PayPalConfig holds payout provider settings
type PayPalConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Currency     string
}

// MediaConfig holds media host upload settings
type MediaConfig struct {
	UploadURL    string
	UploadPreset string
}

// ReconciliationConfig holds withdrawal reconciliation settings
type ReconciliationConfig struct {
	Enabled  bool
	Interval time.Duration
}

// WalletConfig holds ledger settings
type WalletConfig struct {
	MinWithdrawal string
}

// Load reads configuration from the environment, with .env as a convenience in development
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com")
	v.SetDefault("PAYPAL_CURRENCY", "USD")
	v.SetDefault("MEDIA_UPLOAD_URL", "")
	v.SetDefault("MEDIA_UPLOAD_PRESET", "")
	v.SetDefault("RECONCILIATION_ENABLED", true)
	v.SetDefault("RECONCILIATION_INTERVAL", "30s")
	v.SetDefault("WALLET_MIN_WITHDRAWAL", "5")

	cfg := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Server: ServerConfig{
			Port:         v.GetInt("SERVER_PORT"),
			ReadTimeout:  v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetInt("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		PayPal: PayPalConfig{
			BaseURL:      v.GetString("PAYPAL_BASE_URL"),
			ClientID:     v.GetString("PAYPAL_CLIENT_ID"),
			ClientSecret: v.GetString("PAYPAL_CLIENT_SECRET"),
			Currency:     v.GetString("PAYPAL_CURRENCY"),
		},
		Media: MediaConfig{
			UploadURL:    v.GetString("MEDIA_UPLOAD_URL"),
			UploadPreset: v.GetString("MEDIA_UPLOAD_PRESET"),
		},
		Reconciliation: ReconciliationConfig{
			Enabled:  v.GetBool("RECONCILIATION_ENABLED"),
			Interval: v.GetDuration("RECONCILIATION_INTERVAL"),
		},
		Wallet: WalletConfig{
			MinWithdrawal: v.GetString("WALLET_MIN_WITHDRAWAL"),
		},
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.PayPal.ClientID == "" || cfg.PayPal.ClientSecret == "" {
		return nil, fmt.Errorf("PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET are required")
	}

	return cfg, nil
}
