package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings for the gnf client.
type Config struct {
	APIURL        string
	DBPath        string
	PaymentWindow time.Duration
	WalletTTL     time.Duration
	TickInterval  time.Duration
	HTTPTimeout   time.Duration
	LogCalls      bool
	WatchSchedule string
}

const (
	DefaultAPIURL        = "https://xbxbxb.onrender.com/api"
	DefaultPaymentWindow = 30 * time.Minute
	DefaultWalletTTL     = 60 * time.Second
	DefaultTickInterval  = time.Second
	DefaultHTTPTimeout   = 15 * time.Second
	DefaultWatchSchedule = "@every 30s"
)

// DefaultConfig returns a Config with the production backend and a database
// under ~/.gnf.
func DefaultConfig() Config {
	dbPath := "gnf.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".gnf", "gnf.db")
	}
	return Config{
		APIURL:        DefaultAPIURL,
		DBPath:        dbPath,
		PaymentWindow: DefaultPaymentWindow,
		WalletTTL:     DefaultWalletTTL,
		TickInterval:  DefaultTickInterval,
		HTTPTimeout:   DefaultHTTPTimeout,
		WatchSchedule: DefaultWatchSchedule,
	}
}

// Load reads a .env file from the working directory when present, then the
// GNF_* environment variables and ~/.gnf/config.yaml. Environment wins over the
// file. Unparseable or non-positive values fall back to defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	file := ""
	if home, err := os.UserHomeDir(); err == nil {
		file = filepath.Join(home, ".gnf", "config.yaml")
	}
	return LoadFile(file)
}

// LoadFile is Load without the .env step, reading settings from the given
// YAML file. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("GNF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", def.APIURL)
	v.SetDefault("db", def.DBPath)
	v.SetDefault("log_calls", false)
	v.SetDefault("watch_schedule", def.WatchSchedule)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("checking config file %s: %w", path, err)
		}
	}

	cfg := Config{
		APIURL:        strings.TrimRight(strings.TrimSpace(v.GetString("api_url")), "/"),
		DBPath:        v.GetString("db"),
		PaymentWindow: durationOr(v, "payment_window", def.PaymentWindow),
		WalletTTL:     durationOr(v, "wallet_ttl", def.WalletTTL),
		TickInterval:  durationOr(v, "tick_interval", def.TickInterval),
		HTTPTimeout:   durationOr(v, "http_timeout", def.HTTPTimeout),
		LogCalls:      v.GetBool("log_calls"),
		WatchSchedule: strings.TrimSpace(v.GetString("watch_schedule")),
	}
	if cfg.APIURL == "" {
		cfg.APIURL = def.APIURL
	}
	if cfg.DBPath == "" {
		cfg.DBPath = def.DBPath
	}
	if cfg.WatchSchedule == "" {
		cfg.WatchSchedule = def.WatchSchedule
	}
	return cfg, nil
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	if !v.IsSet(key) {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
