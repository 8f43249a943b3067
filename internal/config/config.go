package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

type AppSubConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// LedgerConfig selects balance-engine behavior.
// LegacyLoanReversal keeps the historical delete law for loans
// (loan.amount -= statement.amount); when false the symmetric law is used
// (loan.amount += statement.saving).
type LedgerConfig struct {
	LegacyLoanReversal bool `mapstructure:"legacy_loan_reversal"`
}

type NotifyConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Backup   BackupConfig   `mapstructure:"backup"`
	App      AppSubConfig   `mapstructure:"app"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. AB_SERVER_PORT=9000
		v.SetEnvPrefix("AB")
		v.AutomaticEnv()

		v.SetDefault("server.address", "0.0.0.0")
		v.SetDefault("server.port", 8000)
		v.SetDefault("server.mode", "release")
		v.SetDefault("database.path", "data/account-book.db")
		v.SetDefault("log.file", "logs/account-book.log")
		v.SetDefault("log.level", "info")
		v.SetDefault("backup.dir", "data/backups")
		v.SetDefault("app.page_size", 50)
		v.SetDefault("ledger.legacy_loan_reversal", true)
		v.SetDefault("notify.enabled", false)

		if err = v.ReadInConfig(); err != nil {
			// a missing file is fine, defaults and env vars apply
			if _, missing := err.(viper.ConfigFileNotFoundError); missing {
				err = nil
			} else {
				err = fmt.Errorf("read config: %w", err)
				return
			}
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
