// Package config loads CLI settings from flags, environment, .env files
// and an optional .migrate.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/satishbabariya/migrate-go/migrate"
	"github.com/satishbabariya/migrate-go/migrate/history"
	"github.com/satishbabariya/migrate-go/migrate/sqlgen"
)

// AppFs is the filesystem config and .env files are read from
var AppFs = afero.NewOsFs()

const (
	// FileName is the config file name without extension
	FileName = ".migrate"
	// EnvPrefix prefixes environment variables, e.g. MIGRATE_PROVIDER
	EnvPrefix = "MIGRATE"
)

// Config holds the CLI settings
type Config struct {
	Provider     string        `mapstructure:"provider" yaml:"provider" validate:"required,oneof=mssql mysql postgres sqlite"`
	DatabaseURL  string        `mapstructure:"database_url" yaml:"database_url" validate:"required"`
	HistoryTable string        `mapstructure:"history_table" yaml:"history_table" validate:"required,max=128"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
	WhatIf       bool          `mapstructure:"what_if" yaml:"what_if"`
	Silent       bool          `mapstructure:"silent" yaml:"silent"`
	LogSQL       bool          `mapstructure:"log_sql" yaml:"log_sql"`
}

var validate = validator.New()

// Validate checks required fields and canonicalises the provider name
func (c *Config) Validate() error {
	if c.Provider != "" {
		d, err := sqlgen.ForProvider(c.Provider)
		if err != nil {
			return err
		}
		c.Provider = d.Name()
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag())
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// Dialect returns the SQL dialect of the configured provider
func (c *Config) Dialect() (sqlgen.Dialect, error) {
	return sqlgen.ForProvider(c.Provider)
}

// DriverName returns the database/sql driver registered for the provider
func (c *Config) DriverName() string {
	switch c.Provider {
	case "mssql":
		return "sqlserver"
	case "sqlite":
		return "sqlite3"
	default:
		return c.Provider
	}
}

// DSN returns the connection string in the form the driver expects
func (c *Config) DSN() (string, error) {
	return NormalizeDSN(c.Provider, c.DatabaseURL)
}

// NormalizeDSN rewrites a connection string for the provider's driver.
// MySQL DSNs get parseTime enabled, postgres URLs are converted to
// key/value form and sqlite URLs lose their scheme.
func NormalizeDSN(provider, dsn string) (string, error) {
	switch provider {
	case "mysql":
		cfg, err := mysql.ParseDSN(strings.TrimPrefix(dsn, "mysql://"))
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	case "postgres":
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			conn, err := pq.ParseURL(dsn)
			if err != nil {
				return "", fmt.Errorf("invalid postgres url: %w", err)
			}
			return conn, nil
		}
		return dsn, nil
	case "sqlite":
		for _, prefix := range []string{"sqlite3://", "sqlite://"} {
			if strings.HasPrefix(dsn, prefix) {
				return strings.TrimPrefix(dsn, prefix), nil
			}
		}
		return dsn, nil
	default:
		return dsn, nil
	}
}

// DetectProvider guesses the provider from a connection string
func DetectProvider(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(dsn, "sqlserver://"), strings.HasPrefix(dsn, "mssql://"):
		return "mssql"
	case strings.HasPrefix(dsn, "mysql://"), strings.Contains(dsn, "@tcp("):
		return "mysql"
	case strings.HasPrefix(dsn, "sqlite"), strings.HasPrefix(dsn, "file:"),
		strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"), dsn == ":memory:":
		return "sqlite"
	}
	return ""
}

// SQLitePath returns the database file of a sqlite connection string, or
// "" for in-memory databases.
func SQLitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}

// Loader reads configuration into a dedicated viper instance
type Loader struct {
	v  *viper.Viper
	fs afero.Fs
}

// NewLoader creates a loader with the CLI defaults
func NewLoader(fs afero.Fs) *Loader {
	v := viper.New()
	v.SetFs(fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("provider", "")
	v.SetDefault("database_url", "")
	v.SetDefault("history_table", history.DefaultTable)
	v.SetDefault("timeout", migrate.DefaultTimeout)
	v.SetDefault("what_if", false)
	v.SetDefault("silent", false)
	v.SetDefault("log_sql", false)
	return &Loader{v: v, fs: fs}
}

// Viper returns the underlying viper instance for flag binding
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads .env files, then the config file, and returns the validated
// configuration. An explicit configFile must exist; otherwise .migrate.yaml
// is searched in the working directory and the home directory.
func (l *Loader) Load(configFile string) (*Config, error) {
	if err := l.loadEnvFiles(); err != nil {
		return nil, err
	}

	if configFile != "" {
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(FileName)
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			l.v.AddConfigPath(home)
			l.v.AddConfigPath(filepath.Join(home, ".config", "migrate-go"))
		}
	}
	if err := l.v.ReadInConfig(); err != nil {
		var missing viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &missing) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.Provider == "" {
		cfg.Provider = DetectProvider(cfg.DatabaseURL)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles applies .env without overriding the environment, then
// .env.local overriding everything.
func (l *Loader) loadEnvFiles() error {
	if err := l.applyEnvFile(".env", false); err != nil {
		return err
	}
	return l.applyEnvFile(".env.local", true)
}

func (l *Loader) applyEnvFile(name string, override bool) error {
	f, err := l.fs.Open(name)
	if err != nil {
		return nil
	}
	defer f.Close()

	values, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	for k, v := range values {
		if _, exists := os.LookupEnv(k); exists && !override {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Save writes cfg as YAML to path
func Save(fs afero.Fs, path string, cfg *Config) error {
	v := viper.New()
	v.SetFs(fs)
	v.Set("provider", cfg.Provider)
	v.Set("database_url", cfg.DatabaseURL)
	v.Set("history_table", cfg.HistoryTable)
	v.Set("timeout", cfg.Timeout.String())
	v.Set("what_if", cfg.WhatIf)
	v.Set("silent", cfg.Silent)
	v.Set("log_sql", cfg.LogSQL)

	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	v.SetConfigType("yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
