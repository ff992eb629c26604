// Package config loads the swimclub configuration from a YAML file, a .env file
// and SWIMCLUB_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. SWIMCLUB_DATA_DIR.
const EnvPrefix = "SWIMCLUB"

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "swimclub.yaml"

// Storage backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ErrConfigExists is returned by WriteDefault when the target already exists.
var ErrConfigExists = errors.New("config file already exists")

// Config is the full swimclub configuration.
type Config struct {
	DataDir string  `yaml:"data_dir" mapstructure:"data_dir"`
	Storage Storage `yaml:"storage" mapstructure:"storage"`
	Files   Files   `yaml:"files" mapstructure:"files"`
	Fees    Fees    `yaml:"fees" mapstructure:"fees"`
	Email   Email   `yaml:"email" mapstructure:"email"`
	Auth    Auth    `yaml:"auth" mapstructure:"auth"`
	Metrics Metrics `yaml:"metrics" mapstructure:"metrics"`
	Log     Log     `yaml:"log" mapstructure:"log"`
}

// Storage selects the record store backend.
type Storage struct {
	Backend    string `yaml:"backend" mapstructure:"backend"`
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	SlowOpMs   int    `yaml:"slow_op_ms" mapstructure:"slow_op_ms"`
	Delimiter  string `yaml:"delimiter" mapstructure:"delimiter"`
}

// Files names the record files of the file backend, relative to DataDir.
// With the SQLite backend they name the record categories.
type Files struct {
	Members   string `yaml:"members" mapstructure:"members"`
	Payments  string `yaml:"payments" mapstructure:"payments"`
	Reminders string `yaml:"reminders" mapstructure:"reminders"`
	Rates     string `yaml:"rates" mapstructure:"rates"`
	Accounts  string `yaml:"accounts" mapstructure:"accounts"`
}

// Fees holds the fee model.
type Fees struct {
	PassiveFee        float64 `yaml:"passive_fee" mapstructure:"passive_fee"`
	DefaultJuniorRate float64 `yaml:"default_junior_rate" mapstructure:"default_junior_rate"`
	DefaultSeniorRate float64 `yaml:"default_senior_rate" mapstructure:"default_senior_rate"`
	SeniorDiscount    float64 `yaml:"senior_discount" mapstructure:"senior_discount"`
	SeniorAge         int     `yaml:"senior_age" mapstructure:"senior_age"`
	JuniorAge         int     `yaml:"junior_age" mapstructure:"junior_age"`
}

// Email configures reminder delivery. An empty key selects the logging sender.
type Email struct {
	ResendAPIKey string `yaml:"resend_api_key" mapstructure:"resend_api_key"`
	From         string `yaml:"from" mapstructure:"from"`
	ReplyTo      string `yaml:"reply_to" mapstructure:"reply_to"`
}

// Auth configures the staff login gate.
type Auth struct {
	Required bool `yaml:"required" mapstructure:"required"`
}

// Metrics configures the Prometheus textfile export.
type Metrics struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir: "data",
		Storage: Storage{
			Backend:    BackendFile,
			SQLitePath: "swimclub.db",
			SlowOpMs:   50,
			Delimiter:  ";",
		},
		Files: Files{
			Members:   "members.txt",
			Payments:  "payments.txt",
			Reminders: "reminders.txt",
			Rates:     "rates.txt",
			Accounts:  "accounts.txt",
		},
		Fees: Fees{
			PassiveFee:        500,
			DefaultJuniorRate: 1000,
			DefaultSeniorRate: 1600,
			SeniorDiscount:    0.75,
			SeniorAge:         60,
			JuniorAge:         18,
		},
		Email: Email{From: "Swim Club <treasurer@swimclub.dk>"},
		Log:   Log{Level: "info", Format: "text"},
	}
}

// Load reads the configuration.
// PRE: path is empty or names a YAML file
// POST: An empty path uses DefaultFile when present, else defaults; env overrides both
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
		slog.Debug("config_loaded", "path", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so env overrides apply to keys absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.slow_op_ms", d.Storage.SlowOpMs)
	v.SetDefault("storage.delimiter", d.Storage.Delimiter)
	v.SetDefault("files.members", d.Files.Members)
	v.SetDefault("files.payments", d.Files.Payments)
	v.SetDefault("files.reminders", d.Files.Reminders)
	v.SetDefault("files.rates", d.Files.Rates)
	v.SetDefault("files.accounts", d.Files.Accounts)
	v.SetDefault("fees.passive_fee", d.Fees.PassiveFee)
	v.SetDefault("fees.default_junior_rate", d.Fees.DefaultJuniorRate)
	v.SetDefault("fees.default_senior_rate", d.Fees.DefaultSeniorRate)
	v.SetDefault("fees.senior_discount", d.Fees.SeniorDiscount)
	v.SetDefault("fees.senior_age", d.Fees.SeniorAge)
	v.SetDefault("fees.junior_age", d.Fees.JuniorAge)
	v.SetDefault("email.resend_api_key", d.Email.ResendAPIKey)
	v.SetDefault("email.from", d.Email.From)
	v.SetDefault("email.reply_to", d.Email.ReplyTo)
	v.SetDefault("auth.required", d.Auth.Required)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("invalid storage.backend %q: must be %q or %q", c.Storage.Backend, BackendFile, BackendSQLite)
	}
	if c.Storage.Delimiter == "" {
		return errors.New("storage.delimiter cannot be empty")
	}
	fees := map[string]float64{
		"fees.passive_fee":         c.Fees.PassiveFee,
		"fees.default_junior_rate": c.Fees.DefaultJuniorRate,
		"fees.default_senior_rate": c.Fees.DefaultSeniorRate,
		"fees.senior_discount":     c.Fees.SeniorDiscount,
	}
	for key, val := range fees {
		if !(val > 0) {
			return fmt.Errorf("%s must be positive, got %v", key, val)
		}
	}
	if c.Fees.JuniorAge <= 0 || c.Fees.SeniorAge <= c.Fees.JuniorAge {
		return fmt.Errorf("fees.junior_age (%d) must be positive and below fees.senior_age (%d)", c.Fees.JuniorAge, c.Fees.SeniorAge)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}
	return nil
}

// Path resolves a record file name against DataDir.
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// LogLevel returns the configured slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// YAML renders the configuration as YAML, with the email key redacted.
func (c *Config) YAML() ([]byte, error) {
	redacted := *c
	if redacted.Email.ResendAPIKey != "" {
		redacted.Email.ResendAPIKey = "<redacted>"
	}
	return yaml.Marshal(&redacted)
}

// WriteDefault writes the default configuration to path.
// POST: An existing file is left untouched and ErrConfigExists is returned
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("error marshalling default config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
