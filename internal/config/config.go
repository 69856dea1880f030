package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Joseda-hg/lazystreak/internal/activity"
	"github.com/Joseda-hg/lazystreak/internal/app"
	"github.com/Joseda-hg/lazystreak/internal/db"
)

const envPrefix = "LAZYSTREAK"

type Config struct {
	Backend          string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DBPath           string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
	CSVPath          string `json:"csv_path" yaml:"csv_path" mapstructure:"csv_path"`
	JSONPath         string `json:"json_path" yaml:"json_path" mapstructure:"json_path"`
	ActivityPath     string `json:"activity_path" yaml:"activity_path" mapstructure:"activity_path"`
	MongoURI         string `json:"mongo_uri" yaml:"mongo_uri" mapstructure:"mongo_uri"`
	MongoDatabase    string `json:"mongo_database" yaml:"mongo_database" mapstructure:"mongo_database"`
	WebEnabled       bool   `json:"web_enabled" yaml:"web_enabled" mapstructure:"web_enabled"`
	WebPort          int    `json:"web_port" yaml:"web_port" mapstructure:"web_port"`
	QualifyingFilter string `json:"qualifying_filter" yaml:"qualifying_filter" mapstructure:"qualifying_filter"`
	ActivitySource   string `json:"activity_source" yaml:"activity_source" mapstructure:"activity_source"`
	GridMode         string `json:"grid_mode" yaml:"grid_mode" mapstructure:"grid_mode"`
	WindowWeeks      int    `json:"window_weeks" yaml:"window_weeks" mapstructure:"window_weeks"`
	// CacheTTL is a Go duration string; "0" or "off" disables the read cache.
	CacheTTL string `json:"cache_ttl" yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

func Default() Config {
	return Config{
		Backend:          db.BackendSQLite,
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "lazystreak",
		WebPort:          8080,
		QualifyingFilter: string(activity.FilterAny),
		ActivitySource:   string(app.SourceTasks),
		GridMode:         string(activity.ModeCount),
		WindowWeeks:      activity.DefaultWindowWeeks,
		CacheTTL:         db.DefaultCacheTTL.String(),
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lazystreak", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Load reads path (JSON or YAML, by extension) over the defaults and then
// applies LAZYSTREAK_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType(formatOf(path))
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if formatOf(path) == "yaml" {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// FillPaths points empty file locations at dir, the directory holding the config file.
func (c *Config) FillPaths(dir string) {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(dir, "lazystreak.db")
	}
	if c.CSVPath == "" {
		c.CSVPath = filepath.Join(dir, "tasks.csv")
	}
	if c.JSONPath == "" {
		c.JSONPath = filepath.Join(dir, "tasks.json")
	}
	if c.ActivityPath == "" {
		c.ActivityPath = filepath.Join(dir, "activity.json")
	}
	if c.WebPort == 0 {
		c.WebPort = 8080
	}
}

func (c Config) Validate() error {
	backend := strings.ToLower(strings.TrimSpace(c.Backend))
	known := false
	for _, name := range db.Backends {
		if backend == name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("backend: unknown value %q (want one of %s)", c.Backend, strings.Join(db.Backends, ", "))
	}
	if _, err := activity.ParseFilter(c.QualifyingFilter); err != nil {
		return fmt.Errorf("qualifying_filter: %w", err)
	}
	if _, err := activity.ParseMode(c.GridMode); err != nil {
		return fmt.Errorf("grid_mode: %w", err)
	}
	if _, err := app.ParseSource(c.ActivitySource); err != nil {
		return fmt.Errorf("activity_source: %w", err)
	}
	if c.WindowWeeks < 0 {
		return fmt.Errorf("window_weeks: must not be negative, got %d", c.WindowWeeks)
	}
	if c.WebPort < 0 || c.WebPort > 65535 {
		return fmt.Errorf("web_port: out of range: %d", c.WebPort)
	}
	if _, err := c.CacheDuration(); err != nil {
		return err
	}
	return nil
}

func (c Config) CacheDuration() (time.Duration, error) {
	value := strings.TrimSpace(strings.ToLower(c.CacheTTL))
	switch value {
	case "", "0", "off":
		return 0, nil
	}
	ttl, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("cache_ttl: %w", err)
	}
	if ttl < 0 {
		return 0, fmt.Errorf("cache_ttl: must not be negative, got %s", ttl)
	}
	return ttl, nil
}

func (c Config) DBOptions() (db.Options, error) {
	ttl, err := c.CacheDuration()
	if err != nil {
		return db.Options{}, err
	}
	return db.Options{
		Backend:       c.Backend,
		DBPath:        c.DBPath,
		CSVPath:       c.CSVPath,
		JSONPath:      c.JSONPath,
		ActivityPath:  c.ActivityPath,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
		CacheTTL:      ttl,
	}, nil
}

func (c Config) Aggregator() (activity.Aggregator, error) {
	filter, err := activity.ParseFilter(c.QualifyingFilter)
	if err != nil {
		return activity.Aggregator{}, err
	}
	mode, err := activity.ParseMode(c.GridMode)
	if err != nil {
		return activity.Aggregator{}, err
	}
	return activity.Aggregator{
		Filter:      filter,
		Mode:        mode,
		WindowWeeks: c.WindowWeeks,
		Now:         time.Now,
	}, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("backend", cfg.Backend)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("csv_path", cfg.CSVPath)
	v.SetDefault("json_path", cfg.JSONPath)
	v.SetDefault("activity_path", cfg.ActivityPath)
	v.SetDefault("mongo_uri", cfg.MongoURI)
	v.SetDefault("mongo_database", cfg.MongoDatabase)
	v.SetDefault("web_enabled", cfg.WebEnabled)
	v.SetDefault("web_port", cfg.WebPort)
	v.SetDefault("qualifying_filter", cfg.QualifyingFilter)
	v.SetDefault("activity_source", cfg.ActivitySource)
	v.SetDefault("grid_mode", cfg.GridMode)
	v.SetDefault("window_weeks", cfg.WindowWeeks)
	v.SetDefault("cache_ttl", cfg.CacheTTL)
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
