package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// Run history (SQLite)
	HistoryEnabled bool   `mapstructure:"history_enabled" yaml:"history_enabled"`
	HistoryPath    string `mapstructure:"history_path" yaml:"history_path"`

	// Sample entropy defaults
	SampEnEmbeddingDim    int     `mapstructure:"sampen_embedding_dim" yaml:"sampen_embedding_dim"`
	SampEnToleranceFactor float64 `mapstructure:"sampen_tolerance_factor" yaml:"sampen_tolerance_factor"`

	// Reading tabular files
	CSVDelimiter       string `mapstructure:"csv_delimiter" yaml:"csv_delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	SheetName          string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex         int    `mapstructure:"sheet_index" yaml:"sheet_index"`

	// T-test chart
	ChartColor   string `mapstructure:"chart_color" yaml:"chart_color"`
	ChartCapsize int    `mapstructure:"chart_capsize" yaml:"chart_capsize"`
	ChartWidth   int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight  int    `mapstructure:"chart_height" yaml:"chart_height"`

	// HTTP server
	ServerAddr  string   `mapstructure:"server_addr" yaml:"server_addr"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Dir returns ~/.tabstat, the home of the config file and run history.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabstat"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabstat/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "warn")
	v.SetDefault("history_enabled", true)
	v.SetDefault("history_path", "")
	v.SetDefault("sampen_embedding_dim", 1)
	v.SetDefault("sampen_tolerance_factor", 0.2)
	v.SetDefault("csv_delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("chart_color", "blue")
	v.SetDefault("chart_capsize", 10)
	v.SetDefault("chart_width", 480)
	v.SetDefault("chart_height", 360)
	v.SetDefault("server_addr", "127.0.0.1:8080")
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})
}

// Defaults returns the built-in configuration, ignoring files and env.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	if dir, err := Dir(); err == nil {
		c.HistoryPath = filepath.Join(dir, "history.db")
	}
	return &c
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is loaded into the environment first; it never overrides
// variables that are already set.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TABSTAT")
	v.AutomaticEnv()

	setDefaults(v)

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.HistoryPath == "" {
		c.HistoryPath = filepath.Join(dir, "history.db")
	}
	return &c, nil
}
