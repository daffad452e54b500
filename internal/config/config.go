// Package config handles configuration loading for prdoc.
// It supports XDG config paths, project-level overrides, .env files and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ProjectConfigName is looked up in the working directory and its parents.
const ProjectConfigName = ".prdoc.yaml"

// Config holds all configuration for prdoc.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Log      LogConfig      `mapstructure:"log"`
	Report   ReportConfig   `mapstructure:"report"`
}

// ServerConfig locates the analysis server.
type ServerConfig struct {
	URL        string        `mapstructure:"url"`
	StatusPath string        `mapstructure:"status_path"`
	SocketPath string        `mapstructure:"socket_path"`
	Timeout    time.Duration `mapstructure:"timeout"`
	// Headers are sent with the status request and the WebSocket upgrade,
	// for servers behind an authenticating proxy.
	Headers map[string]string `mapstructure:"headers"`
}

// DefaultsConfig holds the initial values of the analysis form.
type DefaultsConfig struct {
	Repository            string `mapstructure:"repository"`
	GenerateDocumentation bool   `mapstructure:"generate_documentation"`
	GenerateCodeReview    bool   `mapstructure:"generate_code_review"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

// ReportConfig holds export settings.
type ReportConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

// StatusURL returns the absolute URL of the configuration check endpoint.
func (s ServerConfig) StatusURL() string {
	return strings.TrimRight(s.URL, "/") + "/" + strings.TrimLeft(s.StatusPath, "/")
}

// Validate checks the settings that cannot be defaulted at use time.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return errors.New("server.url is empty")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("server.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url: unsupported scheme %q", u.Scheme)
	}
	switch c.Report.Format {
	case "html", "md", "json", "yaml":
	default:
		return fmt.Errorf("report.format: unsupported format %q", c.Report.Format)
	}
	return nil
}

// Load loads configuration. Precedence (highest to lowest):
// 1. Environment variables (PRDOC_*, AZDO_REPO), including values from .env
// 2. Project config (.prdoc.yaml in current directory or parent)
// 3. User config (~/.config/prdoc/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if project := findProjectConfig(); project != "" {
		pv := viper.New()
		pv.SetConfigFile(project)
		if err := pv.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", project, err)
		}
		if err := v.MergeConfigMap(pv.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	bindEnv(v)
	return decode(v)
}

// LoadFromPath loads configuration from a specific file plus .env and
// environment.
func LoadFromPath(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	bindEnv(v)
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Log.Dir = expandHome(cfg.Log.Dir)
	cfg.Report.Dir = expandHome(cfg.Report.Dir)
	return cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("PRDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The analysis server reads its default repository from AZDO_REPO.
	_ = v.BindEnv("defaults.repository", "PRDOC_DEFAULTS_REPOSITORY", "AZDO_REPO")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "http://localhost:5001")
	v.SetDefault("server.status_path", "/api/config/test")
	v.SetDefault("server.socket_path", "/socket.io/")
	v.SetDefault("server.timeout", 10*time.Second)

	v.SetDefault("defaults.repository", "")
	v.SetDefault("defaults.generate_documentation", true)
	v.SetDefault("defaults.generate_code_review", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", filepath.Join(stateDir(), "logs"))

	v.SetDefault("report.dir", ".")
	v.SetDefault("report.format", "html")
}

// UserConfigPath returns the path to the user config file.
func UserConfigPath() string {
	return filepath.Join(userConfigDir(), "config.yaml")
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "prdoc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".prdoc"
	}
	return filepath.Join(home, ".config", "prdoc")
}

func stateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "prdoc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".prdoc"
	}
	return filepath.Join(home, ".local", "state", "prdoc")
}

// findProjectConfig walks up from the working directory looking for
// ProjectConfigName.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ProjectConfigName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
