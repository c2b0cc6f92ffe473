package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	errs "threadgrab/pkg/errors"
	"threadgrab/pkg/tweetid"
)

// EnvPrefix is the shared prefix for all environment variable bindings
const EnvPrefix = "THREADGRAB_"

// Config holds all configuration options for threadgrab
type Config struct {
	// Status lookup API settings
	API APIConfig `yaml:"api" json:"api"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Traversal boundaries
	Traversal TraversalConfig `yaml:"traversal" json:"traversal"`

	// External download tool settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds settings for the status lookup endpoint
type APIConfig struct {
	APIKey            string        `yaml:"api_key" json:"api_key"`
	BaseURL           string        `yaml:"base_url" json:"base_url"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	Burst             int           `yaml:"burst" json:"burst"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// TraversalConfig bounds the thread walk. A zero Limit means unbounded and
// an empty StopAt means no boundary.
type TraversalConfig struct {
	Limit  int    `yaml:"limit" json:"limit"`
	StopAt string `yaml:"stop_at" json:"stop_at"`
}

// DownloadConfig holds settings for the supervised transcoder process
type DownloadConfig struct {
	Tool               string        `yaml:"tool" json:"tool"`
	Timeout            time.Duration `yaml:"timeout" json:"timeout"`
	CheckpointInterval time.Duration `yaml:"checkpoint_interval" json:"checkpoint_interval"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	File      string `yaml:"file" json:"file"`
	Verbosity int    `yaml:"verbosity" json:"verbosity"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://api.twitter.com",
			Timeout:           30 * time.Second,
			RequestsPerMinute: 60,
			Burst:             5,
		},
		Output: OutputConfig{
			Directory: defaultDownloadsDir(),
		},
		Traversal: TraversalConfig{
			Limit: 0,
		},
		Download: DownloadConfig{
			Tool:               "ffmpeg",
			Timeout:            300 * time.Second,
			CheckpointInterval: 30 * time.Second,
		},
		Notifications: NotificationConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultDownloadsDir returns the user's downloads folder
func defaultDownloadsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Downloads"
	}
	return filepath.Join(home, "Downloads")
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var problems []error

	if apiKey := os.Getenv(EnvPrefix + "API_KEY"); apiKey != "" {
		c.API.APIKey = apiKey
	}
	if baseURL := os.Getenv(EnvPrefix + "BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if rpm := os.Getenv(EnvPrefix + "REQUESTS_PER_MINUTE"); rpm != "" {
		val, err := strconv.Atoi(rpm)
		if err != nil {
			problems = append(problems, fmt.Errorf("%sREQUESTS_PER_MINUTE: %w", EnvPrefix, err))
		} else {
			c.API.RequestsPerMinute = val
		}
	}

	if dest := os.Getenv(EnvPrefix + "DEST"); dest != "" {
		c.Output.Directory = dest
	}

	if limit := os.Getenv(EnvPrefix + "LIMIT"); limit != "" {
		val, err := strconv.Atoi(limit)
		if err != nil {
			problems = append(problems, fmt.Errorf("%sLIMIT: %w", EnvPrefix, err))
		} else {
			c.Traversal.Limit = val
		}
	}
	if stopAt := os.Getenv(EnvPrefix + "STOP_AT"); stopAt != "" {
		c.Traversal.StopAt = stopAt
	}

	if tool := os.Getenv(EnvPrefix + "FFMPEG"); tool != "" {
		c.Download.Tool = tool
	}
	if timeout := os.Getenv(EnvPrefix + "DOWNLOAD_TIMEOUT"); timeout != "" {
		val, err := parseSecondsOrDuration(timeout)
		if err != nil {
			problems = append(problems, fmt.Errorf("%sDOWNLOAD_TIMEOUT: %w", EnvPrefix, err))
		} else {
			c.Download.Timeout = val
		}
	}

	if notify := os.Getenv(EnvPrefix + "NOTIFICATIONS"); notify != "" {
		c.Notifications.Enabled = strings.ToLower(notify) == "true"
	}

	if logLevel := os.Getenv(EnvPrefix + "LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv(EnvPrefix + "LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}
	if verbose := os.Getenv(EnvPrefix + "VERBOSE"); verbose != "" {
		val, err := strconv.Atoi(verbose)
		if err != nil {
			problems = append(problems, fmt.Errorf("%sVERBOSE: %w", EnvPrefix, err))
		} else {
			c.Logging.Verbosity = val
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &errs.Error{
		Type:    errs.ErrorTypeConfig,
		Message: "invalid environment",
		Err:     errors.Join(problems...),
	}
}

// parseSecondsOrDuration accepts "300" (seconds) or "5m"
func parseSecondsOrDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".threadgrab.yaml",
		".threadgrab.yml",
		filepath.Join(home, ".config", "threadgrab", "config.yaml"),
		filepath.Join(home, ".config", "threadgrab", "config.yml"),
		filepath.Join(home, ".threadgrab.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. The API key is not checked
// here because the command may still resolve it from a credential store.
func (c *Config) Validate() error {
	var problems []error

	if c.API.BaseURL == "" {
		problems = append(problems, errors.New("api base url is required"))
	}
	if c.API.Timeout <= 0 {
		problems = append(problems, errors.New("api timeout must be positive"))
	}
	if c.API.RequestsPerMinute < 0 {
		problems = append(problems, errors.New("requests per minute cannot be negative"))
	}
	if c.API.Burst < 0 {
		problems = append(problems, errors.New("burst cannot be negative"))
	}

	if c.Output.Directory == "" {
		problems = append(problems, errors.New("destination directory is required"))
	}

	if c.Traversal.Limit < 0 {
		problems = append(problems, errors.New("limit cannot be negative"))
	}
	if c.Traversal.StopAt != "" && !tweetid.Valid(c.Traversal.StopAt) {
		problems = append(problems, fmt.Errorf("stop-at %q is not a numeric id", c.Traversal.StopAt))
	}

	if c.Download.Tool == "" {
		problems = append(problems, errors.New("download tool is required"))
	}
	if c.Download.Timeout <= 0 {
		problems = append(problems, errors.New("download timeout must be positive"))
	}
	if c.Download.CheckpointInterval <= 0 {
		problems = append(problems, errors.New("checkpoint interval must be positive"))
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		problems = append(problems, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}
	if c.Logging.Verbosity < 0 {
		problems = append(problems, errors.New("verbosity cannot be negative"))
	}

	if len(problems) == 0 {
		return nil
	}
	return &errs.Error{
		Type:    errs.ErrorTypeConfig,
		Message: "invalid configuration",
		Err:     errors.Join(problems...),
	}
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges explicitly set command line flags into the
// configuration. Keys match the CLI flag names.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if apiKey, ok := flags["api-key"].(string); ok && apiKey != "" {
		c.API.APIKey = apiKey
	}
	if dest, ok := flags["dest"].(string); ok && dest != "" {
		c.Output.Directory = dest
	}
	if limit, ok := flags["limit"].(int); ok {
		c.Traversal.Limit = limit
	}
	if stopAt, ok := flags["stop-at"].(string); ok && stopAt != "" {
		c.Traversal.StopAt = stopAt
	}
	if tool, ok := flags["ffmpeg"].(string); ok && tool != "" {
		c.Download.Tool = tool
	}
	if timeout, ok := flags["download-timeout"].(time.Duration); ok && timeout > 0 {
		c.Download.Timeout = timeout
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if verbosity, ok := flags["verbose"].(int); ok && verbosity > 0 {
		c.Logging.Verbosity = verbosity
	}
	if notify, ok := flags["notify"].(bool); ok {
		c.Notifications.Enabled = notify
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// godotenv never overrides variables already present in the environment
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".threadgrab.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// MaskSecret masks all but the first 4 and last 4 characters of a secret
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
