package docfill

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Default related-party placeholders filled by the second pass over listing
// tables
const (
	RelatedPartyName          = "{relatedPartyName}"
	RelatedPartyContactNumber = "{relatedPartyContactNumber}"
	RelatedPartyShareHolding  = "{relatedPartyShareHolding}"
)

// DefaultListingMarker is the text that marks a table as a listing table
const DefaultListingMarker = "Related Party"

// Config contains all configuration options for the docfill engine and server
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string        `yaml:"log_level"`
	Listing  ListingConfig `yaml:"listing"`
	Server   ServerConfig  `yaml:"server"`
}

// ListingConfig drives the processing of marked listing tables
type ListingConfig struct {
	// Marker is the substring that classifies a table as a listing table
	Marker string `yaml:"marker"`
	// TemplateRow is the index of the row cloned in nested listing tables
	TemplateRow int `yaml:"template_row"`
	// Values are applied to the listing rows after they have been grown
	Values map[string]string `yaml:"values"`
}

// ServerConfig configures the HTTP transport
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func loadGlobalConfig() {
	configOnce.Do(func() {
		config := ConfigFromEnvironment()
		globalConfigMutex.Lock()
		globalConfig = config
		globalConfigMutex.Unlock()
	})
}

// DefaultListingValues returns the default second-pass values
func DefaultListingValues() map[string]string {
	return map[string]string{
		RelatedPartyName:          "ABC",
		RelatedPartyContactNumber: "123",
		RelatedPartyShareHolding:  "20%",
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Listing: ListingConfig{
			Marker:      DefaultListingMarker,
			TemplateRow: 1,
			Values:      DefaultListingValues(),
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 32 << 20,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
		},
	}
}

// ConfigFromEnvironment creates a configuration from environment variables.
// Values that cannot be parsed are ignored.
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	_ = config.ApplyEnvironment(os.LookupEnv)
	return config
}

// ApplyEnvironment overrides fields from DOCFILL_* variables read through
// lookup. Every unparsable value is reported; the others are still applied.
func (c *Config) ApplyEnvironment(lookup func(string) (string, bool)) error {
	errs := NewMultiError()

	// DOCFILL_LOG_LEVEL
	if val, ok := lookup("DOCFILL_LOG_LEVEL"); ok && val != "" {
		c.LogLevel = strings.ToLower(val)
	}

	// DOCFILL_LISTING_MARKER
	if val, ok := lookup("DOCFILL_LISTING_MARKER"); ok && val != "" {
		c.Listing.Marker = val
	}

	// DOCFILL_LISTING_TEMPLATE_ROW
	if val, ok := lookup("DOCFILL_LISTING_TEMPLATE_ROW"); ok && val != "" {
		if row, err := strconv.Atoi(val); err == nil {
			c.Listing.TemplateRow = row
		} else {
			errs.Add(fmt.Errorf("DOCFILL_LISTING_TEMPLATE_ROW: %w", err))
		}
	}

	// DOCFILL_ADDR
	if val, ok := lookup("DOCFILL_ADDR"); ok && val != "" {
		c.Server.Addr = val
	}

	// DOCFILL_MAX_UPLOAD_BYTES
	if val, ok := lookup("DOCFILL_MAX_UPLOAD_BYTES"); ok && val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.Server.MaxUploadBytes = size
		} else {
			errs.Add(fmt.Errorf("DOCFILL_MAX_UPLOAD_BYTES: %w", err))
		}
	}

	// DOCFILL_READ_TIMEOUT
	if val, ok := lookup("DOCFILL_READ_TIMEOUT"); ok && val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Server.ReadTimeout = d
		} else {
			errs.Add(fmt.Errorf("DOCFILL_READ_TIMEOUT: %w", err))
		}
	}

	// DOCFILL_WRITE_TIMEOUT
	if val, ok := lookup("DOCFILL_WRITE_TIMEOUT"); ok && val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Server.WriteTimeout = d
		} else {
			errs.Add(fmt.Errorf("DOCFILL_WRITE_TIMEOUT: %w", err))
		}
	}

	return errs.Err()
}

// ParseConfigYAML reads a YAML configuration. Fields missing from the input
// take their default values; unknown fields are rejected.
func ParseConfigYAML(data []byte) (*Config, error) {
	var overrides Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&overrides); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return NewConfigWithDefaults(&overrides), nil
}

// LoadConfigFile reads a YAML configuration file
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	config, err := ParseConfigYAML(data)
	if err != nil {
		return nil, WithContext(err, "load config", map[string]interface{}{"path": path})
	}
	return config, nil
}

// LoadConfig builds the effective configuration: defaults, then the YAML
// file at path (if any), then the environment. The result is validated.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		fileConfig, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		config = fileConfig
	}

	if err := config.ApplyEnvironment(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	config := overrides.Clone()

	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	if config.Listing.Marker == "" {
		config.Listing.Marker = defaults.Listing.Marker
	}
	if config.Listing.TemplateRow == 0 {
		config.Listing.TemplateRow = defaults.Listing.TemplateRow
	}
	if config.Listing.Values == nil {
		config.Listing.Values = defaults.Listing.Values
	}

	if config.Server.Addr == "" {
		config.Server.Addr = defaults.Server.Addr
	}
	if config.Server.MaxUploadBytes == 0 {
		config.Server.MaxUploadBytes = defaults.Server.MaxUploadBytes
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = defaults.Server.WriteTimeout
	}

	return config
}

// Clone returns a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	if c.Listing.Values != nil {
		clone.Listing.Values = make(map[string]string, len(c.Listing.Values))
		for k, v := range c.Listing.Values {
			clone.Listing.Values[k] = v
		}
	}
	return &clone
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	issues := &ValidationError{}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}
	if !validLogLevels[c.LogLevel] {
		issues.add("log_level", "invalid log level: %s", c.LogLevel)
	}

	if c.Listing.Marker == "" {
		issues.add("listing.marker", "marker cannot be empty")
	}
	if c.Listing.TemplateRow < 1 {
		issues.add("listing.template_row", "template row must be at least 1, got %d", c.Listing.TemplateRow)
	}
	for key := range c.Listing.Values {
		if key == "" {
			issues.add("listing.values", "placeholder cannot be empty")
		}
	}

	if c.Server.MaxUploadBytes <= 0 {
		issues.add("server.max_upload_bytes", "must be positive")
	}
	if c.Server.ReadTimeout < 0 {
		issues.add("server.read_timeout", "cannot be negative")
	}
	if c.Server.WriteTimeout < 0 {
		issues.add("server.write_timeout", "cannot be negative")
	}

	return issues.err()
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	loadGlobalConfig()

	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	return globalConfig.Clone()
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	loadGlobalConfig()

	globalConfigMutex.Lock()
	globalConfig = config.Clone()
	globalConfigMutex.Unlock()

	// Update logger based on new config (outside the lock to avoid deadlock)
	UpdateLoggerFromConfig()
}
