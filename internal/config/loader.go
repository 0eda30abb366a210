package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".wikicrawl.yml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML form of the crawl configuration. The four settings the
// crawler cannot guess are pointers: a nil pointer means the key was absent,
// which Resolve reports as a construction-time error naming the key. A YAML
// value of the wrong type fails unmarshalling, which likewise surfaces at
// construction time.
type File struct {
	// RespectRobotsTxt enables robots.txt compliance. Required.
	RespectRobotsTxt *bool `yaml:"respect_robots_txt"`

	// UserAgent identifies the crawler in requests and robots.txt
	// evaluation. Required.
	UserAgent *string `yaml:"user_agent"`

	// DefaultDelaySeconds is the per-domain request spacing. Required.
	DefaultDelaySeconds *float64 `yaml:"default_delay_seconds"`

	// TargetNamespaces restricts link expansion by wiki namespace.
	// Required; an explicit empty list accepts all namespaces.
	TargetNamespaces *[]string `yaml:"target_namespaces"`

	// TimeoutSeconds overrides the per-request timeout.
	TimeoutSeconds *int `yaml:"timeout_seconds,omitempty"`

	// MaxRetries overrides the retry bound for retriable statuses.
	MaxRetries *int `yaml:"max_retries,omitempty"`

	// ExcludePatterns are substrings that disqualify discovered links.
	ExcludePatterns []string `yaml:"exclude_patterns,omitempty"`

	// SaveStateEveryNPages overrides the checkpoint cadence.
	SaveStateEveryNPages *int `yaml:"save_state_every_n_pages,omitempty"`

	// DataDir overrides the workspace root directory.
	DataDir *string `yaml:"data_dir,omitempty"`

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Load reads and parses a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// handle this based on whether the path was explicitly user-specified.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}

	return &f, nil
}

// Find searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. .wikicrawl.yml in the current directory
//  3. The XDG config directory (~/.config/wikicrawl/.wikicrawl.yml)
//  4. .wikicrawl.yml in the user's home directory
//
// Returns the path if found, or an empty string otherwise.
func Find(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), DefaultConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Resolve turns the file form into a validated Config, applying defaults
// for absent optional settings and rejecting absent required ones.
func Resolve(f *File) (*Config, error) {
	if f == nil {
		return nil, errors.New("configuration cannot be nil")
	}

	switch {
	case f.RespectRobotsTxt == nil:
		return nil, ErrMissingRespectRobots
	case f.UserAgent == nil:
		return nil, ErrMissingUserAgent
	case f.DefaultDelaySeconds == nil:
		return nil, ErrMissingDefaultDelay
	case f.TargetNamespaces == nil:
		return nil, ErrMissingTargetNamespaces
	}

	cfg := NewConfig()
	cfg.RespectRobots = *f.RespectRobotsTxt
	cfg.UserAgent = *f.UserAgent
	cfg.DefaultDelay = time.Duration(*f.DefaultDelaySeconds * float64(time.Second))
	cfg.TargetNamespaces = *f.TargetNamespaces
	if cfg.TargetNamespaces == nil {
		cfg.TargetNamespaces = []string{}
	}

	if f.TimeoutSeconds != nil {
		cfg.Timeout = time.Duration(*f.TimeoutSeconds) * time.Second
	}
	if f.MaxRetries != nil {
		cfg.MaxRetries = *f.MaxRetries
	}
	if f.ExcludePatterns != nil {
		cfg.ExcludePatterns = f.ExcludePatterns
	}
	if f.SaveStateEveryNPages != nil {
		cfg.SaveStateEvery = *f.SaveStateEveryNPages
	}
	if f.DataDir != nil {
		cfg.DataDir = *f.DataDir
	}
	if len(f.Headers) > 0 {
		cfg.Headers = f.Headers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
