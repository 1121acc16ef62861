// Package config loads the search bar configuration: behavior options, the
// tag catalog and where suggestions come from.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
	"github.com/bascanada/smartsearch/pkg/query"
)

// Sentinel errors returned by Load so callers can detect exact failure
// modes using errors.Is().
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("invalid config content")
	ErrConfigInvalid  = errors.New("invalid config")
)

const (
	// EnvConfigPath is the environment variable used to override the config path
	EnvConfigPath = "SMARTSEARCH_CONFIG"

	// DefaultConfigDir is the directory under the user's home where the config
	// file is expected when no explicit path or env var is provided.
	DefaultConfigDir = ".smartsearch"

	// DefaultConfigFile is the config filename to look for in the default dir.
	DefaultConfigFile = "config.yaml"
)

// Normalization modes applied to key search terms
const (
	NormalizeNone  = "none"
	NormalizeLower = "lower"
)

type Remote struct {
	URL      string            `json:"url" yaml:"url"`
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Params   map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Insecure bool              `json:"insecure,omitempty" yaml:"insecure,omitempty"`
}

type Recent struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	Max  int    `json:"max,omitempty" yaml:"max,omitempty"`
}

type TagConfig struct {
	Name               string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description        string   `json:"description,omitempty" yaml:"description,omitempty"`
	Kind               string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Values             []string `json:"values,omitempty" yaml:"values,omitempty"`
	Predefined         bool     `json:"predefined,omitempty" yaml:"predefined,omitempty"`
	MaxSuggestedValues int      `json:"maxSuggestedValues,omitempty" yaml:"maxSuggestedValues,omitempty"`
}

type DefaultItem struct {
	Value       string `json:"value" yaml:"value"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type Config struct {
	DefaultQuery          string `json:"defaultQuery,omitempty" yaml:"defaultQuery,omitempty"`
	Placeholder           string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	MaxQueryLength        int    `json:"maxQueryLength,omitempty" yaml:"maxQueryLength,omitempty"`
	MaxSearchItems        int    `json:"maxSearchItems,omitempty" yaml:"maxSearchItems,omitempty"`
	DisplayRecentSearches bool   `json:"displayRecentSearches,omitempty" yaml:"displayRecentSearches,omitempty"`
	ExcludeEnvironment    bool   `json:"excludeEnvironment,omitempty" yaml:"excludeEnvironment,omitempty"`
	Normalize             string `json:"normalize,omitempty" yaml:"normalize,omitempty"`
	FuzzyKeys             bool   `json:"fuzzyKeys,omitempty" yaml:"fuzzyKeys,omitempty"`
	UseFormWrapper        bool   `json:"useFormWrapper,omitempty" yaml:"useFormWrapper,omitempty"`
	SaveScope             string `json:"saveScope,omitempty" yaml:"saveScope,omitempty"`
	// Debounce is a Go duration string such as "300ms"
	Debounce string `json:"debounce,omitempty" yaml:"debounce,omitempty"`
	CacheTTL string `json:"cacheTtl,omitempty" yaml:"cacheTtl,omitempty"`
	DocsURL  string `json:"docsUrl,omitempty" yaml:"docsUrl,omitempty"`

	Remote       *Remote              `json:"remote,omitempty" yaml:"remote,omitempty"`
	Recent       *Recent              `json:"recent,omitempty" yaml:"recent,omitempty"`
	Tags         map[string]TagConfig `json:"tags" yaml:"tags"`
	DefaultItems []DefaultItem        `json:"defaultItems,omitempty" yaml:"defaultItems,omitempty"`
}

// ResolvePath picks the config file: the explicit path, then the
// SMARTSEARCH_CONFIG env var, then $HOME/.smartsearch/config.yaml.
func ResolvePath(configPath string) (string, error) {
	if strings.TrimSpace(configPath) != "" {
		return configPath, nil
	}
	if envPath := strings.TrimSpace(os.Getenv(EnvConfigPath)); envPath != "" {
		return envPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Load reads and validates the config at configPath, resolved with
// ResolvePath. It returns the path that was read.
func Load(configPath string) (*Config, string, error) {
	path, err := ResolvePath(configPath)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, path, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, path, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, path, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}

// Parse decodes a config by extension. Unknown extensions try JSON then
// YAML.
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing JSON: %v", ErrConfigParse, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing YAML: %v", ErrConfigParse, err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			cfg = Config{}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("%w: unsupported or invalid config format", ErrConfigParse)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem found in the config at once.
func (c *Config) Validate() error {
	problems := []string{}

	if c.MaxQueryLength < 0 {
		problems = append(problems, "maxQueryLength must not be negative")
	}
	if c.MaxSearchItems < 0 {
		problems = append(problems, "maxSearchItems must not be negative")
	}
	switch c.Normalize {
	case "", NormalizeNone, NormalizeLower:
	default:
		problems = append(problems, fmt.Sprintf("normalize must be %q or %q, got %q", NormalizeNone, NormalizeLower, c.Normalize))
	}
	if _, err := parseDuration(c.Debounce); err != nil {
		problems = append(problems, fmt.Sprintf("debounce: %v", err))
	}
	if _, err := parseDuration(c.CacheTTL); err != nil {
		problems = append(problems, fmt.Sprintf("cacheTtl: %v", err))
	}
	if c.Remote != nil && strings.TrimSpace(c.Remote.URL) == "" {
		problems = append(problems, "remote is missing required option 'url'")
	}

	for _, key := range sortedKeys(c.Tags) {
		if strings.ContainsAny(key, " \t:") {
			problems = append(problems, fmt.Sprintf("tag '%s' has an invalid key", key))
		}
		if _, ok := parseKind(c.Tags[key].Kind); !ok {
			problems = append(problems, fmt.Sprintf("tag '%s' has unknown kind '%s'", key, c.Tags[key].Kind))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrConfigInvalid, strings.Join(problems, "\n  "))
	}
	return nil
}

// DebounceDuration is the fetch debounce, zero when unset.
func (c *Config) DebounceDuration() time.Duration {
	d, _ := parseDuration(c.Debounce)
	return d
}

// CacheTTLDuration is the tag value cache lifetime, zero when unset.
func (c *Config) CacheTTLDuration() time.Duration {
	d, _ := parseDuration(c.CacheTTL)
	return d
}

// CatalogTags converts the configured tags, sorted by key.
func (c *Config) CatalogTags() []autocomplete.Tag {
	tags := make([]autocomplete.Tag, 0, len(c.Tags))
	for _, key := range sortedKeys(c.Tags) {
		tc := c.Tags[key]
		kind, _ := parseKind(tc.Kind)
		tags = append(tags, autocomplete.Tag{
			Key:                key,
			Name:               tc.Name,
			Description:        tc.Description,
			Kind:               kind,
			Values:             tc.Values,
			Predefined:         tc.Predefined,
			MaxSuggestedValues: tc.MaxSuggestedValues,
		})
	}
	return tags
}

// NormalizeFunc returns the key term normalization, nil for none.
func (c *Config) NormalizeFunc() func(string) string {
	if c.Normalize == NormalizeLower {
		return strings.ToLower
	}
	return nil
}

// Write saves the config as YAML, creating the parent directory.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func parseDuration(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

func parseKind(kind string) (query.ValueKind, bool) {
	switch strings.ToLower(kind) {
	case "", "string", "text":
		return query.KindString, true
	case "number":
		return query.KindNumber, true
	case "boolean", "bool":
		return query.KindBoolean, true
	case "date":
		return query.KindDate, true
	}
	return query.KindString, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
