// Package config loads and stores the CLI settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults for settings that were never set.
const (
	DefaultClientID = "31359c7f-bd7e-475c-86db-fdb8c937548e"
	DefaultTenant   = "common"
	DefaultOutput   = "json"
)

// Setting keys.
const (
	KeyOutput                 = "output"
	KeyErrorOutput            = "errorOutput"
	KeyAutoOpenLinksInBrowser = "autoOpenLinksInBrowser"
	KeyShowHelpOnFailure      = "showHelpOnFailure"
	KeyCSVHeader              = "csvHeader"
	KeyClientID               = "clientId"
	KeyTenant                 = "tenant"
	KeyAuthType               = "authType"
)

// ErrUnknownKey is returned for keys that are not settings.
var ErrUnknownKey = errors.New("unknown setting")

// Settings are the user's persisted preferences with environment overrides applied.
type Settings struct {
	Output                 string
	ErrorOutput            string
	AutoOpenLinksInBrowser bool
	ShowHelpOnFailure      bool
	CSVHeader              bool
	ClientID               string
	Tenant                 string
	AuthType               string

	// ClientSecret only ever comes from M365_CLIENT_SECRET.
	ClientSecret string

	dir  string
	file fileConfig
}

// fileConfig mirrors settings.yaml. Pointers tell unset keys from zero values.
type fileConfig struct {
	Output                 string `yaml:"output,omitempty"`
	ErrorOutput            string `yaml:"errorOutput,omitempty"`
	AutoOpenLinksInBrowser *bool  `yaml:"autoOpenLinksInBrowser,omitempty"`
	ShowHelpOnFailure      *bool  `yaml:"showHelpOnFailure,omitempty"`
	CSVHeader              *bool  `yaml:"csvHeader,omitempty"`
	ClientID               string `yaml:"clientId,omitempty"`
	Tenant                 string `yaml:"tenant,omitempty"`
	AuthType               string `yaml:"authType,omitempty"`
}

type setting struct {
	allowed []string
	boolean bool
	get     func(*fileConfig) string
	set     func(*fileConfig, string)
}

var settings = map[string]setting{
	KeyOutput: {
		allowed: []string{"json", "text", "csv", "md", "none"},
		get:     func(f *fileConfig) string { return f.Output },
		set:     func(f *fileConfig, v string) { f.Output = v },
	},
	KeyErrorOutput: {
		allowed: []string{"stderr", "stdout"},
		get:     func(f *fileConfig) string { return f.ErrorOutput },
		set:     func(f *fileConfig, v string) { f.ErrorOutput = v },
	},
	KeyAutoOpenLinksInBrowser: {
		boolean: true,
		get:     func(f *fileConfig) string { return boolString(f.AutoOpenLinksInBrowser) },
		set:     func(f *fileConfig, v string) { f.AutoOpenLinksInBrowser = boolPtr(v) },
	},
	KeyShowHelpOnFailure: {
		boolean: true,
		get:     func(f *fileConfig) string { return boolString(f.ShowHelpOnFailure) },
		set:     func(f *fileConfig, v string) { f.ShowHelpOnFailure = boolPtr(v) },
	},
	KeyCSVHeader: {
		boolean: true,
		get:     func(f *fileConfig) string { return boolString(f.CSVHeader) },
		set:     func(f *fileConfig, v string) { f.CSVHeader = boolPtr(v) },
	},
	KeyClientID: {
		get: func(f *fileConfig) string { return f.ClientID },
		set: func(f *fileConfig, v string) { f.ClientID = v },
	},
	KeyTenant: {
		get: func(f *fileConfig) string { return f.Tenant },
		set: func(f *fileConfig, v string) { f.Tenant = v },
	},
	KeyAuthType: {
		allowed: []string{"deviceCode", "secret"},
		get:     func(f *fileConfig) string { return f.AuthType },
		set:     func(f *fileConfig, v string) { f.AuthType = v },
	},
}

// Keys lists all setting names in alphabetical order.
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultDir returns the directory holding settings and the connection:
// M365_CONFIG_DIR when set, ~/.m365 otherwise.
func DefaultDir() string {
	if dir := os.Getenv("M365_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".m365"
	}
	return filepath.Join(home, ".m365")
}

// Load reads <dir>/settings.yaml, applies defaults and environment
// overrides. A missing file is not an error. An empty dir means DefaultDir.
func Load(dir string) (*Settings, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	s := &Settings{dir: dir}

	data, err := os.ReadFile(s.path())
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &s.file); err != nil {
			return nil, fmt.Errorf("parse settings file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	s.resolve()
	return s, nil
}

// Dir is the directory the settings were loaded from.
func (s *Settings) Dir() string {
	return s.dir
}

func (s *Settings) path() string {
	return filepath.Join(s.dir, "settings.yaml")
}

func (s *Settings) resolve() {
	f := s.file

	s.Output = orDefault(f.Output, DefaultOutput)
	s.ErrorOutput = orDefault(f.ErrorOutput, "stderr")
	s.AutoOpenLinksInBrowser = f.AutoOpenLinksInBrowser != nil && *f.AutoOpenLinksInBrowser
	s.ShowHelpOnFailure = f.ShowHelpOnFailure != nil && *f.ShowHelpOnFailure
	s.CSVHeader = f.CSVHeader == nil || *f.CSVHeader
	s.ClientID = orDefault(f.ClientID, DefaultClientID)
	s.Tenant = orDefault(f.Tenant, DefaultTenant)
	s.AuthType = orDefault(f.AuthType, "deviceCode")

	if v := os.Getenv("M365_OUTPUT"); v != "" {
		s.Output = v
	}
	if v := os.Getenv("M365_CLIENT_ID"); v != "" {
		s.ClientID = v
	}
	if v := os.Getenv("M365_TENANT"); v != "" {
		s.Tenant = v
	}
	s.ClientSecret = os.Getenv("M365_CLIENT_SECRET")
}

// Get returns the value stored in the settings file for key, or "" when unset.
func (s *Settings) Get(key string) (string, error) {
	def, ok := settings[key]
	if !ok {
		return "", unknownKey(key)
	}
	return def.get(&s.file), nil
}

// Stored returns every key that has a value in the settings file.
func (s *Settings) Stored() map[string]string {
	out := make(map[string]string)
	for key, def := range settings {
		if v := def.get(&s.file); v != "" {
			out[key] = v
		}
	}
	return out
}

// Set validates and stores value for key, then writes the settings file.
func (s *Settings) Set(key, value string) error {
	def, ok := settings[key]
	if !ok {
		return unknownKey(key)
	}
	if def.boolean {
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%s is not a valid value for %s. Allowed values are true|false", value, key)
		}
	}
	if len(def.allowed) > 0 && !contains(def.allowed, value) {
		return fmt.Errorf("%s is not a valid value for %s. Allowed values are %s", value, key, strings.Join(def.allowed, "|"))
	}
	def.set(&s.file, value)
	s.resolve()
	return s.save()
}

// Reset clears key, or every key when key is empty, and writes the settings file.
func (s *Settings) Reset(key string) error {
	if key == "" {
		s.file = fileConfig{}
	} else {
		def, ok := settings[key]
		if !ok {
			return unknownKey(key)
		}
		def.set(&s.file, "")
	}
	s.resolve()
	return s.save()
}

func (s *Settings) save() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(&s.file)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

func unknownKey(key string) error {
	return fmt.Errorf("%w: '%s' is not a valid setting. Allowed values: %s", ErrUnknownKey, key, strings.Join(Keys(), ", "))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func boolString(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func boolPtr(v string) *bool {
	if v == "" {
		return nil
	}
	b, _ := strconv.ParseBool(v)
	return &b
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
