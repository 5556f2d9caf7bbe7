package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultProfile = "default"

// settings are the connection and output options after resolution.
type settings struct {
	URL     string
	APIKey  string
	Profile string
	Format  string
}

// profile holds connection settings for one server.
type profile struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// configFile is the layout of ~/.lifeos/config.yaml.
type configFile struct {
	Profiles      map[string]profile `yaml:"profiles"`
	ActiveProfile string             `yaml:"active_profile"`
}

// lookup returns the named profile, or the active one when name is empty.
func (f *configFile) lookup(name string) (profile, bool) {
	if f == nil {
		return profile{}, false
	}

	if name == "" {
		name = f.ActiveProfile
	}

	if name == "" {
		name = defaultProfile
	}

	p, ok := f.Profiles[name]

	return p, ok
}

// defaultConfigPath honours LIFEOS_CONFIG, then ~/.lifeos/config.yaml.
func defaultConfigPath() string {
	if p := os.Getenv("LIFEOS_CONFIG"); p != "" {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".lifeos", "config.yaml")
}

// loadConfigFile returns nil without error when the file does not exist.
func loadConfigFile(path string) (*configFile, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// resolveSettings applies precedence: explicit flag, then environment, then
// config profile, then the flag default.
func resolveSettings(s settings, urlSet, keySet bool, getenv func(string) string, cfg *configFile) settings {
	p, _ := cfg.lookup(s.Profile)

	if !urlSet {
		switch {
		case getenv("LIFEOS_URL") != "":
			s.URL = getenv("LIFEOS_URL")
		case p.URL != "":
			s.URL = p.URL
		}
	}

	if !keySet {
		switch {
		case getenv("LIFEOS_API_KEY") != "":
			s.APIKey = getenv("LIFEOS_API_KEY")
		case p.APIKey != "":
			s.APIKey = p.APIKey
		}
	}

	return s
}

// saveProfile writes p under name, keeping other profiles, and makes it
// the active profile.
func saveProfile(path, name string, p profile) error {
	cfg, err := loadConfigFile(path)
	if err != nil {
		return err
	}

	if cfg == nil {
		cfg = &configFile{}
	}

	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]profile)
	}

	cfg.Profiles[name] = p
	cfg.ActiveProfile = name

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}
