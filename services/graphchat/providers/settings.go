// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the persisted provider selection.
//
// Description:
//
//	Switching the active provider is a logical operation: only Active
//	changes, and the configuration of every inactive provider is
//	retained so switching back costs nothing. API keys are never
//	written to disk; they are re-resolved from the environment on load.
//
// Thread Safety: Not safe for concurrent mutation. Load/Save from one
// goroutine.
type Settings struct {
	// Active names the provider kind currently in use.
	Active string `yaml:"active"`

	// Providers holds the configuration for every provider the user
	// has ever configured, keyed by kind.
	Providers map[string]ProviderConfig `yaml:"providers"`
}

// ActiveConfig returns the active provider's configuration with
// credentials re-attached from the environment.
func (s *Settings) ActiveConfig() (ProviderConfig, error) {
	cfg, ok := s.Providers[s.Active]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("active provider %q has no configuration", s.Active)
	}
	attachCredentials(&cfg)
	return cfg, nil
}

// SetActive switches the active provider, storing cfg under its kind.
// Existing entries for other kinds are untouched.
func (s *Settings) SetActive(cfg ProviderConfig) {
	if s.Providers == nil {
		s.Providers = make(map[string]ProviderConfig)
	}
	s.Providers[cfg.Kind] = cfg
	s.Active = cfg.Kind
}

// LoadSettings reads the settings file, falling back to an environment
// derived default when the file does not exist.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := ConfigFromEnv()
			s := &Settings{}
			s.SetActive(cfg)
			return s, nil
		}
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	if s.Providers == nil {
		s.Providers = make(map[string]ProviderConfig)
	}
	return &s, nil
}

// SaveSettings writes the settings file, creating parent directories as
// needed. Credentials are excluded by the yaml tags on ProviderConfig.
func SaveSettings(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing settings %s: %w", path, err)
	}
	return nil
}

// DefaultSettingsPath is where settings live unless overridden.
func DefaultSettingsPath() string {
	if p := os.Getenv("GITNEXUS_SETTINGS"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gitnexus/settings.yaml"
	}
	return filepath.Join(home, ".gitnexus", "settings.yaml")
}

// attachCredentials re-resolves API keys from the environment for a
// loaded configuration.
func attachCredentials(cfg *ProviderConfig) {
	switch cfg.Kind {
	case ProviderOpenAI:
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	case ProviderAnthropic:
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}
