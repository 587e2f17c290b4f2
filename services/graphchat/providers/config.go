// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package providers selects and constructs chat model clients.
package providers

import (
	"fmt"
	"log/slog"
	"os"
)

// Provider kind constants. The set is closed: anything else fails
// construction before a single request is made.
const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// ValidProviders lists the supported provider kinds for error messages.
var ValidProviders = []string{ProviderOpenAI, ProviderOllama, ProviderAnthropic}

// ProviderConfig holds everything needed to construct one chat model
// client. Which fields matter depends on Kind: Ollama ignores APIKey,
// the hosted providers require it.
type ProviderConfig struct {
	// Kind is one of the Provider* constants.
	Kind string `yaml:"kind"`

	// Model is the provider-specific model identifier.
	Model string `yaml:"model"`

	// BaseURL overrides the provider's default endpoint. Empty uses
	// the default.
	BaseURL string `yaml:"base_url,omitempty"`

	// APIKey authenticates against hosted providers. Never persisted
	// with the settings file; resolved from the environment at load.
	APIKey string `yaml:"-"`
}

// ConfigFromEnv builds a ProviderConfig from environment variables.
//
// Description:
//
//	GITNEXUS_PROVIDER selects the kind (default: ollama, the only
//	provider that works without credentials). Model and endpoint come
//	from provider-specific variables with sensible defaults.
//
// Thread Safety: Safe for concurrent use.
func ConfigFromEnv() ProviderConfig {
	kind := os.Getenv("GITNEXUS_PROVIDER")
	if kind == "" {
		kind = ProviderOllama
		slog.Debug("GITNEXUS_PROVIDER not set, defaulting to ollama")
	}

	cfg := ProviderConfig{Kind: kind}
	switch kind {
	case ProviderOpenAI:
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		cfg.Model = envOr("OPENAI_MODEL", "gpt-4o-mini")
		cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
	case ProviderAnthropic:
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		cfg.Model = envOr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514")
		cfg.BaseURL = os.Getenv("ANTHROPIC_BASE_URL")
	case ProviderOllama:
		cfg.Model = envOr("OLLAMA_MODEL", "qwen2.5-coder:7b")
		cfg.BaseURL = envOr("OLLAMA_HOST", "")
	}
	return cfg
}

// Validate checks the configuration is complete enough to construct a
// client.
func (c ProviderConfig) Validate() error {
	switch c.Kind {
	case ProviderOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("openai: API key is missing (OPENAI_API_KEY)")
		}
	case ProviderAnthropic:
		if c.APIKey == "" {
			return fmt.Errorf("anthropic: API key is missing (ANTHROPIC_API_KEY)")
		}
	case ProviderOllama:
		// No credentials required.
	default:
		return fmt.Errorf("unsupported provider: %q (valid: %v)", c.Kind, ValidProviders)
	}
	if c.Model == "" {
		return fmt.Errorf("%s: model is not configured", c.Kind)
	}
	return nil
}

// envOr reads an environment variable with a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
