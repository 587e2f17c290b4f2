// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PurpleNewNew/GitNexus/services/graphchat/providers"
)

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run("level_"+tt.value, func(t *testing.T) {
			t.Setenv("GITNEXUS_LOG_LEVEL", tt.value)
			assert.Equal(t, tt.want, logLevelFromEnv())
		})
	}
}

func TestResolveSettingsPathFlag(t *testing.T) {
	orig := settingsPath
	t.Cleanup(func() { settingsPath = orig })

	settingsPath = "/tmp/flagged.yaml"
	assert.Equal(t, "/tmp/flagged.yaml", resolveSettingsPath())

	settingsPath = ""
	t.Setenv("GITNEXUS_SETTINGS", "/tmp/from-env.yaml")
	assert.Equal(t, "/tmp/from-env.yaml", resolveSettingsPath())
}

func TestRunProviderSwitch(t *testing.T) {
	orig := settingsPath
	t.Cleanup(func() { settingsPath = orig })
	settingsPath = filepath.Join(t.TempDir(), "settings.yaml")

	t.Setenv("GITNEXUS_PROVIDER", "ollama")
	t.Setenv("OLLAMA_MODEL", "qwen2.5-coder:7b")

	// Seed the file with the default provider.
	require.NoError(t, runProvider(nil, []string{"ollama"}))

	// Switching to a provider without credentials must fail validation
	// and leave the settings untouched.
	err := runProvider(nil, []string{"openai"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	settings, err := providers.LoadSettings(settingsPath)
	require.NoError(t, err)
	assert.Equal(t, "ollama", settings.Active)

	// With credentials present the switch persists.
	t.Setenv("OPENAI_API_KEY", "sk-test")
	require.NoError(t, runProvider(nil, []string{"openai"}))

	settings, err = providers.LoadSettings(settingsPath)
	require.NoError(t, err)
	assert.Equal(t, "openai", settings.Active)
	assert.Contains(t, settings.Providers, "ollama")
}

func TestRunProviderUnknownKind(t *testing.T) {
	orig := settingsPath
	t.Cleanup(func() { settingsPath = orig })
	settingsPath = filepath.Join(t.TempDir(), "settings.yaml")
	t.Setenv("GITNEXUS_PROVIDER", "ollama")

	err := runProvider(nil, []string{"groq"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}
