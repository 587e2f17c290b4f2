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
	"log/slog"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
	"github.com/PurpleNewNew/GitNexus/services/graphchat/llm"
)

// CreateChatModel constructs the chat model client for a configuration.
//
// Description:
//
//	The single place provider kinds map to concrete clients. Unknown
//	kinds and incomplete configurations fail here, before any request
//	is made; there is no lazy validation at call time.
//
// Outputs:
//   - llm.ChatModel: The constructed client.
//   - error: Wraps graphchat.ErrUnsupportedProvider for unknown kinds.
//
// Thread Safety: Safe for concurrent use.
func CreateChatModel(cfg ProviderConfig) (llm.ChatModel, error) {
	if err := cfg.Validate(); err != nil {
		if cfg.Kind != ProviderOpenAI && cfg.Kind != ProviderOllama && cfg.Kind != ProviderAnthropic {
			return nil, fmt.Errorf("%w: %q (valid: %v)", graphchat.ErrUnsupportedProvider, cfg.Kind, ValidProviders)
		}
		return nil, err
	}

	slog.Info("initializing chat model",
		slog.String("provider", cfg.Kind),
		slog.String("model", cfg.Model))

	switch cfg.Kind {
	case ProviderOpenAI:
		return llm.NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case ProviderOllama:
		return llm.NewOllamaClient(cfg.Model, cfg.BaseURL), nil
	case ProviderAnthropic:
		return llm.NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: %v)", graphchat.ErrUnsupportedProvider, cfg.Kind, ValidProviders)
	}
}
