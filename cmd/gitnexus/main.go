// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command gitnexus runs the code knowledge graph chat service.
//
// Usage:
//
//	gitnexus serve                 # start the HTTP chat API
//	gitnexus ask "question..."     # one-shot question on the CLI
//	gitnexus provider ollama       # switch the active chat provider
//
// Configuration comes from the environment:
//
//	GITNEXUS_PROVIDER    openai | ollama | anthropic (default: ollama)
//	GRAPH_ENGINE_URL     graph engine base URL (default: http://localhost:9080)
//	EMBEDDING_SERVICE_URL, EMBEDDING_ACCELERATED_URL, EMBEDDING_MODEL
//	OPENAI_API_KEY, ANTHROPIC_API_KEY, OLLAMA_HOST and friends
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// servePort holds the --port flag value for the serve command.
var servePort int

// settingsPath holds the --settings flag value.
var settingsPath string

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevelFromEnv(),
	})))

	root := &cobra.Command{
		Use:   "gitnexus",
		Short: "Chat with your code knowledge graph",
	}
	root.PersistentFlags().StringVar(&settingsPath, "settings", "", "settings file path (default: ~/.gitnexus/settings.yaml)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP chat API",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "listen port")

	askCmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	providerCmd := &cobra.Command{
		Use:   "provider [kind]",
		Short: "Show or switch the active chat provider",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProvider,
	}

	root.AddCommand(serveCmd, askCmd, providerCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// logLevelFromEnv maps GITNEXUS_LOG_LEVEL onto slog levels.
func logLevelFromEnv() slog.Level {
	switch os.Getenv("GITNEXUS_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
