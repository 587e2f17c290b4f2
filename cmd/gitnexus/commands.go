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
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/PurpleNewNew/GitNexus/services/graphchat/agent"
	"github.com/PurpleNewNew/GitNexus/services/graphchat/embed"
	"github.com/PurpleNewNew/GitNexus/services/graphchat/graph"
	"github.com/PurpleNewNew/GitNexus/services/graphchat/providers"
	"github.com/PurpleNewNew/GitNexus/services/graphchat/server"
	"github.com/PurpleNewNew/GitNexus/services/graphchat/tools"
)

// buildMediator wires the full stack: provider client, graph client,
// embedder, tool registry, mediator. The returned cleanup closes the
// vector store.
func buildMediator(ctx context.Context, logger *slog.Logger) (*agent.Mediator, func(), error) {
	settings, err := providers.LoadSettings(resolveSettingsPath())
	if err != nil {
		return nil, nil, err
	}
	cfg, err := settings.ActiveConfig()
	if err != nil {
		return nil, nil, err
	}
	model, err := providers.CreateChatModel(cfg)
	if err != nil {
		return nil, nil, err
	}

	var store *embed.VectorStore
	if dir := os.Getenv("GITNEXUS_CACHE_DIR"); dir != "" {
		store, err = embed.OpenVectorStore(filepath.Join(dir, "vectors"), logger)
		if err != nil {
			logger.Warn("vector cache unavailable, continuing without persistence",
				slog.String("error", err.Error()))
			store = nil
		}
	}

	embedder := embed.NewService(store, logger)
	if err := embedder.Init(ctx); err != nil {
		// Degraded mode: semantic tools explain themselves; structural
		// queries still work.
		logger.Warn("embedding service not ready, semantic tools disabled",
			slog.String("error", err.Error()))
	}

	client := graph.NewClient("", logger)
	searcher := graph.NewSearcher(client, embedder)
	registry := tools.NewDefaultRegistry(client, searcher, embedder, client, logger)
	mediator := agent.NewMediator(model, registry, logger, agent.DefaultMaxSteps)

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing vector store", slog.String("error", err.Error()))
		}
	}
	return mediator, cleanup, nil
}

// runServe starts the HTTP chat API.
func runServe(_ *cobra.Command, _ []string) error {
	logger := slog.Default()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mediator, cleanup, err := buildMediator(ctx, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	server.RegisterRoutes(router, server.NewHandlers(mediator, logger))

	addr := fmt.Sprintf(":%d", servePort)
	logger.Info("gitnexus listening", slog.String("addr", addr))

	errCh := make(chan error, 1)
	go func() { errCh <- router.Run(addr) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	}
}

// runAsk answers a single question and prints the result.
func runAsk(_ *cobra.Command, args []string) error {
	logger := slog.Default()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mediator, cleanup, err := buildMediator(ctx, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	answer, err := mediator.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

// runProvider shows or switches the active provider. Switching only
// rewrites the active pointer; other providers' settings are retained.
func runProvider(_ *cobra.Command, args []string) error {
	path := resolveSettingsPath()
	settings, err := providers.LoadSettings(path)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		fmt.Printf("Active provider: %s\n", settings.Active)
		for kind, cfg := range settings.Providers {
			marker := " "
			if kind == settings.Active {
				marker = "*"
			}
			fmt.Printf("%s %s (model: %s)\n", marker, kind, cfg.Model)
		}
		return nil
	}

	kind := args[0]
	cfg, ok := settings.Providers[kind]
	if !ok {
		// First use of this kind: seed from the environment.
		if err := os.Setenv("GITNEXUS_PROVIDER", kind); err != nil {
			return err
		}
		cfg = providers.ConfigFromEnv()
	}
	cfg.Kind = kind
	if err := cfg.Validate(); err != nil {
		return err
	}
	settings.SetActive(cfg)
	if err := providers.SaveSettings(path, settings); err != nil {
		return err
	}
	fmt.Printf("Active provider set to %s (model: %s)\n", kind, cfg.Model)
	return nil
}

// resolveSettingsPath prefers the --settings flag over the default.
func resolveSettingsPath() string {
	if settingsPath != "" {
		return settingsPath
	}
	return providers.DefaultSettingsPath()
}
