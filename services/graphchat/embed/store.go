// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package embed produces embedding vectors for query text via an HTTP
// embedding backend, with optional on-disk caching.
package embed

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

// VectorStore persists embedding vectors between process restarts.
//
// Description:
//
//	BadgerDB-backed cache keyed by SHA256(model|text). Query text repeats
//	heavily across a conversation (the model reuses its own phrasing), so
//	a hit skips an embedding round-trip entirely. A nil *VectorStore is
//	valid and disables persistence.
//
// Thread Safety: Safe for concurrent use; Badger handles locking.
type VectorStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenVectorStore opens (or creates) the cache at dir.
func OpenVectorStore(dir string, logger *slog.Logger) (*VectorStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening vector store at %s: %w", dir, err)
	}
	return &VectorStore{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (s *VectorStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the cached vector for (model, text), or nil on a miss.
// Store errors are logged and treated as misses; the cache must never
// make embedding worse than having no cache.
func (s *VectorStore) Get(model, text string) []float32 {
	if s == nil || s.db == nil {
		return nil
	}
	var vec []float32
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(model, text))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &vec)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			s.logger.Warn("vector cache read failed", slog.String("error", err.Error()))
		}
		return nil
	}
	return vec
}

// Put stores a vector for (model, text). Failures are logged, not
// returned.
func (s *VectorStore) Put(model, text string, vec []float32) {
	if s == nil || s.db == nil {
		return
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(model, text), data)
	})
	if err != nil {
		s.logger.Warn("vector cache write failed", slog.String("error", err.Error()))
	}
}

// cacheKey derives the store key for (model, text). The model is part of
// the key so switching embedding models invalidates naturally.
func cacheKey(model, text string) []byte {
	sum := sha256.Sum256([]byte(model + "|" + text))
	return []byte("vec:" + hex.EncodeToString(sum[:]))
}
