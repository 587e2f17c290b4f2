// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package embed

import (
	"reflect"
	"testing"
)

func TestVectorStoreRoundTrip(t *testing.T) {
	store, err := OpenVectorStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenVectorStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	vec := []float32{0.25, -1.5, 3}
	store.Put("all-minilm:l6-v2", "hello world", vec)

	got := store.Get("all-minilm:l6-v2", "hello world")
	if !reflect.DeepEqual(got, vec) {
		t.Errorf("Get = %v, want %v", got, vec)
	}
}

func TestVectorStoreMiss(t *testing.T) {
	store, err := OpenVectorStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenVectorStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if got := store.Get("all-minilm:l6-v2", "never stored"); got != nil {
		t.Errorf("Get = %v, want nil miss", got)
	}
}

func TestVectorStoreKeyedByModel(t *testing.T) {
	store, err := OpenVectorStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenVectorStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	store.Put("model-a", "same text", []float32{1})
	if got := store.Get("model-b", "same text"); got != nil {
		t.Errorf("Get across models = %v, want nil", got)
	}
}

func TestVectorStoreNilReceiver(t *testing.T) {
	var store *VectorStore
	store.Put("m", "t", []float32{1})
	if got := store.Get("m", "t"); got != nil {
		t.Errorf("nil store Get = %v, want nil", got)
	}
}
