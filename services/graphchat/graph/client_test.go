// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
)

func TestExecuteQueryMapsRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/query" {
			t.Errorf("path = %q, want /v1/query", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rows": [
			{"fields": {"name": "Router", "count": 3}},
			{"values": ["main.go", 12]}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	rows, err := client.ExecuteQuery(context.Background(), "MATCH (n) RETURN n")
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].StringField("name", 0) != "Router" {
		t.Errorf("keyed row name = %q", rows[0].StringField("name", 0))
	}
	if rows[1].StringField("", 0) != "main.go" {
		t.Errorf("positional row[0] = %q", rows[1].StringField("", 0))
	}
}

func TestExecuteQueryEngineError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"rows": null, "error": {"kind": "Parser exception", "message": "unexpected token RETRUN"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.ExecuteQuery(context.Background(), "RETRUN 1")
	var qerr *graphchat.QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("err = %v, want *QueryError", err)
	}
	if qerr.Kind != "Parser exception" {
		t.Errorf("Kind = %q, want engine-reported kind", qerr.Kind)
	}
	if qerr.Message != "unexpected token RETRUN" {
		t.Errorf("Message = %q", qerr.Message)
	}
}

func TestExecuteQueryTransportError(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()

	client := NewClient(url, nil)
	_, err := client.ExecuteQuery(context.Background(), "MATCH (n) RETURN n")
	var qerr *graphchat.QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("err = %v, want *QueryError for transport failure", err)
	}
	if qerr.Kind != "Query execution failed" {
		t.Errorf("Kind = %q, want default kind", qerr.Kind)
	}
}

func TestNodeContentNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	content, err := client.NodeContent(context.Background(), "missing")
	if err != nil {
		t.Fatalf("NodeContent: %v", err)
	}
	if content != nil {
		t.Errorf("content = %+v, want nil for 404", content)
	}
}

func TestNodeContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/node/fn_main" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"fn_main","name":"main","kind":"function","file_path":"cmd/app/main.go","start_line":10,"end_line":30,"source":"func main() {}"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	content, err := client.NodeContent(context.Background(), "fn_main")
	if err != nil {
		t.Fatalf("NodeContent: %v", err)
	}
	if content.Name != "main" || content.StartLine != 10 || content.Source != "func main() {}" {
		t.Errorf("content = %+v", content)
	}
}
