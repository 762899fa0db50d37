package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	logger "autogenmcp/logger/v2"
)

func TestSSERejectsDuplicateSessionID(t *testing.T) {
	rt, svc := newTestRouter(&stubInvoker{})
	srv := NewSSEServer(rt, svc, logger.NewNoop())

	// Simulate an already-open stream with the same client-supplied id.
	if err := svc.Registry.Register(&recordingConn{id: "dup"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/sse?sessionId=dup", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if svc.Registry.Len() != 1 {
		t.Fatal("rejected session must not replace the open one")
	}
}

func TestSSEMessageRequiresKnownSession(t *testing.T) {
	rt, svc := newTestRouter(&stubInvoker{})
	srv := NewSSEServer(rt, svc, logger.NewNoop())

	body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	req := httptest.NewRequest(http.MethodPost, "/message?sessionId=ghost", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/message", strings.NewReader(`{}`))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing sessionId, got %d", rec.Code)
	}
}

func TestHealthReflectsConnections(t *testing.T) {
	rt, svc := newTestRouter(&stubInvoker{})
	srv := NewSSEServer(rt, svc, logger.NewNoop())

	if err := svc.Registry.Register(&recordingConn{id: "s1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var health struct {
		Name        string `json:"name"`
		Status      string `json:"status"`
		Transport   string `json:"transport"`
		Connections int    `json:"connections"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("health not JSON: %v", err)
	}
	if health.Status != "healthy" || health.Transport != "sse" {
		t.Fatalf("unexpected health: %+v", health)
	}
	if health.Connections != 1 {
		t.Fatalf("expected 1 connection, got %d", health.Connections)
	}
}

func TestIndexPageRenders(t *testing.T) {
	rt, svc := newTestRouter(&stubInvoker{})
	srv := NewSSEServer(rt, svc, logger.NewNoop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ServerName) {
		t.Fatal("index page missing server name")
	}
}

func TestStreamablePostAssignsSession(t *testing.T) {
	rt, svc := newTestRouter(&stubInvoker{})
	srv := NewStreamableServer(rt, svc, logger.NewNoop())

	body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/mcp", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	sessionID := rec.Header().Get(sessionHeader)
	if sessionID == "" {
		t.Fatal("initialize must assign a session id")
	}
	if _, ok := svc.Registry.Get(sessionID); !ok {
		t.Fatal("assigned session not registered")
	}

	var resp jsonrpcResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("initialize failed: %+v", resp.Error)
	}

	// DELETE tears the session down.
	req = httptest.NewRequest(http.MethodDelete, "/mcp", nil)
	req.Header.Set(sessionHeader, sessionID)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", rec.Code)
	}
	if _, ok := svc.Registry.Get(sessionID); ok {
		t.Fatal("session survived delete")
	}
}

func TestStreamableGetRequiresSession(t *testing.T) {
	rt, svc := newTestRouter(&stubInvoker{})
	srv := NewStreamableServer(rt, svc, logger.NewNoop())

	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session header, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/mcp", nil)
	req.Header.Set(sessionHeader, "ghost")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rec.Code)
	}
}
