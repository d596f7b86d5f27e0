package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	billing "pallet-cloud/internal/billing/domain"
	"pallet-cloud/internal/billing/infrastructure/memory"
)

type recordingForwarder struct {
	events []billing.RawEvent
}

func (f *recordingForwarder) Forward(_ context.Context, event billing.RawEvent) {
	f.events = append(f.events, event)
}

func postEvent(t *testing.T, handler http.Handler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(payload))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestEventHandler_AcceptsAndForwards(t *testing.T) {
	repo := memory.NewEventRepository()
	forwarder := &recordingForwarder{}
	handler, err := NewEventHandler(repo, forwarder, nil, time.UTC, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	resp := postEvent(t, handler, `{
		"pallet_id": "P-1",
		"work_type": "입고",
		"quantity": 10,
		"timestamp": "2025. 6. 17 오전 10:54:00",
		"product_name": "widgets",
		"vendor_name": "Acme"
	}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	events, err := repo.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(events))
	}
	if events[0].Type != billing.EventInbound || events[0].VendorName != "Acme" {
		t.Fatalf("stored event mismatch: %+v", events[0])
	}
	if len(forwarder.events) != 1 {
		t.Fatalf("expected 1 forwarded event, got %d", len(forwarder.events))
	}
}

func TestEventHandler_DuplicateIsAbsorbed(t *testing.T) {
	repo := memory.NewEventRepository()
	forwarder := &recordingForwarder{}
	handler, err := NewEventHandler(repo, forwarder, nil, time.UTC, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	payload := `{
		"event_id": "evt-1",
		"pallet_id": "P-1",
		"work_type": "inbound",
		"quantity": 5,
		"timestamp": "2025-06-17"
	}`
	if resp := postEvent(t, handler, payload); resp.Code != http.StatusCreated {
		t.Fatalf("first post: expected 201, got %d", resp.Code)
	}
	resp := postEvent(t, handler, payload)
	if resp.Code != http.StatusOK {
		t.Fatalf("second post: expected 200, got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["duplicate"] != true {
		t.Fatalf("expected duplicate flag, got %v", body)
	}

	events, _ := repo.ListEvents(context.Background())
	if len(events) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(events))
	}
	// The duplicate must not be forwarded twice.
	if len(forwarder.events) != 1 {
		t.Fatalf("expected 1 forwarded event, got %d", len(forwarder.events))
	}
}

func TestEventHandler_RejectsBadPayloads(t *testing.T) {
	repo := memory.NewEventRepository()
	handler, err := NewEventHandler(repo, nil, nil, time.UTC, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	cases := []string{
		`not json`,
		`{"work_type": "입고", "timestamp": "2025-06-17"}`,
		`{"pallet_id": "P-1", "work_type": "반품", "timestamp": "2025-06-17"}`,
		`{"pallet_id": "P-1", "work_type": "입고", "timestamp": "whenever"}`,
	}
	for _, payload := range cases {
		if resp := postEvent(t, handler, payload); resp.Code != http.StatusBadRequest {
			t.Fatalf("payload %q: expected 400, got %d", payload, resp.Code)
		}
	}
}

func TestEventHandler_MethodNotAllowed(t *testing.T) {
	repo := memory.NewEventRepository()
	handler, err := NewEventHandler(repo, nil, nil, time.UTC, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestImportHandler_RejectsGarbage(t *testing.T) {
	repo := memory.NewEventRepository()
	handler, err := NewImportHandler(repo, DefaultColumnNames(), time.UTC, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/import", bytes.NewReader([]byte("not an xlsx")))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
