package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"pallet-cloud/internal/audit"
	"pallet-cloud/internal/auth"
	billing "pallet-cloud/internal/billing/domain"
	"pallet-cloud/internal/observability/metrics"
)

// Forwarder mirrors accepted events into the downstream pallet API.
type Forwarder interface {
	Forward(ctx context.Context, event billing.RawEvent)
}

// EventHandler accepts single pallet work events over HTTP.
type EventHandler struct {
	writer  billing.EventWriter
	forward Forwarder
	auditor audit.Logger
	loc     *time.Location
	logger  *log.Logger
}

// NewEventHandler constructs an intake handler. Forwarder and auditor are
// optional.
func NewEventHandler(writer billing.EventWriter, forward Forwarder, auditor audit.Logger, loc *time.Location, logger *log.Logger) (*EventHandler, error) {
	if writer == nil {
		return nil, errors.New("event intake: nil event writer")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.Default()
	}
	return &EventHandler{writer: writer, forward: forward, auditor: auditor, loc: loc, logger: logger}, nil
}

type eventRequest struct {
	EventID     string  `json:"event_id"`
	PalletID    string  `json:"pallet_id"`
	WorkType    string  `json:"work_type"`
	Quantity    float64 `json:"quantity"`
	Timestamp   string  `json:"timestamp"`
	ProductName string  `json:"product_name"`
	VendorName  string  `json:"vendor_name"`
}

// ServeHTTP ingests one event.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveIngest(result, time.Since(start))
	}()

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		result = metrics.ResultError
		metrics.IncIngestError("decode")
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	event, err := h.toEvent(req)
	if err != nil {
		result = metrics.ResultError
		metrics.IncIngestError("validate")
		h.logger.Printf("event intake: invalid payload: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inserted, err := h.writer.AppendEvent(r.Context(), event)
	if err != nil {
		result = metrics.ResultError
		metrics.IncIngestError("store")
		h.logger.Printf("event intake: append error: %v", err)
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}

	if inserted {
		h.recordAudit(r, event)
		if h.forward != nil {
			h.forward.Forward(r.Context(), event)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !inserted {
		// The event was already stored; report success so retrying senders
		// stop retrying.
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"event_id": event.EventID, "duplicate": true})
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"event_id": event.EventID})
}

func (h *EventHandler) toEvent(req eventRequest) (billing.RawEvent, error) {
	if req.PalletID == "" {
		return billing.RawEvent{}, errors.New("missing pallet_id")
	}
	eventType, err := billing.ParseEventType(req.WorkType)
	if err != nil {
		return billing.RawEvent{}, err
	}
	ts, err := ParseTimestamp(req.Timestamp, h.loc)
	if err != nil {
		return billing.RawEvent{}, err
	}

	product := req.ProductName
	if product == "" {
		product = billing.UnspecifiedProduct
	}
	event := billing.RawEvent{
		EventID:     req.EventID,
		PalletID:    req.PalletID,
		Type:        eventType,
		Quantity:    req.Quantity,
		Timestamp:   ts,
		ProductName: product,
		VendorName:  req.VendorName,
	}
	if event.EventID == "" {
		event.EventID = deriveEventID(event)
	}
	return event, nil
}

func (h *EventHandler) recordAudit(r *http.Request, event billing.RawEvent) {
	if h.auditor == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{
		"work_type": string(event.Type),
		"quantity":  event.Quantity,
	})
	entry := audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "event.append",
		ResourceType: "pallet_event",
		ResourceID:   event.EventID,
		VendorName:   event.VendorName,
		Metadata:     meta,
		IP:           r.RemoteAddr,
		UserAgent:    r.UserAgent(),
	}
	if err := h.auditor.Log(r.Context(), entry); err != nil {
		h.logger.Printf("event intake: audit error: %v", err)
	}
}

// ImportHandler accepts an intake workbook and appends its events.
type ImportHandler struct {
	writer  billing.EventWriter
	columns ColumnNames
	loc     *time.Location
	logger  *log.Logger
}

// NewImportHandler constructs a workbook import handler.
func NewImportHandler(writer billing.EventWriter, columns ColumnNames, loc *time.Location, logger *log.Logger) (*ImportHandler, error) {
	if writer == nil {
		return nil, errors.New("workbook import: nil event writer")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ImportHandler{writer: writer, columns: columns, loc: loc, logger: logger}, nil
}

// ServeHTTP ingests every row of the posted workbook. Duplicate rows are
// absorbed, so re-posting the same file is safe.
func (h *ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	loaded, err := LoadWorkbook(r.Body, h.columns, h.loc, h.logger)
	if err != nil {
		h.logger.Printf("workbook import: %v", err)
		http.Error(w, "invalid workbook", http.StatusBadRequest)
		return
	}

	var inserted, duplicates int
	for _, event := range loaded.Events {
		ok, err := h.writer.AppendEvent(r.Context(), event)
		if err != nil {
			h.logger.Printf("workbook import: append error: %v", err)
			http.Error(w, "store error", http.StatusInternalServerError)
			return
		}
		if ok {
			inserted++
		} else {
			duplicates++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"inserted":   inserted,
		"duplicates": duplicates,
		"skipped":    loaded.Skipped,
	})
}
