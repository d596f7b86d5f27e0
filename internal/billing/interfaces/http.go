package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"pallet-cloud/internal/billing/application"
	billing "pallet-cloud/internal/billing/domain"
	"pallet-cloud/internal/observability/metrics"
)

type rowDTO struct {
	PalletID    string  `json:"pallet_id"`
	VendorName  string  `json:"vendor_name"`
	ProductName string  `json:"product_name"`
	InboundQty  float64 `json:"inbound_qty"`
	OutboundQty float64 `json:"outbound_qty"`
	Remaining   float64 `json:"remaining_qty"`

	InboundDate    string `json:"inbound_date,omitempty"`
	OutboundDate   string `json:"outbound_date,omitempty"`
	StorageEndDate string `json:"storage_end_date,omitempty"`

	Status             string `json:"status"`
	BillingPeriodStart string `json:"billing_period_start,omitempty"`
	StorageDays        int64  `json:"storage_days"`
	StorageFee         int64  `json:"storage_fee"`
	Excluded           bool   `json:"excluded,omitempty"`
}

func toRowDTO(row billing.SummaryRow) rowDTO {
	return rowDTO{
		PalletID:           row.PalletID,
		VendorName:         row.VendorName,
		ProductName:        row.ProductName,
		InboundQty:         row.InboundQty,
		OutboundQty:        row.OutboundQty,
		Remaining:          row.RemainingQty,
		InboundDate:        formatReportDate(row.InboundDate),
		OutboundDate:       formatReportDate(row.OutboundDate),
		StorageEndDate:     formatReportDate(row.StorageEndDate),
		Status:             string(row.Status),
		BillingPeriodStart: formatReportDate(row.BillingPeriodStart),
		StorageDays:        row.StorageDays,
		StorageFee:         row.StorageFee,
		Excluded:           row.Excluded,
	}
}

type rollupDTO struct {
	YearMonth  string `json:"year_month"`
	VendorName string `json:"vendor_name"`
	Stored     int    `json:"stored"`
	Ended      int    `json:"ended"`
	Service    int    `json:"service"`
	FeeTotal   int64  `json:"fee_total"`
}

func toRollupDTOs(rollups []billing.VendorRollup) []rollupDTO {
	out := make([]rollupDTO, 0, len(rollups))
	for _, r := range rollups {
		out = append(out, rollupDTO{
			YearMonth:  r.YearMonth,
			VendorName: r.VendorName,
			Stored:     r.Stored,
			Ended:      r.Ended,
			Service:    r.Service,
			FeeTotal:   r.FeeTotal,
		})
	}
	return out
}

func modeFromRequest(r *http.Request) (application.RunMode, error) {
	return application.ParseRunMode(r.URL.Query().Get("mode"))
}

// RunHandler triggers a settlement run.
type RunHandler struct {
	service *application.SummaryService
	logger  *log.Logger
}

// NewRunHandler constructs a RunHandler.
func NewRunHandler(service *application.SummaryService, logger *log.Logger) (*RunHandler, error) {
	if service == nil {
		return nil, errors.New("run handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RunHandler{service: service, logger: logger}, nil
}

// ServeHTTP handles POST /api/v1/summaries/run.
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	mode, err := modeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(r.Context(), mode)
	if err != nil {
		h.logger.Printf("settlement run failed: mode=%s err=%v", mode, err)
		http.Error(w, "run error", http.StatusInternalServerError)
		return
	}

	rows := make([]rowDTO, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, toRowDTO(row))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"mode":           string(result.Mode),
		"reference_date": result.ReferenceDate.Format("2006-01-02"),
		"rows":           rows,
	})
}

// SummariesHandler serves the rows persisted by the latest run.
type SummariesHandler struct {
	service *application.SummaryService
	logger  *log.Logger
}

// NewSummariesHandler constructs a SummariesHandler.
func NewSummariesHandler(service *application.SummaryService, logger *log.Logger) (*SummariesHandler, error) {
	if service == nil {
		return nil, errors.New("summaries handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SummariesHandler{service: service, logger: logger}, nil
}

// ServeHTTP handles GET /api/v1/summaries.
func (h *SummariesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	mode, err := modeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.service.Rows(r.Context(), mode)
	if err != nil {
		h.logger.Printf("list summaries failed: mode=%s err=%v", mode, err)
		http.Error(w, "query error", http.StatusInternalServerError)
		return
	}

	vendor := r.URL.Query().Get("vendor")
	out := make([]rowDTO, 0, len(rows))
	for _, row := range rows {
		if vendor != "" && billing.NormalizeVendorName(row.VendorName) != billing.NormalizeVendorName(vendor) {
			continue
		}
		out = append(out, toRowDTO(row))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// MonthlyReportHandler serves the per-vendor monthly rollup.
type MonthlyReportHandler struct {
	service *application.SummaryService
	logger  *log.Logger
}

// NewMonthlyReportHandler constructs a MonthlyReportHandler.
func NewMonthlyReportHandler(service *application.SummaryService, logger *log.Logger) (*MonthlyReportHandler, error) {
	if service == nil {
		return nil, errors.New("monthly report handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &MonthlyReportHandler{service: service, logger: logger}, nil
}

// ServeHTTP handles GET /api/v1/reports/monthly.
func (h *MonthlyReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	mode, err := modeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Preview(r.Context(), mode)
	if err != nil {
		h.logger.Printf("monthly report failed: mode=%s err=%v", mode, err)
		http.Error(w, "report error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"year_month": billing.MonthKey(result.ReferenceDate),
		"rollups":    toRollupDTOs(result.Rollups),
	})
}

// ExportHandler streams the settlement report as a file.
type ExportHandler struct {
	service *application.SummaryService
	logger  *log.Logger
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(service *application.SummaryService, logger *log.Logger) (*ExportHandler, error) {
	if service == nil {
		return nil, errors.New("export handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ExportHandler{service: service, logger: logger}, nil
}

// ServeHTTP handles GET /api/v1/reports/export?format=xlsx|pdf.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "pdf" {
		http.Error(w, "format must be xlsx or pdf", http.StatusBadRequest)
		return
	}

	mode, err := modeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	exportResult := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportExport(format, exportResult, time.Since(start))
	}()

	result, err := h.service.Preview(r.Context(), mode)
	if err != nil {
		exportResult = metrics.ResultError
		h.logger.Printf("report export failed: mode=%s err=%v", mode, err)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}

	var payload []byte
	var contentType string
	switch format {
	case "pdf":
		payload, err = BuildInvoicePDF(result)
		contentType = "application/pdf"
	default:
		payload, err = BuildVendorReportXLSX(result)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		exportResult = metrics.ResultError
		h.logger.Printf("report render failed: format=%s err=%v", format, err)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("settlement-%s.%s", billing.MonthKey(result.ReferenceDate), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(payload)
}

// LabelsHandler streams printable pallet labels.
type LabelsHandler struct {
	service *application.SummaryService
	logger  *log.Logger
}

// NewLabelsHandler constructs a LabelsHandler.
func NewLabelsHandler(service *application.SummaryService, logger *log.Logger) (*LabelsHandler, error) {
	if service == nil {
		return nil, errors.New("labels handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &LabelsHandler{service: service, logger: logger}, nil
}

// ServeHTTP handles GET /api/v1/labels/export.
func (h *LabelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	mode, err := modeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Preview(r.Context(), mode)
	if err != nil {
		h.logger.Printf("labels export failed: mode=%s err=%v", mode, err)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}

	// Only pallets still on the floor get labels.
	active := make([]billing.SummaryRow, 0, len(result.Rows))
	for _, row := range result.Rows {
		if row.Status == billing.StatusStorageEnded {
			continue
		}
		active = append(active, row)
	}

	payload, err := BuildLabelsPDF(active)
	if err != nil {
		h.logger.Printf("labels render failed: %v", err)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="pallet-labels.pdf"`)
	_, _ = w.Write(payload)
}
