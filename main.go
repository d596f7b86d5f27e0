package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"pallet-cloud/internal/audit"
	"pallet-cloud/internal/auth"
	"pallet-cloud/internal/billing/application"
	billingrepo "pallet-cloud/internal/billing/infrastructure/postgres"
	billinghttp "pallet-cloud/internal/billing/interfaces"
	"pallet-cloud/internal/ingest"
	"pallet-cloud/internal/observability/metrics"
	"pallet-cloud/internal/palletsync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatalf("timezone error: %v", err)
	}

	eventRepo := billingrepo.NewEventRepository(db)
	feeConfigRepo := billingrepo.NewFeeConfigRepository(db)
	summaryRepo := billingrepo.NewSummaryRepository(db)

	summaryService, err := application.NewSummaryService(eventRepo, feeConfigRepo, summaryRepo, application.SystemClock{})
	if err != nil {
		logger.Fatalf("summary service error: %v", err)
	}

	automationCfg, err := application.LoadAutomationConfig()
	if err != nil {
		logger.Fatalf("automation config error: %v", err)
	}
	scheduler := application.NewScheduler(summaryService, automationCfg, billinghttp.BuildVendorReportXLSX, application.SystemClock{}, logger)
	go scheduler.Start(context.Background())

	var forwarder ingest.Forwarder
	if cfg.SyncBaseURL != "" {
		syncClient, err := palletsync.NewClient(cfg.SyncBaseURL, cfg.SyncAPIKey)
		if err != nil {
			logger.Fatalf("pallet sync client error: %v", err)
		}
		forwarder = palletsync.NewForwarder(syncClient, logger)
	}

	eventHandler, err := ingest.NewEventHandler(eventRepo, forwarder, auditRepo, location, logger)
	if err != nil {
		logger.Fatalf("event handler error: %v", err)
	}
	importHandler, err := ingest.NewImportHandler(eventRepo, ingest.DefaultColumnNames(), location, logger)
	if err != nil {
		logger.Fatalf("import handler error: %v", err)
	}

	runHandler, err := billinghttp.NewRunHandler(summaryService, logger)
	if err != nil {
		logger.Fatalf("run handler error: %v", err)
	}
	summariesHandler, err := billinghttp.NewSummariesHandler(summaryService, logger)
	if err != nil {
		logger.Fatalf("summaries handler error: %v", err)
	}
	monthlyHandler, err := billinghttp.NewMonthlyReportHandler(summaryService, logger)
	if err != nil {
		logger.Fatalf("monthly report handler error: %v", err)
	}
	exportHandler, err := billinghttp.NewExportHandler(summaryService, logger)
	if err != nil {
		logger.Fatalf("export handler error: %v", err)
	}
	labelsHandler, err := billinghttp.NewLabelsHandler(summaryService, logger)
	if err != nil {
		logger.Fatalf("labels handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/events", eventHandler)
	mux.Handle("/api/v1/events/import", importHandler)
	mux.Handle("/api/v1/summaries/run", runHandler)
	mux.Handle("/api/v1/summaries", summariesHandler)
	mux.Handle("/api/v1/reports/monthly", monthlyHandler)
	mux.Handle("/api/v1/reports/export", exportHandler)
	mux.Handle("/api/v1/labels/export", labelsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	Timezone    string
	JWTSecret   string
	SyncBaseURL string
	SyncAPIKey  string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		Timezone:    getenvDefault("BILLING_TIMEZONE", "Asia/Seoul"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		SyncBaseURL: getenvDefault("PALLET_SYNC_BASE_URL", ""),
		SyncAPIKey:  getenvDefault("PALLET_SYNC_API_KEY", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
