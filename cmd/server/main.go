package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/ahsanmubariz/splitbill/internal/server"
	"github.com/ahsanmubariz/splitbill/internal/session"
	"github.com/ahsanmubariz/splitbill/internal/storage/sqlite"
	"github.com/ahsanmubariz/splitbill/internal/telemetry"
	"github.com/ahsanmubariz/splitbill/internal/vision"
	"github.com/ahsanmubariz/splitbill/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logging.Setup()

	port := getEnv("PORT", "8080")
	dbPath := getEnv("DB_PATH", "./data/bills.db")
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	model := getEnv("OPENROUTER_MODEL", vision.DefaultModel)
	modelURL := getEnv("OPENROUTER_URL", vision.DefaultURL)

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	var extractor server.Extractor
	if apiKey != "" {
		extractor = vision.New(apiKey, model, modelURL)
		slog.Info("Receipt extraction enabled", "model", model)
	} else {
		// Uploads will fail with a configuration error until a key is set.
		slog.Warn("OPENROUTER_API_KEY is not set; receipt extraction is disabled")
	}

	rec := telemetry.NewPrometheus(prometheus.DefaultRegisterer)
	sess := session.New(rec)
	srv := server.New(sess, store, extractor, rec)

	// h2c allows HTTP/2 without TLS behind a terminating proxy.
	h2cHandler := h2c.NewHandler(srv.Handler(), &http2.Server{})

	addr := fmt.Sprintf(":%s", port)
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
