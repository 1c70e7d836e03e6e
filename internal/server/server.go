// Package server exposes the splitting session over HTTP: receipt
// upload, roster and assignment management, summary, persistence, and
// operational endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahsanmubariz/splitbill/internal/models"
	"github.com/ahsanmubariz/splitbill/internal/session"
	"github.com/ahsanmubariz/splitbill/internal/storage"
	"github.com/ahsanmubariz/splitbill/internal/telemetry"
	"github.com/ahsanmubariz/splitbill/internal/vision"
)

const (
	serviceName    = "split-bill-app"
	serviceVersion = "1.0.0"

	// maxUploadBytes bounds the receipt image size.
	maxUploadBytes = 10 << 20
)

// Extractor turns a receipt image into structured bill data. Satisfied
// by *vision.Client; tests substitute fakes.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (*models.Bill, error)
}

// Server handles the HTTP surface for one splitting session.
type Server struct {
	session   *session.Session
	store     storage.Store
	extractor Extractor
	rec       telemetry.Recorder
	mux       *http.ServeMux
}

// New wires the handlers. extractor may be nil when the server is
// started without model credentials; uploads then fail with a
// configuration error. A nil recorder is replaced with a no-op.
func New(sess *session.Session, store storage.Store, extractor Extractor, rec telemetry.Recorder) *Server {
	if rec == nil {
		rec = telemetry.Noop{}
	}
	s := &Server{
		session:   sess,
		store:     store,
		extractor: extractor,
		rec:       rec,
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/process-receipt", s.handleProcessReceipt)
	s.mux.HandleFunc("GET /api/items", s.handleItems)
	s.mux.HandleFunc("GET /api/people", s.handleListPeople)
	s.mux.HandleFunc("POST /api/people", s.handleAddPerson)
	s.mux.HandleFunc("DELETE /api/people/{id}", s.handleRemovePerson)
	s.mux.HandleFunc("POST /api/assignments", s.handleAssignment)
	s.mux.HandleFunc("GET /api/summary", s.handleSummary)
	s.mux.HandleFunc("POST /api/bills", s.handleSaveBill)
	s.mux.HandleFunc("POST /api/reset", s.handleReset)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Handler returns the full handler chain with logging and CORS.
func (s *Server) Handler() http.Handler {
	return loggingMiddleware(corsMiddleware(s.mux))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
		"version":   serviceVersion,
	})
}

// handleProcessReceipt accepts a multipart upload with a "receipt"
// image field, runs extraction, and installs the resulting bill. On
// any failure no partial bill is installed and the session stays in
// the upload stage.
func (s *Server) handleProcessReceipt(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "multipart/form-data") {
		writeError(w, http.StatusUnsupportedMediaType,
			"expected 'multipart/form-data' but received '"+contentType+"'")
		return
	}

	if s.extractor == nil {
		slog.Error("Receipt upload rejected: model API key is not configured")
		writeError(w, http.StatusInternalServerError,
			"API key for the receipt model is not configured on the server")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("receipt")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no receipt image provided")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read receipt image")
		return
	}
	if len(image) == 0 {
		writeError(w, http.StatusBadRequest, "no receipt image provided")
		return
	}
	mimeType := header.Header.Get("Content-Type")

	gen := s.session.BeginExtraction()
	start := time.Now()
	bill, err := s.extractor.Extract(r.Context(), image, mimeType)
	if err != nil {
		s.rec.Record(telemetry.EventReceiptFailed, map[string]any{
			"error_message": err.Error(),
		})
		slog.Error("Receipt extraction failed", "error", err)
		if errors.Is(err, vision.ErrUpstream) {
			writeError(w, http.StatusBadGateway, "failed to process receipt with the vision model")
			return
		}
		writeError(w, http.StatusInternalServerError,
			"failed to parse the data from the receipt")
		return
	}

	if !s.session.InstallBill(gen, bill) {
		// A newer upload superseded this one while the model call was
		// in flight; the result is discarded.
		writeError(w, http.StatusConflict, "a newer receipt upload superseded this one")
		return
	}

	slog.Info("Receipt processed",
		"items", len(bill.Items),
		"total", bill.Total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.session.Items()
	if err != nil {
		writeError(w, http.StatusConflict, "process a receipt first")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"people": s.session.People()})
}

func (s *Server) handleAddPerson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if s.session.Bill() == nil {
		writeError(w, http.StatusConflict, "process a receipt first")
		return
	}

	person, ok := s.session.AddPerson(req.Name)
	if !ok {
		writeError(w, http.StatusBadRequest, "name is empty or already added")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"person": person,
		"people": s.session.People(),
	})
}

func (s *Server) handleRemovePerson(w http.ResponseWriter, r *http.Request) {
	if !s.session.RemovePerson(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"people": s.session.People()})
}

// handleAssignment applies a ±1 quantity change. An over-allocating
// change is silently rejected: the response simply shows the item
// unchanged, matching the constrained-interaction design.
func (s *Server) handleAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemIndex int    `json:"item_index"`
		PersonID  string `json:"person_id"`
		Delta     int    `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Delta != 1 && req.Delta != -1 {
		writeError(w, http.StatusBadRequest, "delta must be +1 or -1")
		return
	}

	view, _, err := s.session.UpdateAssignment(req.ItemIndex, req.PersonID, req.Delta)
	switch {
	case errors.Is(err, session.ErrNoBill):
		writeError(w, http.StatusConflict, "process a receipt first")
		return
	case errors.Is(err, session.ErrBadItem):
		writeError(w, http.StatusBadRequest, "item index out of range")
		return
	case errors.Is(err, session.ErrUnknownPerson):
		writeError(w, http.StatusNotFound, "person not found")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "assignment failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": view})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	settlement, err := s.session.Summarize()
	switch {
	case errors.Is(err, session.ErrNoBill):
		writeError(w, http.StatusConflict, "process a receipt first")
		return
	case errors.Is(err, session.ErrEmptyRoster):
		writeError(w, http.StatusConflict, "add at least one person first")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "summary failed")
		return
	}
	writeJSON(w, http.StatusOK, settlement)
}

// handleSaveBill persists the current session snapshot. Failure is
// reported to the caller but never disturbs the in-memory settlement.
func (s *Server) handleSaveBill(w http.ResponseWriter, r *http.Request) {
	saved, err := s.session.SavedBill()
	if err != nil {
		writeError(w, http.StatusConflict, "nothing to save yet")
		return
	}

	if err := s.store.SaveBill(r.Context(), saved); err != nil {
		s.rec.Record(telemetry.EventBillSaveFailed, nil)
		slog.Error("Failed to save bill", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save bill")
		return
	}

	s.rec.Record(telemetry.EventBillSaved, map[string]any{
		"people_count": len(saved.People),
		"item_count":   len(saved.Items),
	})
	slog.Info("Bill saved", "bill_id", saved.ID)
	writeJSON(w, http.StatusOK, map[string]string{"id": saved.ID})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.session.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"stage": string(session.StageUpload)})
}
