package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/reachreport/ctv-rollup/internal/engine"
	"github.com/reachreport/ctv-rollup/internal/storage"
)

// Server is the HTTP API server
type Server struct {
	engine         *engine.Engine
	server         *http.Server
	ingestSem      *semaphore.Weighted
	maxUploadBytes int64
}

// NewServer creates a new API server. maxConcurrentIngests bounds how many
// file ingestions run at once; further uploads wait until a slot frees or
// their request context ends.
func NewServer(eng *engine.Engine, addr string, maxConcurrentIngests, maxUploadBytes int64) *Server {
	s := &Server{
		engine:         eng,
		ingestSem:      semaphore.NewWeighted(maxConcurrentIngests),
		maxUploadBytes: maxUploadBytes,
	}

	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	// Campaign endpoints
	mux.HandleFunc("/v1/campaigns", s.handleCampaignList)
	mux.HandleFunc("/v1/campaigns/", s.handleCampaignSubpath)

	// Rollup endpoints
	mux.HandleFunc("/v1/rollup/app", s.handleAppRollup)
	mux.HandleFunc("/v1/rollup/genre", s.handleGenreRollup)
	mux.HandleFunc("/v1/rollup/content", s.handleContentRollup)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      loggingMiddleware(mux),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting API server on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")
	return s.server.Shutdown(ctx)
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleReady handles GET /readyz
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ready := true
	var reasons []string

	if _, err := s.engine.Campaigns(); err != nil {
		ready = false
		reasons = append(reasons, fmt.Sprintf("storage not reachable: %v", err))
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, ReadyResponse{Ready: ready, Reasons: reasons})
}

// handleCampaignList handles GET /v1/campaigns
func (s *Server) handleCampaignList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	campaigns, err := s.engine.Campaigns()
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list campaigns: %v", err))
		return
	}
	if campaigns == nil {
		campaigns = []storage.Campaign{}
	}

	respondJSON(w, http.StatusOK, CampaignListResponse{Campaigns: campaigns, Total: len(campaigns)})
}

// handleCampaignSubpath routes /v1/campaigns/ingest, /v1/campaigns/{id},
// /v1/campaigns/{id}/stats, and /v1/campaigns/{id}/uploads.
func (s *Server) handleCampaignSubpath(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/campaigns/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] == "ingest":
		s.handleIngest(w, r)
	case len(parts) == 1 && parts[0] != "":
		s.handleCampaign(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "stats":
		s.handleCampaignStats(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "uploads":
		s.handleCampaignUploads(w, r, parts[0])
	default:
		respondError(w, http.StatusNotFound, "not found")
	}
}

// handleIngest handles POST /v1/campaigns/ingest (multipart file upload)
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Bound concurrent ingestions; wait for a slot until the client gives up.
	if err := s.ingestSem.Acquire(r.Context(), 1); err != nil {
		respondError(w, http.StatusServiceUnavailable, "ingest capacity exhausted")
		return
	}
	defer s.ingestSem.Release(1)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		respondError(w, http.StatusBadRequest, "only CSV files are allowed")
		return
	}

	nameOverride := r.FormValue("campaignName")

	result, err := s.engine.IngestFile(header.Filename, nameOverride, file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("ingestion failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, IngestResponse{
		Campaign: IngestCampaign{ID: result.Campaign.ID, Name: result.Campaign.Name},
		Upload:   IngestUpload{FileName: result.Upload.FileName, StoredPath: result.Upload.StoredPath},
		Content: IngestContent{
			RowsProcessed: result.RowsProcessed,
			RowsInserted:  result.RowsInserted,
			RowsSkipped:   result.RowsSkipped,
		},
	})
}

// handleCampaign handles GET and DELETE /v1/campaigns/{id}
func (s *Server) handleCampaign(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		campaign, err := s.engine.Campaign(id)
		if err != nil {
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get campaign: %v", err))
			return
		}
		if campaign == nil {
			respondError(w, http.StatusNotFound, fmt.Sprintf("campaign not found: %s", id))
			return
		}
		respondJSON(w, http.StatusOK, CampaignResponse{Campaign: *campaign})

	case http.MethodDelete:
		if err := s.engine.DeleteCampaign(id); err != nil {
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete campaign: %v", err))
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleCampaignStats handles GET /v1/campaigns/{id}/stats
func (s *Server) handleCampaignStats(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	campaign, err := s.engine.Campaign(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get campaign: %v", err))
		return
	}
	if campaign == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("campaign not found: %s", id))
		return
	}

	stats, err := s.engine.Stats(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to compute stats: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// handleCampaignUploads handles GET /v1/campaigns/{id}/uploads
func (s *Server) handleCampaignUploads(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uploads, err := s.engine.Uploads(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list uploads: %v", err))
		return
	}
	if uploads == nil {
		uploads = []storage.Upload{}
	}

	respondJSON(w, http.StatusOK, UploadListResponse{Uploads: uploads, Total: len(uploads)})
}

// handleAppRollup handles GET /v1/rollup/app?campaignID=...
func (s *Server) handleAppRollup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rows, err := s.engine.AppRollup(r.URL.Query().Get("campaignID"))
	if err != nil {
		s.respondRollupError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, AppRollupResponse{Rows: rows, Total: len(rows)})
}

// handleGenreRollup handles GET /v1/rollup/genre?campaignID=...
func (s *Server) handleGenreRollup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rows, err := s.engine.GenreRollup(r.URL.Query().Get("campaignID"))
	if err != nil {
		s.respondRollupError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, GenreRollupResponse{Rows: rows, Total: len(rows)})
}

// handleContentRollup handles GET /v1/rollup/content?campaignID=...
func (s *Server) handleContentRollup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rows, err := s.engine.ContentRollup(r.URL.Query().Get("campaignID"))
	if err != nil {
		s.respondRollupError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ContentRollupResponse{Rows: rows, Total: len(rows)})
}

func (s *Server) respondRollupError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrUnavailable) {
		respondError(w, http.StatusServiceUnavailable, fmt.Sprintf("storage unavailable: %v", err))
		return
	}
	respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to compute rollup: %v", err))
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
