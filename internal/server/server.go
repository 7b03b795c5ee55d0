// Package server exposes the pipeline over a small HTTP surface: a health
// endpoint and a synchronous fetch trigger.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/orgball2608/insta-media-pipeline/internal/batch"
	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/orchestrator"
	"github.com/orgball2608/insta-media-pipeline/internal/repositories/batchrun"
	"github.com/orgball2608/insta-media-pipeline/internal/repositories/media"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

type Server struct {
	httpServer   *http.Server
	orchestrator *orchestrator.Orchestrator
	batch        batch.Client
	runs         batchrun.Repository
	media        media.Repository
	limit        int
	logger       logger.Logger
}

type Opts struct {
	fx.In

	Lc           fx.Lifecycle
	Config       *config.Config
	Orchestrator *orchestrator.Orchestrator
	Batch        batch.Client
	BatchRunRepo batchrun.Repository
	MediaRepo    media.Repository
	Logger       logger.Logger
}

func New(opts Opts) *Server {
	s := &Server{
		orchestrator: opts.Orchestrator,
		batch:        opts.Batch,
		runs:         opts.BatchRunRepo,
		media:        opts.MediaRepo,
		limit:        opts.Config.Batch.PerAccountLimit,
		logger:       opts.Logger.WithComponent("HTTPServer"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/fetch", s.handleFetch)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/media", s.handleMedia)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Config.App.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	opts.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.logger.Info("Starting HTTP server", "addr", s.httpServer.Addr)
			go func() {
				if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.logger.Error("HTTP server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.httpServer.Shutdown(ctx)
		},
	})
	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type fetchRequest struct {
	Username string `json:"username"`
	Limit    int    `json:"limit"`
	Process  bool   `json:"process"`
}

type fetchResponse struct {
	Username       string                                    `json:"username"`
	StrategyUsed   string                                    `json:"strategy_used,omitempty"`
	PrivateAccount bool                                      `json:"private_account,omitempty"`
	TotalPosts     int                                       `json:"total_posts"`
	Posts          map[domain.MediaCategory][]domain.Post    `json:"posts,omitempty"`
	Diagnostics    []domain.Diagnostic                       `json:"diagnostics"`
	ProcessedItems []domain.ProcessedItem                    `json:"processed_items,omitempty"`
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}
	if req.Limit <= 0 {
		req.Limit = s.limit
	}

	var (
		result domain.FetchResult
		items  []domain.ProcessedItem
	)
	if req.Process {
		var err error
		items, result, err = s.batch.RunAccount(r.Context(), domain.Account{Username: req.Username})
		if err != nil {
			s.logger.Warn("Fetch request produced nothing", "username", req.Username, "error", err)
		}
	} else {
		result = s.orchestrator.Fetch(r.Context(), req.Username, req.Limit)
	}

	resp := fetchResponse{
		Username:       result.Username,
		StrategyUsed:   result.StrategyUsed,
		PrivateAccount: result.PrivateAccount,
		TotalPosts:     result.TotalPosts(),
		Posts:          result.Posts,
		Diagnostics:    result.Diagnostics,
		ProcessedItems: items,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("Failed to encode fetch response", "error", err)
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := s.runs.GetRecent(r.Context(), 20)
	if err != nil {
		s.logger.Error("Failed to load batch run history", "error", err)
		http.Error(w, "failed to load run history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		s.logger.Error("Failed to encode run history", "error", err)
	}
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	records, err := s.media.GetByUsername(r.Context(), username)
	if err != nil {
		s.logger.Error("Failed to load media records", "username", username, "error", err)
		http.Error(w, "failed to load media records", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*domain.MediaRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		s.logger.Error("Failed to encode media records", "error", err)
	}
}
