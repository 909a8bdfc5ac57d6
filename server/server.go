// Package server exposes the inventory, collection stats and recipient
// lookup over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"base-nft-tui/directory"
	"base-nft-tui/metrics"
	"base-nft-tui/nft"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	maxFeedbackBytes = 8 << 10
	shutdownTimeout  = 5 * time.Second
)

// Server serves the JSON API
type Server struct {
	inventory   nft.Inventory
	collections nft.CollectionSource
	resolver    *directory.Resolver
	logger      *log.Logger
}

// New creates a server. Any source may be nil; its routes then answer 503.
func New(inventory nft.Inventory, collections nft.CollectionSource, resolver *directory.Resolver, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		inventory:   inventory,
		collections: collections,
		resolver:    resolver,
		logger:      logger,
	}
}

// Router builds the route table
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.HTTPMiddleware())

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/nfts", s.handleNFTs).Methods(http.MethodGet)
	api.HandleFunc("/opensea-data", s.handleCollection).Methods(http.MethodGet)
	api.HandleFunc("/recipients", s.handleRecipients).Methods(http.MethodGet)
	api.HandleFunc("/feedback", s.handleFeedback).Methods(http.MethodPost)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Page not found")
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("http api shutting down")
		if err := srv.Shutdown(sctx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// handleNFTs lists an owner's tokens, or with history=true the sales of
// one token where address is the contract.
func (s *Server) handleNFTs(w http.ResponseWriter, r *http.Request) {
	if s.inventory == nil {
		writeError(w, http.StatusServiceUnavailable, "Inventory provider not configured")
		return
	}
	q := r.URL.Query()
	address := strings.TrimSpace(q.Get("address"))
	tokenID := strings.TrimSpace(q.Get("tokenId"))

	if q.Get("history") == "true" && address != "" && tokenID != "" {
		sales, err := s.inventory.Sales(r.Context(), address, tokenID)
		if err != nil {
			s.logger.Error("sales history failed", "contract", address, "token", tokenID, "err", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch sales history")
			return
		}
		if sales == nil {
			sales = []nft.Sale{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"sales": sales})
		return
	}

	if address == "" {
		writeError(w, http.StatusBadRequest, "Wallet address is required")
		return
	}

	nfts, err := s.inventory.OwnedNFTs(r.Context(), address)
	if err != nil {
		s.logger.Error("list nfts failed", "owner", address, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch NFTs")
		return
	}
	if nfts == nil {
		nfts = []nft.NFT{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"nfts": nfts})
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	if s.collections == nil {
		writeError(w, http.StatusServiceUnavailable, "Collection provider not configured")
		return
	}
	contract := strings.TrimSpace(r.URL.Query().Get("contract"))
	if contract == "" {
		writeError(w, http.StatusBadRequest, "Missing contract address")
		return
	}

	stats, err := s.collections.Collection(r.Context(), contract)
	switch {
	case errors.Is(err, nft.ErrCollectionNotFound):
		writeError(w, http.StatusNotFound, "Collection not found")
	case err != nil:
		s.logger.Error("collection stats failed", "contract", contract, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch collection data")
	default:
		writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) handleRecipients(w http.ResponseWriter, r *http.Request) {
	if s.resolver == nil {
		writeError(w, http.StatusServiceUnavailable, "Directory not configured")
		return
	}
	entries := s.resolver.Resolve(r.Context(), r.URL.Query().Get("q"))
	if entries == nil {
		entries = []directory.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": entries})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxFeedbackBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	msg := strings.TrimSpace(body.Message)
	if msg == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	id := uuid.NewString()
	s.logger.Info("feedback", "id", id, "message", msg)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
