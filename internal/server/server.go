// Package server exposes the document question-answering pipeline over
// HTTP: document upload and management plus chat, both request/response
// and WebSocket.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nhanvu/docchat/internal/config"
	"github.com/nhanvu/docchat/internal/docstore"
	"github.com/nhanvu/docchat/internal/rag"
)

// RAGService is the slice of the pipeline the HTTP layer needs.
// *rag.Service satisfies it.
type RAGService interface {
	Ingest(ctx context.Context, text, filename string) error
	Answer(ctx context.Context, query string, allowedSources []string) (rag.Answer, error)
	Delete(ctx context.Context, filename string) error
}

// DocumentRegistry is the slice of the document store the HTTP layer
// needs. *docstore.Store satisfies it.
type DocumentRegistry interface {
	Save(ctx context.Context, doc docstore.Document) error
	Exists(ctx context.Context, filename string) (bool, error)
	List(ctx context.Context) ([]docstore.Document, error)
	Delete(ctx context.Context, filename string) error
}

// Server is the docchat HTTP server.
type Server struct {
	cfg        *config.Config
	docs       DocumentRegistry
	rag        RAGService
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies.
func New(cfg *config.Config, docs DocumentRegistry, ragService RAGService) *Server {
	s := &Server{
		cfg:  cfg,
		docs: docs,
		rag:  ragService,
	}

	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Get("/files", s.handleListFiles)
		r.Delete("/files/{filename}", s.handleDeleteFile)
		r.Post("/chat", s.handleChat)
		r.Get("/chat/ws", s.handleChatWS)
	})

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port. It blocks until the
// server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("docchat server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
