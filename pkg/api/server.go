// Package api exposes the game board over HTTP: the four classic
// text endpoints (look, flip, replace, watch) plus a WebSocket stream
// of board changes and a JSON stats endpoint.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cardgrid/scramble/pkg/board"
	"github.com/cardgrid/scramble/pkg/log"
	"github.com/cardgrid/scramble/pkg/queue"
	"github.com/cardgrid/scramble/pkg/repositories"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
)

type APIServer struct {
	server     *http.Server
	tls        *TLSConfig
	board      *board.Board
	eventQueue queue.Queue
	repository repositories.Repository
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port       int
	TLS        *TLSConfig
	Board      *board.Board
	EventQueue queue.Queue
	Repository repositories.Repository
}

// NewAPIServer creates a new http.Server for handling game requests.
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	s := &APIServer{
		tls:        opts.TLS,
		board:      opts.Board,
		eventQueue: opts.EventQueue,
		repository: opts.Repository,
	}

	r := mux.NewRouter()
	r.HandleFunc("/look/{player}", s.handleLook).Methods(http.MethodGet)
	r.HandleFunc("/flip/{player}/{location}", s.handleFlip).Methods(http.MethodGet)
	r.HandleFunc("/replace/{player}/{from}/{to}", s.handleReplace).Methods(http.MethodGet)
	r.HandleFunc("/watch/{player}", s.handleWatch).Methods(http.MethodGet)
	r.HandleFunc("/stats/{player}", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/stream/{player}", s.handleStream).Methods(http.MethodGet)
	r.Use(corsMiddleware)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: gzhttp.GzipHandler(r),
	}
	return s
}

// Handler returns the server's root handler, gzip and CORS included.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the APIServer.
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer.
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}
