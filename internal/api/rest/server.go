package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fortuna/gully/internal/cache"
	"github.com/fortuna/gully/internal/query"
	"github.com/fortuna/gully/internal/resolver"
	"github.com/fortuna/gully/internal/store"
	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server. The answer cache is optional;
// pass nil to serve every question from the database.
func NewServer(port string, db *store.Database, engine *query.Engine, res *resolver.Resolver, answers *cache.RedisCache) *Server {
	handler := NewHandler(db, engine, res, answers)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health and inspection
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	router.HandleFunc("/dbinfo", handler.DBInfo).Methods("GET")

	// Question answering
	router.HandleFunc("/ask", handler.Ask).Methods("POST", "OPTIONS")

	// Debug surface
	router.HandleFunc("/debug/h2h", handler.DebugHeadToHead).Methods("GET")
	router.HandleFunc("/debug/player", handler.DebugPlayer).Methods("GET")
	router.HandleFunc("/debug/sql", handler.DebugSQL).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
