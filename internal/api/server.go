package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	contractapi "github.com/pseudolawyer/negotiation-backend/internal/api/contract"
	"github.com/pseudolawyer/negotiation-backend/internal/api/docs"
	"github.com/pseudolawyer/negotiation-backend/internal/api/middleware"
	negotiationapi "github.com/pseudolawyer/negotiation-backend/internal/api/negotiation"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(negotiationHandler *negotiationapi.Handler, contractHandler *contractapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                 // Recover from panics
	r.Use(chimiddleware.RequestID)                 // Add request ID
	r.Use(middleware.Logger(logger))               // Log requests
	r.Use(middleware.CORS)                         // Handle CORS
	r.Use(chimiddleware.Timeout(90 * time.Second)) // Default timeout, generation calls are slow

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	negotiationapi.RegisterRoutes(r, negotiationHandler)
	contractapi.RegisterRoutes(r, contractHandler)

	return r
}
