package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/openexchange/matchbook/config"
	"github.com/openexchange/matchbook/pkg/engine"
	"github.com/openexchange/matchbook/pkg/logging"
)

// Server handles the order intake REST API. Every request is processed by
// a freshly constructed engine against an empty book, so nothing is shared
// or retained across calls.
type Server struct {
	cfg    *config.ServerConfig
	router *mux.Router
}

func NewServer(cfg *config.ServerConfig) *Server {
	s := &Server{
		cfg:    cfg,
		router: mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/orders/process", s.handleProcessOrders).Methods("POST")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the full middleware chain: CORS, request id, panic
// recovery, router.
func (s *Server) Handler() http.Handler {
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.withRequestID(s.withRecovery(s.router)))
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), logging.NewRequestID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withRecovery converts an unexpected failure anywhere below into a
// generic server error; no partial result is written.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.FromContext(r.Context()).Error("error processing orders",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
				)
				respondError(w, http.StatusInternalServerError, "error processing orders")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleProcessOrders(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Orders == nil {
		respondError(w, http.StatusBadRequest, "invalid or missing orders data")
		return
	}

	eng := engine.New()
	rejected := eng.ProcessAll(*req.Orders)
	resp := BuildResponse(eng, rejected)

	logging.FromContext(r.Context()).Info("processed order batch",
		zap.Int("operations", len(*req.Orders)),
		zap.Int("trades", len(resp.Trades)),
		zap.Int("rejected", len(rejected)),
	)
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Message: message})
}
