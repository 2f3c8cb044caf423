// Package server exposes the orchestrator over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tallyfinance/ai-service/internal/agent/model"
)

// Orchestrator runs the two phases. *orchestrator.Orchestrator implements it.
type Orchestrator interface {
	PhaseA(ctx context.Context, req *model.PhaseARequest) (*model.PhaseAResponse, error)
	PhaseB(ctx context.Context, req *model.PhaseBRequest) (*model.PhaseBResponse, error)
}

// Info is reported by the health and root endpoints.
type Info struct {
	Service string
	Version string
	Model   string
}

type Server struct {
	orch  Orchestrator
	tools []model.ToolSchema
	info  Info
	cfg   model.ServerConfig
}

func New(orch Orchestrator, tools []model.ToolSchema, info Info, cfg model.ServerConfig) *Server {
	if info.Service == "" {
		info.Service = "ai-service"
	}
	return &Server{orch: orch, tools: tools, info: info, cfg: cfg}
}

// Handler builds the router with the shared middleware applied to every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(correlation)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Post("/orchestrate", s.orchestrate)
	r.Get("/health", s.health)
	r.Get("/", s.root)
	r.Get("/tools", s.listTools)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// HTTPServer returns a server whose write timeout covers the worst-case
// provider time on top of the endpoint budget.
func (s *Server) HTTPServer(worstCaseLLM time.Duration) *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.EndpointTimeout,
		ReadTimeout:       s.cfg.EndpointTimeout,
		WriteTimeout:      worstCaseLLM + s.cfg.EndpointTimeout,
	}
}
