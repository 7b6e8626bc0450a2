package server

import (
	"net/http"
	"net/http/pprof"

	"github.com/gin-gonic/gin"

	"github.com/atikulmunna/edlog/internal/aggregator"
	"github.com/atikulmunna/edlog/internal/hub"
	"github.com/atikulmunna/edlog/internal/model"
	"github.com/atikulmunna/edlog/internal/status"
	"github.com/atikulmunna/edlog/internal/systems"
)

// Deps are the live components the API reads from. Status and Metrics may
// be nil.
type Deps struct {
	Hub        *hub.Hub
	Aggregator *aggregator.Aggregator
	Systems    *systems.Live
	Status     func() *model.Status
	Metrics    http.Handler
}

// Server holds the Gin engine and the live components behind the API.
type Server struct {
	engine *gin.Engine
	deps   Deps
	port   string
}

// New creates the HTTP API server.
func New(deps Deps, port string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	// Disable automatic redirects that cause 301 issues.
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine: engine,
		deps:   deps,
		port:   port,
	}

	s.setupRoutes()
	return s
}

// Handler exposes the engine, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		stats := s.deps.Aggregator.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"uptime":          stats.Uptime,
			"current_journal": stats.CurrentJournal,
			"eps":             stats.EPS,
			"dropped":         stats.Dropped,
		})
	})

	s.engine.GET("/api/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.deps.Aggregator.Snapshot())
	})

	s.engine.GET("/api/systems", s.handleSystems)
	s.engine.GET("/api/systems/current", s.handleCurrentSystem)
	s.engine.GET("/api/status", s.handleStatus)

	s.engine.GET("/ws", s.handleWebSocket)

	if s.deps.Metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.deps.Metrics))
	}

	// pprof profiling endpoints.
	s.engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	s.engine.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
	s.engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	s.engine.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
	s.engine.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
	s.engine.GET("/debug/pprof/heap", gin.WrapH(pprof.Handler("heap")))
	s.engine.GET("/debug/pprof/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

func (s *Server) handleSystems(c *gin.Context) {
	recs := s.deps.Systems.State().Records()
	if recs == nil {
		recs = []systems.SystemRecord{}
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) handleCurrentSystem(c *gin.Context) {
	st := s.deps.Systems.State()
	sys, ok := st.System(st.Current())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no current system"})
		return
	}
	c.JSON(http.StatusOK, sys.Record())
}

func (s *Server) handleStatus(c *gin.Context) {
	var st *model.Status
	if s.deps.Status != nil {
		st = s.deps.Status()
	}
	if st == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no status snapshot yet"})
		return
	}
	flags := status.Decode(st.Flags, st.Flags2)
	c.JSON(http.StatusOK, gin.H{
		"timestamp":          st.Time(),
		"flags":              flags,
		"active":             flags.Active(),
		"hyperjump_charging": status.HyperjumpCharging(st),
		"status":             st,
	})
}

// Start runs the server. Blocks until the server is stopped.
func (s *Server) Start() error {
	return s.engine.Run(":" + s.port)
}
