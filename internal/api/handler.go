package api

import (
	"net/http"
	"time"

	"adaptive-core/internal/engine"
	"adaptive-core/internal/events"
	"adaptive-core/internal/monitor"
	"adaptive-core/pkg/cache"
	"adaptive-core/pkg/db"

	"github.com/gin-gonic/gin"
)

// Server wires HTTP endpoints around the engine service and event bus.
type Server struct {
	Router    *gin.Engine
	Bus       *events.Bus
	DB        *db.Database
	Engine    engine.Service
	Metrics   *monitor.SystemMetrics
	Quotes    *cache.ShardedQuoteCache
	JWTSecret string
}

func NewServer(bus *events.Bus, database *db.Database, svc engine.Service, metrics *monitor.SystemMetrics, quotes *cache.ShardedQuoteCache, jwtSecret string) *Server {
	r := gin.New()

	// Middleware stack (order matters!)
	r.Use(gin.Recovery())               // Panic recovery (first)
	r.Use(RequestIDMiddleware())        // Request ID tracking
	r.Use(RequestLogger(metrics))       // Request logging (after ID is set)
	r.Use(RateLimitMiddleware())        // Rate limiting
	r.Use(TimeoutMiddleware(30 * time.Second)) // Request timeout (30s)
	r.Use(CORSMiddleware())             // CORS (last before routes)

	s := &Server{
		Router:    r,
		Bus:       bus,
		DB:        database,
		Engine:    svc,
		Metrics:   metrics,
		Quotes:    quotes,
		JWTSecret: jwtSecret,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/ws", s.websocket)

	api := s.Router.Group("/api")
	{
		api.GET("/system/status", s.getSystemStatus)
		api.GET("/metrics", s.getMetrics)

		// Auth endpoints (no auth required)
		auth := api.Group("/auth")
		{
			auth.POST("/register", s.registerUser)
			auth.POST("/login", s.loginUser)
		}

		// Protected API
		protected := api.Group("")
		protected.Use(AuthMiddleware(s.JWTSecret))
		{
			protected.GET("/instruments", s.listInstruments)
			protected.GET("/quotes", s.getQuotes)

			protected.GET("/engine/status", s.getEngineStatus)
			protected.GET("/engine/:symbol/status", s.getCoreStatus)
			protected.GET("/engine/:symbol/trades", s.getActiveTrades)
			protected.GET("/engine/:symbol/history", s.getTradeHistory)
			protected.GET("/engine/:symbol/decisions", s.getDecisions)
			protected.GET("/engine/:symbol/overfit", s.getOverfitEvents)
			protected.POST("/engine/:symbol/decide", s.postDecide)
			protected.POST("/engine/save", s.saveBrains)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
