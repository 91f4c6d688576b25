package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fraud-core/internal/events"
	"fraud-core/internal/fraud"
	"fraud-core/internal/monitor"
)

// Server wires the HTTP surface around the fraud engine and its stores.
type Server struct {
	Router  *gin.Engine
	Engine  *fraud.Engine
	Rules   fraud.RuleStore
	Alerts  fraud.AlertStore
	Bus     *events.Bus
	Metrics *monitor.Metrics
}

// Options tunes the middleware stack.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
}

func NewServer(engine *fraud.Engine, rules fraud.RuleStore, alerts fraud.AlertStore, bus *events.Bus, metrics *monitor.Metrics, opts Options) *Server {
	r := gin.New()

	// Middleware stack (order matters!)
	r.Use(recovery())                 // Panic recovery (first)
	r.Use(RequestIDMiddleware())      // Request ID tracking
	r.Use(RequestLogger(metrics))     // Request logging (after ID is set)
	r.Use(RateLimitMiddleware(opts.RateLimitRPS, opts.RateLimitBurst))
	if opts.RequestTimeout > 0 {
		r.Use(TimeoutMiddleware(opts.RequestTimeout))
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		Router:  r,
		Engine:  engine,
		Rules:   rules,
		Alerts:  alerts,
		Bus:     bus,
		Metrics: metrics,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/ws/alerts", s.alertFeed)
	if s.Metrics != nil {
		s.Router.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}

	api := s.Router.Group("/api")
	{
		api.GET("/rules", s.listRules)
		api.GET("/rules/:id", s.getRule)
		api.POST("/rules", s.createRule)
		api.PUT("/rules/:id", s.updateRule)

		api.GET("/alerts", s.listAlerts)
		api.GET("/alerts/:id", s.getAlert)
		api.POST("/alerts/:id/resolve", s.resolveAlert)

		api.POST("/analyze", s.analyze)
	}

	s.Router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"message": "Fraud detection service is running",
	})
}

func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
