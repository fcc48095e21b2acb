package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Service is the server-facing subset of the pipeline.
type Service interface {
	Optimize(ctx context.Context, code string) (string, error)
	Count() (int, error)
}

// Server exposes the optimization pipeline over HTTP.
type Server struct {
	service Service
	engine  *gin.Engine
	log     *slog.Logger
}

func New(service Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{service: service, log: log}

	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery(), s.logRequests)
	e.POST("/optimize-java", s.handleOptimize)
	e.GET("/healthz", s.handleHealth)
	e.GET("/records/count", s.handleCount)
	s.engine = e
	return s
}

// Handler returns the HTTP handler, usable directly in tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Info("serving", slog.String("addr", addr))
	return s.engine.Run(addr)
}

type optimizeRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleOptimize(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No code provided"})
		return
	}

	out, err := s.service.Optimize(c.Request.Context(), req.Code)
	if err != nil {
		s.log.Error("optimize request failed", slog.Any("error", err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"optimized": out})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCount(c *gin.Context) {
	n, err := s.service.Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Info("request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("took", time.Since(start)))
}
