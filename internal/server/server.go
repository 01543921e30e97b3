// Package server exposes scoring, verification and run history over HTTP
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/veracity/internal/log"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/selector"
	"github.com/ppiankov/veracity/internal/store"
)

// Runner scores and verifies claims
type Runner interface {
	Score(raw []model.RawClaim) []model.Claim
	Run(ctx context.Context, video model.Video, raw []model.RawClaim) (*model.Report, error)
}

// History reads stored runs
type History interface {
	ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error)
	GetRun(ctx context.Context, runID string) (*model.Report, error)
}

// Server is the HTTP API
type Server struct {
	runner  Runner
	history History
	engine  *gin.Engine
}

type scoreRequest struct {
	Claims []model.RawClaim `json:"claims" binding:"required"`
}

type verifyRequest struct {
	Video  model.Video      `json:"video"`
	Claims []model.RawClaim `json:"claims"`
}

// New creates the API. A nil history disables the /v1/runs endpoints.
func New(runner Runner, history History) *Server {
	s := &Server{runner: runner, history: history}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.GET("/healthz", s.health)

	v1 := r.Group("/v1")
	{
		v1.POST("/score", s.score)
		v1.POST("/verify", s.verify)
		v1.GET("/runs", s.listRuns)
		v1.GET("/runs/:id", s.getRun)
	}

	s.engine = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": s.runner.Score(req.Claims)})
}

func (s *Server) verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.runner.Run(c.Request.Context(), req.Video, req.Claims)
	if errors.Is(err, selector.ErrMalformedClaim) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error("Verification run failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) listRuns(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is disabled"})
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	runs, err := s.history.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) getRun(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is disabled"})
		return
	}

	report, err := s.history.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
