// Package server exposes batch runs and run history over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/KaramelBytes/tabstat-cli/internal/batch"
	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"github.com/KaramelBytes/tabstat-cli/internal/history"
	"github.com/KaramelBytes/tabstat-cli/internal/stats"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// History is the subset of the run store the server needs.
type History interface {
	InsertRun(ctx context.Context, res *batch.Result) error
	ListRuns(ctx context.Context, limit int) ([]history.Run, error)
	GetRun(ctx context.Context, id string) (*history.Detail, error)
}

// Options carries the server defaults taken from configuration.
type Options struct {
	CORSOrigins []string
	Read        dataset.Options
	Params      batch.Params
}

// Server wires the batch queue and the history store to gin routes.
type Server struct {
	queue *batch.Queue
	store History
	log   *zap.Logger
	opt   Options
}

// New returns a server. store may be nil when history is disabled.
func New(queue *batch.Queue, store History, log *zap.Logger, opt Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{queue: queue, store: store, log: log, opt: opt}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	if len(s.opt.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.opt.CORSOrigins,
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "busy": s.queue.Busy()})
	})
	api.GET("/columns", s.columns)

	runs := api.Group("/runs")
	runs.POST("", s.startRun)
	runs.GET("", s.listRuns)
	runs.GET("/:id", s.getRun)
	return r
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func (s *Server) columns(c *gin.Context) {
	source := c.Query("source")
	if source == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source is required"})
		return
	}
	file, header, err := dataset.Columns(source, s.opt.Read)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, dataset.ErrNoSources) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": file, "columns": header})
}

// RunRequest is the JSON body of POST /api/runs.
type RunRequest struct {
	Tool            string   `json:"tool" binding:"required"`
	Source          string   `json:"source" binding:"required"`
	Columns         []string `json:"columns"`
	Output          string   `json:"output"`
	EmbeddingDim    int      `json:"embedding_dim"`
	ToleranceFactor float64  `json:"tolerance_factor"`
	Mode            string   `json:"mode"`
	Tail            string   `json:"tail"`
}

func (s *Server) runConfig(req RunRequest) (batch.RunConfig, error) {
	tool, err := batch.ParseTool(req.Tool)
	if err != nil {
		return batch.RunConfig{}, err
	}
	p := s.opt.Params
	if req.EmbeddingDim != 0 {
		p.EmbeddingDim = req.EmbeddingDim
	}
	if req.ToleranceFactor != 0 {
		p.ToleranceFactor = req.ToleranceFactor
	}
	if req.Mode != "" {
		if p.Mode, err = stats.ParseMode(req.Mode); err != nil {
			return batch.RunConfig{}, errors.Join(batch.ErrInvalidConfig, err)
		}
	}
	if req.Tail != "" {
		if p.Tail, err = stats.ParseTail(req.Tail); err != nil {
			return batch.RunConfig{}, errors.Join(batch.ErrInvalidConfig, err)
		}
	}
	return batch.RunConfig{
		Tool:    tool,
		Source:  req.Source,
		Columns: req.Columns,
		Output:  req.Output,
		Params:  p,
		Read:    s.opt.Read,
	}, nil
}

func (s *Server) startRun(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	cfg, err := s.runConfig(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	events, err := s.queue.Submit(c.Request.Context(), cfg)
	switch {
	case errors.Is(err, batch.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, batch.ErrInvalidConfig):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	res, err := batch.Drain(events, nil)
	if errors.Is(err, dataset.ErrNoSources) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil || res == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprint(err)})
		return
	}
	if s.store != nil {
		if err := s.store.InsertRun(context.WithoutCancel(c.Request.Context()), res); err != nil {
			s.log.Warn("store run history", zap.String("run", res.ID), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) listRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is disabled"})
		return
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	runs, err := s.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) getRun(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is disabled"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
		return
	}
	d, err := s.store.GetRun(c.Request.Context(), id.String())
	if errors.Is(err, history.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, d)
}
