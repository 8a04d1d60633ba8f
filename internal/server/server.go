// Package server implements the revlog HTTP API
package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nainya/revlog/internal/logger"
	"github.com/nainya/revlog/internal/metrics"
	"github.com/nainya/revlog/pkg/registry"
)

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	reg       *registry.Registry
	log       *logger.Logger
	metrics   *metrics.Metrics
	startTime time.Time
	now       func() time.Time
}

// New creates a server over the given registry.
func New(reg *registry.Registry, log *logger.Logger, m *metrics.Metrics) *Server {
	return &Server{
		reg:       reg,
		log:       log,
		metrics:   m,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// Router builds the gin engine with all middleware and routes.
//
// Endpoints:
//
//	POST /v1/tasks/:taskId/versions - Append a new version
//	GET  /v1/tasks - List tasks with their latest titles
//	GET  /v1/tasks/:taskId - Full history for one task
//	GET  /v1/tasks/:taskId/versions/:n - One version with navigation
//	GET  /v1/stats - Cross-task summary
//	GET  /v1/health, GET /v1/ready - Probes
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), cors(), s.observe())

	v1 := r.Group("/v1")
	{
		v1.POST("/tasks/:taskId/versions", s.handleCreateVersion)
		v1.GET("/tasks", s.handleListTasks)
		v1.GET("/tasks/:taskId", s.handleGetTask)
		v1.GET("/tasks/:taskId/versions/:n", s.handleGetVersion)
		v1.GET("/stats", s.handleStats)
		v1.GET("/health", s.handleHealth)
		v1.GET("/ready", s.handleReady)
	}
	return r
}
