// HTTP handlers mapping routes onto registry and history operations
package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nainya/revlog/pkg/history"
	"github.com/nainya/revlog/pkg/stats"
)

// ErrorResponse is the body of every error status.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type versionPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// versionBody is the wire form of a Version. Absent prev/next pointers are
// transmitted as null, never as 0.
type versionBody struct {
	VersionNumber int               `json:"versionNumber"`
	Data          history.Payload   `json:"data"`
	Diff          history.DiffStats `json:"diff"`
	Summary       string            `json:"summary"`
	Prev          *int              `json:"prev"`
	Next          *int              `json:"next"`
	CreatedAt     time.Time         `json:"createdAt"`
}

func toVersionBody(v history.Version) versionBody {
	b := versionBody{
		VersionNumber: v.Number,
		Data:          v.Data,
		Diff:          v.Diff,
		Summary:       v.Summary,
		CreatedAt:     v.CreatedAt,
	}
	if v.Prev != 0 {
		p := v.Prev
		b.Prev = &p
	}
	if v.Next != 0 {
		n := v.Next
		b.Next = &n
	}
	return b
}

func optionalNumber(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

// handleCreateVersion handles POST /v1/tasks/:taskId/versions.
func (s *Server) handleCreateVersion(c *gin.Context) {
	taskID := c.Param("taskId")

	var req versionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	start := time.Now()
	v, err := s.reg.Append(c.Request.Context(), taskID, history.Payload{Title: req.Title, Content: req.Content})
	if err != nil {
		s.metrics.RecordAppend("error", time.Since(start))
		code := "PERSISTENCE_FAILURE"
		if errors.Is(err, history.ErrConcurrencyViolation) {
			code = "CONCURRENCY_VIOLATION"
		}
		s.log.Error("append failed").Str("task_id", taskID).Err(err).Send()
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  code,
		})
		return
	}
	s.metrics.RecordAppend("success", time.Since(start))
	s.metrics.UpdateRegistryStats(s.reg.TotalTasks(), s.reg.TotalVersions())
	s.log.LogAppend(taskID, v.Number, v.Summary)

	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Version %d created", v.Number),
		"version": toVersionBody(v),
	})
}

// handleListTasks handles GET /v1/tasks. Each task is projected to its
// identifier and the latest version's title.
func (s *Server) handleListTasks(c *gin.Context) {
	type taskItem struct {
		TaskID string `json:"taskId"`
		Title  string `json:"title"`
	}

	items := make([]taskItem, 0)
	for _, h := range s.reg.ListAll() {
		title := stats.UntitledTask
		if v, ok := h.Latest(); ok && strings.TrimSpace(v.Data.Title) != "" {
			title = strings.TrimSpace(v.Data.Title)
		}
		items = append(items, taskItem{TaskID: h.TaskID(), Title: title})
	}
	c.JSON(http.StatusOK, gin.H{"tasks": items})
}

// handleGetTask handles GET /v1/tasks/:taskId. An unknown task returns an
// explicit empty-history shape rather than an error status.
func (s *Server) handleGetTask(c *gin.Context) {
	taskID := c.Param("taskId")

	h, ok := s.reg.Find(taskID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"taskId":        taskID,
			"headVersion":   nil,
			"tailVersion":   nil,
			"totalVersions": 0,
			"versions":      []versionBody{},
		})
		return
	}

	// One snapshot for the whole body; composing it from separate reads
	// could interleave with an append and tear the shape.
	doc := h.Document()
	versions := make([]versionBody, len(doc.Versions))
	for i, v := range doc.Versions {
		versions[i] = toVersionBody(v)
	}
	c.JSON(http.StatusOK, gin.H{
		"taskId":        taskID,
		"headVersion":   optionalNumber(doc.Head),
		"tailVersion":   optionalNumber(doc.Tail),
		"totalVersions": doc.Count,
		"versions":      versions,
	})
}

// handleGetVersion handles GET /v1/tasks/:taskId/versions/:n.
func (s *Server) handleGetVersion(c *gin.Context) {
	taskID := c.Param("taskId")

	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Version number must be an integer",
			Code:  "INVALID_VERSION",
		})
		return
	}

	h, ok := s.reg.Find(taskID)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Task not found",
			Code:  "TASK_NOT_FOUND",
		})
		return
	}

	v, nav, err := h.GetVersion(n)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Version not found",
			Code:  "VERSION_NOT_FOUND",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"version":    toVersionBody(v),
		"navigation": nav,
	})
}

// handleStats handles GET /v1/stats.
func (s *Server) handleStats(c *gin.Context) {
	overview := stats.Compute(s.reg, s.now())
	s.metrics.UpdateRegistryStats(overview.TotalTasks, overview.TotalVersions)
	c.JSON(http.StatusOK, overview)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"service":       "revlog",
		"uptimeSeconds": int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
