package query

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/searchforge/searchforge/internal/domain"
	"github.com/searchforge/searchforge/internal/service"
)

// Handler handles query API requests
type Handler struct {
	orchestrator *service.Orchestrator
	logger       *zap.Logger
}

// NewHandler creates a new query handler
func NewHandler(orchestrator *service.Orchestrator, logger *zap.Logger) *Handler {
	return &Handler{orchestrator: orchestrator, logger: logger}
}

// RegisterRoutes registers query routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/query", h.Query)
}

// Query answers a user question as a marker-delimited stream: the search
// contexts, the LLM answer tokens, and optionally related questions.
// Errors are reported as JSON only before streaming has begun.
func (h *Handler) Query(c *gin.Context) {
	var req domain.QueryRequest
	if err := c.ShouldBind(&req); err != nil {
		// Fall through; the original endpoint also accepts query parameters.
	}
	if req.Query == "" {
		req.Query = c.Query("query")
	}
	if req.SearchUUID == "" {
		req.SearchUUID = c.Query("search_uuid")
	}

	if err := req.Validate(); err != nil {
		h.logger.Warn("rejecting query request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "query and search_uuid must be provided."})
		return
	}

	log := h.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("session_id", req.SearchUUID),
	)
	log.Info("handling query", zap.String("query", req.Query))

	sink := &streamSink{c: c}
	if err := h.orchestrator.Answer(c.Request.Context(), req, sink); err != nil {
		log.Error("query failed", zap.Error(err))
		if !sink.started {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Internal server error."})
		}
		return
	}
}

// streamSink writes chunks straight to the response, flushing after each so
// tokens reach the client as they are generated. Headers go out lazily on
// the first send, leaving room for a pre-stream JSON error.
type streamSink struct {
	c       *gin.Context
	started bool
}

func (s *streamSink) Send(chunk string) error {
	if !s.started {
		s.c.Header("Content-Type", "text/html; charset=utf-8")
		s.c.Status(http.StatusOK)
		s.started = true
	}
	if _, err := s.c.Writer.WriteString(chunk); err != nil {
		return err
	}
	s.c.Writer.Flush()
	return nil
}
