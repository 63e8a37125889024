package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avetrov/kaiten-mirror/internal/logger"
	"github.com/avetrov/kaiten-mirror/internal/models"
	"github.com/avetrov/kaiten-mirror/internal/sync"
	"github.com/gin-gonic/gin"
)

// Syncer interface for dependency injection
type Syncer interface {
	Sync(ctx context.Context, opts sync.Options) []sync.Result
	Start(ctx context.Context, opts sync.Options) *sync.Run
}

// MetadataLister reads the per-entity bookkeeping rows
type MetadataLister interface {
	List(ctx context.Context) ([]models.SyncMetadata, error)
}

// LogReader reads and appends sync log rows
type LogReader interface {
	Recent(ctx context.Context, limit int) ([]models.SyncLog, error)
	RecordWebhook(ctx context.Context, entityType, event string, recordID int64, durationMS int64, webhookErr error) error
}

const recentLogLimit = 50

type Server struct {
	syncer  Syncer
	meta    MetadataLister
	logs    LogReader
	webhook *WebhookProcessor
	log     *logger.Logger
}

func NewServer(syncer Syncer, meta MetadataLister, logs LogReader, webhook *WebhookProcessor, log *logger.Logger) *Server {
	return &Server{
		syncer:  syncer,
		meta:    meta,
		logs:    logs,
		webhook: webhook,
		log:     log,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()

	router.GET("/healthz", s.handleHealthz)

	api := router.Group("/api")
	{
		api.POST("/sync", s.handleSync)
		api.GET("/sync/status", s.handleSyncStatus)
		api.POST("/webhooks/kaiten", s.handleWebhook)
	}

	return router
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type syncRequest struct {
	Entities         []string `json:"entities"`
	Incremental      bool     `json:"incremental"`
	SkipDependencies bool     `json:"skip_dependencies"`
	TimeLogsFrom     string   `json:"time_logs_from"`
	TimeLogsTo       string   `json:"time_logs_to"`
	Wait             bool     `json:"wait"`
}

func (s *Server) handleSync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	entities := make([]models.EntityType, 0, len(req.Entities))
	for _, e := range req.Entities {
		entity := models.EntityType(e)
		if !entity.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown entity type: %s", e)})
			return
		}
		entities = append(entities, entity)
	}

	opts := sync.Options{
		Entities:         entities,
		Incremental:      req.Incremental,
		SkipDependencies: req.SkipDependencies,
		TimeLogsFrom:     req.TimeLogsFrom,
		TimeLogsTo:       req.TimeLogsTo,
	}

	if req.Wait {
		results := s.syncer.Sync(c.Request.Context(), opts)
		c.JSON(http.StatusOK, gin.H{"results": results})
		return
	}

	s.syncer.Start(c.Request.Context(), opts)
	c.JSON(http.StatusAccepted, gin.H{
		"status":      "started",
		"incremental": req.Incremental,
	})
}

func (s *Server) handleSyncStatus(c *gin.Context) {
	ctx := c.Request.Context()

	metadata, err := s.meta.List(ctx)
	if err != nil {
		s.log.Error("failed to load sync metadata", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sync status"})
		return
	}

	logs, err := s.logs.Recent(ctx, recentLogLimit)
	if err != nil {
		s.log.Error("failed to load recent sync logs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sync status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entities":    metadata,
		"recent_logs": logs,
	})
}
