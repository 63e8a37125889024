package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avetrov/kaiten-mirror/internal/kaiten"
	"github.com/avetrov/kaiten-mirror/internal/logger"
	"github.com/avetrov/kaiten-mirror/internal/models"
	"github.com/avetrov/kaiten-mirror/internal/transform"
	"github.com/gin-gonic/gin"
)

// WebhookStore interface for dependency injection
type WebhookStore interface {
	UpsertOne(ctx context.Context, entity models.EntityType, row interface{}) error
	ArchiveCard(ctx context.Context, id int64) error
}

// webhookEntities maps the event prefix to the mirrored entity type. Events
// for anything else are acknowledged and dropped.
var webhookEntities = map[string]models.EntityType{
	"card":  models.EntityCards,
	"space": models.EntitySpaces,
	"board": models.EntityBoards,
	"user":  models.EntityUsers,
}

// WebhookProcessor applies single-record webhook deliveries to the mirror.
type WebhookProcessor struct {
	store WebhookStore
	log   *logger.Logger
}

func NewWebhookProcessor(store WebhookStore, log *logger.Logger) *WebhookProcessor {
	return &WebhookProcessor{
		store: store,
		log:   log,
	}
}

// Process applies one delivery. Returns the affected entity type and record
// id when the event was actionable; handled=false means the event is not
// one the mirror tracks.
func (p *WebhookProcessor) Process(ctx context.Context, event string, data kaiten.RawRecord) (handled bool, entity models.EntityType, recordID int64, err error) {
	name, action, ok := strings.Cut(event, ".")
	if !ok {
		return false, "", 0, nil
	}
	entity, ok = webhookEntities[name]
	if !ok {
		return false, "", 0, nil
	}

	id, ok := recordID64(data)
	if !ok {
		return false, entity, 0, fmt.Errorf("webhook %s payload has no numeric id", event)
	}

	switch action {
	case "create", "update", "move":
		row, terr := transform.Record(entity, data, time.Now().UTC())
		if terr != nil {
			return false, entity, id, terr
		}
		if uerr := p.store.UpsertOne(ctx, entity, row); uerr != nil {
			return false, entity, id, uerr
		}
		return true, entity, id, nil
	case "archive", "delete":
		if entity != models.EntityCards {
			return false, "", 0, nil
		}
		if aerr := p.store.ArchiveCard(ctx, id); aerr != nil {
			return false, entity, id, aerr
		}
		return true, entity, id, nil
	}
	return false, "", 0, nil
}

func recordID64(data kaiten.RawRecord) (int64, bool) {
	switch v := data["id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

type webhookRequest struct {
	Event string           `json:"event"`
	Data  kaiten.RawRecord `json:"data"`
}

func (s *Server) handleWebhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid webhook body: %v", err)})
		return
	}
	if req.Event == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing event"})
		return
	}

	ctx := c.Request.Context()
	start := time.Now()

	handled, entity, recordID, err := s.webhook.Process(ctx, req.Event, req.Data)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		s.log.Error("webhook processing failed", "event", req.Event, "error", err)
		if logErr := s.logs.RecordWebhook(ctx, string(entity), req.Event, recordID, duration, err); logErr != nil {
			s.log.Warn("failed to record webhook log", "event", req.Event, "error", logErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		return
	}

	if !handled {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if logErr := s.logs.RecordWebhook(ctx, string(entity), req.Event, recordID, duration, nil); logErr != nil {
		s.log.Warn("failed to record webhook log", "event", req.Event, "error", logErr)
	}

	s.log.Info("webhook applied", "event", req.Event, "entity", entity, "id", recordID)
	c.JSON(http.StatusOK, gin.H{"status": "processed", "entity": entity, "id": recordID})
}
