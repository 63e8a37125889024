package sync

import (
	"context"
	"time"

	"github.com/avetrov/kaiten-mirror/internal/kaiten"
	"github.com/avetrov/kaiten-mirror/internal/logger"
	"github.com/avetrov/kaiten-mirror/internal/models"
	"github.com/avetrov/kaiten-mirror/internal/transform"
)

const (
	defaultBatchSize = 100
	// cards carry large payloads; a smaller batch bounds statement size
	cardsBatchSize = 50
)

// Fetcher pulls raw collections from the source API.
type Fetcher interface {
	FetchCollection(ctx context.Context, entity models.EntityType, f kaiten.Filters) ([]kaiten.RawRecord, error)
}

// EntityStore writes mirrored rows and reports authoritative counts.
type EntityStore interface {
	UpsertBatch(ctx context.Context, entity models.EntityType, rows interface{}, batchSize int) (int, error)
	Count(ctx context.Context, entity models.EntityType) (int64, error)
}

// MetadataStore keeps the one bookkeeping row per entity type.
type MetadataStore interface {
	Get(ctx context.Context, entityType string) (*models.SyncMetadata, error)
	Upsert(ctx context.Context, meta *models.SyncMetadata) error
}

// LogStore appends sync attempt rows.
type LogStore interface {
	Start(ctx context.Context, entityType string, syncType models.SyncType) (string, error)
	Complete(ctx context.Context, logID string, stats Stats, durationMS int64) error
	Fail(ctx context.Context, logID string, errorMessage string, durationMS int64) error
}

// RoleMapper refreshes the employee role mapping after users or roles have
// been synced.
type RoleMapper interface {
	Refresh(ctx context.Context) error
}

// Options selects what one sync run covers.
type Options struct {
	// Entities to sync; nil means all known entity types.
	Entities []models.EntityType
	// Incremental limits fetches to records changed since the last
	// recorded incremental sync.
	Incremental bool
	// SkipDependencies disables prerequisite expansion. Dependencies are
	// resolved by default.
	SkipDependencies bool
	// TimeLogsFrom/TimeLogsTo (YYYY-MM-DD) override the derived time-log
	// window.
	TimeLogsFrom string
	TimeLogsTo   string
}

// Stats counts the outcome of one entity sync.
type Stats struct {
	RecordsProcessed int
	RecordsCreated   int
	RecordsUpdated   int
	RecordsSkipped   int
}

// Result is the per-entity outcome of a sync run.
type Result struct {
	EntityType       models.EntityType `json:"entity_type"`
	Success          bool              `json:"success"`
	RecordsProcessed int               `json:"records_processed"`
	RecordsCreated   int               `json:"records_created"`
	RecordsUpdated   int               `json:"records_updated"`
	RecordsSkipped   int               `json:"records_skipped"`
	Error            string            `json:"error,omitempty"`
	DurationMS       int64             `json:"duration_ms"`
}

// Orchestrator drives end-to-end sync runs: resolve order, fetch,
// transform, upsert, bookkeep.
type Orchestrator struct {
	fetcher    Fetcher
	store      EntityStore
	meta       MetadataStore
	logs       LogStore
	roleMapper RoleMapper // optional
	log        *logger.Logger
}

func NewOrchestrator(
	fetcher Fetcher,
	store EntityStore,
	meta MetadataStore,
	logs LogStore,
	roleMapper RoleMapper,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		fetcher:    fetcher,
		store:      store,
		meta:       meta,
		logs:       logs,
		roleMapper: roleMapper,
		log:        log,
	}
}

// Sync runs one sequential pipeline over the requested entity types in
// topological order. Per-entity failures become failed results; a failed
// foundational entity stops the rest of the run.
func (o *Orchestrator) Sync(ctx context.Context, opts Options) []Result {
	entities := opts.Entities
	if len(entities) == 0 {
		entities = models.AllEntities()
	}
	if !opts.SkipDependencies {
		entities = Expand(entities)
	}
	ordered := TopoSort(entities)

	o.log.Info("starting sync run", "entities", ordered, "incremental", opts.Incremental)

	results := make([]Result, 0, len(ordered))
	for _, entity := range ordered {
		result := o.syncEntity(ctx, entity, opts)
		results = append(results, result)

		if !result.Success && IsFoundational(entity) {
			o.log.Error("foundational entity failed, stopping run",
				"entity", entity, "error", result.Error)
			break
		}
	}
	return results
}

func (o *Orchestrator) syncEntity(ctx context.Context, entity models.EntityType, opts Options) Result {
	start := time.Now()

	syncType := models.SyncTypeFull
	if opts.Incremental {
		syncType = models.SyncTypeIncremental
	}

	logID, err := o.logs.Start(ctx, string(entity), syncType)
	if err != nil {
		// bookkeeping must not block the sync itself
		o.log.Warn("failed to create sync log", "entity", entity, "error", err)
	}

	o.markRunning(ctx, entity)

	stats, err := o.runEntity(ctx, entity, opts)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		o.log.Error("entity sync failed", "entity", entity, "error", err, "duration_ms", duration)
		o.recordFailure(ctx, entity, logID, err.Error(), duration)
		return Result{
			EntityType: entity,
			Success:    false,
			Error:      err.Error(),
			DurationMS: duration,
		}
	}

	if logID != "" {
		if err := o.logs.Complete(ctx, logID, stats, duration); err != nil {
			o.log.Warn("failed to complete sync log", "entity", entity, "error", err)
		}
	}

	o.log.Info("entity sync completed",
		"entity", entity, "processed", stats.RecordsProcessed, "duration_ms", duration)

	o.maybeRefreshRoleMapping(ctx, entity)

	return Result{
		EntityType:       entity,
		Success:          true,
		RecordsProcessed: stats.RecordsProcessed,
		RecordsCreated:   stats.RecordsCreated,
		RecordsUpdated:   stats.RecordsUpdated,
		RecordsSkipped:   stats.RecordsSkipped,
		DurationMS:       duration,
	}
}

// runEntity is the fetch -> transform -> upsert -> bookkeep pipeline for a
// single entity type.
func (o *Orchestrator) runEntity(ctx context.Context, entity models.EntityType, opts Options) (Stats, error) {
	meta, err := o.meta.Get(ctx, string(entity))
	if err != nil {
		return Stats{}, err
	}

	filters := fetchFilters(entity, opts, meta)

	raws, err := o.fetcher.FetchCollection(ctx, entity, filters)
	if err != nil {
		return Stats{}, err
	}

	syncedAt := time.Now().UTC()
	rows, err := transform.Records(entity, raws, syncedAt)
	if err != nil {
		return Stats{}, err
	}

	processed, err := o.store.UpsertBatch(ctx, entity, rows, batchSizeFor(entity))
	if err != nil {
		return Stats{}, err
	}

	// Count destination rows instead of trusting the batch count, so a
	// concurrent partial-range run cannot shrink a previously known total.
	total, err := o.store.Count(ctx, entity)
	if err != nil {
		return Stats{}, err
	}

	if err := o.upsertMetadata(ctx, entity, meta, opts.Incremental, total); err != nil {
		return Stats{}, err
	}

	return Stats{
		RecordsProcessed: processed,
		// without a pre-upsert existence check every row counts as updated;
		// informational only
		RecordsUpdated: processed,
	}, nil
}

// fetchFilters derives the fetch window. time_logs use calendar dates and
// explicit overrides always win; other entities use updated_since in
// incremental mode.
func fetchFilters(entity models.EntityType, opts Options, meta *models.SyncMetadata) kaiten.Filters {
	var updatedSince string
	if opts.Incremental && meta != nil && meta.LastIncrementalSyncAt != nil {
		updatedSince = meta.LastIncrementalSyncAt.UTC().Format(time.RFC3339)
	}

	if entity == models.EntityTimeLogs {
		from := opts.TimeLogsFrom
		if from == "" && updatedSince != "" {
			from = updatedSince[:10]
		}
		to := opts.TimeLogsTo
		if to == "" {
			to = time.Now().UTC().Format("2006-01-02")
		}
		return kaiten.Filters{From: from, To: to}
	}

	return kaiten.Filters{UpdatedSince: updatedSince}
}

func (o *Orchestrator) upsertMetadata(ctx context.Context, entity models.EntityType, prev *models.SyncMetadata, incremental bool, total int64) error {
	now := time.Now().UTC()
	meta := &models.SyncMetadata{
		EntityType:   string(entity),
		Status:       models.SyncStatusIdle,
		TotalRecords: total,
		UpdatedAt:    now,
	}
	if prev != nil {
		meta.LastFullSyncAt = prev.LastFullSyncAt
		meta.LastIncrementalSyncAt = prev.LastIncrementalSyncAt
	}
	if incremental {
		meta.LastIncrementalSyncAt = &now
	} else {
		meta.LastFullSyncAt = &now
	}
	return o.meta.Upsert(ctx, meta)
}

// markRunning flips the metadata row to running for the duration of the
// attempt so the status endpoint reflects in-flight work. Best effort.
func (o *Orchestrator) markRunning(ctx context.Context, entity models.EntityType) {
	meta := &models.SyncMetadata{
		EntityType: string(entity),
		Status:     models.SyncStatusRunning,
		UpdatedAt:  time.Now().UTC(),
	}
	if prev, err := o.meta.Get(ctx, string(entity)); err == nil && prev != nil {
		meta.LastFullSyncAt = prev.LastFullSyncAt
		meta.LastIncrementalSyncAt = prev.LastIncrementalSyncAt
		meta.TotalRecords = prev.TotalRecords
	}
	if err := o.meta.Upsert(ctx, meta); err != nil {
		o.log.Warn("failed to mark entity running", "entity", entity, "error", err)
	}
}

// recordFailure writes the error into both the metadata row and the sync
// log. Best effort: bookkeeping errors are logged, not propagated.
func (o *Orchestrator) recordFailure(ctx context.Context, entity models.EntityType, logID, errorMessage string, durationMS int64) {
	now := time.Now().UTC()
	meta := &models.SyncMetadata{
		EntityType:   string(entity),
		Status:       models.SyncStatusError,
		ErrorMessage: &errorMessage,
		UpdatedAt:    now,
	}
	if prev, err := o.meta.Get(ctx, string(entity)); err == nil && prev != nil {
		meta.LastFullSyncAt = prev.LastFullSyncAt
		meta.LastIncrementalSyncAt = prev.LastIncrementalSyncAt
		meta.TotalRecords = prev.TotalRecords
	}
	if err := o.meta.Upsert(ctx, meta); err != nil {
		o.log.Warn("failed to record sync failure in metadata", "entity", entity, "error", err)
	}
	if logID != "" {
		if err := o.logs.Fail(ctx, logID, errorMessage, durationMS); err != nil {
			o.log.Warn("failed to record sync failure in log", "entity", entity, "error", err)
		}
	}
}

// maybeRefreshRoleMapping triggers the employee role-mapping refresh after
// users or roles have synced. Failures are reported, not retried.
func (o *Orchestrator) maybeRefreshRoleMapping(ctx context.Context, entity models.EntityType) {
	if o.roleMapper == nil {
		return
	}
	if entity != models.EntityUsers && entity != models.EntityRoles {
		return
	}
	if err := o.roleMapper.Refresh(ctx); err != nil {
		o.log.Error("employee role mapping refresh failed", "after", entity, "error", err)
	}
}

func batchSizeFor(entity models.EntityType) int {
	if entity == models.EntityCards {
		return cardsBatchSize
	}
	return defaultBatchSize
}
