package transform

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"

	"github.com/avetrov/kaiten-mirror/internal/kaiten"
	"github.com/avetrov/kaiten-mirror/internal/models"
)

// ErrNoTransformer marks an entity type without a registered mapping. This
// is a programmer error: the orchestrator reports it as a failed sync.
var ErrNoTransformer = errors.New("no transformer registered for entity type")

// nested relations dropped from stored time-log payloads; their ids are
// extracted into dedicated columns instead.
var timeLogHeavyKeys = []string{
	"card", "user", "owner", "author", "role", "tags",
	"board", "lane", "column", "parents", "children",
}

// Record maps one raw record to its typed row. The result is a pointer to
// the row struct, ready for a single-row upsert.
func Record(entity models.EntityType, raw kaiten.RawRecord, syncedAt time.Time) (interface{}, error) {
	switch entity {
	case models.EntitySpaces:
		row := spaceRow(raw, syncedAt)
		return &row, nil
	case models.EntityBoards:
		row := boardRow(raw, syncedAt)
		return &row, nil
	case models.EntityColumns:
		row := columnRow(raw, syncedAt)
		return &row, nil
	case models.EntityLanes:
		row := laneRow(raw, syncedAt)
		return &row, nil
	case models.EntityUsers:
		row := userRow(raw, syncedAt)
		return &row, nil
	case models.EntityCardTypes:
		row := cardTypeRow(raw, syncedAt)
		return &row, nil
	case models.EntityPropertyDefinitions:
		row := propertyDefinitionRow(raw, syncedAt)
		return &row, nil
	case models.EntityTags:
		row := tagRow(raw, syncedAt)
		return &row, nil
	case models.EntityRoles:
		row := roleRow(raw, syncedAt)
		return &row, nil
	case models.EntityCards:
		row := cardRow(raw, syncedAt)
		return &row, nil
	case models.EntityTimeLogs:
		row := timeLogRow(raw, syncedAt)
		return &row, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoTransformer, entity)
}

// Records maps a whole collection to a typed slice suitable for batched
// upserts.
func Records(entity models.EntityType, raws []kaiten.RawRecord, syncedAt time.Time) (interface{}, error) {
	switch entity {
	case models.EntitySpaces:
		return mapRows(raws, syncedAt, spaceRow), nil
	case models.EntityBoards:
		return mapRows(raws, syncedAt, boardRow), nil
	case models.EntityColumns:
		return mapRows(raws, syncedAt, columnRow), nil
	case models.EntityLanes:
		return mapRows(raws, syncedAt, laneRow), nil
	case models.EntityUsers:
		return mapRows(raws, syncedAt, userRow), nil
	case models.EntityCardTypes:
		return mapRows(raws, syncedAt, cardTypeRow), nil
	case models.EntityPropertyDefinitions:
		return mapRows(raws, syncedAt, propertyDefinitionRow), nil
	case models.EntityTags:
		return mapRows(raws, syncedAt, tagRow), nil
	case models.EntityRoles:
		return mapRows(raws, syncedAt, roleRow), nil
	case models.EntityCards:
		return mapRows(raws, syncedAt, cardRow), nil
	case models.EntityTimeLogs:
		return mapRows(raws, syncedAt, timeLogRow), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoTransformer, entity)
}

func mapRows[T any](raws []kaiten.RawRecord, syncedAt time.Time, f func(kaiten.RawRecord, time.Time) T) []T {
	rows := make([]T, 0, len(raws))
	for _, raw := range raws {
		rows = append(rows, f(raw, syncedAt))
	}
	return rows
}

func baseRecord(raw kaiten.RawRecord, syncedAt time.Time) models.SyncedRecord {
	return models.SyncedRecord{
		ID:          getInt64Or(raw, "id", 0),
		UID:         getString(raw, "uid"),
		SyncedAt:    syncedAt,
		PayloadHash: PayloadHash(raw),
		RawPayload:  datatypes.JSONMap(raw),
	}
}

func spaceRow(raw kaiten.RawRecord, syncedAt time.Time) models.Space {
	return models.Space{
		SyncedRecord:    baseRecord(raw, syncedAt),
		Title:           getStringOr(raw, "title", ""),
		CompanyID:       getInt64(raw, "company_id"),
		OwnerUserID:     getInt64(raw, "owner_user_id"),
		Archived:        getBool(raw, "archived"),
		SortOrder:       getFloat(raw, "sort_order"),
		KaitenCreatedAt: getTime(raw, "created"),
		KaitenUpdatedAt: getTime(raw, "updated"),
	}
}

func boardRow(raw kaiten.RawRecord, syncedAt time.Time) models.Board {
	return models.Board{
		SyncedRecord:    baseRecord(raw, syncedAt),
		SpaceID:         getInt64Or(raw, "space_id", 0),
		Title:           getStringOr(raw, "title", ""),
		Description:     getString(raw, "description"),
		BoardType:       getString(raw, "board_type"),
		Archived:        getBool(raw, "archived"),
		SortOrder:       getFloat(raw, "sort_order"),
		KaitenCreatedAt: getTime(raw, "created"),
		KaitenUpdatedAt: getTime(raw, "updated"),
	}
}

func columnRow(raw kaiten.RawRecord, syncedAt time.Time) models.Column {
	sortOrder := getFloat(raw, "sort_order")
	if sortOrder == nil {
		sortOrder = getFloat(raw, "order")
	}
	return models.Column{
		SyncedRecord:    baseRecord(raw, syncedAt),
		Title:           getStringOr(raw, "title", ""),
		BoardID:         getInt64Or(raw, "board_id", 0),
		ColumnType:      getInt64(raw, "type"),
		SortOrder:       sortOrder,
		WIPLimit:        getInt64(raw, "wip_limit"),
		Archived:        getBool(raw, "archived"),
		KaitenCreatedAt: getTime(raw, "created"),
		KaitenUpdatedAt: getTime(raw, "updated"),
	}
}

func laneRow(raw kaiten.RawRecord, syncedAt time.Time) models.Lane {
	sortOrder := getFloat(raw, "sort_order")
	if sortOrder == nil {
		sortOrder = getFloat(raw, "order")
	}
	return models.Lane{
		SyncedRecord:    baseRecord(raw, syncedAt),
		Title:           getStringOr(raw, "title", ""),
		BoardID:         getInt64Or(raw, "board_id", 0),
		SortOrder:       sortOrder,
		Archived:        getBool(raw, "archived"),
		KaitenCreatedAt: getTime(raw, "created"),
		KaitenUpdatedAt: getTime(raw, "updated"),
	}
}

func userRow(raw kaiten.RawRecord, syncedAt time.Time) models.User {
	return models.User{
		SyncedRecord:    baseRecord(raw, syncedAt),
		FullName:        getString(raw, "full_name"),
		Email:           getString(raw, "email"),
		Username:        getString(raw, "username"),
		Timezone:        getString(raw, "timezone"),
		Role:            getInt64(raw, "role"),
		IsAdmin:         getBool(raw, "is_admin"),
		TakeLicence:     getBoolPtr(raw, "take_licence"),
		AppsPermissions: getInt64(raw, "apps_permissions"),
		Locked:          getBoolPtr(raw, "locked"),
		LastRequestDate: getTime(raw, "last_request_date"),
		KaitenCreatedAt: getTime(raw, "created"),
		KaitenUpdatedAt: getTime(raw, "updated"),
	}
}

func cardTypeRow(raw kaiten.RawRecord, syncedAt time.Time) models.CardType {
	return models.CardType{
		SyncedRecord:    baseRecord(raw, syncedAt),
		Name:            getStringOr(raw, "name", ""),
		IconURL:         getString(raw, "icon_url"),
		KaitenCreatedAt: getTime(raw, "created"),
		KaitenUpdatedAt: getTime(raw, "updated"),
	}
}

func propertyDefinitionRow(raw kaiten.RawRecord, syncedAt time.Time) models.PropertyDefinition {
	return models.PropertyDefinition{
		SyncedRecord:    baseRecord(raw, syncedAt),
		Name:            getStringOr(raw, "name", "Untitled"),
		FieldType:       getString(raw, "type"),
		SelectOptions:   jsonField(raw, "select_options"),
		KaitenCreatedAt: getTime(raw, "created"),
		KaitenUpdatedAt: getTime(raw, "updated"),
	}
}

func tagRow(raw kaiten.RawRecord, syncedAt time.Time) models.Tag {
	return models.Tag{
		SyncedRecord:    baseRecord(raw, syncedAt),
		Name:            getStringOr(raw, "name", ""),
		Color:           getString(raw, "color"),
		GroupName:       getString(raw, "group_name"),
		KaitenCreatedAt: getTime(raw, "created"),
		KaitenUpdatedAt: getTime(raw, "updated"),
	}
}

func roleRow(raw kaiten.RawRecord, syncedAt time.Time) models.Role {
	return models.Role{
		SyncedRecord:    baseRecord(raw, syncedAt),
		Name:            getStringOr(raw, "name", ""),
		CompanyID:       getInt64(raw, "company_id"),
		KaitenCreatedAt: getTime(raw, "created"),
		KaitenUpdatedAt: getTime(raw, "updated"),
	}
}

func cardRow(raw kaiten.RawRecord, syncedAt time.Time) models.Card {
	// space_id may be absent and has to be derived from the nested
	// board -> spaces relation.
	spaceID := getInt64(raw, "space_id")
	if spaceID == nil {
		if board, ok := raw["board"].(map[string]interface{}); ok {
			if spaces, ok := board["spaces"].([]interface{}); ok && len(spaces) > 0 {
				if first, ok := spaces[0].(map[string]interface{}); ok {
					spaceID = getInt64(first, "id")
				}
			}
		}
	}

	// Flat id arrays win; nested object arrays are the fallback.
	parentsIDs := idArray(raw, "parents_ids")
	if len(parentsIDs) == 0 {
		parentsIDs = nestedIDs(raw, "parents")
	}
	childrenIDs := idArray(raw, "children_ids")
	if len(childrenIDs) == 0 {
		childrenIDs = nestedIDs(raw, "children")
	}

	membersIDs := nestedIDs(raw, "members")

	ownerID := getInt64(raw, "owner_id")
	if ownerID == nil && len(membersIDs) > 0 {
		ownerID = &membersIDs[0]
	}

	properties, _ := raw["properties"].(map[string]interface{})
	if properties == nil {
		properties = map[string]interface{}{}
	}

	return models.Card{
		SyncedRecord:     baseRecord(raw, syncedAt),
		Title:            getStringOr(raw, "title", ""),
		Description:      getString(raw, "description"),
		SpaceID:          spaceID,
		BoardID:          getInt64Or(raw, "board_id", 0),
		ColumnID:         getInt64Or(raw, "column_id", 0),
		LaneID:           getInt64(raw, "lane_id"),
		TypeID:           getInt64(raw, "type_id"),
		OwnerID:          ownerID,
		CreatorID:        getInt64(raw, "creator_id"),
		State:            getInt64(raw, "state"),
		Archived:         getBool(raw, "archived"),
		Blocked:          getBool(raw, "blocked"),
		SizeText:         getString(raw, "size_text"),
		EstimateWorkload: getInt64Or(raw, "estimate_workload", 0),
		TimeSpentSum:     getInt64Or(raw, "time_spent_sum", 0),
		TimeBlockedSum:   getInt64Or(raw, "time_blocked_sum", 0),
		DueDate:          getTime(raw, "due_date"),
		StartedAt:        getTime(raw, "started_at"),
		CompletedAt:      getTime(raw, "completed_at"),
		Properties:       datatypes.JSONMap(properties),
		TagsCache:        jsonFieldOr(raw, "tags", "[]"),
		ParentsIDs:       pq.Int64Array(parentsIDs),
		ChildrenIDs:      pq.Int64Array(childrenIDs),
		MembersIDs:       pq.Int64Array(membersIDs),
		KaitenCreatedAt:  getTime(raw, "created"),
		KaitenUpdatedAt:  getTime(raw, "updated"),
	}
}

func timeLogRow(raw kaiten.RawRecord, syncedAt time.Time) models.TimeLog {
	base := baseRecord(raw, syncedAt)
	base.RawPayload = datatypes.JSONMap(slimTimeLogPayload(raw))

	cardID := getInt64(raw, "card_id")
	if cardID == nil {
		cardID = nestedID(raw, "card")
	}

	userID := getInt64(raw, "user_id")
	if userID == nil {
		userID = getInt64(raw, "author_id")
	}
	if userID == nil {
		userID = nestedID(raw, "author")
	}
	if userID == nil {
		userID = nestedID(raw, "user")
	}

	roleID := getInt64(raw, "role_id")
	if roleID == nil {
		roleID = nestedID(raw, "role")
	}

	minutes := getInt64(raw, "time_spent_minutes")
	if minutes == nil {
		minutes = getInt64(raw, "time_spent")
	}

	date := getDateString(raw, "date")
	if date == nil {
		date = getDateString(raw, "for_date")
	}

	var spent int64
	if minutes != nil {
		spent = *minutes
	}

	return models.TimeLog{
		SyncedRecord:     base,
		CardID:           cardID,
		UserID:           userID,
		RoleID:           roleID,
		TimeSpentMinutes: spent,
		Date:             date,
		Comment:          getString(raw, "comment"),
		KaitenCreatedAt:  getTime(raw, "created"),
		KaitenUpdatedAt:  getTime(raw, "updated"),
	}
}

// slimTimeLogPayload drops heavy nested relations from the stored payload
// to bound row size. The ids live in dedicated columns.
func slimTimeLogPayload(raw kaiten.RawRecord) map[string]interface{} {
	slim := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		slim[k] = v
	}
	for _, k := range timeLogHeavyKeys {
		delete(slim, k)
	}
	return slim
}

func jsonField(raw kaiten.RawRecord, key string) datatypes.JSON {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func jsonFieldOr(raw kaiten.RawRecord, key, fallback string) datatypes.JSON {
	if b := jsonField(raw, key); b != nil {
		return b
	}
	return datatypes.JSON(fallback)
}
