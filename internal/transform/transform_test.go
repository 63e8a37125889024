package transform

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/avetrov/kaiten-mirror/internal/kaiten"
	"github.com/avetrov/kaiten-mirror/internal/models"
)

func rawFromJSON(t *testing.T, s string) kaiten.RawRecord {
	t.Helper()
	var raw kaiten.RawRecord
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return raw
}

func TestPayloadHash_KeyOrderIndependent(t *testing.T) {
	a := rawFromJSON(t, `{"a":1,"b":2}`)
	b := rawFromJSON(t, `{"b":2,"a":1}`)

	if PayloadHash(a) != PayloadHash(b) {
		t.Error("expected identical hashes regardless of key order")
	}
	if len(PayloadHash(a)) != 64 {
		t.Errorf("expected hex sha256 (64 chars), got %d", len(PayloadHash(a)))
	}
}

func TestPayloadHash_NestedKeyOrderIndependent(t *testing.T) {
	a := rawFromJSON(t, `{"id":1,"board":{"x":1,"y":2}}`)
	b := rawFromJSON(t, `{"board":{"y":2,"x":1},"id":1}`)

	if PayloadHash(a) != PayloadHash(b) {
		t.Error("expected identical hashes for reordered nested keys")
	}
}

func TestPayloadHash_DifferentContent(t *testing.T) {
	a := rawFromJSON(t, `{"a":1}`)
	b := rawFromJSON(t, `{"a":2}`)

	if PayloadHash(a) == PayloadHash(b) {
		t.Error("expected different hashes for different content")
	}
}

func TestCardRow_SpaceIDFallback(t *testing.T) {
	raw := rawFromJSON(t, `{
		"id": 1, "title": "Test", "board_id": 5, "column_id": 6,
		"board": {"id": 5, "spaces": [{"id": 42}]}
	}`)

	row, err := Record(models.EntityCards, raw, time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	card := row.(*models.Card)
	if card.SpaceID == nil || *card.SpaceID != 42 {
		t.Errorf("expected space_id 42 from nested board.spaces, got %v", card.SpaceID)
	}
}

func TestCardRow_ParentsChildrenFallback(t *testing.T) {
	raw := rawFromJSON(t, `{
		"id": 1, "title": "Test", "board_id": 5, "column_id": 6,
		"parents": [{"id": 7}, {"id": 9}],
		"children_ids": [3, 4]
	}`)

	row, err := Record(models.EntityCards, raw, time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	card := row.(*models.Card)

	if len(card.ParentsIDs) != 2 || card.ParentsIDs[0] != 7 || card.ParentsIDs[1] != 9 {
		t.Errorf("expected parents_ids [7 9] from nested objects, got %v", card.ParentsIDs)
	}
	if len(card.ChildrenIDs) != 2 || card.ChildrenIDs[0] != 3 || card.ChildrenIDs[1] != 4 {
		t.Errorf("expected flat children_ids [3 4] to win, got %v", card.ChildrenIDs)
	}
}

func TestCardRow_OwnerAndMembers(t *testing.T) {
	raw := rawFromJSON(t, `{
		"id": 1, "title": "Test", "board_id": 5, "column_id": 6,
		"members": [{"id": 100, "full_name": "A"}, {"id": 200, "full_name": "B"}]
	}`)

	row, err := Record(models.EntityCards, raw, time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	card := row.(*models.Card)

	if card.OwnerID == nil || *card.OwnerID != 100 {
		t.Errorf("expected owner_id to fall back to first member, got %v", card.OwnerID)
	}
	if len(card.MembersIDs) != 2 || card.MembersIDs[1] != 200 {
		t.Errorf("expected members_ids [100 200], got %v", card.MembersIDs)
	}
}

func TestCardRow_MissingOptionalFields(t *testing.T) {
	raw := rawFromJSON(t, `{"id": 1, "title": "Bare", "board_id": 5, "column_id": 6}`)

	row, err := Record(models.EntityCards, raw, time.Now())
	if err != nil {
		t.Fatalf("expected no error for missing optional fields, got %v", err)
	}
	card := row.(*models.Card)

	if card.SpaceID != nil || card.LaneID != nil || card.OwnerID != nil || card.Description != nil {
		t.Error("expected absent optional fields to map to nil")
	}
	if card.Archived || card.Blocked {
		t.Error("expected absent flags to map to false")
	}
	if len(card.ParentsIDs) != 0 || len(card.MembersIDs) != 0 {
		t.Error("expected absent arrays to map to empty")
	}
}

func TestTimeLogRow_StripsHeavyRelationsAndExtractsIDs(t *testing.T) {
	raw := rawFromJSON(t, `{
		"id": 1,
		"time_spent": 90,
		"for_date": "2024-03-15",
		"card": {"id": 11, "title": "big nested card"},
		"author": {"id": 22},
		"role": {"id": 33},
		"board": {"id": 44},
		"comment": "work"
	}`)

	row, err := Record(models.EntityTimeLogs, raw, time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	tl := row.(*models.TimeLog)

	if tl.CardID == nil || *tl.CardID != 11 {
		t.Errorf("expected card_id 11 from nested card, got %v", tl.CardID)
	}
	if tl.UserID == nil || *tl.UserID != 22 {
		t.Errorf("expected user_id 22 from nested author, got %v", tl.UserID)
	}
	if tl.RoleID == nil || *tl.RoleID != 33 {
		t.Errorf("expected role_id 33 from nested role, got %v", tl.RoleID)
	}
	if tl.TimeSpentMinutes != 90 {
		t.Errorf("expected time_spent fallback 90, got %d", tl.TimeSpentMinutes)
	}
	if tl.Date == nil || *tl.Date != "2024-03-15" {
		t.Errorf("expected date from for_date, got %v", tl.Date)
	}

	for _, k := range []string{"card", "author", "role", "board"} {
		if _, ok := tl.RawPayload[k]; ok {
			t.Errorf("expected %q to be stripped from stored payload", k)
		}
	}
	if _, ok := tl.RawPayload["comment"]; !ok {
		t.Error("expected scalar fields to survive in stored payload")
	}
}

func TestTimeLogRow_FlatIDsWin(t *testing.T) {
	raw := rawFromJSON(t, `{
		"id": 1,
		"user_id": 5,
		"author_id": 6,
		"time_spent_minutes": 30,
		"date": "2024-01-02T10:00:00Z"
	}`)

	row, err := Record(models.EntityTimeLogs, raw, time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	tl := row.(*models.TimeLog)

	if tl.UserID == nil || *tl.UserID != 5 {
		t.Errorf("expected flat user_id to win over author_id, got %v", tl.UserID)
	}
	if tl.Date == nil || *tl.Date != "2024-01-02" {
		t.Errorf("expected timestamp truncated to calendar date, got %v", tl.Date)
	}
}

func TestRecords_TypedSlice(t *testing.T) {
	raws := []kaiten.RawRecord{
		rawFromJSON(t, `{"id": 1, "title": "Space A"}`),
		rawFromJSON(t, `{"id": 2, "title": "Space B", "archived": true}`),
	}

	out, err := Records(models.EntitySpaces, raws, time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rows, ok := out.([]models.Space)
	if !ok {
		t.Fatalf("expected []models.Space, got %T", out)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Title != "Space A" || rows[1].Archived != true {
		t.Error("unexpected mapped values")
	}
	if rows[0].PayloadHash == "" {
		t.Error("expected payload hash to be populated")
	}
}

func TestRecord_NoTransformer(t *testing.T) {
	_, err := Record(models.EntityType("bogus"), kaiten.RawRecord{"id": float64(1)}, time.Now())
	if err == nil {
		t.Fatal("expected error for unknown entity type, got nil")
	}
	if !errors.Is(err, ErrNoTransformer) {
		t.Errorf("expected ErrNoTransformer, got %v", err)
	}
}
