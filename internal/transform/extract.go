package transform

import (
	"time"

	"github.com/avetrov/kaiten-mirror/internal/kaiten"
)

// Field extraction helpers over raw API payloads. All of them treat missing
// or mistyped values as absent; transforms never fail on optional data.

func getString(r kaiten.RawRecord, key string) *string {
	if s, ok := r[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

func getStringOr(r kaiten.RawRecord, key, fallback string) string {
	if s, ok := r[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func getInt64(r kaiten.RawRecord, key string) *int64 {
	switch v := r[key].(type) {
	case float64:
		n := int64(v)
		return &n
	case int64:
		return &v
	}
	return nil
}

func getInt64Or(r kaiten.RawRecord, key string, fallback int64) int64 {
	if n := getInt64(r, key); n != nil {
		return *n
	}
	return fallback
}

func getFloat(r kaiten.RawRecord, key string) *float64 {
	if v, ok := r[key].(float64); ok {
		return &v
	}
	return nil
}

func getBool(r kaiten.RawRecord, key string) bool {
	v, _ := r[key].(bool)
	return v
}

func getBoolPtr(r kaiten.RawRecord, key string) *bool {
	if v, ok := r[key].(bool); ok {
		return &v
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func getTime(r kaiten.RawRecord, key string) *time.Time {
	s, ok := r[key].(string)
	if !ok || s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// getDateString extracts a calendar date, truncating timestamps to
// YYYY-MM-DD.
func getDateString(r kaiten.RawRecord, key string) *string {
	s, ok := r[key].(string)
	if !ok || s == "" {
		return nil
	}
	if len(s) > 10 {
		s = s[:10]
	}
	return &s
}

// idArray reads a flat array of numeric ids.
func idArray(r kaiten.RawRecord, key string) []int64 {
	items, ok := r[key].([]interface{})
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if n, ok := item.(float64); ok {
			ids = append(ids, int64(n))
		}
	}
	return ids
}

// nestedIDs maps an array of nested objects to their id fields.
func nestedIDs(r kaiten.RawRecord, key string) []int64 {
	items, ok := r[key].([]interface{})
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if n, ok := obj["id"].(float64); ok {
			ids = append(ids, int64(n))
		}
	}
	return ids
}

// nestedID reads the id of a single nested object.
func nestedID(r kaiten.RawRecord, key string) *int64 {
	obj, ok := r[key].(map[string]interface{})
	if !ok {
		return nil
	}
	if n, ok := obj["id"].(float64); ok {
		id := int64(n)
		return &id
	}
	return nil
}
