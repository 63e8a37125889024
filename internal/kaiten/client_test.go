package kaiten

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/avetrov/kaiten-mirror/internal/logger"
	"github.com/avetrov/kaiten-mirror/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "test-token", Options{
		PageSize:   100,
		MaxRetries: 1,
	}, logger.NewNop())
	return c, srv
}

func pageOfRecords(count, startID int) []RawRecord {
	items := make([]RawRecord, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, RawRecord{"id": float64(startID + i)})
	}
	return items
}

func TestFetchCollection_PaginationTermination(t *testing.T) {
	// Pages of 100, 100 and 37: the client must stop after the short page.
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("expected bearer auth header, got %q", got)
		}
		offset := r.URL.Query().Get("offset")
		var page []RawRecord
		switch offset {
		case "0":
			page = pageOfRecords(100, 0)
		case "100":
			page = pageOfRecords(100, 100)
		case "200":
			page = pageOfRecords(37, 200)
		default:
			t.Errorf("unexpected offset %s", offset)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"items": page})
	})

	c, _ := newTestClient(t, handler)
	records, err := c.FetchCollection(context.Background(), models.EntityCards, Filters{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 237 {
		t.Errorf("expected 237 records, got %d", len(records))
	}
	if n := atomic.LoadInt32(&requests); n != 3 {
		t.Errorf("expected 3 page requests, got %d", n)
	}
}

func TestFetchCollection_UpdatedSinceParam(t *testing.T) {
	var gotUpdatedSince string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUpdatedSince = r.URL.Query().Get("updated_since")
		json.NewEncoder(w).Encode([]RawRecord{})
	})

	c, _ := newTestClient(t, handler)
	_, err := c.FetchCollection(context.Background(), models.EntityUsers, Filters{UpdatedSince: "2024-01-01T00:00:00Z"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotUpdatedSince != "2024-01-01T00:00:00Z" {
		t.Errorf("expected updated_since to be forwarded, got %q", gotUpdatedSince)
	}
}

func TestFetchCollection_TimeLogsDateRange(t *testing.T) {
	var gotFrom, gotTo string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFrom = r.URL.Query().Get("from")
		gotTo = r.URL.Query().Get("to")
		json.NewEncoder(w).Encode(map[string]interface{}{"time_logs": []RawRecord{{"id": float64(1)}}})
	})

	c, _ := newTestClient(t, handler)
	records, err := c.FetchCollection(context.Background(), models.EntityTimeLogs, Filters{From: "2024-03-01", To: "2024-03-31"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotFrom != "2024-03-01" || gotTo != "2024-03-31" {
		t.Errorf("expected from/to to be passed verbatim, got from=%q to=%q", gotFrom, gotTo)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record from time_logs envelope, got %d", len(records))
	}
}

func TestFetchCollection_HTTPErrorNotRetried(t *testing.T) {
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "no access")
	})

	c, _ := newTestClient(t, handler)
	_, err := c.FetchCollection(context.Background(), models.EntitySpaces, Filters{})
	if err == nil {
		t.Fatal("expected error for 403 response, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", apiErr.Status)
	}
	if apiErr.Body != "no access" {
		t.Errorf("expected response body to be carried, got %q", apiErr.Body)
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("expected exactly 1 request for a permanent error, got %d", n)
	}
}

func TestFetchCollection_BoardDiscoverySkipsFailedParent(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/latest/spaces":
			json.NewEncoder(w).Encode([]RawRecord{{"id": float64(1)}, {"id": float64(2)}})
		case "/api/latest/spaces/1/boards":
			json.NewEncoder(w).Encode([]RawRecord{{"id": float64(10)}, {"id": float64(11)}})
		case "/api/latest/spaces/2/boards":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	c, _ := newTestClient(t, handler)
	boards, err := c.FetchCollection(context.Background(), models.EntityBoards, Filters{})
	if err != nil {
		t.Fatalf("expected discovery to tolerate one failed parent, got %v", err)
	}
	if len(boards) != 2 {
		t.Errorf("expected 2 boards from the healthy space, got %d", len(boards))
	}
}

func TestDecodeItems_Shapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":1},{"id":2}]`, 2},
		{"items envelope", `{"items":[{"id":1}]}`, 1},
		{"data envelope", `{"data":[{"id":1},{"id":2},{"id":3}]}`, 3},
		{"time_logs envelope", `{"time_logs":[{"id":1}]}`, 1},
		{"empty object", `{}`, 0},
		{"empty array", `[]`, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			items, err := decodeItems([]byte(c.body))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(items) != c.want {
				t.Errorf("expected %d items, got %d", c.want, len(items))
			}
		})
	}
}

func TestFetchCollection_UnknownEntity(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	_, err := c.FetchCollection(context.Background(), models.EntityType("bogus"), Filters{})
	if err == nil {
		t.Fatal("expected error for unknown entity type, got nil")
	}
}
