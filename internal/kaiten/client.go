package kaiten

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/avetrov/kaiten-mirror/internal/logger"
	"github.com/avetrov/kaiten-mirror/internal/models"
)

// RawRecord is one source API object as returned by the server. Shapes vary
// per entity type and optional fields are the norm.
type RawRecord map[string]interface{}

// Filters narrows a collection fetch. UpdatedSince is an ISO timestamp used
// by most endpoints; From/To are calendar dates required by time-logs.
type Filters struct {
	UpdatedSince string
	From         string
	To           string
}

// APIError is a non-2xx response from the source API. It is never retried.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kaiten API error %d: %s", e.Status, e.Body)
}

// Options tunes pagination and rate-limit behavior. Zero values fall back
// to defaults.
type Options struct {
	PageSize       int
	PageDelay      time.Duration
	ChunkSize      int
	MaxRetries     int
	RetryBaseDelay time.Duration
	HTTPClient     *http.Client
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	pageSize   int
	pageDelay  time.Duration
	chunkSize  int
	maxRetries int
	retryBase  time.Duration
	log        *logger.Logger
}

// NewClient builds a stateless API client. baseURL must not include the
// /api/latest suffix.
func NewClient(baseURL, token string, opts Options, log *logger.Logger) *Client {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 5
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = 500 * time.Millisecond
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: opts.HTTPClient,
		pageSize:   opts.PageSize,
		pageDelay:  opts.PageDelay,
		chunkSize:  opts.ChunkSize,
		maxRetries: opts.MaxRetries,
		retryBase:  opts.RetryBaseDelay,
		log:        log,
	}
}

// FetchCollection returns every raw record of the given entity type matching
// the filters, with pagination and parent-collection discovery hidden.
func (c *Client) FetchCollection(ctx context.Context, entity models.EntityType, f Filters) ([]RawRecord, error) {
	switch entity {
	case models.EntitySpaces:
		return c.fetchPaginated(ctx, "spaces", updatedSinceParams(f))
	case models.EntityUsers:
		return c.fetchPaginated(ctx, "company/users", updatedSinceParams(f))
	case models.EntityCards:
		return c.fetchPaginated(ctx, "cards", updatedSinceParams(f))
	case models.EntityTimeLogs:
		return c.fetchPaginated(ctx, "time-logs", dateRangeParams(f))
	case models.EntityCardTypes:
		return c.fetchList(ctx, "card-types")
	case models.EntityTags:
		return c.fetchList(ctx, "tags")
	case models.EntityPropertyDefinitions:
		return c.fetchList(ctx, "company/custom-properties")
	case models.EntityRoles:
		return c.fetchList(ctx, "user-roles")
	case models.EntityBoards:
		return c.fetchBoards(ctx)
	case models.EntityColumns:
		return c.fetchBoardChildren(ctx, "boards/%d/columns")
	case models.EntityLanes:
		return c.fetchBoardChildren(ctx, "boards/%d/lanes")
	}
	return nil, fmt.Errorf("unknown entity type: %s", entity)
}

// fetchBoards enumerates spaces and collects each space's boards. Boards
// have no global listing endpoint.
func (c *Client) fetchBoards(ctx context.Context) ([]RawRecord, error) {
	spaces, err := c.fetchPaginated(ctx, "spaces", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spaces for board discovery: %w", err)
	}
	return c.fetchChildren(ctx, spaces, "spaces/%d/boards")
}

// fetchBoardChildren enumerates boards and collects each board's
// sub-collection (columns or lanes).
func (c *Client) fetchBoardChildren(ctx context.Context, pattern string) ([]RawRecord, error) {
	boards, err := c.fetchBoards(ctx)
	if err != nil {
		return nil, err
	}
	return c.fetchChildren(ctx, boards, pattern)
}

// fetchChildren issues one sub-request per parent in bounded waves of
// chunkSize. A failed parent is logged and skipped; its siblings proceed.
func (c *Client) fetchChildren(ctx context.Context, parents []RawRecord, pattern string) ([]RawRecord, error) {
	var mu sync.Mutex
	var all []RawRecord

	for start := 0; start < len(parents); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(parents) {
			end = len(parents)
		}

		g := new(errgroup.Group)
		for _, parent := range parents[start:end] {
			id, ok := recordID(parent)
			if !ok {
				continue
			}
			endpoint := fmt.Sprintf(pattern, id)
			g.Go(func() error {
				body, err := c.get(ctx, endpoint, nil)
				if err != nil {
					c.log.Warn("skipping parent, child fetch failed", "endpoint", endpoint, "error", err)
					return nil
				}
				items, err := decodeItems(body)
				if err != nil {
					c.log.Warn("skipping parent, undecodable response", "endpoint", endpoint, "error", err)
					return nil
				}
				mu.Lock()
				all = append(all, items...)
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		if end < len(parents) {
			if err := sleepCtx(ctx, c.pageDelay); err != nil {
				return nil, err
			}
		}
	}
	return all, nil
}

// fetchPaginated walks limit/offset pages until a short or empty page.
func (c *Client) fetchPaginated(ctx context.Context, endpoint string, params url.Values) ([]RawRecord, error) {
	var all []RawRecord
	offset := 0
	page := 0

	for {
		page++
		p := url.Values{}
		for k, vs := range params {
			p[k] = vs
		}
		p.Set("limit", strconv.Itoa(c.pageSize))
		p.Set("offset", strconv.Itoa(offset))

		body, err := c.get(ctx, endpoint, p)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s at offset %d: %w", endpoint, offset, err)
		}
		items, err := decodeItems(body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s page: %w", endpoint, err)
		}
		c.log.Debug("page fetched", "endpoint", endpoint, "page", page, "offset", offset, "received", len(items))

		if len(items) == 0 {
			break
		}
		all = append(all, items...)
		offset += len(items)
		if len(items) < c.pageSize {
			break
		}
		// inter-page delay as a rate-limit courtesy
		if err := sleepCtx(ctx, c.pageDelay); err != nil {
			return nil, err
		}
	}

	c.log.Info("collection fetched", "endpoint", endpoint, "total", len(all), "pages", page)
	return all, nil
}

// fetchList fetches a small unpaginated catalog endpoint.
func (c *Client) fetchList(ctx context.Context, endpoint string) ([]RawRecord, error) {
	body, err := c.get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	items, err := decodeItems(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", endpoint, err)
	}
	return items, nil
}

// get performs one authenticated GET. Network-class failures are retried
// with exponential backoff; non-2xx responses are permanent.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	u := fmt.Sprintf("%s/api/latest/%s", c.baseURL, endpoint)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return backoff.Permanent(&APIError{Status: resp.StatusCode, Body: string(data)})
		}
		body = data
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryBase
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries)), ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

// decodeItems tolerates the three response envelopes the API is known to
// produce: {items:[...]}, {data:[...]}, {time_logs:[...]} and a bare array.
func decodeItems(body []byte) ([]RawRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []RawRecord
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var envelope struct {
		Items    []RawRecord `json:"items"`
		Data     []RawRecord `json:"data"`
		TimeLogs []RawRecord `json:"time_logs"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	switch {
	case envelope.Items != nil:
		return envelope.Items, nil
	case envelope.Data != nil:
		return envelope.Data, nil
	case envelope.TimeLogs != nil:
		return envelope.TimeLogs, nil
	}
	return nil, nil
}

func updatedSinceParams(f Filters) url.Values {
	p := url.Values{}
	if f.UpdatedSince != "" {
		p.Set("updated_since", f.UpdatedSince)
	}
	return p
}

func dateRangeParams(f Filters) url.Values {
	p := url.Values{}
	if f.From != "" {
		p.Set("from", f.From)
	}
	if f.To != "" {
		p.Set("to", f.To)
	}
	return p
}

func recordID(r RawRecord) (int64, bool) {
	v, ok := r["id"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
