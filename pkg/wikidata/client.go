// Package wikidata implements a client for the Wikidata Action API.
//
// The client covers the three operations the comparison pipeline needs:
// entity search, claim retrieval, and batched label resolution. Requests run
// through a pipz pipeline that applies rate limiting, per-attempt timeouts,
// and retries with exponential backoff, all configured via config.APIConfig.
package wikidata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zoobzio/pipz"

	"github.com/wikiparity/wikiparity/config"
	"github.com/wikiparity/wikiparity/pkg/core"
)

const (
	actionSearch   = "wbsearchentities"
	actionEntities = "wbgetentities"

	// labelBatchSize is the Action API limit on ids per wbgetentities request.
	labelBatchSize = 50

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 8 << 20
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("wikidata: entity not found")

	// ErrRateLimited indicates the API rejected the request with 429.
	ErrRateLimited = errors.New("wikidata: rate limited")

	// ErrAPI indicates any other API failure.
	ErrAPI = errors.New("wikidata: api error")
)

// APIError is an Action API error payload, typically delivered with HTTP 200.
type APIError struct {
	Code string
	Info string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wikidata: %s: %s", e.Code, e.Info)
}

// Unwrap maps well-known API error codes onto the package sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "no-such-entity":
		return ErrNotFound
	case "ratelimited":
		return ErrRateLimited
	default:
		return ErrAPI
	}
}

// exchange carries one request through the fetch pipeline.
type exchange struct {
	params url.Values
	body   []byte
}

// Client talks to the Wikidata Action API.
type Client struct {
	baseURL   string
	language  string
	userAgent string
	client    *http.Client
	pipeline  *pipz.Sequence[*exchange]
}

// NewClient creates a client from the API configuration.
func NewClient(cfg config.APIConfig) *Client {
	c := &Client{
		baseURL:   cfg.BaseURL,
		language:  cfg.Language,
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	get := pipz.Apply("wikidata_get", c.doGet)
	attempt := pipz.NewTimeout[*exchange]("wikidata_timeout", get, cfg.Timeout)
	retry := pipz.NewBackoff[*exchange]("wikidata_retry", attempt, cfg.MaxRetries, cfg.BackoffBase)
	limiter := pipz.NewRateLimiter[*exchange]("wikidata_ratelimit", cfg.RateLimit, cfg.Burst)
	c.pipeline = pipz.NewSequence[*exchange]("wikidata_fetch", limiter, retry)

	return c
}

// WithHTTPClient overrides the underlying HTTP client. Intended for tests.
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.client = client
	return c
}

// SearchEntities returns entity suggestions for a free-text search term.
func (c *Client) SearchEntities(ctx context.Context, term string) ([]core.Suggestion, error) {
	params := url.Values{}
	params.Set("action", actionSearch)
	params.Set("format", "json")
	params.Set("language", c.language)
	params.Set("search", term)

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("search %q: decode response: %w", term, err)
	}

	suggestions := make([]core.Suggestion, 0, len(resp.Search))
	for _, hit := range resp.Search {
		suggestions = append(suggestions, core.Suggestion{
			ID:          hit.ID,
			Label:       hit.Label,
			Description: hit.Description,
		})
	}

	return suggestions, nil
}

// GetEntityClaims fetches an entity's claims, keeping only claim groups that
// contain at least one wikibase-item statement. Group order follows the API
// response.
func (c *Client) GetEntityClaims(ctx context.Context, id string) (*core.EntityClaims, error) {
	if err := validateIDs([]string{id}); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("action", actionEntities)
	params.Set("format", "json")
	params.Set("ids", id)
	params.Set("props", "claims")

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("claims %s: %w", id, err)
	}

	var resp entitiesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("claims %s: decode response: %w", id, err)
	}

	raw, ok := resp.Entities[id]
	if !ok {
		return nil, fmt.Errorf("claims %s: %w", id, ErrNotFound)
	}

	var entity entityPayload
	if err := json.Unmarshal(raw, &entity); err != nil {
		return nil, fmt.Errorf("claims %s: decode entity: %w", id, err)
	}
	if entity.Missing != nil {
		return nil, fmt.Errorf("claims %s: %w", id, ErrNotFound)
	}

	groups, err := parseClaimGroups(entity.Claims)
	if err != nil {
		return nil, fmt.Errorf("claims %s: %w", id, err)
	}

	return &core.EntityClaims{ID: id, Groups: groups}, nil
}

// GetLabels resolves labels for a batch of entity or property ids. Empty ids
// are dropped, duplicates are resolved once, and ids without a label in the
// configured language map to themselves.
func (c *Client) GetLabels(ctx context.Context, ids []string) (map[string]string, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	if err := validateIDs(unique); err != nil {
		return nil, err
	}

	labels := make(map[string]string, len(unique))
	for start := 0; start < len(unique); start += labelBatchSize {
		end := start + labelBatchSize
		if end > len(unique) {
			end = len(unique)
		}
		batch := unique[start:end]

		params := url.Values{}
		params.Set("action", actionEntities)
		params.Set("format", "json")
		params.Set("ids", strings.Join(batch, "|"))
		params.Set("props", "labels")
		params.Set("languages", c.language)

		body, err := c.get(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("labels: %w", err)
		}

		var resp entitiesResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("labels: decode response: %w", err)
		}

		for id, raw := range resp.Entities {
			var entity labelsPayload
			if err := json.Unmarshal(raw, &entity); err != nil {
				return nil, fmt.Errorf("labels: decode entity %s: %w", id, err)
			}
			if label := entity.Labels[c.language].Value; label != "" {
				labels[id] = label
			}
		}

		// Missing or unlabeled ids resolve to themselves.
		for _, id := range batch {
			if _, ok := labels[id]; !ok {
				labels[id] = id
			}
		}
	}

	return labels, nil
}

// get runs one request through the resilience pipeline and unwraps API-level
// errors, which the Action API delivers in the body of a 200 response.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	ex, err := c.pipeline.Process(ctx, &exchange{params: params})
	if err != nil {
		return nil, err
	}

	var payload apiErrorPayload
	if err := json.Unmarshal(ex.body, &payload); err == nil && payload.Error != nil {
		return nil, &APIError{Code: payload.Error.Code, Info: payload.Error.Info}
	}

	return ex.body, nil
}

// doGet executes a single HTTP GET. Transport failures and retryable status
// codes surface as errors so the backoff connector can re-run the attempt.
func (c *Client) doGet(ctx context.Context, ex *exchange) (*exchange, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+ex.params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode)
	}

	ex.body = body
	return ex, nil
}

func statusError(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return fmt.Errorf("%w: server status %d", ErrAPI, code)
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrAPI, code)
	}
}

// validateIDs rejects ids that would corrupt a batched ids parameter.
func validateIDs(ids []string) error {
	for _, id := range ids {
		if strings.ContainsAny(id, "|\n") {
			return fmt.Errorf("%w: invalid id %q", ErrAPI, id)
		}
	}
	return nil
}

// parseClaimGroups walks the claims object with a token decoder so group
// order matches the response. A group is kept when any of its claims has the
// wikibase-item datatype; ValueIDs collects the item values that carry one.
func parseClaimGroups(raw json.RawMessage) (core.ClaimGroups, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("decode claims: expected object, got %v", tok)
	}

	var groups core.ClaimGroups
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode claims: %w", err)
		}
		property, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("decode claims: expected property id, got %v", keyTok)
		}

		var groupRaw json.RawMessage
		if err := dec.Decode(&groupRaw); err != nil {
			return nil, fmt.Errorf("decode claims %s: %w", property, err)
		}

		group, keep, err := filterGroup(property, groupRaw)
		if err != nil {
			return nil, err
		}
		if keep {
			groups = append(groups, group)
		}
	}

	return groups, nil
}

func filterGroup(property string, raw json.RawMessage) (core.ClaimGroup, bool, error) {
	var claims []claim
	if err := json.Unmarshal(raw, &claims); err != nil {
		return core.ClaimGroup{}, false, fmt.Errorf("decode claims %s: %w", property, err)
	}

	group := core.ClaimGroup{Property: property, Raw: raw}
	var hasItemClaim bool
	for _, cl := range claims {
		if cl.MainSnak.Datatype != "wikibase-item" {
			continue
		}
		hasItemClaim = true
		// novalue/somevalue snaks carry no datavalue and produce no row.
		if id := cl.MainSnak.DataValue.Value.ID; id != "" {
			group.ValueIDs = append(group.ValueIDs, id)
		}
	}

	return group, hasItemClaim, nil
}
