package gw2api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/preston-bernstein/gw2-watcher/internal/names"
	"github.com/preston-bernstein/gw2-watcher/internal/providers"
)

// Config controls how the client reaches the GW2 API.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Language   string
}

// Client performs raw requests against the GW2 v1 API.
type Client struct {
	baseURL    string
	lang       string
	httpClient httpDoer
}

// NewClient constructs a client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		lang:       resolveLanguage(cfg.Language),
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
	}
}

// Language returns the language used for name lookups.
func (c *Client) Language() string {
	return c.lang
}

var namePaths = map[names.Kind]string{
	names.KindWorld:     pathWorldNames,
	names.KindMap:       pathMapNames,
	names.KindEvent:     pathEventNames,
	names.KindObjective: pathObjectiveNames,
}

// FetchNames downloads one id->name table. It satisfies names.Source.
func (c *Client) FetchNames(ctx context.Context, kind names.Kind, lang string) (map[string]string, error) {
	path, ok := namePaths[kind]
	if !ok {
		return nil, fmt.Errorf("unknown name kind %q", kind)
	}
	if lang == "" {
		lang = c.lang
	}
	var entries []nameEntry
	op := "names." + string(kind)
	if err := c.getJSON(ctx, op, path, url.Values{"lang": {lang}}, &entries); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		out[string(e.ID)] = e.Name
	}
	return out, nil
}

func (c *Client) fetchEvents(ctx context.Context, worldID string) (eventsResponse, error) {
	var payload eventsResponse
	err := c.getJSON(ctx, providers.OpGetEvents, pathEvents, url.Values{"world_id": {worldID}}, &payload)
	if err == nil {
		err = c.validated(providers.OpGetEvents, payload.validate())
	}
	return payload, err
}

func (c *Client) fetchMatches(ctx context.Context) (matchesResponse, error) {
	var payload matchesResponse
	err := c.getJSON(ctx, providers.OpGetMatchups, pathMatches, nil, &payload)
	if err == nil {
		err = c.validated(providers.OpGetMatchups, payload.validate())
	}
	return payload, err
}

func (c *Client) fetchMatchDetails(ctx context.Context, matchID string) (detailsResponse, error) {
	var payload detailsResponse
	err := c.getJSON(ctx, providers.OpGetMatchupDetails, pathMatchDetails, url.Values{"match_id": {matchID}}, &payload)
	if err == nil {
		err = c.validated(providers.OpGetMatchupDetails, payload.validate())
	}
	return payload, err
}

func (c *Client) validated(op string, err error) error {
	if err == nil {
		return nil
	}
	return &providers.TransportError{
		Provider: providerName,
		Op:       op,
		Err:      fmt.Errorf("%w: %v", providers.ErrMalformedResponse, err),
	}
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &providers.TransportError{Provider: providerName, Op: op, Err: err}
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &providers.TransportError{Provider: providerName, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		cause := fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body)))
		if resp.StatusCode == http.StatusNotFound {
			cause = fmt.Errorf("%w: %s", providers.ErrNotFound, strings.TrimSpace(string(body)))
		}
		return &providers.TransportError{Provider: providerName, Op: op, StatusCode: resp.StatusCode, Err: cause}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &providers.TransportError{
			Provider: providerName,
			Op:       op,
			Err:      fmt.Errorf("%w: %v", providers.ErrMalformedResponse, err),
		}
	}
	return nil
}
