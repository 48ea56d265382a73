package hypixel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lobbysight/lobbysight/internal/model"
	"github.com/lobbysight/lobbysight/internal/ratelimit"
)

// Client resolves usernames and fetches player stats from the remote APIs
type Client interface {
	// UUIDForName looks up the canonical uuid for a real username
	UUIDForName(ctx context.Context, name string) (model.PlayerUUID, error)
	// Denick resolves a nickname to the underlying player, if the
	// provider knows it
	Denick(ctx context.Context, nick string) (model.Identity, error)
	// PlayerStats fetches the bedwars stats for a player
	PlayerStats(ctx context.Context, uuid model.PlayerUUID) (model.StatsPayload, error)
}

// KeyProvider returns the current API key, or empty if none is configured.
// The key can change at runtime when a new one is picked up from the log.
type KeyProvider func() string

// HTTPClient is the HTTP implementation of Client
type HTTPClient struct {
	profileBaseURL string
	denickBaseURL  string
	statsBaseURL   string
	key            KeyProvider
	limiter        *ratelimit.Limiter
	httpClient     *http.Client
}

// Option configures an HTTPClient
type Option func(*HTTPClient)

// WithProfileBaseURL overrides the username-to-uuid endpoint
func WithProfileBaseURL(u string) Option {
	return func(c *HTTPClient) { c.profileBaseURL = strings.TrimSuffix(u, "/") }
}

// WithDenickBaseURL overrides the denick endpoint
func WithDenickBaseURL(u string) Option {
	return func(c *HTTPClient) { c.denickBaseURL = strings.TrimSuffix(u, "/") }
}

// WithStatsBaseURL overrides the stats endpoint
func WithStatsBaseURL(u string) Option {
	return func(c *HTTPClient) { c.statsBaseURL = strings.TrimSuffix(u, "/") }
}

// NewHTTPClient creates a client. The limiter gates every remote request,
// uuid lookups and denicks included, so the request budget is never
// exceeded.
func NewHTTPClient(key KeyProvider, limiter *ratelimit.Limiter, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		profileBaseURL: "https://api.mojang.com",
		denickBaseURL:  "https://api.antisniper.net",
		statsBaseURL:   "https://api.hypixel.net",
		key:            key,
		limiter:        limiter,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type profileResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UUIDForName looks up the canonical uuid for a real username
func (c *HTTPClient) UUIDForName(ctx context.Context, name string) (model.PlayerUUID, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	u := c.profileBaseURL + "/users/profiles/minecraft/" + url.PathEscape(name)

	body, err := c.get(ctx, u, "")
	if err != nil {
		return "", err
	}

	var profile profileResponse
	if err := json.Unmarshal(body, &profile); err != nil {
		return "", fmt.Errorf("failed to decode profile response: %w", err)
	}
	if profile.ID == "" {
		return "", model.ErrNotFound
	}
	return model.ParsePlayerUUID(profile.ID)
}

type denickResponse struct {
	Success bool `json:"success"`
	Player  *struct {
		UUID string `json:"uuid"`
		IGN  string `json:"ign"`
	} `json:"player"`
}

// Denick resolves a nickname to the underlying player
func (c *HTTPClient) Denick(ctx context.Context, nick string) (model.Identity, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return model.Identity{}, err
	}

	u := c.denickBaseURL + "/v2/denick?nick=" + url.QueryEscape(nick)

	body, err := c.get(ctx, u, c.key())
	if err != nil {
		return model.Identity{}, err
	}

	var resp denickResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Identity{}, fmt.Errorf("failed to decode denick response: %w", err)
	}
	if !resp.Success || resp.Player == nil || resp.Player.UUID == "" {
		return model.Identity{}, model.ErrNotFound
	}

	uuid, err := model.ParsePlayerUUID(resp.Player.UUID)
	if err != nil {
		return model.Identity{}, err
	}
	return model.Identity{UUID: uuid, Username: resp.Player.IGN}, nil
}

type statsResponse struct {
	Success bool `json:"success"`
	Player  *struct {
		Stats struct {
			Bedwars struct {
				Experience  float64 `json:"Experience"`
				FinalKills  int     `json:"final_kills_bedwars"`
				FinalDeaths int     `json:"final_deaths_bedwars"`
				Wins        int     `json:"wins_bedwars"`
				Losses      int     `json:"losses_bedwars"`
				Winstreak   int     `json:"winstreak"`
			} `json:"Bedwars"`
		} `json:"stats"`
	} `json:"player"`
}

// PlayerStats fetches the bedwars stats for a player. Each call waits for a
// rate limiter slot before hitting the network.
func (c *HTTPClient) PlayerStats(ctx context.Context, uuid model.PlayerUUID) (model.StatsPayload, error) {
	key := c.key()
	if key == "" {
		return model.StatsPayload{}, model.ErrMissingAPIKey
	}

	if err := c.limiter.Acquire(ctx); err != nil {
		return model.StatsPayload{}, err
	}

	u := c.statsBaseURL + "/player?uuid=" + url.QueryEscape(string(uuid))

	body, err := c.get(ctx, u, key)
	if err != nil {
		return model.StatsPayload{}, err
	}

	var resp statsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.StatsPayload{}, fmt.Errorf("failed to decode stats response: %w", err)
	}
	if !resp.Success || resp.Player == nil {
		return model.StatsPayload{}, model.ErrNotFound
	}

	bw := resp.Player.Stats.Bedwars
	return model.StatsPayload{
		Stars:       StarsFromExp(bw.Experience),
		FinalKills:  bw.FinalKills,
		FinalDeaths: bw.FinalDeaths,
		Wins:        bw.Wins,
		Losses:      bw.Losses,
		Winstreak:   bw.Winstreak,
	}, nil
}

func (c *HTTPClient) get(ctx context.Context, u, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if key != "" {
		req.Header.Set("API-Key", key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		return nil, model.ErrNotFound
	case http.StatusForbidden:
		return nil, model.ErrInvalidAPIKey
	case http.StatusTooManyRequests:
		return nil, model.ErrRateLimited
	default:
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, u)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
