package garage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Config is the garage topology served by the simulator at GET /garage.
type Config struct {
	Sectors []SectorConfig `json:"garage"`
	Spots   []SpotConfig   `json:"spots"`
}

type SectorConfig struct {
	Name                 string          `json:"sector"`
	BasePrice            decimal.Decimal `json:"base_price"`
	MaxCapacity          int             `json:"max_capacity"`
	OpenHour             string          `json:"open_hour"`
	CloseHour            string          `json:"close_hour"`
	DurationLimitMinutes int             `json:"duration_limit_minutes"`
}

type SpotConfig struct {
	ID       int64   `json:"id"`
	Sector   string  `json:"sector"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Occupied bool    `json:"occupied"`
}

// ConfigSource provides the garage topology. The simulator client is the
// production implementation; tests stub it.
type ConfigSource interface {
	FetchConfig(ctx context.Context) (*Config, error)
}

// Client fetches the garage topology from the simulator.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

func (c *Client) FetchConfig(ctx context.Context) (*Config, error) {
	url := c.baseURL + "/garage"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching garage config from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching garage config from %s: unexpected status %d", url, resp.StatusCode)
	}

	var cfg Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding garage config: %w", err)
	}
	return &cfg, nil
}
