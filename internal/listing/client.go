// Package listing polls an HTTP market-data feed for recently listed
// tokens. This is the poll-based counterpart to the log subscription, for
// upstreams that offer no streaming interface.
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds one listing fetch.
const DefaultTimeout = 15 * time.Second

// Token is one raw listing entry. Numeric fields arrive as JSON numbers
// or strings depending on the upstream, so they stay untyped until the
// adapter normalizes them.
type Token struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Network string `json:"network"`

	CreatedAt    interface{} `json:"created_at"`
	MarketCap    interface{} `json:"market_cap"`
	Liquidity    interface{} `json:"liquidity"`
	Top10Holders interface{} `json:"top10_holders_percent"`

	Telegram string `json:"telegram"`
	Twitter  string `json:"twitter"`
	Website  string `json:"website"`

	MintAuthority   *string `json:"mint_authority"`
	FreezeAuthority *string `json:"freeze_authority"`

	LPBurned     bool `json:"lp_burned"`
	Audited      bool `json:"audit"`
	DexPaid      bool `json:"dex_paid"`
	BondingCurve bool `json:"bonding_curve"`
}

// Client fetches token listings.
type Client struct {
	endpoint string
	client   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a listing client for the given endpoint URL.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchLatest retrieves the current listing page. Providers disagree on
// the response envelope: {"tokens":[...]}, {"data":[...]} and a bare
// array are all accepted.
func (c *Client) FetchLatest(ctx context.Context) ([]Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch listings: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return decodeEnvelope(body)
}

func decodeEnvelope(body []byte) ([]Token, error) {
	var bare []Token
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Tokens []Token `json:"tokens"`
		Data   []Token `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode listing response: %w", err)
	}

	if wrapped.Tokens != nil {
		return wrapped.Tokens, nil
	}
	return wrapped.Data, nil
}
