// Package helius provides a client for the Helius indexing API: enhanced
// transaction history, DAS asset lookups and native balance queries.
package helius

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Default configuration values.
const (
	DefaultAPIBase    = "https://api.helius.xyz"
	DefaultRPCBase    = "https://mainnet.helius-rpc.com"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 250 * time.Millisecond
	DefaultMaxDelay   = 10 * time.Second

	// DefaultTxPageLimit is the page size for transaction history crawls.
	DefaultTxPageLimit = 200
	// DefaultAssetPageLimit is the page size for asset crawls.
	DefaultAssetPageLimit = 1000
)

// Client talks to the Helius REST and JSON-RPC endpoints.
type Client struct {
	apiBase    string
	rpcBase    string
	apiKey     string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	maxDelay   time.Duration
	requestID  atomic.Uint64
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithAPIBase overrides the REST base URL.
func WithAPIBase(base string) ClientOption {
	return func(c *Client) {
		c.apiBase = strings.TrimRight(base, "/")
	}
}

// WithRPCBase overrides the JSON-RPC base URL.
func WithRPCBase(base string) ClientOption {
	return func(c *Client) {
		c.rpcBase = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithMaxRetries sets maximum retry attempts for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// NewClient creates a Helius client. The API key is appended to every
// request as the api-key query parameter.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiBase:    DefaultAPIBase,
		rpcBase:    DefaultRPCBase,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		maxDelay:   DefaultMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// httpError carries the status and body of a non-2xx REST response.
type httpError struct {
	Status int
	Body   string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("helius API error %d: %s", e.Status, e.Body)
}

// retryable reports whether the attempt should be repeated: transport
// failures, rate limiting and server errors are transient.
func retryable(err error) bool {
	if he, ok := err.(*httpError); ok {
		return he.Status == http.StatusTooManyRequests || he.Status >= 500
	}
	return true
}

// getJSON performs a GET with retries and exponential backoff.
func (c *Client) getJSON(ctx context.Context, rawURL string, result interface{}) error {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			he := &httpError{Status: resp.StatusCode, Body: string(body)}
			if !retryable(he) {
				return he
			}
			lastErr = he
			continue
		}

		if result != nil {
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("unmarshal response: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// rpcCall performs a JSON-RPC call against the RPC endpoint with retries.
func (c *Client) rpcCall(ctx context.Context, method string, params, result interface{}) error {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/?api-key=%s", c.rpcBase, url.QueryEscape(c.apiKey))
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = &httpError{Status: resp.StatusCode, Body: string(respBody)}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return &httpError{Status: resp.StatusCode, Body: string(respBody)}
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// txHistoryURL builds the enhanced-transaction endpoint URL.
func (c *Client) txHistoryURL(address, before string, limit int) string {
	u, _ := url.Parse(fmt.Sprintf("%s/v0/addresses/%s/transactions", c.apiBase, address))
	q := u.Query()
	q.Set("api-key", c.apiKey)
	if before != "" {
		q.Set("before", before)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// GetTransactions fetches one page of enhanced transaction history.
// Pagination is keyed by the before signature. Some deployments reject the
// limit query parameter; in that case the page is re-requested without it.
func (c *Client) GetTransactions(ctx context.Context, address, before string, limit int) ([]Transaction, error) {
	var page []Transaction
	err := c.getJSON(ctx, c.txHistoryURL(address, before, limit), &page)
	if err != nil {
		if he, ok := err.(*httpError); ok && strings.Contains(strings.ToLower(he.Body), "invalid query parameter limit") {
			page = nil
			err = c.getJSON(ctx, c.txHistoryURL(address, before, 0), &page)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("get transactions for %s: %w", address, err)
	}
	return page, nil
}

// FetchAllTransactions crawls up to maxPages of history for a wallet using
// before-signature pagination. The crawl stops on an empty page or a page
// whose last record has no signature to anchor the next request.
func (c *Client) FetchAllTransactions(ctx context.Context, address string, limit, maxPages int) ([]Transaction, error) {
	if limit <= 0 {
		limit = DefaultTxPageLimit
	}

	var all []Transaction
	before := ""
	for page := 0; page < maxPages; page++ {
		txs, err := c.GetTransactions(ctx, address, before, limit)
		if err != nil {
			return nil, err
		}
		if len(txs) == 0 {
			break
		}
		all = append(all, txs...)
		before = txs[len(txs)-1].Signature
		if before == "" {
			break
		}
	}
	return all, nil
}

// getAssetsByOwnerParams is the DAS getAssetsByOwner request payload.
type getAssetsByOwnerParams struct {
	OwnerAddress   string         `json:"ownerAddress"`
	Page           int            `json:"page"`
	Limit          int            `json:"limit"`
	DisplayOptions map[string]any `json:"displayOptions,omitempty"`
}

// GetAssetsByOwner fetches one page of DAS assets for a wallet. When the
// DAS call fails, it falls back to the REST balances endpoint and maps the
// token list into fungible asset items.
func (c *Client) GetAssetsByOwner(ctx context.Context, address string, page, limit int) (*AssetPage, error) {
	params := getAssetsByOwnerParams{
		OwnerAddress:   address,
		Page:           page,
		Limit:          limit,
		DisplayOptions: map[string]any{"showFungible": true},
	}

	var result AssetPage
	if err := c.rpcCall(ctx, "getAssetsByOwner", params, &result); err == nil {
		return &result, nil
	}

	return c.balancesFallback(ctx, address)
}

// balancesResult is the raw REST balances response.
type balancesResult struct {
	Tokens []struct {
		Mint         string  `json:"mint"`
		TokenAddress string  `json:"tokenAddress"`
		Amount       float64 `json:"amount"`
		Decimals     int32   `json:"decimals"`
	} `json:"tokens"`
}

// balancesFallback maps /v0/addresses/{address}/balances into asset items.
func (c *Client) balancesFallback(ctx context.Context, address string) (*AssetPage, error) {
	u := fmt.Sprintf("%s/v0/addresses/%s/balances?api-key=%s", c.apiBase, address, url.QueryEscape(c.apiKey))

	var result balancesResult
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, fmt.Errorf("balances fallback for %s: %w", address, err)
	}

	page := &AssetPage{Total: len(result.Tokens)}
	for _, t := range result.Tokens {
		mint := t.Mint
		if mint == "" {
			mint = t.TokenAddress
		}
		page.Items = append(page.Items, Asset{
			Interface: InterfaceFungibleToken,
			ID:        mint,
			TokenInfo: &TokenInfo{Decimals: t.Decimals, Balance: t.Amount},
		})
	}
	return page, nil
}

// FetchAllAssets paginates getAssetsByOwner until a short page.
func (c *Client) FetchAllAssets(ctx context.Context, address string, pageSize, maxPages int) ([]Asset, error) {
	if pageSize <= 0 {
		pageSize = DefaultAssetPageLimit
	}

	var all []Asset
	for page := 1; page <= maxPages; page++ {
		res, err := c.GetAssetsByOwner(ctx, address, page, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Items...)
		if len(res.Items) < pageSize {
			break
		}
	}
	return all, nil
}

// getBalanceResult is the raw getBalance response value.
type getBalanceResult struct {
	Value uint64 `json:"value"`
}

// GetNativeBalance returns the wallet's native SOL balance in lamports.
// Best-effort: any failure resolves to 0.
func (c *Client) GetNativeBalance(ctx context.Context, address string) uint64 {
	params := []interface{}{address, map[string]string{"commitment": "confirmed"}}

	var result getBalanceResult
	if err := c.rpcCall(ctx, "getBalance", params, &result); err != nil {
		return 0
	}
	return result.Value
}
