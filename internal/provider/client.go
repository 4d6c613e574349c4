// Package provider is a small client for a Plaid-style financial data API.
// Responses are returned as raw JSON; decoding into domain types happens on
// the UI side when the response is applied.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"finance-viewer/internal/logger"
)

const dateLayout = "2006-01-02"

// Options configures a Client.
type Options struct {
	BaseURL       string
	ClientID      string
	Secret        string
	InstitutionID string
	Products      []string
	HTTPClient    *http.Client
	Logger        logger.Logger
}

type Client struct {
	baseURL     string
	clientID    string
	secret      string
	institution string
	products    []string
	http        *http.Client
	logger      logger.Logger
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	products := opts.Products
	if len(products) == 0 {
		products = []string{"transactions"}
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		clientID:    opts.ClientID,
		secret:      opts.Secret,
		institution: opts.InstitutionID,
		products:    products,
		http:        hc,
		logger:      log,
	}
}

type credentials struct {
	ClientID string `json:"client_id"`
	Secret   string `json:"secret"`
}

type publicTokenCreateRequest struct {
	credentials
	InstitutionID   string   `json:"institution_id"`
	InitialProducts []string `json:"initial_products"`
}

type publicTokenCreateResponse struct {
	PublicToken string `json:"public_token"`
	RequestID   string `json:"request_id"`
}

type exchangeRequest struct {
	credentials
	PublicToken string `json:"public_token"`
}

type accessRequest struct {
	credentials
	AccessToken string `json:"access_token"`
}

type transactionsRequest struct {
	credentials
	AccessToken string              `json:"access_token"`
	StartDate   string              `json:"start_date"`
	EndDate     string              `json:"end_date"`
	Options     transactionsOptions `json:"options"`
}

type transactionsOptions struct {
	Count  int `json:"count"`
	Offset int `json:"offset"`
}

func (c *Client) creds() (credentials, error) {
	if c.clientID == "" || c.secret == "" {
		return credentials{}, ErrMissingCredentials
	}
	return credentials{ClientID: c.clientID, Secret: c.secret}, nil
}

// SignIn creates a sandbox public token for the configured institution and
// exchanges it for an access token. The exchange response carries
// access_token and item_id.
func (c *Client) SignIn(ctx context.Context) (json.RawMessage, error) {
	creds, err := c.creds()
	if err != nil {
		return nil, err
	}

	raw, err := c.post(ctx, "/sandbox/public_token/create", publicTokenCreateRequest{
		credentials:     creds,
		InstitutionID:   c.institution,
		InitialProducts: c.products,
	})
	if err != nil {
		return nil, fmt.Errorf("create public token: %w", err)
	}
	var created publicTokenCreateResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("decode public token: %w", err)
	}
	if created.PublicToken == "" {
		return nil, fmt.Errorf("create public token: empty public_token in response")
	}

	raw, err = c.post(ctx, "/item/public_token/exchange", exchangeRequest{
		credentials: creds,
		PublicToken: created.PublicToken,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange public token: %w", err)
	}
	return raw, nil
}

// Balances fetches real-time balances for every account of the item.
func (c *Client) Balances(ctx context.Context, accessToken string) (json.RawMessage, error) {
	creds, err := c.creds()
	if err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, ErrNoAccessToken
	}
	return c.post(ctx, "/accounts/balance/get", accessRequest{credentials: creds, AccessToken: accessToken})
}

// Transactions fetches transactions dated within [start, end].
func (c *Client) Transactions(ctx context.Context, accessToken string, start, end time.Time) (json.RawMessage, error) {
	creds, err := c.creds()
	if err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, ErrNoAccessToken
	}
	return c.post(ctx, "/transactions/get", transactionsRequest{
		credentials: creds,
		AccessToken: accessToken,
		StartDate:   start.Format(dateLayout),
		EndDate:     end.Format(dateLayout),
		Options:     transactionsOptions{Count: 100},
	})
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", path, err)
	}

	c.logger.Debug("ProviderClient", "request completed", map[string]interface{}{
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || (apiErr.Code == "" && apiErr.Message == "") {
			apiErr.Message = strings.TrimSpace(string(data))
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
		}
		return nil, apiErr
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: response is not valid JSON", path)
	}
	return json.RawMessage(data), nil
}
