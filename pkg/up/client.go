package up

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultBaseURL is the production Up API.
const DefaultBaseURL = "https://api.up.com.au/api/v1"

const userAgent = "upbank-actual-webhook/0.1"

// Client is a thin client for the Up API covering the resources this bridge
// needs: single-transaction fetch, account listing and webhook management.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates an Up API client. baseURL may be empty to use production.
func NewClient(token, baseURL string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// FetchTransaction retrieves the full detail of a single transaction. There is
// no retry here: on failure the webhook delivery fails with a 5xx and Up's own
// redelivery is the recovery path.
func (c *Client) FetchTransaction(id string) (*Transaction, error) {
	var out struct {
		Data Transaction `json:"data"`
	}
	if err := c.get(c.baseURL+"/transactions/"+url.PathEscape(id), &out); err != nil {
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", id, err)
	}
	return &out.Data, nil
}

// Accounts lists all accounts, following pagination links.
func (c *Client) Accounts() ([]Account, error) {
	var accounts []Account
	next := c.baseURL + "/accounts"
	for next != "" {
		var page struct {
			Data  []Account `json:"data"`
			Links pageLinks `json:"links"`
		}
		if err := c.get(next, &page); err != nil {
			return nil, fmt.Errorf("failed to list accounts: %w", err)
		}
		accounts = append(accounts, page.Data...)
		next = ""
		if page.Links.Next != nil {
			next = *page.Links.Next
		}
	}
	return accounts, nil
}

// CreateWebhook registers a webhook subscription. The returned resource
// carries the signing secret, which Up only reveals in this response.
func (c *Client) CreateWebhook(webhookURL, description string) (*Webhook, error) {
	body := map[string]any{
		"data": map[string]any{
			"attributes": WebhookAttributes{URL: webhookURL, Description: description},
		},
	}
	var out struct {
		Data Webhook `json:"data"`
	}
	if err := c.send(http.MethodPost, c.baseURL+"/webhooks", body, &out); err != nil {
		return nil, fmt.Errorf("failed to create webhook: %w", err)
	}
	return &out.Data, nil
}

// ListWebhooks returns all webhook subscriptions, following pagination links.
func (c *Client) ListWebhooks() ([]Webhook, error) {
	var webhooks []Webhook
	next := c.baseURL + "/webhooks"
	for next != "" {
		var page struct {
			Data  []Webhook `json:"data"`
			Links pageLinks `json:"links"`
		}
		if err := c.get(next, &page); err != nil {
			return nil, fmt.Errorf("failed to list webhooks: %w", err)
		}
		webhooks = append(webhooks, page.Data...)
		next = ""
		if page.Links.Next != nil {
			next = *page.Links.Next
		}
	}
	return webhooks, nil
}

// DeleteWebhook removes a webhook subscription.
func (c *Client) DeleteWebhook(id string) error {
	if err := c.send(http.MethodDelete, c.baseURL+"/webhooks/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete webhook %s: %w", id, err)
	}
	return nil
}

// PingWebhook asks Up to deliver a PING event to a subscription and returns
// the event Up created for it.
func (c *Client) PingWebhook(id string) (*WebhookEvent, error) {
	var out WebhookEvent
	path := c.baseURL + "/webhooks/" + url.PathEscape(id) + "/ping"
	if err := c.send(http.MethodPost, path, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to ping webhook %s: %w", id, err)
	}
	return &out, nil
}

func (c *Client) get(rawURL string, out any) error {
	return c.send(http.MethodGet, rawURL, nil, out)
}

func (c *Client) send(method, rawURL string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, rawURL, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("up request failed: %w", err)
	}
	defer res.Body.Close()

	// 401/404/429 show up often enough in operation (bad token, stale
	// transaction id, rate limit) that the status code belongs in the error.
	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("up API HTTP %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode up response: %w", err)
		}
	}
	return nil
}
