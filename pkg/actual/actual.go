package actual

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Client talks to an Actual Budget REST gateway. Opening the budget (the
// server-side download of the budget file) is expensive, so it happens lazily
// on first use and exactly once for the lifetime of the client: concurrent
// first callers wait for the same open instead of each triggering their own.
type Client struct {
	baseURL            string
	apiKey             string
	budgetID           string
	encryptionPassword string
	httpClient         *http.Client
	logger             *log.Logger

	openOnce sync.Once
	openErr  error
}

// Options configure a Client.
type Options struct {
	ServerURL          string
	Password           string
	BudgetID           string
	EncryptionPassword string
	Logger             *log.Logger
}

// New creates a client. The budget is not opened until the first call that
// needs it.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL:            strings.TrimSuffix(opts.ServerURL, "/"),
		apiKey:             opts.Password,
		budgetID:           opts.BudgetID,
		encryptionPassword: opts.EncryptionPassword,
		httpClient:         &http.Client{Timeout: 30 * time.Second},
		logger:             logger,
	}
}

// ensureOpen performs the one-time budget open. A failed open stays failed for
// the process lifetime; the operator restart is the recovery path, matching
// how a broken Actual session behaves.
func (c *Client) ensureOpen() error {
	c.openOnce.Do(func() {
		c.logger.Debug("opening actual budget", "budget_id", c.budgetID)
		c.openErr = c.do(http.MethodGet, fmt.Sprintf("/v1/budgets/%s", url.PathEscape(c.budgetID)), nil, nil)
		if c.openErr == nil {
			c.logger.Info("actual budget opened", "budget_id", c.budgetID)
		}
	})
	return c.openErr
}

// Accounts lists the accounts of the configured budget.
func (c *Client) Accounts() ([]Account, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	var out struct {
		Data []Account `json:"data"`
	}
	path := fmt.Sprintf("/v1/budgets/%s/accounts", url.PathEscape(c.budgetID))
	if err := c.do(http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ImportTransactions imports a batch of transactions into an account. Actual
// deduplicates on imported_id, so re-importing the same record is a no-op.
func (c *Client) ImportTransactions(accountID string, transactions []ImportTransaction) (*ImportResult, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	c.logger.Info("importing transactions", "account_id", accountID, "count", len(transactions))

	body := struct {
		Transactions []ImportTransaction `json:"transactions"`
	}{Transactions: transactions}

	var out struct {
		Data ImportResult `json:"data"`
	}
	path := fmt.Sprintf("/v1/budgets/%s/accounts/%s/transactions/import",
		url.PathEscape(c.budgetID), url.PathEscape(accountID))
	if err := c.do(http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) do(method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	if c.encryptionPassword != "" {
		req.Header.Set("Budget-Encryption-Password", c.encryptionPassword)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("actual request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("actual %s %s: HTTP %d: %s", method, path, res.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode actual response: %w", err)
		}
	}
	return nil
}
