package actual

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
)

func newTestClient(serverURL string) *Client {
	return New(Options{
		ServerURL: serverURL,
		Password:  "pw",
		BudgetID:  "budget-1",
		Logger:    log.Default(),
	})
}

func TestOpenHappensOnce(t *testing.T) {
	var opens int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/budgets/budget-1":
			atomic.AddInt32(&opens, 1)
			fmt.Fprint(w, `{"data": {"id": "budget-1"}}`)
		case "/v1/budgets/budget-1/accounts":
			fmt.Fprint(w, `{"data": []}`)
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Accounts(); err != nil {
				t.Errorf("Accounts failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&opens); n != 1 {
		t.Errorf("budget opened %d times, want 1", n)
	}
}

func TestOpenFailureIsSticky(t *testing.T) {
	var requests int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	if _, err := client.Accounts(); err == nil {
		t.Fatal("expected open to fail")
	}
	if _, err := client.Accounts(); err == nil {
		t.Fatal("expected cached open failure")
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("open retried %d times, want a single attempt", n)
	}
}

func TestImportTransactions(t *testing.T) {
	var importBody struct {
		Transactions []ImportTransaction `json:"transactions"`
	}
	var gotPath, gotKey string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/budgets/budget-1" {
			fmt.Fprint(w, `{"data": {"id": "budget-1"}}`)
			return
		}
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		if err := json.NewDecoder(r.Body).Decode(&importBody); err != nil {
			t.Errorf("bad import body: %v", err)
		}
		fmt.Fprint(w, `{"data": {"added": ["t1"], "updated": []}}`)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	result, err := client.ImportTransactions("acc-9", []ImportTransaction{{
		ImportedID: "t1",
		Date:       "2024-01-06",
		Amount:     1500,
		Cleared:    true,
	}})
	if err != nil {
		t.Fatalf("ImportTransactions failed: %v", err)
	}

	if gotPath != "/v1/budgets/budget-1/accounts/acc-9/transactions/import" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "pw" {
		t.Errorf("api key header = %q", gotKey)
	}
	if len(importBody.Transactions) != 1 || importBody.Transactions[0].ImportedID != "t1" {
		t.Errorf("unexpected import payload: %+v", importBody.Transactions)
	}
	if len(result.Added) != 1 || result.Added[0] != "t1" {
		t.Errorf("unexpected result: %+v", result)
	}
}
