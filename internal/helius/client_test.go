package helius

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key",
		WithAPIBase(srv.URL),
		WithRPCBase(srv.URL),
		WithRetryDelay(0),
	)
}

func TestGetTransactions_Page(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("api-key"); got != "test-key" {
			t.Errorf("expected api-key on request, got %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "2" {
			t.Errorf("expected limit=2, got %q", got)
		}
		json.NewEncoder(w).Encode([]Transaction{{Signature: "sig1"}, {Signature: "sig2"}})
	})

	c := newTestClient(t, handler)
	txs, err := c.GetTransactions(context.Background(), "wallet", "", 2)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(txs) != 2 || txs[0].Signature != "sig1" {
		t.Errorf("unexpected page: %+v", txs)
	}
}

func TestGetTransactions_RetriesWithoutLimitParam(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("limit") != "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error": "invalid query parameter limit"}`)
			return
		}
		json.NewEncoder(w).Encode([]Transaction{{Signature: "sig1"}})
	})

	c := newTestClient(t, handler)
	txs, err := c.GetTransactions(context.Background(), "wallet", "", 100)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("expected 1 tx after limit retry, got %d", len(txs))
	}
	if calls.Load() != 2 {
		t.Errorf("expected exactly 2 requests, got %d", calls.Load())
	}
}

func TestFetchAllTransactions_Pagination(t *testing.T) {
	pages := map[string][]Transaction{
		"":     {{Signature: "sig1"}, {Signature: "sig2"}},
		"sig2": {{Signature: "sig3"}},
		"sig3": {},
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(pages[r.URL.Query().Get("before")])
	})

	c := newTestClient(t, handler)
	txs, err := c.FetchAllTransactions(context.Background(), "wallet", 2, 10)
	if err != nil {
		t.Fatalf("FetchAllTransactions failed: %v", err)
	}
	if len(txs) != 3 || txs[2].Signature != "sig3" {
		t.Errorf("unexpected crawl result: %+v", txs)
	}
}

func TestFetchAllTransactions_MaxPages(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		json.NewEncoder(w).Encode([]Transaction{{Signature: fmt.Sprintf("sig%d", n)}})
	})

	c := newTestClient(t, handler)
	txs, err := c.FetchAllTransactions(context.Background(), "wallet", 1, 3)
	if err != nil {
		t.Fatalf("FetchAllTransactions failed: %v", err)
	}
	if len(txs) != 3 {
		t.Errorf("expected crawl capped at 3 pages, got %d txs", len(txs))
	}
}

func TestGetJSON_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]Transaction{{Signature: "sig1"}})
	})

	c := newTestClient(t, handler)
	txs, err := c.GetTransactions(context.Background(), "wallet", "", 1)
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("unexpected result: %+v", txs)
	}
}

func TestGetAssetsByOwner_DAS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Method != "getAssetsByOwner" {
			t.Errorf("unexpected method %q", req.Method)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": req.ID,
			"result": AssetPage{Total: 1, Items: []Asset{{
				Interface: InterfaceFungibleToken,
				ID:        "mint1",
				TokenInfo: &TokenInfo{Balance: 1000, Decimals: 3},
			}}},
		})
	})

	c := newTestClient(t, handler)
	page, err := c.GetAssetsByOwner(context.Background(), "wallet", 1, 100)
	if err != nil {
		t.Fatalf("GetAssetsByOwner failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "mint1" {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestGetAssetsByOwner_BalancesFallback(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			// DAS is unavailable on this deployment.
			json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0", "id": 1,
				"error": map[string]any{"code": -32601, "message": "method not found"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"tokens": []map[string]any{
				{"mint": "mint1", "amount": 500, "decimals": 2},
				{"tokenAddress": "mint2", "amount": 9, "decimals": 0},
			},
		})
	})

	c := newTestClient(t, handler)
	page, err := c.GetAssetsByOwner(context.Background(), "wallet", 1, 100)
	if err != nil {
		t.Fatalf("GetAssetsByOwner fallback failed: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 fallback items, got %d", len(page.Items))
	}
	if page.Items[0].ID != "mint1" || page.Items[0].TokenInfo.Balance != 500 {
		t.Errorf("unexpected item: %+v", page.Items[0])
	}
	if page.Items[1].ID != "mint2" {
		t.Errorf("expected tokenAddress fallback for mint, got %+v", page.Items[1])
	}
}

func TestFetchAllAssets_StopsOnShortPage(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		n := calls.Add(1)
		items := []Asset{{ID: fmt.Sprintf("mint%d", n)}, {ID: fmt.Sprintf("mint%db", n)}}
		if n == 2 {
			items = items[:1] // short page ends the crawl
		}
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": req.ID,
			"result": AssetPage{Items: items},
		})
	})

	c := newTestClient(t, handler)
	assets, err := c.FetchAllAssets(context.Background(), "wallet", 2, 10)
	if err != nil {
		t.Fatalf("FetchAllAssets failed: %v", err)
	}
	if len(assets) != 3 {
		t.Errorf("expected 3 assets over 2 pages, got %d", len(assets))
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", calls.Load())
	}
}

func TestGetNativeBalance_BestEffort(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": req.ID,
			"result": map[string]any{"value": 1500000000},
		})
	})

	c := newTestClient(t, handler)
	if got := c.GetNativeBalance(context.Background(), "wallet"); got != 1500000000 {
		t.Errorf("expected 1500000000 lamports, got %d", got)
	}

	failing := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	if got := failing.GetNativeBalance(context.Background(), "wallet"); got != 0 {
		t.Errorf("expected 0 on failure, got %d", got)
	}
}
