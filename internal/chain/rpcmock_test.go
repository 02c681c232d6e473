package chain

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// rpcMock creates a JSON-RPC test server. Each method maps to a list of
// results served in order; the last one repeats once the list is exhausted.
func rpcMock(t *testing.T, responses map[string][]interface{}) (*httptest.Server, func(string) int) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls = map[string]int{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			ID     json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		mu.Lock()
		n := calls[req.Method]
		calls[req.Method]++
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		results, ok := responses[req.Method]
		if !ok || len(results) == 0 {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
			})
			return
		}
		if n >= len(results) {
			n = len(results) - 1
		}
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  results[n],
		})
	}))
	count := func(method string) int {
		mu.Lock()
		defer mu.Unlock()
		return calls[method]
	}
	return srv, count
}

// receiptJSON builds the minimal receipt object ethclient will decode.
func receiptJSON(hash string, status string) map[string]interface{} {
	return map[string]interface{}{
		"transactionHash":   hash,
		"status":            status,
		"blockNumber":       "0x10",
		"blockHash":         "0x" + strings.Repeat("ab", 32),
		"cumulativeGasUsed": "0x5208",
		"gasUsed":           "0x5208",
		"logsBloom":         "0x" + strings.Repeat("00", 256),
		"logs":              []interface{}{},
		"transactionIndex":  "0x0",
		"contractAddress":   nil,
		"type":              "0x2",
	}
}
