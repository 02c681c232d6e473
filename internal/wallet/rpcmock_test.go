package wallet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
)

// rpcError is served as a JSON-RPC error instead of a result.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcMock creates a wallet JSON-RPC test server and a client dialled to it.
// The returned func reports how often a method was called and the last
// params it received.
func rpcMock(t *testing.T, responses map[string]interface{}) (*rpc.Client, func(string) int, func(string) json.RawMessage) {
	t.Helper()
	var (
		mu     sync.Mutex
		calls  = map[string]int{}
		params = map[string]json.RawMessage{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
			ID     json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		mu.Lock()
		calls[req.Method]++
		params[req.Method] = req.Params
		mu.Unlock()

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		result, ok := responses[req.Method]
		switch {
		case !ok:
			resp["error"] = rpcError{Code: -32601, Message: "method not found"}
		default:
			if e, isErr := result.(rpcError); isErr {
				resp["error"] = e
			} else {
				resp["result"] = result
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	client, err := rpc.Dial(srv.URL)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	count := func(method string) int {
		mu.Lock()
		defer mu.Unlock()
		return calls[method]
	}
	last := func(method string) json.RawMessage {
		mu.Lock()
		defer mu.Unlock()
		return params[method]
	}
	return client, count, last
}
