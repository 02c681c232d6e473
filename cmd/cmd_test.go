package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3wrap/internal/wallet"
	"github.com/Mohsinsiddi/w3wrap/internal/wrapper"
)

const (
	testKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	otherKey    = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	tokenAddr   = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

// rpcError is served as a JSON-RPC error instead of a result.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcServer is a JSON-RPC test endpoint that counts calls per method.
type rpcServer struct {
	*httptest.Server
	mu    sync.Mutex
	calls map[string]int
}

func newRPCServer(t *testing.T, responses map[string]interface{}) *rpcServer {
	t.Helper()
	s := &rpcServer{calls: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			ID     json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.calls[req.Method]++
		s.mu.Unlock()

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
	t.Cleanup(s.Close)
	return s
}

func (s *rpcServer) count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *rpcServer) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// configDir writes config.json into a fresh dir. The artifacts dir points at
// the artifact package's test build output.
func configDir(t *testing.T, fields map[string]interface{}) string {
	t.Helper()
	artifacts, err := filepath.Abs(filepath.Join("..", "internal", "artifact", "testdata", "out"))
	require.NoError(t, err)

	doc := map[string]interface{}{
		"artifacts_dir": artifacts,
		"signer":        "key",
		"log_level":     "error",
	}
	for k, v := range fields {
		doc[k] = v
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), data, 0o600))
	return dir
}

// useMemoryKeystore swaps the OS keychain for an in-memory store.
func useMemoryKeystore(t *testing.T) *wallet.InMemoryKeystore {
	t.Helper()
	ks := wallet.NewInMemoryKeystore()
	prev := openKeystore
	openKeystore = func(string) (wallet.KeystoreBackend, error) { return ks, nil }
	t.Cleanup(func() { openKeystore = prev })
	return ks
}

func resetFlags() {
	cfg = nil
	cfgDir = ""
	verbose = false
	plain = false
	signerFlag = ""
	walletFlag = ""
	privateKeyFlag = ""
	rpcFlag = ""
	walletKeyFlag = ""
	walletYesFlag = false
	listenFlag = ""
	depositDataFlag = ""
	depositURIFlag = wrapper.DefaultMetadataURI
	if f := rootCmd.Flags().Lookup("version"); f != nil {
		f.Value.Set("false") //nolint:errcheck
		f.Changed = false
	}
}

// run executes the root command against dir with plain output and returns
// everything written to stdout and stderr.
func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Setenv("W3WRAP_PRIVATE_KEY", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", dir, "--plain"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
