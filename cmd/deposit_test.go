package cmd

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3wrap/internal/artifact"
	"github.com/Mohsinsiddi/w3wrap/internal/config"
)

// sentTx is one transaction the node accepted, decoded back into its call.
type sentTx struct {
	to     common.Address
	method string
	args   []any
}

// devNode is a single-account JSON-RPC node: it accepts signed raw
// transactions, mines them at once and serves their receipts.
type devNode struct {
	*httptest.Server
	abis     map[common.Address]abi.ABI
	logsFor  func(sentTx) []*types.Log
	mu       sync.Mutex
	sent     []sentTx
	receipts map[common.Hash]*types.Receipt
}

func newDevNode(t *testing.T, abis map[common.Address]abi.ABI, logsFor func(sentTx) []*types.Log) *devNode {
	t.Helper()
	n := &devNode{abis: abis, logsFor: logsFor, receipts: map[common.Hash]*types.Receipt{}}
	n.Server = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.Close)
	return n
}

func (n *devNode) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
		ID     json.RawMessage   `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var (
		result interface{}
		rpcErr *rpcError
	)
	switch req.Method {
	case "eth_chainId":
		result = "0x7a69"
	case "eth_getBlockByNumber":
		result = &types.Header{Number: big.NewInt(1), Difficulty: big.NewInt(0), GasLimit: 30_000_000}
	case "eth_gasPrice":
		result = "0x3b9aca00"
	case "eth_getCode":
		result = "0x6080"
	case "eth_estimateGas":
		result = "0x186a0"
	case "eth_getTransactionCount":
		n.mu.Lock()
		result = hexutil.Uint64(len(n.sent))
		n.mu.Unlock()
	case "eth_sendRawTransaction":
		var raw hexutil.Bytes
		if err := json.Unmarshal(req.Params[0], &raw); err != nil {
			rpcErr = &rpcError{Code: -32602, Message: err.Error()}
			break
		}
		hash, err := n.accept(raw)
		if err != nil {
			rpcErr = &rpcError{Code: -32000, Message: err.Error()}
			break
		}
		result = hash
	case "eth_getTransactionReceipt":
		var hash common.Hash
		if err := json.Unmarshal(req.Params[0], &hash); err != nil {
			rpcErr = &rpcError{Code: -32602, Message: err.Error()}
			break
		}
		n.mu.Lock()
		result = n.receipts[hash]
		n.mu.Unlock()
	default:
		rpcErr = &rpcError{Code: -32601, Message: "method not found"}
	}

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

// accept decodes a signed transaction, records the call and mines it.
func (n *devNode) accept(raw []byte) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), tx)
	if err != nil {
		return common.Hash{}, err
	}
	if from != common.HexToAddress(testAddress) {
		return common.Hash{}, errUnknownSender
	}

	if tx.To() == nil || len(tx.Data()) < 4 {
		return common.Hash{}, errors.New("not a contract call")
	}
	parsed := n.abis[*tx.To()]
	m, err := parsed.MethodById(tx.Data()[:4])
	if err != nil {
		return common.Hash{}, err
	}
	args, err := m.Inputs.Unpack(tx.Data()[4:])
	if err != nil {
		return common.Hash{}, err
	}
	call := sentTx{to: *tx.To(), method: m.Name, args: args}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, call)
	block := big.NewInt(int64(100 + len(n.sent)))
	logs := []*types.Log{}
	if n.logsFor != nil {
		logs = append(logs, n.logsFor(call)...)
	}
	for i, lg := range logs {
		lg.TxHash = tx.Hash()
		lg.BlockNumber = block.Uint64()
		lg.Index = uint(i)
	}
	n.receipts[tx.Hash()] = &types.Receipt{
		Type:              tx.Type(),
		Status:            types.ReceiptStatusSuccessful,
		CumulativeGasUsed: 50_000,
		GasUsed:           50_000,
		Logs:              logs,
		TxHash:            tx.Hash(),
		BlockNumber:       block,
	}
	return tx.Hash(), nil
}

func (n *devNode) calls() []sentTx {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentTx(nil), n.sent...)
}

var errUnknownSender = errors.New("unknown account")

// uintArg returns a decoded uint256 argument in decimal.
func (c sentTx) uintArg(i int) string {
	return c.args[i].(*big.Int).String()
}

func TestDepositERC20EndToEnd(t *testing.T) {
	out := filepath.Join("..", "internal", "artifact", "testdata", "out")
	abis, err := artifact.LoadSet(
		filepath.Join(out, config.ERC20Artifact),
		filepath.Join(out, config.ERC721Artifact),
		filepath.Join(out, config.WrapperArtifact),
	)
	require.NoError(t, err)

	token := common.HexToAddress(tokenAddr)
	wrapperAddr := common.HexToAddress(config.DefaultWrapperAddress)
	owner := common.HexToAddress(testAddress)
	transferSingle := abis.Wrapper.Events["TransferSingle"]

	data, err := transferSingle.Inputs.NonIndexed().Pack(big.NewInt(7), big.NewInt(5))
	require.NoError(t, err)

	node := newDevNode(t, map[common.Address]abi.ABI{
		token:       abis.ERC20,
		wrapperAddr: abis.Wrapper,
	}, func(c sentTx) []*types.Log {
		if c.method != "depositERC20" {
			return nil
		}
		return []*types.Log{{
			Address: wrapperAddr,
			Topics: []common.Hash{
				transferSingle.ID,
				common.BytesToHash(wrapperAddr.Bytes()),
				{},
				common.BytesToHash(owner.Bytes()),
			},
			Data: data,
		}}
	})
	dir := configDir(t, map[string]interface{}{"rpc_url": node.URL, "faucet": true})

	stdout, err := run(t, dir, "", "--private-key", testKey,
		"deposit", "erc20", tokenAddr, "5", "--data", "0xcafe")
	require.NoError(t, err)

	calls := node.calls()
	require.Len(t, calls, 3)

	assert.Equal(t, token, calls[0].to)
	assert.Equal(t, "approve", calls[0].method)
	assert.Equal(t, wrapperAddr, calls[0].args[0])
	assert.Equal(t, "5", calls[0].uintArg(1))

	assert.Equal(t, token, calls[1].to)
	assert.Equal(t, "mint", calls[1].method)
	assert.Equal(t, owner, calls[1].args[0])
	assert.Equal(t, "5", calls[1].uintArg(1))

	assert.Equal(t, wrapperAddr, calls[2].to)
	assert.Equal(t, "depositERC20", calls[2].method)
	assert.Equal(t, token, calls[2].args[0])
	assert.Equal(t, "5", calls[2].uintArg(1))
	assert.Equal(t, []byte{0xca, 0xfe}, calls[2].args[2])

	assert.Regexp(t, regexp.MustCompile(`Wrapped ID:\s+7\b`), stdout)
	assert.Regexp(t, regexp.MustCompile(`Block:\s+103\b`), stdout)
	assert.Contains(t, stdout, "approving")
}

func TestDepositERC20EndToEndWithoutFaucet(t *testing.T) {
	out := filepath.Join("..", "internal", "artifact", "testdata", "out")
	abis, err := artifact.LoadSet(
		filepath.Join(out, config.ERC20Artifact),
		filepath.Join(out, config.ERC721Artifact),
		filepath.Join(out, config.WrapperArtifact),
	)
	require.NoError(t, err)

	token := common.HexToAddress(tokenAddr)
	wrapperAddr := common.HexToAddress(config.DefaultWrapperAddress)

	// The deposit receipt carries no TransferSingle log, so the flow fails
	// after exactly approve and deposit.
	node := newDevNode(t, map[common.Address]abi.ABI{
		token:       abis.ERC20,
		wrapperAddr: abis.Wrapper,
	}, nil)
	dir := configDir(t, map[string]interface{}{"rpc_url": node.URL, "faucet": false})

	_, err = run(t, dir, "", "--private-key", testKey, "deposit", "erc20", tokenAddr, "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TransferSingle")

	calls := node.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "approve", calls[0].method)
	assert.Equal(t, "depositERC20", calls[1].method)
}

func TestDepositOversizedTokenIDSendsNothing(t *testing.T) {
	node := newRPCServer(t, nil)
	dir := configDir(t, map[string]interface{}{"rpc_url": node.URL})

	huge := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	_, err := run(t, dir, "", "--private-key", testKey, "deposit", "erc721", tokenAddr, huge.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uint256")
	assert.Zero(t, node.total())
}
