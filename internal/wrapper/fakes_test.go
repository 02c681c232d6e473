package wrapper

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3wrap/internal/artifact"
)

var (
	wrapperAddr = common.HexToAddress("0x0165878A594ca255338adfa4d48449f69242Eb8F")
	erc20Addr   = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	erc721Addr  = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	ownerAddr   = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

const testdata = "../artifact/testdata/"

// call is one recorded contract interaction.
type call struct {
	label string // contract.method
	kind  string // transact or call
	args  []any
}

type journal struct {
	mu    sync.Mutex
	calls []call
	byTx  map[common.Hash]string
}

func (j *journal) record(c call) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls = append(j.calls, c)
	return len(j.calls)
}

func (j *journal) labels() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, 0, len(j.calls))
	for _, c := range j.calls {
		out = append(out, c.label)
	}
	return out
}

func (j *journal) find(label string) (call, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range j.calls {
		if c.label == label {
			return c, true
		}
	}
	return call{}, false
}

func (j *journal) count(kind string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, c := range j.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

// fakeContract records every interaction instead of talking to a node.
// Transactions are still ABI-packed so argument shapes are checked.
type fakeContract struct {
	name        string
	addr        common.Address
	parsed      abi.ABI
	j           *journal
	sendErr     map[string]error
	callResults map[string][]any
	callErr     map[string]error
}

func (f *fakeContract) Address() common.Address { return f.addr }

func (f *fakeContract) Transact(_ context.Context, method string, args ...any) (*types.Transaction, error) {
	label := f.name + "." + method
	n := f.j.record(call{label: label, kind: "transact", args: args})
	if err := f.sendErr[method]; err != nil {
		return nil, err
	}
	input, err := f.parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", label, err)
	}
	tx := types.NewTx(&types.LegacyTx{Nonce: uint64(n), Data: input})
	f.j.mu.Lock()
	f.j.byTx[tx.Hash()] = label
	f.j.mu.Unlock()
	return tx, nil
}

func (f *fakeContract) Call(_ context.Context, method string, args ...any) ([]any, error) {
	f.j.record(call{label: f.name + "." + method, kind: "call", args: args})
	if err := f.callErr[method]; err != nil {
		return nil, err
	}
	return f.callResults[method], nil
}

// fakeConfirmer hands out canned receipts keyed by contract.method.
type fakeConfirmer struct {
	j        *journal
	mu       sync.Mutex
	receipts map[string]*types.Receipt
	errs     map[string]error
	waits    int
}

func (f *fakeConfirmer) Confirm(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
	f.mu.Lock()
	f.waits++
	f.mu.Unlock()

	f.j.mu.Lock()
	label := f.j.byTx[tx.Hash()]
	f.j.mu.Unlock()

	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful}
	if r, ok := f.receipts[label]; ok {
		cp := *r
		receipt = &cp
	}
	receipt.TxHash = tx.Hash()
	if err := f.errs[label]; err != nil {
		receipt.Status = types.ReceiptStatusFailed
		return receipt, err
	}
	return receipt, nil
}

func (f *fakeConfirmer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waits
}

type harness struct {
	abis      *artifact.Set
	j         *journal
	erc20     *fakeContract
	erc721    *fakeContract
	wrapper   *fakeContract
	confirmer *fakeConfirmer
	logs      *test.Hook

	mu       sync.Mutex
	progress []Progress
}

func loadABIs(t *testing.T, wrapperPath string) *artifact.Set {
	t.Helper()
	set, err := artifact.LoadSet(
		testdata+"out/MockERC20.sol/MockERC20.json",
		testdata+"out/MockERC721.sol/MockERC721.json",
		wrapperPath,
	)
	require.NoError(t, err)
	return set
}

// newHarness builds a Client over fakes. mods adjust the config before New.
func newHarness(t *testing.T, mods ...func(*Config)) (*harness, *Client) {
	t.Helper()
	j := &journal{byTx: map[common.Hash]string{}}
	h := &harness{
		abis:      loadABIs(t, testdata+"out/Wrapper.sol/Wrapper.json"),
		j:         j,
		erc20:     &fakeContract{name: "erc20", addr: erc20Addr, j: j, sendErr: map[string]error{}},
		erc721:    &fakeContract{name: "erc721", addr: erc721Addr, j: j, sendErr: map[string]error{}, callResults: map[string][]any{}, callErr: map[string]error{}},
		wrapper:   &fakeContract{name: "wrapper", addr: wrapperAddr, j: j, sendErr: map[string]error{}, callResults: map[string][]any{}, callErr: map[string]error{}},
		confirmer: &fakeConfirmer{j: j, receipts: map[string]*types.Receipt{}, errs: map[string]error{}},
	}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	h.logs = hook

	byAddr := map[common.Address]*fakeContract{
		erc20Addr:   h.erc20,
		erc721Addr:  h.erc721,
		wrapperAddr: h.wrapper,
	}
	cfg := Config{
		ABIs:           h.abis,
		WrapperAddress: wrapperAddr,
		Bind: func(addr common.Address, parsed abi.ABI) Contract {
			fc := byAddr[addr]
			fc.parsed = parsed
			return fc
		},
		Confirmer: h.confirmer,
		Owner:     ownerAddr,
		Faucet:    true,
		Observer: func(p Progress) {
			h.mu.Lock()
			h.progress = append(h.progress, p)
			h.mu.Unlock()
		},
		Logger: logger,
	}
	for _, mod := range mods {
		mod(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return h, c
}

// stages returns the observed stages with consecutive repeats collapsed.
func (h *harness) stages() []Stage {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Stage
	for _, p := range h.progress {
		if len(out) > 0 && out[len(out)-1] == p.Stage {
			continue
		}
		out = append(out, p.Stage)
	}
	return out
}

func (h *harness) last() Progress {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress[len(h.progress)-1]
}

// mintSingleLog builds the ERC1155 TransferSingle log the wrapper emits
// when it mints id to ownerAddr.
func (h *harness) mintSingleLog(t *testing.T, emitter common.Address, from common.Address, id int64) *types.Log {
	t.Helper()
	ev := h.abis.Wrapper.Events["TransferSingle"]
	data, err := ev.Inputs.NonIndexed().Pack(big.NewInt(id), big.NewInt(1))
	require.NoError(t, err)
	return &types.Log{
		Address: emitter,
		Topics: []common.Hash{
			ev.ID,
			common.BytesToHash(wrapperAddr.Bytes()),
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(ownerAddr.Bytes()),
		},
		Data: data,
	}
}

// nftTransferLog builds the ERC721 Transfer log of a mint of tokenID.
func (h *harness) nftTransferLog(tokenID int64) *types.Log {
	ev := h.abis.ERC721.Events["Transfer"]
	return &types.Log{
		Address: erc721Addr,
		Topics: []common.Hash{
			ev.ID,
			{},
			common.BytesToHash(ownerAddr.Bytes()),
			common.BigToHash(big.NewInt(tokenID)),
		},
	}
}

func receiptWith(logs ...*types.Log) *types.Receipt {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: logs}
}
