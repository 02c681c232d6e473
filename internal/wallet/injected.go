package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Errors returned by the injected wallet provider.
var (
	ErrChainRejected  = errors.New("wallet rejected the network")
	ErrNoAccounts     = errors.New("wallet returned no accounts")
	ErrSignerMismatch = errors.New("wallet signed with a different account")
)

// RPCCaller is the subset of *rpc.Client the injected provider needs.
type RPCCaller interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

// NativeCurrency describes the chain's gas token.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// ChainParams is the wallet_addEthereumChain payload.
type ChainParams struct {
	ChainID        *hexutil.Big   `json:"chainId"`
	ChainName      string         `json:"chainName"`
	NativeCurrency NativeCurrency `json:"nativeCurrency"`
	RPCURLs        []string       `json:"rpcUrls"`
}

// NewChainParams builds the descriptor of a chain to register with a wallet.
func NewChainParams(chainID int64, name string, rpcURLs []string, currency NativeCurrency) ChainParams {
	return ChainParams{
		ChainID:        (*hexutil.Big)(big.NewInt(chainID)),
		ChainName:      name,
		NativeCurrency: currency,
		RPCURLs:        rpcURLs,
	}
}

// InjectedProvider delegates account selection and signing to an external
// wallet reached over JSON-RPC. The wallet must accept the network before any
// account is requested.
type InjectedProvider struct {
	rpc   RPCCaller
	chain ChainParams
}

// NewInjectedProvider creates a provider for the wallet behind rpc.
func NewInjectedProvider(rpc RPCCaller, chain ChainParams) *InjectedProvider {
	return &InjectedProvider{rpc: rpc, chain: chain}
}

func (p *InjectedProvider) Name() string { return "wallet" }

// AddChain asks the wallet to add (or switch to) the configured network.
func (p *InjectedProvider) AddChain(ctx context.Context) error {
	if err := p.rpc.CallContext(ctx, nil, "wallet_addEthereumChain", p.chain); err != nil {
		return fmt.Errorf("%w: %v", ErrChainRejected, err)
	}
	return nil
}

// Accounts requests the wallet's accounts.
func (p *InjectedProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.rpc.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, fmt.Errorf("eth_requestAccounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	return accounts, nil
}

// Connect registers the network, picks the wallet's first account and
// returns options that sign through eth_signTransaction.
func (p *InjectedProvider) Connect(ctx context.Context) (*Account, error) {
	if err := p.AddChain(ctx); err != nil {
		return nil, err
	}
	accounts, err := p.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	from := accounts[0]
	opts := &bind.TransactOpts{
		From:    from,
		Context: ctx,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != from {
				return nil, bind.ErrNotAuthorized
			}
			return p.sign(context.Background(), from, tx)
		},
	}
	return &Account{Address: from, Opts: opts}, nil
}

type txArgs struct {
	From                 common.Address  `json:"from"`
	To                   *common.Address `json:"to,omitempty"`
	Gas                  hexutil.Uint64  `json:"gas"`
	GasPrice             *hexutil.Big    `json:"gasPrice,omitempty"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas,omitempty"`
	Value                *hexutil.Big    `json:"value"`
	Nonce                hexutil.Uint64  `json:"nonce"`
	Data                 hexutil.Bytes   `json:"data"`
	ChainID              *hexutil.Big    `json:"chainId"`
}

func (p *InjectedProvider) sign(ctx context.Context, from common.Address, tx *types.Transaction) (*types.Transaction, error) {
	chainID := p.chain.ChainID.ToInt()
	args := txArgs{
		From:    from,
		To:      tx.To(),
		Gas:     hexutil.Uint64(tx.Gas()),
		Value:   (*hexutil.Big)(tx.Value()),
		Nonce:   hexutil.Uint64(tx.Nonce()),
		Data:    tx.Data(),
		ChainID: (*hexutil.Big)(chainID),
	}
	if tx.Type() == types.DynamicFeeTxType {
		args.MaxFeePerGas = (*hexutil.Big)(tx.GasFeeCap())
		args.MaxPriorityFeePerGas = (*hexutil.Big)(tx.GasTipCap())
	} else {
		args.GasPrice = (*hexutil.Big)(tx.GasPrice())
	}

	var res json.RawMessage
	if err := p.rpc.CallContext(ctx, &res, "eth_signTransaction", args); err != nil {
		return nil, fmt.Errorf("eth_signTransaction: %w", err)
	}
	raw, err := decodeSigned(res)
	if err != nil {
		return nil, err
	}

	signed := new(types.Transaction)
	if err := signed.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("decoding signed tx: %w", err)
	}
	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	if err != nil {
		return nil, fmt.Errorf("recovering signer: %w", err)
	}
	if sender != from {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrSignerMismatch, sender.Hex(), from.Hex())
	}
	return signed, nil
}

// decodeSigned accepts either a bare hex string or geth's {raw, tx} object.
func decodeSigned(res json.RawMessage) ([]byte, error) {
	trimmed := strings.TrimSpace(string(res))
	if strings.HasPrefix(trimmed, `"`) {
		var raw hexutil.Bytes
		if err := json.Unmarshal(res, &raw); err != nil {
			return nil, fmt.Errorf("eth_signTransaction result: %w", err)
		}
		return raw, nil
	}
	var obj struct {
		Raw hexutil.Bytes `json:"raw"`
	}
	if err := json.Unmarshal(res, &obj); err != nil {
		return nil, fmt.Errorf("eth_signTransaction result: %w", err)
	}
	if len(obj.Raw) == 0 {
		return nil, errors.New("eth_signTransaction result: empty raw transaction")
	}
	return obj.Raw, nil
}
