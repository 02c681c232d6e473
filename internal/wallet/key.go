package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNoKey is returned when a key provider has neither a raw key nor a
// keystore reference to resolve.
var ErrNoKey = errors.New("no private key configured")

// ChainIDReader reports the chain id transactions are signed for.
type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// KeyProvider signs with a local private key, given directly or looked up in
// the keystore by reference.
type KeyProvider struct {
	hexKey string
	ref    string
	ks     KeystoreBackend
	chain  ChainIDReader
}

// NewKeyProvider signs with a raw hex key.
func NewKeyProvider(hexKey string, chain ChainIDReader) *KeyProvider {
	return &KeyProvider{hexKey: hexKey, chain: chain}
}

// NewStoredKeyProvider signs with the key stored under ref.
func NewStoredKeyProvider(ks KeystoreBackend, ref string, chain ChainIDReader) *KeyProvider {
	return &KeyProvider{ref: ref, ks: ks, chain: chain}
}

func (p *KeyProvider) Name() string { return "key" }

// Connect resolves the key and builds a transactor for the backend's chain.
func (p *KeyProvider) Connect(ctx context.Context) (*Account, error) {
	hexKey := p.hexKey
	if hexKey == "" && p.ks != nil && p.ref != "" {
		k, err := p.ks.Retrieve(p.ref)
		if err != nil {
			return nil, err
		}
		hexKey = k
	}
	if hexKey == "" {
		return nil, ErrNoKey
	}

	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	chainID, err := p.chain.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, err
	}
	return &Account{Address: opts.From, Opts: opts}, nil
}
