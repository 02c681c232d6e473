package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Backend is the JSON-RPC connection every contract handle shares.
type Backend struct {
	*ethclient.Client
	url string
}

// Dial connects to a JSON-RPC endpoint (http, ws or ipc).
func Dial(ctx context.Context, url string) (*Backend, error) {
	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Backend{Client: ethclient.NewClient(rc), url: url}, nil
}

// URL returns the endpoint the backend is connected to.
func (b *Backend) URL() string {
	return b.url
}

// Health is the result of Ping.
type Health struct {
	Latency     time.Duration
	BlockNumber uint64
	ChainID     *big.Int
}

// Ping tests the endpoint and returns latency, head block and chain id.
func (b *Backend) Ping(ctx context.Context) (*Health, error) {
	start := time.Now()
	n, err := b.BlockNumber(ctx)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("eth_blockNumber: %w", err)
	}
	id, err := b.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("eth_chainId: %w", err)
	}
	return &Health{Latency: latency, BlockNumber: n, ChainID: id}, nil
}
