package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/jpillora/backoff"
)

// ErrReverted is returned when a transaction was mined with status 0.
var ErrReverted = errors.New("transaction reverted")

// ReceiptFetcher is the subset of ethclient.Client needed to await receipts.
type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Confirmer blocks until a submitted transaction is mined.
type Confirmer struct {
	fetcher ReceiptFetcher
	timeout time.Duration
	minPoll time.Duration
	maxPoll time.Duration
}

// ConfirmerOption configures a Confirmer.
type ConfirmerOption func(*Confirmer)

// WithTimeout bounds each wait. Zero (the default) waits until ctx is done.
func WithTimeout(d time.Duration) ConfirmerOption {
	return func(c *Confirmer) { c.timeout = d }
}

// WithPollInterval sets the backoff range between receipt polls.
func WithPollInterval(min, max time.Duration) ConfirmerOption {
	return func(c *Confirmer) {
		c.minPoll = min
		c.maxPoll = max
	}
}

// NewConfirmer creates a Confirmer polling f.
func NewConfirmer(f ReceiptFetcher, opts ...ConfirmerOption) *Confirmer {
	c := &Confirmer{
		fetcher: f,
		minPoll: 250 * time.Millisecond,
		maxPoll: 4 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Confirm waits for tx to be mined. A reverted transaction returns its
// receipt together with ErrReverted.
func (c *Confirmer) Confirm(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return c.WaitForReceipt(ctx, tx.Hash())
}

// WaitForReceipt polls with exponential backoff until hash is mined.
func (c *Confirmer) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	b := &backoff.Backoff{
		Min:    c.minPoll,
		Max:    c.maxPoll,
		Factor: 2,
	}

	for {
		receipt, err := c.fetcher.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, hash.Hex())
			}
			return receipt, nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), ctxErr)
			}
			return nil, fmt.Errorf("fetching receipt %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-time.After(b.Duration()):
		}
	}
}
