package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrReadOnly is returned by Transact on a contract bound without a signer.
var ErrReadOnly = errors.New("contract handle is read-only")

// Contract is a dynamically bound contract: the ABI comes from a build
// artifact at runtime, not from generated bindings.
type Contract struct {
	address common.Address
	bound   *bind.BoundContract
	opts    *bind.TransactOpts
}

// NewContract binds address to parsed. opts may be nil for read-only use.
func NewContract(address common.Address, parsed abi.ABI, backend bind.ContractBackend, opts *bind.TransactOpts) *Contract {
	return &Contract{
		address: address,
		bound:   bind.NewBoundContract(address, parsed, backend, backend, backend),
		opts:    opts,
	}
}

// Address returns the contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// Transact signs and submits a call to a state-changing method. It returns as
// soon as the node accepts the transaction; confirmation is the caller's job.
func (c *Contract) Transact(ctx context.Context, method string, args ...any) (*types.Transaction, error) {
	if c.opts == nil {
		return nil, fmt.Errorf("%s: %w", method, ErrReadOnly)
	}
	opts := *c.opts
	opts.Context = ctx

	tx, err := c.bound.Transact(&opts, method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return tx, nil
}

// Call invokes a view method and returns its decoded outputs.
func (c *Contract) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	opts := &bind.CallOpts{Context: ctx}
	if c.opts != nil {
		opts.From = c.opts.From
	}

	var out []any
	if err := c.bound.Call(opts, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return out, nil
}
