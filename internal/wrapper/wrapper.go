// Package wrapper drives the deposit, withdraw and lookup flows of the
// ERC20/ERC721 to ERC1155 wrapper contract.
package wrapper

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/Mohsinsiddi/w3wrap/internal/artifact"
)

// DefaultDepositEvent is the wrapper event carrying the minted ERC1155 id.
const DefaultDepositEvent = "TransferSingle"

// DefaultMetadataURI is passed to safeMint when a deposit names none.
const DefaultMetadataURI = "nft uri"

// Contract is a handle to a deployed contract.
type Contract interface {
	Address() common.Address
	Transact(ctx context.Context, method string, args ...any) (*types.Transaction, error)
	Call(ctx context.Context, method string, args ...any) ([]any, error)
}

// Confirmer waits for a transaction to be mined.
type Confirmer interface {
	Confirm(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Binder returns a handle to the contract at address with the given ABI.
type Binder func(address common.Address, parsed abi.ABI) Contract

// Config holds everything a Client needs.
type Config struct {
	ABIs           *artifact.Set
	WrapperAddress common.Address
	Bind           Binder
	Confirmer      Confirmer
	// Owner receives demo mints and is the explicit owner argument of the
	// four-input depositERC20 variant.
	Owner common.Address
	// Faucet enables the demo mint steps ahead of each deposit.
	Faucet bool
	// DepositEvent names the wrapper event holding the wrapped id, by name
	// or full signature.
	DepositEvent string
	Observer     Observer
	Logger       logrus.FieldLogger
}

// Client runs wrapper flows. It is safe for concurrent use; flows do not
// coordinate with each other.
type Client struct {
	abis      *artifact.Set
	wrapper   Contract
	bind      Binder
	confirmer Confirmer
	owner     common.Address
	faucet    bool
	deposit   eventDecoder
	mint      *eventDecoder
	ownerArg  bool
	observer  Observer
	log       logrus.FieldLogger
}

// New validates cfg and binds the wrapper contract.
func New(cfg Config) (*Client, error) {
	if cfg.ABIs == nil {
		return nil, errors.New("wrapper: ABIs are required")
	}
	if cfg.Bind == nil {
		return nil, errors.New("wrapper: binder is required")
	}
	if cfg.Confirmer == nil {
		return nil, errors.New("wrapper: confirmer is required")
	}
	if err := artifact.RequireMethods(cfg.ABIs.Wrapper, artifact.WrapperMethods...); err != nil {
		return nil, fmt.Errorf("wrapper: %w", err)
	}

	name := cfg.DepositEvent
	if name == "" {
		name = DefaultDepositEvent
	}
	ev, err := artifact.FindEvent(cfg.ABIs.Wrapper, name)
	if err != nil {
		return nil, fmt.Errorf("wrapper: deposit event: %w", err)
	}
	if !hasInput(ev, "id") {
		return nil, fmt.Errorf("wrapper: deposit event %s has no id field", ev.Sig)
	}

	c := &Client{
		abis:      cfg.ABIs,
		wrapper:   cfg.Bind(cfg.WrapperAddress, cfg.ABIs.Wrapper),
		bind:      cfg.Bind,
		confirmer: cfg.Confirmer,
		owner:     cfg.Owner,
		faucet:    cfg.Faucet,
		deposit:   eventDecoder{event: ev},
		ownerArg:  len(cfg.ABIs.Wrapper.Methods["depositERC20"].Inputs) == 4,
		observer:  cfg.Observer,
		log:       cfg.Logger,
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	if transfer, err := artifact.FindEvent(cfg.ABIs.ERC721, "Transfer"); err == nil && hasInput(transfer, "tokenId") {
		c.mint = &eventDecoder{event: transfer}
	}
	return c, nil
}

// WrapperAddress returns the address of the bound wrapper contract.
func (c *Client) WrapperAddress() common.Address {
	return c.wrapper.Address()
}

// Owner returns the account flows act for.
func (c *Client) Owner() common.Address {
	return c.owner
}

func hasInput(ev abi.Event, name string) bool {
	for _, in := range ev.Inputs {
		if in.Name == name {
			return true
		}
	}
	return false
}
