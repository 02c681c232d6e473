package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Account is a connected signer: the address transactions are sent from and
// the options that sign them.
type Account struct {
	Address common.Address
	Opts    *bind.TransactOpts
}

// Provider obtains a signer. Implementations differ only in where the key
// lives; every flow downstream of Connect is identical.
type Provider interface {
	Name() string
	Connect(ctx context.Context) (*Account, error)
}
