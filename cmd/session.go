package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/Mohsinsiddi/w3wrap/internal/artifact"
	"github.com/Mohsinsiddi/w3wrap/internal/chain"
	"github.com/Mohsinsiddi/w3wrap/internal/config"
	"github.com/Mohsinsiddi/w3wrap/internal/wallet"
	"github.com/Mohsinsiddi/w3wrap/internal/wrapper"
)

// errNoSigner is returned when neither a private key nor a stored wallet is
// configured for the key signer.
var errNoSigner = errors.New("no signing key: set W3WRAP_PRIVATE_KEY, pass --private-key, or add a wallet with `w3wrap wallet add`")

// session is everything a command needs to run flows against the chain.
type session struct {
	cfg      *config.Config
	abis     *artifact.Set
	backend  *chain.Backend
	account  *wallet.Account
	provider wallet.Provider
	closers  []func()
}

// openSession validates config, loads the ABIs and dials the node. With
// withSigner the signer is connected too; for the wallet signer that means
// the network must be accepted before any contract is touched.
func openSession(ctx context.Context, c *config.Config, withSigner bool) (*session, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	abis, err := artifact.LoadSet(
		c.ArtifactPath(config.ERC20Artifact),
		c.ArtifactPath(config.ERC721Artifact),
		c.ArtifactPath(config.WrapperArtifact),
	)
	if err != nil {
		return nil, err
	}

	backend, err := chain.Dial(ctx, c.RPCURL)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: c, abis: abis, backend: backend, closers: []func(){backend.Close}}

	if !withSigner {
		return s, nil
	}

	provider, err := s.newProvider(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	log.WithField("signer", provider.Name()).Debug("connecting signer")
	acct, err := provider.Connect(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("connecting %s signer: %w", provider.Name(), err)
	}
	s.provider = provider
	s.account = acct
	log.WithField("account", acct.Address.Hex()).Debug("signer ready")
	return s, nil
}

func (s *session) newProvider(ctx context.Context) (wallet.Provider, error) {
	if s.cfg.Signer == config.SignerWallet {
		rc, err := rpc.DialContext(ctx, s.cfg.WalletURL)
		if err != nil {
			return nil, fmt.Errorf("dial wallet %s: %w", s.cfg.WalletURL, err)
		}
		s.closers = append(s.closers, rc.Close)
		return wallet.NewInjectedProvider(rc, chainParams(s.cfg)), nil
	}

	if s.cfg.PrivateKey != "" {
		return wallet.NewKeyProvider(s.cfg.PrivateKey, s.backend), nil
	}
	mgr, err := newWalletManager(s.cfg)
	if err != nil {
		return nil, err
	}
	w, err := resolveWallet(mgr, s.cfg.DefaultWallet)
	if err != nil {
		return nil, err
	}
	return wallet.NewStoredKeyProvider(mgr.Keystore(), w.KeyRef, s.backend), nil
}

// client builds a wrapper client reporting to obs.
func (s *session) client(obs wrapper.Observer) (*wrapper.Client, error) {
	var (
		owner common.Address
		opts  = s.transactOpts()
	)
	if s.account != nil {
		owner = s.account.Address
	}
	confirmer := chain.NewConfirmer(s.backend, chain.WithTimeout(s.cfg.ConfirmWait()))
	return wrapper.New(wrapper.Config{
		ABIs:           s.abis,
		WrapperAddress: common.HexToAddress(s.cfg.WrapperAddress),
		Bind: func(addr common.Address, parsed abi.ABI) wrapper.Contract {
			return chain.NewContract(addr, parsed, s.backend, opts)
		},
		Confirmer:    confirmer,
		Owner:        owner,
		Faucet:       s.cfg.Faucet,
		DepositEvent: s.cfg.DepositEvent,
		Observer:     obs,
		Logger:       log,
	})
}

func (s *session) transactOpts() *bind.TransactOpts {
	if s.account == nil {
		return nil
	}
	return s.account.Opts
}

// Close releases the node and wallet connections.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// chainParams builds the wallet_addEthereumChain payload from config.
func chainParams(c *config.Config) wallet.ChainParams {
	urls := c.Network.RPCURLs
	if len(urls) == 0 {
		urls = []string{c.RPCURL}
	}
	return wallet.NewChainParams(c.Network.ChainID, c.Network.Name, urls, wallet.NativeCurrency{
		Name:     c.Network.NativeCurrency.Name,
		Symbol:   c.Network.NativeCurrency.Symbol,
		Decimals: c.Network.NativeCurrency.Decimals,
	})
}

// openKeystore opens the key storage under dir.
var openKeystore = func(dir string) (wallet.KeystoreBackend, error) {
	ks, err := wallet.DefaultKeystore(dir)
	if err != nil {
		return nil, err
	}
	return ks, nil
}

// newWalletManager opens the wallet store and keystore under the config dir.
func newWalletManager(c *config.Config) (*wallet.Manager, error) {
	ks, err := openKeystore(c.Dir())
	if err != nil {
		return nil, err
	}
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(c.WalletsPath())),
		wallet.WithKeystore(ks),
	), nil
}

// resolveWallet picks the named wallet, or the default one.
func resolveWallet(mgr *wallet.Manager, name string) (*wallet.Wallet, error) {
	if name != "" {
		return mgr.Get(name)
	}
	if w := mgr.Default(); w != nil {
		return w, nil
	}
	return nil, errNoSigner
}
