package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

const (
	configFile  = "config.json"
	walletsFile = "wallets.json"
	envFile     = ".env"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Load reads config from dir (or creates defaults). dir defaults to ~/.w3wrap.
// Environment variables, including those from a .env file in dir or in the
// working directory, override file values.
func Load(dir string) (*Config, error) {
	cfg, err := LoadFile(dir)
	if err != nil {
		return nil, err
	}
	if err := loadDotEnv(filepath.Join(cfg.configDir, envFile), envFile); err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// LoadFile reads only defaults and config.json, without the environment.
// Commands that persist a setting start from this so that env and flag
// overrides never end up on disk.
func LoadFile(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3wrap")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)
	data, err := os.ReadFile(filepath.Join(dir, configFile))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	cfg.configDir = dir
	return cfg, nil
}

// Save writes the config to disk. The private key is never written. Save a
// config from LoadFile, not Load, unless env values should be persisted.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Validate checks the fields every command depends on.
func (c *Config) Validate() error {
	switch c.Signer {
	case SignerKey:
	case SignerWallet:
		if strings.TrimSpace(c.WalletURL) == "" {
			return fmt.Errorf("%w: signer %q needs wallet_url", ErrInvalidConfig, c.Signer)
		}
	default:
		return fmt.Errorf("%w: unknown signer %q (want %q or %q)", ErrInvalidConfig, c.Signer, SignerKey, SignerWallet)
	}
	if strings.TrimSpace(c.RPCURL) == "" {
		return fmt.Errorf("%w: rpc_url is empty", ErrInvalidConfig)
	}
	if !common.IsHexAddress(c.WrapperAddress) {
		return fmt.Errorf("%w: wrapper_address %q is not an address", ErrInvalidConfig, c.WrapperAddress)
	}
	if c.ConfirmTimeout < 0 {
		return fmt.Errorf("%w: confirm_timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// ConfirmWait returns the confirmation deadline; zero means no deadline.
func (c *Config) ConfirmWait() time.Duration {
	return time.Duration(c.ConfirmTimeout) * time.Second
}

// ArtifactPath resolves an artifact path relative to ArtifactsDir.
func (c *Config) ArtifactPath(rel string) string {
	return filepath.Join(c.ArtifactsDir, rel)
}

// WalletsPath returns the path of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		RPCURL:         DefaultRPCURL,
		Signer:         SignerKey,
		WrapperAddress: DefaultWrapperAddress,
		ArtifactsDir:   DefaultArtifactsDir,
		DepositEvent:   DefaultDepositEvent,
		Faucet:         true,
		ListenAddr:     DefaultListenAddr,
		LogLevel:       DefaultLogLevel,
		Network: Network{
			ChainID: DefaultChainID,
			Name:    DefaultChainName,
			RPCURLs: []string{DefaultRPCURL},
			NativeCurrency: NativeCurrency{
				Name:     "Ether",
				Symbol:   "ETH",
				Decimals: 18,
			},
		},
		configDir: dir,
	}
}

// loadDotEnv loads every existing file in paths. Variables already present in
// the environment win.
func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}
