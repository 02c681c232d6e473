package config

import "time"

// Local anvil defaults.
const (
	DefaultRPCURL         = "http://127.0.0.1:8545"
	DefaultChainID        = int64(31337)
	DefaultChainName      = "Anvil Local"
	DefaultWrapperAddress = "0x0165878A594ca255338adfa4d48449f69242Eb8F"
	DefaultArtifactsDir   = "out"
	DefaultDepositEvent   = "TransferSingle"
	DefaultListenAddr     = "127.0.0.1:8080"
	DefaultLogLevel       = "info"
)

// Signer modes.
const (
	SignerKey    = "key"
	SignerWallet = "wallet"
)

// Artifact paths relative to ArtifactsDir, as laid out by `forge build`.
const (
	ERC20Artifact   = "MockERC20.sol/MockERC20.json"
	ERC721Artifact  = "MockERC721.sol/MockERC721.json"
	WrapperArtifact = "Wrapper.sol/Wrapper.json"
)

// ShutdownTimeout bounds graceful shutdown of the form server.
const ShutdownTimeout = 10 * time.Second
