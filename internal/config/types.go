package config

// Config holds all w3wrap configuration.
//
// Values are read from config.json in the config dir and then overridden by
// W3WRAP_* environment variables (a .env file is honoured).
type Config struct {
	RPCURL         string  `json:"rpc_url"          env:"W3WRAP_RPC_URL"`
	WalletURL      string  `json:"wallet_url"       env:"W3WRAP_WALLET_URL"`
	Signer         string  `json:"signer"           env:"W3WRAP_SIGNER"` // "key" | "wallet"
	DefaultWallet  string  `json:"default_wallet"   env:"W3WRAP_WALLET"`
	WrapperAddress string  `json:"wrapper_address"  env:"W3WRAP_WRAPPER_ADDRESS"`
	ArtifactsDir   string  `json:"artifacts_dir"    env:"W3WRAP_ARTIFACTS_DIR"`
	DepositEvent   string  `json:"deposit_event"    env:"W3WRAP_DEPOSIT_EVENT"`
	Faucet         bool    `json:"faucet"           env:"W3WRAP_FAUCET"`
	ConfirmTimeout int     `json:"confirm_timeout"  env:"W3WRAP_CONFIRM_TIMEOUT"` // seconds, 0 = wait forever
	ListenAddr     string  `json:"listen_addr"      env:"W3WRAP_LISTEN_ADDR"`
	LogLevel       string  `json:"log_level"        env:"W3WRAP_LOG_LEVEL"`
	Network        Network `json:"network"`

	// PrivateKey is never persisted; it only comes from the environment.
	PrivateKey string `json:"-" env:"W3WRAP_PRIVATE_KEY"`

	// internal: config dir path used for Save()
	configDir string
}

// Network describes the chain the wrapper contracts live on, in the shape
// wallets expect for wallet_addEthereumChain.
type Network struct {
	ChainID        int64          `json:"chain_id"   env:"W3WRAP_CHAIN_ID"`
	Name           string         `json:"name"       env:"W3WRAP_CHAIN_NAME"`
	RPCURLs        []string       `json:"rpc_urls"   env:"W3WRAP_CHAIN_RPC_URLS" envSeparator:","`
	NativeCurrency NativeCurrency `json:"native_currency"`
}

// NativeCurrency is the gas token of a Network.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}
