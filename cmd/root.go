package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3wrap/internal/config"
	"github.com/Mohsinsiddi/w3wrap/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3wrap/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir         string
	cfg            *config.Config
	log            = logrus.New()
	verbose        bool
	plain          bool
	signerFlag     string
	walletFlag     string
	privateKeyFlag string
	rpcFlag        string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3wrap",
	Short: "Wrap ERC20 and ERC721 tokens into ERC1155",
	Long: `w3wrap drives a Wrapper contract that takes ERC20 or ERC721 deposits
and mints ERC1155 tokens in exchange.

Each deposit approves the wrapper, optionally mints demo tokens (faucet),
deposits and prints the wrapped token id. Withdrawals and URI lookups are
single calls.

Signing uses a private key (W3WRAP_PRIVATE_KEY, --private-key or a stored
wallet) or, with --signer wallet, an external wallet endpoint.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		applyFlagOverrides(cfg)
		configureLogger(log, cfg.LogLevel, verbose, cmd.ErrOrStderr())
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		stop()
		os.Exit(1)
	}
}

func applyFlagOverrides(c *config.Config) {
	if signerFlag != "" {
		c.Signer = signerFlag
	}
	if walletFlag != "" {
		c.DefaultWallet = walletFlag
	}
	if privateKeyFlag != "" {
		c.PrivateKey = privateKeyFlag
	}
	if rpcFlag != "" {
		c.RPCURL = rpcFlag
	}
}

func configureLogger(l *logrus.Logger, level string, verbose bool, out io.Writer) {
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	l.SetLevel(lvl)
}

func init() {
	// W3WRAP_CONFIG_DIR env var overrides the default config dir.
	if envDir := os.Getenv("W3WRAP_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.w3wrap)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&plain, "plain", false, "line output instead of the live view")
	pf.StringVar(&signerFlag, "signer", "", `signer: "key" or "wallet"`)
	pf.StringVarP(&walletFlag, "wallet", "w", "", "stored wallet to sign with")
	pf.StringVar(&privateKeyFlag, "private-key", "", "hex private key to sign with (prefer W3WRAP_PRIVATE_KEY)")
	pf.StringVar(&rpcFlag, "rpc", "", "JSON-RPC endpoint override")

	rootCmd.SetVersionTemplate(ui.Banner() + "\n  w3wrap {{.Version}}\n")

	rootCmd.AddCommand(
		depositCmd,
		withdrawCmd,
		uriCmd,
		walletCmd,
		networkCmd,
		serveCmd,
	)
}
