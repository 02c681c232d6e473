package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3wrap/internal/chain"
	"github.com/Mohsinsiddi/w3wrap/internal/ui"
	"github.com/Mohsinsiddi/w3wrap/internal/wallet"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Inspect the configured chain",
}

var networkShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the chain descriptor and check the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		p := chainParams(cfg)
		fmt.Fprintln(out, ui.KeyValueBlock("Network", [][2]string{
			{"Name", ui.ChainName(p.ChainName)},
			{"Chain ID", fmt.Sprintf("%d (%s)", cfg.Network.ChainID, p.ChainID.String())},
			{"RPC URLs", strings.Join(p.RPCURLs, ", ")},
			{"Currency", fmt.Sprintf("%s (%s, %d decimals)", p.NativeCurrency.Name, p.NativeCurrency.Symbol, p.NativeCurrency.Decimals)},
			{"Wrapper", ui.Addr(cfg.WrapperAddress)},
			{"Signer", cfg.Signer},
		}))

		h, err := pingNode(cmd.Context(), cfg.RPCURL)
		if err != nil {
			fmt.Fprintln(out, ui.Err(fmt.Sprintf("%s unreachable: %v", cfg.RPCURL, err)))
			return nil
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("%s  block %d  %s", cfg.RPCURL, h.BlockNumber, h.Latency.Round(1e6))))
		if h.ChainID != nil && h.ChainID.Int64() != cfg.Network.ChainID {
			fmt.Fprintln(out, ui.Warn(fmt.Sprintf("node reports chain id %s, config says %d", h.ChainID, cfg.Network.ChainID)))
		}
		return nil
	},
}

var networkAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Ask the wallet endpoint to add the configured chain",
	Long: `Send wallet_addEthereumChain with the configured network descriptor to
wallet_url. Deposits with --signer wallet do this automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.WalletURL == "" {
			return fmt.Errorf("wallet_url is not configured")
		}
		rc, err := rpc.DialContext(cmd.Context(), cfg.WalletURL)
		if err != nil {
			return fmt.Errorf("dial wallet %s: %w", cfg.WalletURL, err)
		}
		defer rc.Close()

		p := chainParams(cfg)
		if err := wallet.NewInjectedProvider(rc, p).AddChain(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s (%s) added to wallet", p.ChainName, p.ChainID.String())))
		return nil
	},
}

func pingNode(ctx context.Context, url string) (*chain.Health, error) {
	b, err := chain.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return b.Ping(ctx)
}

func init() {
	networkCmd.AddCommand(networkShowCmd, networkAddCmd)
}
