package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3wrap/internal/config"
	"github.com/Mohsinsiddi/w3wrap/internal/ui"
	"github.com/Mohsinsiddi/w3wrap/internal/wallet"
)

var (
	walletKeyFlag string
	walletYesFlag bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage signing wallets",
	Long: `Named signing wallets. Keys live in the OS keychain (or an encrypted
file store when no keychain is available); wallets.json only records names
and addresses.`,
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Store a private key under a name",
	Long: `Store a private key under <name>. The key is taken from --key or, when
that is empty, from W3WRAP_PRIVATE_KEY.`,
	Example: `  W3WRAP_PRIVATE_KEY=0xac09... w3wrap wallet add anvil0`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := walletKeyFlag
		if key == "" {
			key = cfg.PrivateKey
		}
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("no key given: pass --key or set W3WRAP_PRIVATE_KEY")
		}

		mgr, err := newWalletManager(cfg)
		if err != nil {
			return err
		}
		w, err := mgr.AddWithKey(args[0], key)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q added: %s", w.Name, ui.Addr(w.Address))))
		if !w.IsDefault {
			fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Make it the default with: w3wrap wallet use %s", w.Name)))
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager(cfg)
		if err != nil {
			return err
		}
		wallets, err := mgr.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("No wallets stored yet."))
			fmt.Fprintln(out, ui.Hint("Add one with: w3wrap wallet add <name> --key 0x..."))
			return nil
		}
		fmt.Fprintln(out, walletTable(wallets).Render())
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := cmd.OutOrStdout()
		if !walletYesFlag && !ui.ConfirmDanger(cmd.InOrStdin(), out, fmt.Sprintf("Remove wallet %q and its key?", name)) {
			fmt.Fprintln(out, ui.Meta("Cancelled."))
			return nil
		}
		mgr, err := newWalletManager(cfg)
		if err != nil {
			return err
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		if err := persistDefaultWallet(func(current string) string {
			if current == name {
				return ""
			}
			return current
		}); err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet (picker when no name is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager(cfg)
		if err != nil {
			return err
		}

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			wallets, err := mgr.List()
			if err != nil {
				return err
			}
			name, err = ui.PickItem("Default wallet", pickerItems(wallets))
			if err != nil {
				return err
			}
			if name == "" {
				return nil
			}
		}

		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		if err := persistDefaultWallet(func(string) string { return name }); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

// persistDefaultWallet rewrites default_wallet in config.json. It starts from
// the file alone so env and flag overrides stay out of it.
func persistDefaultWallet(update func(current string) string) error {
	fileCfg, err := config.LoadFile(cfg.Dir())
	if err != nil {
		return err
	}
	next := update(fileCfg.DefaultWallet)
	if next == fileCfg.DefaultWallet {
		return nil
	}
	fileCfg.DefaultWallet = next
	return fileCfg.Save()
}

func walletTable(wallets []*wallet.Wallet) *ui.Table {
	t := ui.NewTable(
		ui.Column{Title: "NAME"},
		ui.Column{Title: "ADDRESS"},
		ui.Column{Title: "DEFAULT"},
		ui.Column{Title: "ADDED"},
	)
	for i, w := range wallets {
		def := ""
		if w.IsDefault {
			def = "✓"
			t.Marked = i
		}
		t.AddRow(w.Name, w.Address, def, w.CreatedAt)
	}
	return t
}

func pickerItems(wallets []*wallet.Wallet) []ui.PickerItem {
	items := make([]ui.PickerItem, 0, len(wallets))
	for _, w := range wallets {
		items = append(items, ui.PickerItem{
			Label:    w.Name,
			SubLabel: w.Address,
			Value:    w.Name,
			Current:  w.IsDefault,
		})
	}
	return items
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key")
	walletRemoveCmd.Flags().BoolVarP(&walletYesFlag, "yes", "y", false, "skip confirmation")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd)
}
