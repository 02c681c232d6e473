package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3wrap/internal/chain"
	"github.com/Mohsinsiddi/w3wrap/internal/config"
	"github.com/Mohsinsiddi/w3wrap/internal/ui"
	"github.com/Mohsinsiddi/w3wrap/internal/wallet"
	"github.com/Mohsinsiddi/w3wrap/internal/wrapper"
)

// interactive reports whether the live flow view should be used.
func interactive(cmd *cobra.Command) bool {
	if plain {
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// runFlow runs fn with either the live view or plain line output.
func runFlow(cmd *cobra.Command, title string, stages []wrapper.Stage, fn ui.FlowFunc) error {
	if interactive(cmd) {
		return ui.RunFlow(cmd.Context(), title, stages, fn)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.StyleTitle.Render(title))
	return fn(cmd.Context(), ui.PlainObserver(out))
}

// withClient opens a signing session, builds a client reporting to obs and
// runs fn with it.
func withClient(ctx context.Context, obs wrapper.Observer, fn func(*wrapper.Client) error) error {
	s, err := openSession(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer s.Close()
	client, err := s.client(obs)
	if err != nil {
		return err
	}
	return fn(client)
}

func printDeposit(out io.Writer, res *wrapper.DepositResult) {
	pairs := [][2]string{
		{"Wrapped ID", res.WrappedID.String()},
		{"Tx", res.TxHash.Hex()},
		{"Block", blockOf(res.Receipt)},
	}
	if res.TokenURI != "" {
		pairs = append(pairs, [2]string{"Token URI", res.TokenURI})
	}
	if res.MintedID != nil {
		pairs = append(pairs, [2]string{"Minted ID", res.MintedID.String()})
	}
	fmt.Fprintln(out, ui.KeyValueBlock("Deposit confirmed", pairs))
	for _, w := range res.Warnings {
		fmt.Fprintln(out, ui.Warn(w))
	}
}

func printWithdraw(out io.Writer, res *wrapper.WithdrawResult) {
	fmt.Fprintln(out, ui.KeyValueBlock("Withdrawal confirmed", [][2]string{
		{"Tx", res.TxHash.Hex()},
		{"Block", blockOf(res.Receipt)},
	}))
}

func blockOf(r *types.Receipt) string {
	if r == nil || r.BlockNumber == nil {
		return "-"
	}
	return r.BlockNumber.String()
}

// renderError formats a command error with a hint where one helps.
func renderError(err error) string {
	msg := ui.Err(err.Error())
	switch {
	case errors.Is(err, wallet.ErrChainRejected):
		return msg + "\n" + ui.Hint("the wallet declined the network; nothing was sent")
	case errors.Is(err, chain.ErrReverted):
		return msg + "\n" + ui.Hint("the contract rejected the call; earlier steps are not rolled back")
	case errors.Is(err, wrapper.ErrUnexpectedResponse):
		return msg + "\n" + ui.Hint("check deposit_event and the wrapper artifact match the deployed contract")
	case errors.Is(err, config.ErrInvalidConfig):
		return msg + "\n" + ui.Hint("see `w3wrap network show` for the active settings")
	}
	return msg
}
