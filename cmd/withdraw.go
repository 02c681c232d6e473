package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3wrap/internal/ui"
	"github.com/Mohsinsiddi/w3wrap/internal/wrapper"
)

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw tokens from the wrapper",
}

var withdrawERC20Cmd = &cobra.Command{
	Use:   "erc20 <token> <amount>",
	Short: "Withdraw ERC20 tokens (single call)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := wrapper.ParseAddress(args[0])
		if err != nil {
			return err
		}
		amount, err := wrapper.ParseAmount(args[1])
		if err != nil {
			return err
		}

		var res *wrapper.WithdrawResult
		err = runFlow(cmd, "Withdraw ERC20", ui.WithdrawStages, func(ctx context.Context, obs wrapper.Observer) error {
			return withClient(ctx, obs, func(c *wrapper.Client) error {
				var ferr error
				res, ferr = c.WithdrawERC20(ctx, token, amount)
				return ferr
			})
		})
		if err != nil {
			return err
		}
		printWithdraw(cmd.OutOrStdout(), res)
		return nil
	},
}

var withdrawERC721Cmd = &cobra.Command{
	Use:   "erc721 <token> <tokenId>",
	Short: "Withdraw an ERC721 token (single call)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := wrapper.ParseAddress(args[0])
		if err != nil {
			return err
		}
		tokenID, err := wrapper.ParseAmount(args[1])
		if err != nil {
			return err
		}

		var res *wrapper.WithdrawResult
		err = runFlow(cmd, "Withdraw ERC721", ui.WithdrawStages, func(ctx context.Context, obs wrapper.Observer) error {
			return withClient(ctx, obs, func(c *wrapper.Client) error {
				var ferr error
				res, ferr = c.WithdrawERC721(ctx, token, tokenID)
				return ferr
			})
		})
		if err != nil {
			return err
		}
		printWithdraw(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	withdrawCmd.AddCommand(withdrawERC20Cmd, withdrawERC721Cmd)
}
