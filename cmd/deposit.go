package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3wrap/internal/ui"
	"github.com/Mohsinsiddi/w3wrap/internal/wrapper"
)

var (
	depositDataFlag string
	depositURIFlag  string
)

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposit tokens into the wrapper",
}

var depositERC20Cmd = &cobra.Command{
	Use:   "erc20 <token> <amount>",
	Short: "Approve, mint (faucet) and deposit ERC20 tokens",
	Long: `Approve the wrapper for <amount>, mint <amount> demo tokens when the
faucet is on, deposit, and print the wrapped ERC1155 id.

<amount> is in base units (no decimals applied).`,
	Example: `  w3wrap deposit erc20 0x5FbDB2315678afecb367f032d93F642f64180aa3 1000
  w3wrap deposit erc20 0x5FbD... 1000 --data 0xcafe`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := wrapper.ParseAddress(args[0])
		if err != nil {
			return err
		}
		amount, err := wrapper.ParseAmount(args[1])
		if err != nil {
			return err
		}
		data, err := wrapper.ParseData(depositDataFlag)
		if err != nil {
			return err
		}

		var res *wrapper.DepositResult
		err = runFlow(cmd, "Deposit ERC20", ui.PlannedStages(ui.ERC20DepositStages, cfg.Faucet), func(ctx context.Context, obs wrapper.Observer) error {
			return withClient(ctx, obs, func(c *wrapper.Client) error {
				var ferr error
				res, ferr = c.DepositERC20(ctx, wrapper.ERC20Deposit{Token: token, Amount: amount, Data: data})
				return ferr
			})
		})
		if err != nil {
			return err
		}
		printDeposit(cmd.OutOrStdout(), res)
		return nil
	},
}

var depositERC721Cmd = &cobra.Command{
	Use:   "erc721 <token> <tokenId>",
	Short: "Mint (faucet), approve and deposit an ERC721 token",
	Long: `Mint a demo NFT when the faucet is on, read its metadata URI, approve
the wrapper, deposit, and print the wrapped ERC1155 id.

If the minted id differs from <tokenId> a warning is printed and <tokenId>
is still deposited.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := wrapper.ParseAddress(args[0])
		if err != nil {
			return err
		}
		tokenID, err := wrapper.ParseAmount(args[1])
		if err != nil {
			return err
		}
		data, err := wrapper.ParseData(depositDataFlag)
		if err != nil {
			return err
		}

		var res *wrapper.DepositResult
		err = runFlow(cmd, "Deposit ERC721", ui.PlannedStages(ui.ERC721DepositStages, cfg.Faucet), func(ctx context.Context, obs wrapper.Observer) error {
			return withClient(ctx, obs, func(c *wrapper.Client) error {
				var ferr error
				res, ferr = c.DepositERC721(ctx, wrapper.ERC721Deposit{
					Token:       token,
					TokenID:     tokenID,
					Data:        data,
					MetadataURI: depositURIFlag,
				})
				return ferr
			})
		})
		if err != nil {
			return err
		}
		printDeposit(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	depositCmd.PersistentFlags().StringVar(&depositDataFlag, "data", "", "auxiliary data passed to the wrapper (0x-hex or text)")
	depositERC721Cmd.Flags().StringVar(&depositURIFlag, "uri", wrapper.DefaultMetadataURI, "metadata URI for the faucet mint")
	depositCmd.AddCommand(depositERC20Cmd, depositERC721Cmd)
}
