package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/openalpha/fundchain/x/fund/types"
)

// GetTxCmd returns the transaction commands for the fund module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "fund",
		Short:                      "Fund module transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdCreateFund(),
		CmdFinalize(),
		CmdPurchase(),
		CmdRedeem(),
		CmdClaimPending(),
		CmdExecute(),
		CmdClaimManagementFee(),
		CmdCrystallize(),
		CmdClose(),
	)

	return cmd
}

// CmdCreateFund returns the command to create a fund
func CmdCreateFund() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [fund-id] [denomination] [level] [mgmt-fee-bps] [perf-fee-bps] [crystallization-period]",
		Short: "Create a new fund and move it into review",
		Long: `Create a new fund with the given fee configuration.

Examples:
  fundchaind tx fund create alpha-1 usdc 1 20 2000 31557600 --from manager`,
		Args: cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			level, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return err
			}
			mgmtBps, err := strconv.ParseInt(args[3], 10, 64)
			if err != nil {
				return err
			}
			perfBps, err := strconv.ParseInt(args[4], 10, 64)
			if err != nil {
				return err
			}
			period, err := strconv.ParseInt(args[5], 10, 64)
			if err != nil {
				return err
			}

			msg := &types.MsgCreateFund{
				Manager:               clientCtx.GetFromAddress().String(),
				FundID:                args[0],
				Denomination:          args[1],
				Level:                 uint32(level),
				ManagementFeeBps:      mgmtBps,
				PerformanceFeeBps:     perfBps,
				CrystallizationPeriod: period,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdFinalize returns the command to finalize a reviewed fund
func CmdFinalize() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finalize [fund-id]",
		Short: "Move a reviewed fund into execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgFinalize{
				Manager: clientCtx.GetFromAddress().String(),
				FundID:  args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdPurchase returns the command to purchase shares
func CmdPurchase() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purchase [fund-id] [amount]",
		Short: "Purchase fund shares with denomination currency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgPurchase{
				Investor: clientCtx.GetFromAddress().String(),
				FundID:   args[0],
				Amount:   args[1],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRedeem returns the command to redeem shares
func CmdRedeem() *cobra.Command {
	var acceptPending bool

	cmd := &cobra.Command{
		Use:   "redeem [fund-id] [share]",
		Short: "Redeem fund shares for denomination currency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgRedeem{
				Investor:      clientCtx.GetFromAddress().String(),
				FundID:        args[0],
				Share:         args[1],
				AcceptPending: acceptPending,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().BoolVar(&acceptPending, "accept-pending", false, "queue the redemption with a penalty when the reserve is insufficient")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdClaimPending returns the command to claim resolved pending redemptions
func CmdClaimPending() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim-pending [fund-id]",
		Short: "Claim resolved pending redemption payouts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgClaimPending{
				Investor: clientCtx.GetFromAddress().String(),
				FundID:   args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdExecute returns the command to run an adapter operation
func CmdExecute() *cobra.Command {
	var (
		data      string
		delegated bool
	)

	cmd := &cobra.Command{
		Use:   "execute [fund-id] [target] [sig]",
		Short: "Run a whitelisted adapter operation for the fund",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgExecute{
				Manager:   clientCtx.GetFromAddress().String(),
				FundID:    args[0],
				Target:    args[1],
				Sig:       args[2],
				Data:      []byte(data),
				Delegated: delegated,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "opaque call data passed to the adapter")
	cmd.Flags().BoolVar(&delegated, "delegated", false, "gate the call by the delegate-call table instead of the handler table")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdClaimManagementFee returns the command to claim the management fee
func CmdClaimManagementFee() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim-management-fee [fund-id]",
		Short: "Mint accrued management fee shares to the manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgClaimManagementFee{
				Manager: clientCtx.GetFromAddress().String(),
				FundID:  args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdCrystallize returns the command to crystallize the performance fee
func CmdCrystallize() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crystallize [fund-id]",
		Short: "Convert the outstanding performance fee buffer into manager shares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgCrystallize{
				Manager: clientCtx.GetFromAddress().String(),
				FundID:  args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdClose returns the command to close a drained fund
func CmdClose() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close [fund-id]",
		Short: "Close a fund holding only its denomination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgClose{
				Manager: clientCtx.GetFromAddress().String(),
				FundID:  args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
