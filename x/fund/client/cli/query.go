package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
)

// GetQueryCmd returns the query commands for the fund module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "fund",
		Short:                      "Fund module query commands",
		DisableFlagParsing:         false,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdQueryFund(),
		CmdQueryPosition(),
		CmdQuerySharePrice(),
	)

	return cmd
}

// CmdQueryFund returns the command to query a fund
func CmdQueryFund() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [fund-id]",
		Short: "Query a fund's state, value and share price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Fund query for %s requires running node connection\n", args[0])
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryPosition returns the command to query an investor position
func CmdQueryPosition() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "position [fund-id] [investor]",
		Short: "Query an investor's share balance and pending claims",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Position query for %s in fund %s requires running node connection\n", args[1], args[0])
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQuerySharePrice returns the command to query share price history
func CmdQuerySharePrice() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share-price [fund-id]",
		Short: "Query a fund's share price history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Share price query for %s requires running node connection\n", args[0])
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}
