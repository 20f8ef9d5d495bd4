package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newIDCommand(ctx *commandContext) *cobra.Command {
	idCmd := &cobra.Command{
		Use:   "id",
		Short: "Convert between numeric image ids and public ids",
	}

	idCmd.AddCommand(newIDEncodeCommand(ctx))
	idCmd.AddCommand(newIDDecodeCommand(ctx))

	return idCmd
}

func newIDEncodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <id>...",
		Short: "Print the public id of each numeric id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := ctx.codec()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("%q is not a number", arg)
				}

				public, err := codec.Encode(id)
				if err != nil {
					return fmt.Errorf("encode %d: %w", id, err)
				}

				rows = append(rows, []string{arg, public})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Public ID"}, rows, 0))

			return nil
		},
	}
}

func newIDDecodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <ref>...",
		Short: "Resolve public ids or legacy numeric references",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := ctx.codec()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(args))
			for _, arg := range args {
				res := codec.Resolve(arg)

				id := "-"
				if res.Valid() {
					id = strconv.FormatInt(res.ID, 10)
				}

				rows = append(rows, []string{arg, id, res.Path.String()})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Reference", "ID", "Path"}, rows, 1))

			return nil
		},
	}
}
