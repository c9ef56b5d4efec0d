//go:build !(js || wasm)

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/stokito/fortress-lang-sub003/cmd"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "fortype [subcommand]",
	Short:        "fortype\n subtyping, normalisation and inference for Fortress-style types",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.CheckCmd)
	rootCmd.AddCommand(cmd.EquivCmd)
	rootCmd.AddCommand(cmd.NormalizeCmd)
	rootCmd.AddCommand(cmd.JoinCmd)
	rootCmd.AddCommand(cmd.MeetCmd)
	rootCmd.AddCommand(cmd.SolveCmd)
}
