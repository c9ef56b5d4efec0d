package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var SolveCmd = &cobra.Command{
	Use:   "solve CONSTRAINT...",
	Short: "Solve the inference variables of constraints such as '$1 <: Int'",
	Long: `Solve conjoins the given constraints, each written 'S <: T' or 'S = T'
where inference variables are written $1, $2 and so on, and prints an
instantiation of every bounded variable, or FALSE when none exists.`,
	RunE:         runSolve,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var solveFlags *sessionFlags

func init() {
	solveFlags = addSessionFlags(SolveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	s, err := solveFlags.session()
	if err != nil {
		return err
	}
	f, err := s.Solve(args...)
	if err != nil {
		return errors.Wrap(err, "could not solve constraints")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), f)
	return err
}
