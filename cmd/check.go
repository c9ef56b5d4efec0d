package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check SUB SUPER",
	Short:        "Decide whether SUB is a subtype of SUPER",
	RunE:         runCheck,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
}

var EquivCmd = &cobra.Command{
	Use:          "equiv A B",
	Short:        "Decide whether A and B are equivalent",
	RunE:         runEquiv,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
}

var (
	checkFlags *sessionFlags
	equivFlags *sessionFlags
)

func init() {
	checkFlags = addSessionFlags(CheckCmd)
	equivFlags = addSessionFlags(EquivCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := checkFlags.session()
	if err != nil {
		return err
	}
	f, err := s.Check(args[0], args[1])
	if err != nil {
		return errors.Wrapf(err, "could not check %s <: %s", args[0], args[1])
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), f)
	return err
}

func runEquiv(cmd *cobra.Command, args []string) error {
	s, err := equivFlags.session()
	if err != nil {
		return err
	}
	f, err := s.Equivalent(args[0], args[1])
	if err != nil {
		return errors.Wrapf(err, "could not compare %s and %s", args[0], args[1])
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), f)
	return err
}
