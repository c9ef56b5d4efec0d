package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stokito/fortress-lang-sub003/fortype"
	"github.com/stokito/fortress-lang-sub003/frontend/types"
)

var NormalizeCmd = &cobra.Command{
	Use:          "normalize TYPE",
	Short:        "Print the normal form of TYPE",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTypeQuery(cmd, normalizeFlags, func(s *fortype.Session) (types.Type, error) {
			return s.Normalize(args[0])
		})
	},
}

var JoinCmd = &cobra.Command{
	Use:          "join TYPE...",
	Short:        "Print the least upper bound of the given types",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTypeQuery(cmd, joinFlags, func(s *fortype.Session) (types.Type, error) {
			return s.Join(args...)
		})
	},
}

var MeetCmd = &cobra.Command{
	Use:          "meet TYPE...",
	Short:        "Print the greatest lower bound of the given types",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTypeQuery(cmd, meetFlags, func(s *fortype.Session) (types.Type, error) {
			return s.Meet(args...)
		})
	},
}

var (
	normalizeFlags *sessionFlags
	joinFlags      *sessionFlags
	meetFlags      *sessionFlags
)

func init() {
	normalizeFlags = addSessionFlags(NormalizeCmd)
	joinFlags = addSessionFlags(JoinCmd)
	meetFlags = addSessionFlags(MeetCmd)
}

func runTypeQuery(cmd *cobra.Command, flags *sessionFlags, query func(*fortype.Session) (types.Type, error)) error {
	s, err := flags.session()
	if err != nil {
		return err
	}
	t, err := query(s)
	if err != nil {
		return errors.Wrapf(err, "could not run %s", cmd.Name())
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), t)
	return err
}
