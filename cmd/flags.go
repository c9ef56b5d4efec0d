package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stokito/fortress-lang-sub003/fortype"
	"github.com/stokito/fortress-lang-sub003/frontend/ilerr"
	"github.com/stokito/fortress-lang-sub003/frontend/types"
	"github.com/stokito/fortress-lang-sub003/internal/log"
)

var cliLogger = log.DefaultLogger.With("section", "cli")

// sessionFlags are shared by every query command
type sessionFlags struct {
	decls          *string
	logLevel       *int
	maxDepth       *int
	maxExpansions  *int
	cacheTruncated *bool
}

func addSessionFlags(cmd *cobra.Command) *sessionFlags {
	defaults := types.DefaultOptions()
	return &sessionFlags{
		decls:          cmd.Flags().StringP("decls", "d", "", "file with trait and alias declarations"),
		logLevel:       cmd.Flags().IntP("log-level", "l", int(slog.LevelWarn), "log level"),
		maxDepth:       cmd.Flags().Int("max-depth", defaults.MaxDepth, "longest chain of nested subtype queries"),
		maxExpansions:  cmd.Flags().Int("max-expansions", defaults.MaxExpansions, "trait supertype expansions allowed per query path"),
		cacheTruncated: cmd.Flags().Bool("cache-truncated", defaults.CacheTruncated, "cache results cut short by a limit or a cycle"),
	}
}

func (f *sessionFlags) options() types.Options {
	return types.Options{
		MaxDepth:       *f.maxDepth,
		MaxExpansions:  *f.maxExpansions,
		CacheTruncated: *f.cacheTruncated,
	}
}

func (f *sessionFlags) session() (*fortype.Session, error) {
	log.SetLevel(slog.Level(*f.logLevel))
	if *f.decls == "" {
		s, _ := fortype.NewSession("", f.options())
		return s, nil
	}
	target, err := filepath.Abs(*f.decls)
	if err != nil {
		return nil, errors.Wrap(err, "could not get absolute path of declarations")
	}
	s, errs, err := fortype.LoadSession(os.DirFS(filepath.Dir(target)), filepath.Base(target), f.options())
	if err != nil {
		return nil, err
	}
	if errs.HasError() {
		return nil, errors.Errorf("errors found in declarations:\n%s", formatErrors(errs))
	}
	cliLogger.Debug("declarations loaded", "file", target, "names", len(s.Names()))
	return s, nil
}

func formatErrors(errs *ilerr.Errors) string {
	sb := &strings.Builder{}
	for _, ileError := range errs.Errors() {
		sb.WriteString(ilerr.FormatWithCode(ileError))
		sb.WriteString("\n")
	}
	return sb.String()
}
