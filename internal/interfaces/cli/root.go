// Package cli implements the opinionctl command tree: local projection of
// simulation snapshots and database migration management.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds global flags shared by all subcommands.
type rootOptions struct {
	configPath string
	output     string
}

// NewRootCommand creates the opinionctl root command with all subcommands.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "opinionctl",
		Short: "Opinion-space projection tooling",
		Long: "opinionctl projects simulated-opinion results into the 3-D opinion space\n" +
			"without a running server, and manages the database schema.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file path (environment-only when empty)")
	pf.StringVarP(&opts.output, "output", "o", "json", "output format (json, summary)")

	cmd.AddCommand(newProjectCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
