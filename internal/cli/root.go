// Package cli implements murmurctl, the operator command line.
package cli

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the runtime factory shared by all
// commands.
type RootOptions struct {
	Format string // "json" | "text"

	// Connect opens the databases a command needs. Tests replace it.
	Connect func(ctx context.Context, withSearch bool) (*Runtime, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for murmurctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Connect: Connect})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "murmurctl",
		Short: "Operate a murmur deployment",
		Long: `Operator tooling for the murmur backend: schema migrations, search
reindexing, account provisioning, counter repair and development tokens.

Settings are read the same way as the server: .env, CONFIG_FILE, then the
environment.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return errors.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewReindexCommand(opts))
	cmd.AddCommand(NewAccountCommand(opts))
	cmd.AddCommand(NewRepairCountersCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// withRuntime opens a runtime, runs fn and closes the runtime.
func withRuntime(cmd *cobra.Command, opts *RootOptions, withSearch bool, fn func(ctx context.Context, rt *Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := opts.Connect(ctx, withSearch)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt)
}
