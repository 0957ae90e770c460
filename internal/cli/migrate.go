package cli

import (
	"context"
	"fmt"

	"github.com/anonto42/murmur/backend/internal/migrations"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command group.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the PostgreSQL schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, rootOpts, false, func(ctx context.Context, rt *Runtime) error {
				sqlDB, err := rt.DB.DB()
				if err != nil {
					return err
				}
				if err := migrations.Up(sqlDB); err != nil {
					return err
				}
				return reportVersion(cmd, rootOpts, rt)
			})
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (all of them unless --steps is set)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, rootOpts, false, func(ctx context.Context, rt *Runtime) error {
				sqlDB, err := rt.DB.DB()
				if err != nil {
					return err
				}
				if err := migrations.Down(sqlDB, steps); err != nil {
					return err
				}
				return reportVersion(cmd, rootOpts, rt)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back (0 = all)")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, rootOpts, false, func(ctx context.Context, rt *Runtime) error {
				return reportVersion(cmd, rootOpts, rt)
			})
		},
	})

	return cmd
}

func reportVersion(cmd *cobra.Command, opts *RootOptions, rt *Runtime) error {
	sqlDB, err := rt.DB.DB()
	if err != nil {
		return err
	}
	version, dirty, err := migrations.Version(sqlDB)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("schema version %d", version)
	if dirty {
		text += " (dirty)"
	}
	return emit(cmd, opts, map[string]interface{}{"version": version, "dirty": dirty}, text)
}
