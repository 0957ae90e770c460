package cli

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewReindexCommand creates the reindex command.
func NewReindexCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from PostgreSQL",
		Long: `Ensure the MongoDB text indexes exist, then stream every account and
post from PostgreSQL into the search collections in batches.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, rootOpts, true, func(ctx context.Context, rt *Runtime) error {
				if rt.Search == nil {
					return errors.New("search backend not configured")
				}
				stats, err := rt.Search.ReindexAll(ctx)
				if err != nil {
					return errors.Wrap(err, "reindex")
				}
				return emit(cmd, rootOpts, stats,
					fmt.Sprintf("reindexed %d accounts and %d posts in %s", stats.Accounts, stats.Posts, stats.Duration))
			})
		},
	}
}
