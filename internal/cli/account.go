package cli

import (
	"context"
	"fmt"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewAccountCommand creates the account command group.
func NewAccountCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Provision and remove accounts",
	}
	cmd.AddCommand(newAccountCreateCommand(rootOpts))
	cmd.AddCommand(newAccountDeleteCommand(rootOpts))
	return cmd
}

func newAccountCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var req models.CreateAccountRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account and index it for search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validators.NewValidator().Validate(&req); err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					return errors.Errorf("invalid account: %v", he.Message)
				}
				return err
			}
			return withRuntime(cmd, rootOpts, true, func(ctx context.Context, rt *Runtime) error {
				account, err := rt.Accounts.Create(ctx, req)
				if err != nil {
					return err
				}
				return emit(cmd, rootOpts, account, fmt.Sprintf("created @%s (%s)", account.Handle, account.ID))
			})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Handle, "handle", "", "unique handle")
	cmd.Flags().StringVar(&req.Bio, "bio", "", "profile bio")
	cmd.Flags().StringVar(&req.FirebaseUID, "firebase-uid", "", "link a Firebase user")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("handle")
	return cmd
}

func newAccountDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <account-id>",
		Short: "Delete an account with its posts, likes, comments and follows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, rootOpts, true, func(ctx context.Context, rt *Runtime) error {
				if err := rt.Accounts.Delete(ctx, args[0]); err != nil {
					return err
				}
				return emit(cmd, rootOpts, map[string]string{"deleted": args[0]}, "deleted "+args[0])
			})
		},
	}
}

// NewRepairCountersCommand creates the repair-counters command.
func NewRepairCountersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repair-counters",
		Short: "Recompute follow, like and reply counters from their rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, rootOpts, false, func(ctx context.Context, rt *Runtime) error {
				if err := rt.Accounts.RepairCounters(ctx); err != nil {
					return err
				}
				return emit(cmd, rootOpts, map[string]bool{"repaired": true}, "counters repaired")
			})
		},
	}
}
