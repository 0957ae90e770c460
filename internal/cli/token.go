package cli

import (
	"context"
	"time"

	"github.com/anonto42/murmur/backend/internal/middleware"
	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var accountID string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token for an account",
		Long: `Sign an HS256 token with JWT_SECRET for use against a server running
with AUTH_PROVIDER=jwt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, rootOpts, false, func(ctx context.Context, rt *Runtime) error {
				if rt.Config.JWTSecret == "" {
					return errors.New("JWT_SECRET is not set")
				}
				var account models.Account
				err := rt.DB.WithContext(ctx).Select("id").Where("id = ?", accountID).Take(&account).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.Errorf("account %s not found", accountID)
				}
				if err != nil {
					return err
				}
				token, err := middleware.IssueToken(rt.Config.JWTSecret, accountID, ttl)
				if err != nil {
					return err
				}
				return emit(cmd, rootOpts, map[string]string{"account_id": accountID, "token": token}, token)
			})
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "account id the token authenticates")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
