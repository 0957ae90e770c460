package middleware

import (
	"context"
	"log"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// TokenVerifier verifies Firebase ID tokens; *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AccountResolver maps a Firebase UID to a local account.
type AccountResolver interface {
	GetByFirebaseUID(ctx context.Context, uid string) (*models.Account, error)
}

// FirebaseAuthMiddleware verifies Firebase ID tokens and stores the id of
// the account linked to the token's UID.
func FirebaseAuthMiddleware(verifier TokenVerifier, accounts AccountResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			account, err := accounts.GetByFirebaseUID(ctx, token.UID)
			if errors.Is(err, repositories.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "No account linked to this identity")
			}
			if err != nil {
				log.Printf("account lookup for firebase uid %s failed: %v", token.UID, err)
				return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
			}

			c.Set("firebaseUID", token.UID)
			c.Set(AccountIDKey, account.ID)
			return next(c)
		}
	}
}
