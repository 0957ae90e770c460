package firebase

import (
	"context"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// Options select the service account and token checks.
type Options struct {
	CredentialsPath string
	// ProjectID overrides the project named in the credentials file.
	ProjectID string
	// CheckRevoked makes every verification also consult the revocation
	// list, at the cost of a round trip to Firebase.
	CheckRevoked bool
}

// App verifies Firebase ID tokens for the auth middleware.
type App struct {
	FirebaseApp  *firebase.App
	AuthClient   *auth.Client
	checkRevoked bool
}

// InitFirebase initializes the Firebase application and authentication client
func InitFirebase(ctx context.Context, opts Options) (*App, error) {
	if opts.CredentialsPath == "" {
		return nil, errors.New("FIREBASE_CREDENTIALS_PATH is required when AUTH_PROVIDER=firebase")
	}
	if _, err := os.Stat(opts.CredentialsPath); err != nil {
		return nil, errors.Wrapf(err, "firebase credentials file %s", opts.CredentialsPath)
	}

	var conf *firebase.Config
	if opts.ProjectID != "" {
		conf = &firebase.Config{ProjectID: opts.ProjectID}
	}
	firebaseApp, err := firebase.NewApp(ctx, conf, option.WithCredentialsFile(opts.CredentialsPath))
	if err != nil {
		return nil, errors.Wrap(err, "error initializing firebase app")
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error getting firebase auth client")
	}

	log.Printf("Firebase auth ready (revocation checks: %t)", opts.CheckRevoked)
	return &App{FirebaseApp: firebaseApp, AuthClient: authClient, checkRevoked: opts.CheckRevoked}, nil
}

// VerifyIDToken checks the token signature and claims, and its revocation
// status when enabled.
func (a *App) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if a.checkRevoked {
		return a.AuthClient.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	}
	return a.AuthClient.VerifyIDToken(ctx, idToken)
}
