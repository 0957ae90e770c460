package firebase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFirebase_RequiresCredentials(t *testing.T) {
	_, err := InitFirebase(context.Background(), Options{})
	assert.ErrorContains(t, err, "FIREBASE_CREDENTIALS_PATH")

	missing := filepath.Join(t.TempDir(), "service-account.json")
	_, err = InitFirebase(context.Background(), Options{CredentialsPath: missing})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
