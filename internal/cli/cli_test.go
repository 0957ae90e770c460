package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/repositories"
	"github.com/anonto42/murmur/backend/internal/search"
	"github.com/anonto42/murmur/backend/internal/services"
	"github.com/anonto42/murmur/backend/internal/testutil"
	"github.com/anonto42/murmur/backend/pkg/config"
	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeReindexer struct {
	calls int
	err   error
}

func (f *fakeReindexer) ReindexAll(context.Context) (*search.ReindexStats, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &search.ReindexStats{Accounts: 3, Posts: 7}, nil
}

type harness struct {
	db       *gorm.DB
	search   *fakeReindexer
	closed   int
	searches []bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{db: testutil.NewDB(t), search: &fakeReindexer{}}
}

func (h *harness) connect(_ context.Context, withSearch bool) (*Runtime, error) {
	h.searches = append(h.searches, withSearch)
	rt := &Runtime{
		Config: &config.Config{JWTSecret: "dev-secret"},
		DB:     h.db,
		Accounts: services.NewAccountService(
			repositories.NewPostgresAccountRepository(h.db),
			repositories.NewPostgresPostRepository(h.db),
			services.NopIndexer{},
		),
		Search: h.search,
	}
	rt.closers = append(rt.closers, func() { h.closed++ })
	return rt, nil
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(&RootOptions{Connect: h.connect})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "murmurctl", cmd.Use)
	for _, path := range [][]string{
		{"migrate", "up"}, {"migrate", "down"}, {"migrate", "version"},
		{"reindex"}, {"account", "create"}, {"account", "delete"},
		{"repair-counters"}, {"token"},
	} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, strings.Join(path, " "))
		assert.Equal(t, path[len(path)-1], sub.Name())
	}
}

func TestInvalidFormat(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "--format", "xml", "repair-counters")
	assert.ErrorContains(t, err, "invalid format")
	assert.Empty(t, h.searches)
}

func TestAccountCreateAndDelete(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "--format", "json", "account", "create", "--name", "Ada", "--handle", "Ada", "--bio", "first")
	require.NoError(t, err)
	var account models.Account
	require.NoError(t, json.Unmarshal([]byte(out), &account))
	assert.Equal(t, "ada", account.Handle)
	assert.Equal(t, []bool{true}, h.searches)
	assert.Equal(t, 1, h.closed)

	_, err = h.run(t, "account", "create", "--name", "Bad", "--handle", "no spaces")
	assert.ErrorContains(t, err, "invalid account")

	out, err = h.run(t, "account", "delete", account.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+account.ID)

	var count int64
	require.NoError(t, h.db.Model(&models.Account{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = h.run(t, "account", "delete", account.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRepairCounters(t *testing.T) {
	h := newHarness(t)
	alice := testutil.CreateAccount(t, h.db, "alice")
	require.NoError(t, h.db.Model(&models.Account{}).Where("id = ?", alice.ID).
		Update("follower_count", 9).Error)

	out, err := h.run(t, "repair-counters")
	require.NoError(t, err)
	assert.Contains(t, out, "counters repaired")
	assert.Equal(t, []bool{false}, h.searches)

	var reloaded models.Account
	require.NoError(t, h.db.First(&reloaded, "id = ?", alice.ID).Error)
	assert.Zero(t, reloaded.FollowerCount)
}

func TestReindex(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "reindex")
	require.NoError(t, err)
	assert.Contains(t, out, "reindexed 3 accounts and 7 posts")
	assert.Equal(t, 1, h.search.calls)

	h.search.err = errors.New("mongo down")
	_, err = h.run(t, "reindex")
	assert.ErrorContains(t, err, "mongo down")
}

func TestToken(t *testing.T) {
	h := newHarness(t)
	alice := testutil.CreateAccount(t, h.db, "alice")

	out, err := h.run(t, "token", "--account", alice.ID, "--ttl", "1h")
	require.NoError(t, err)

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (interface{}, error) {
		return []byte("dev-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, alice.ID, claims.AccountID)

	_, err = h.run(t, "token", "--account", "ghost")
	assert.ErrorContains(t, err, "not found")

	_, err = h.run(t, "token")
	assert.Error(t, err)
}
