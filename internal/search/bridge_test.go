package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/repositories"
	"github.com/anonto42/murmur/backend/internal/testutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryBackend keeps documents in maps and returns every document as a
// candidate, leaving relevance to the bridge.
type memoryBackend struct {
	mu       sync.Mutex
	accounts map[string]AccountDocument
	posts    map[string]PostDocument
	ensured  int
	err      error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{accounts: map[string]AccountDocument{}, posts: map[string]PostDocument{}}
}

func (m *memoryBackend) EnsureIndexes(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensured++
	return m.err
}

func (m *memoryBackend) UpsertAccounts(_ context.Context, docs []AccountDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, d := range docs {
		m.accounts[d.ID] = d
	}
	return nil
}

func (m *memoryBackend) UpsertPosts(_ context.Context, docs []PostDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, d := range docs {
		m.posts[d.ID] = d
	}
	return nil
}

func (m *memoryBackend) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, id)
	return m.err
}

func (m *memoryBackend) DeletePost(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, id)
	return m.err
}

func (m *memoryBackend) FindAccounts(context.Context, string, []string, int) ([]AccountHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var hits []AccountHit
	for _, d := range m.accounts {
		hits = append(hits, AccountHit{AccountDocument: d})
	}
	return hits, nil
}

func (m *memoryBackend) FindPosts(context.Context, string, []string, int) ([]PostHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var hits []PostHit
	for _, d := range m.posts {
		hits = append(hits, PostHit{PostDocument: d})
	}
	return hits, nil
}

func (m *memoryBackend) post(id string) (PostDocument, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.posts[id]
	return d, ok
}

func newTestBridge(t *testing.T, backend Backend) (*Bridge, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	bridge := NewBridge(
		backend,
		repositories.NewPostgresAccountRepository(db),
		repositories.NewPostgresPostRepository(db),
		NewDispatcher(2, 64, time.Second),
	)
	return bridge, db
}

func TestBridge_IndexPostEnrichesAuthor(t *testing.T) {
	backend := newMemoryBackend()
	bridge, db := newTestBridge(t, backend)
	alice := testutil.CreateAccount(t, db, "alice")
	post := testutil.CreatePostAt(t, db, alice.ID, "hello search", time.Now())

	bridge.IndexPost(post)
	bridge.IndexAccount(alice)
	require.NoError(t, bridge.Close(context.Background()))

	doc, ok := backend.post(post.ID)
	require.True(t, ok)
	assert.Equal(t, "alice", doc.AuthorHandle)
	assert.Equal(t, "Test alice", doc.AuthorName)
	assert.Contains(t, backend.accounts, alice.ID)
}

func TestBridge_RemoveDeletesDocuments(t *testing.T) {
	backend := newMemoryBackend()
	backend.posts["p1"] = PostDocument{ID: "p1", Content: "bye"}
	backend.accounts["a1"] = AccountDocument{ID: "a1", Name: "gone"}
	bridge, _ := newTestBridge(t, backend)

	bridge.RemovePost("p1")
	bridge.RemoveAccount("a1")
	require.NoError(t, bridge.Close(context.Background()))

	assert.Empty(t, backend.posts)
	assert.Empty(t, backend.accounts)
}

func TestBridge_IndexFailuresAreSwallowed(t *testing.T) {
	backend := newMemoryBackend()
	backend.err = errors.New("search cluster down")
	bridge, _ := newTestBridge(t, backend)

	assert.NotPanics(t, func() {
		bridge.IndexPost(models.Post{ID: "p1", AuthorID: "ghost", Content: "x"})
		bridge.IndexAccount(models.Account{ID: "a1", Name: "x"})
	})
	require.NoError(t, bridge.Close(context.Background()))
	assert.Equal(t, int64(2), bridge.Failed())
	assert.Zero(t, bridge.Dropped())
}

func TestBridge_SearchRanksAndTags(t *testing.T) {
	backend := newMemoryBackend()
	now := time.Now().UTC()
	backend.accounts["a1"] = AccountDocument{ID: "a1", Name: "Gopher Fan", Handle: "gophers", CreatedAt: now}
	backend.accounts["a2"] = AccountDocument{ID: "a2", Name: "Bob", Handle: "bob", Bio: "nothing relevant", CreatedAt: now}
	backend.posts["p1"] = PostDocument{ID: "p1", Content: "the gophr is out", AuthorName: "Bob", AuthorHandle: "bob", CreatedAt: now}
	bridge, _ := newTestBridge(t, backend)
	defer bridge.Close(context.Background())

	results := bridge.Search(context.Background(), "gopher", 10)
	require.Len(t, results, 2)
	assert.Equal(t, "a1", results[0].ID)
	assert.Equal(t, TypeAccount, results[0].Type)
	assert.Equal(t, "p1", results[1].ID)
	assert.Equal(t, TypePost, results[1].Type)
	assert.Equal(t, "the <em>gophr</em> is out", results[1].Snippet)
	assert.Greater(t, results[0].Score, results[1].Score)

	limited := bridge.Search(context.Background(), "gopher", 1)
	assert.Len(t, limited, 1)
}

func TestBridge_SearchDegradesToEmpty(t *testing.T) {
	backend := newMemoryBackend()
	bridge, _ := newTestBridge(t, backend)
	defer bridge.Close(context.Background())

	assert.Equal(t, []Result{}, bridge.Search(context.Background(), "   ", 10))

	backend.err = errors.New("unavailable")
	assert.Equal(t, []Result{}, bridge.Search(context.Background(), "anything", 10))
}

func TestBridge_ReindexAll(t *testing.T) {
	backend := newMemoryBackend()
	bridge, db := newTestBridge(t, backend)
	defer bridge.Close(context.Background())

	alice := testutil.CreateAccount(t, db, "alice")
	bob := testutil.CreateAccount(t, db, "bob")
	for i := 0; i < 3; i++ {
		testutil.CreatePostAt(t, db, alice.ID, "post", time.Now())
	}
	testutil.CreatePostAt(t, db, bob.ID, "other", time.Now())

	stats, err := bridge.ReindexAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Accounts)
	assert.Equal(t, 4, stats.Posts)
	assert.Equal(t, 1, backend.ensured)
	for _, d := range backend.posts {
		assert.NotEmpty(t, d.AuthorHandle)
	}

	backend.err = errors.New("down")
	_, err = bridge.ReindexAll(context.Background())
	assert.Error(t, err)
}
