package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/murmur/backend/internal/middleware"
	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/search"
	"github.com/anonto42/murmur/backend/internal/testutil"
	"github.com/anonto42/murmur/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testAccountHeader = "X-Test-Account"

type fakeSearch struct {
	mu         sync.Mutex
	indexed    []string
	removed    []string
	results    []search.Result
	reindex    int
	lastCtxErr error
	dropped    int64
	failed     int64
}

func (f *fakeSearch) Dropped() int64 { return f.dropped }
func (f *fakeSearch) Failed() int64  { return f.failed }

func (f *fakeSearch) IndexPost(p models.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, p.ID)
}

func (f *fakeSearch) RemovePost(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
}

func (f *fakeSearch) IndexAccount(models.Account) {}
func (f *fakeSearch) RemoveAccount(string)        {}

func (f *fakeSearch) Search(_ context.Context, query string, _ int) []search.Result {
	if query == "" {
		return []search.Result{}
	}
	return f.results
}

func (f *fakeSearch) ReindexAll(ctx context.Context) (*search.ReindexStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reindex++
	f.lastCtxErr = ctx.Err()
	return &search.ReindexStats{Accounts: 1, Posts: 2}, nil
}

// headerAuth trusts the account id in a test header.
func headerAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(testAccountHeader)
		if id == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
		}
		c.Set(middleware.AccountIDKey, id)
		return next(c)
	}
}

type server struct {
	e      *echo.Echo
	db     *gorm.DB
	search *fakeSearch
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testutil.NewDB(t)
	fs := &fakeSearch{}
	e := echo.New()
	e.Validator = validators.NewValidator()
	SetupRoutes(e, Dependencies{DB: db, Search: fs, Auth: headerAuth, AdminToken: "ops"})
	return &server{e: e, db: db, search: fs}
}

type envelope struct {
	Success bool                       `json:"success"`
	Data    map[string]json.RawMessage `json:"data"`
	Meta    map[string]json.RawMessage `json:"meta"`
	Error   interface{}                `json:"error"`
}

func (s *server) do(t *testing.T, method, path, as, body string, headers ...string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if as != "" {
		req.Header.Set(testAccountHeader, as)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestHealth_ReportsSearchQueueLosses(t *testing.T) {
	s := newServer(t)
	s.search.dropped = 3
	s.search.failed = 1

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(3), body["search_dropped"])
	assert.Equal(t, float64(1), body["search_failed"])
}

func TestPosts_CreateReadDelete(t *testing.T) {
	s := newServer(t)
	alice := testutil.CreateAccount(t, s.db, "alice")
	bob := testutil.CreateAccount(t, s.db, "bob")

	code, env := s.do(t, http.MethodPost, "/api/v1/posts", "", `{"content":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = s.do(t, http.MethodPost, "/api/v1/posts", alice.ID, `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/posts", alice.ID, `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/posts", alice.ID, `{"content":"`+strings.Repeat("a", 281)+`"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/posts", alice.ID, `{"content":"  hello world  "}`)
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)
	var post models.Post
	decode(t, env.Data["post"], &post)
	assert.Equal(t, "hello world", post.Content)
	assert.Equal(t, alice.ID, post.AuthorID)
	assert.Equal(t, []string{post.ID}, s.search.indexed)

	code, env = s.do(t, http.MethodGet, "/api/v1/posts/"+post.ID, "", "")
	require.Equal(t, http.StatusOK, code)
	var fetched models.Post
	decode(t, env.Data["post"], &fetched)
	assert.Equal(t, post.ID, fetched.ID)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/posts/"+post.ID, bob.ID, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/posts/"+post.ID, alice.ID, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{post.ID}, s.search.removed)

	code, env = s.do(t, http.MethodGet, "/api/v1/posts/"+post.ID, "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

func TestTimeline_CursorWalk(t *testing.T) {
	s := newServer(t)
	alice := testutil.CreateAccount(t, s.db, "alice")
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		testutil.CreatePostAt(t, s.db, alice.ID, "post", base.Add(time.Duration(i)*time.Minute))
	}

	code, env := s.do(t, http.MethodGet, "/api/v1/timeline?limit=2", "", "")
	require.Equal(t, http.StatusOK, code)
	var posts []models.TimelinePost
	decode(t, env.Data["posts"], &posts)
	require.Len(t, posts, 2)
	assert.Equal(t, "alice", posts[0].Author.Handle)
	var hasNext bool
	decode(t, env.Meta["hasNextPage"], &hasNext)
	assert.True(t, hasNext)
	var cursor string
	decode(t, env.Meta["nextCursor"], &cursor)
	require.NotEmpty(t, cursor)

	code, env = s.do(t, http.MethodGet, "/api/v1/timeline?limit=2&cursor="+cursor, "", "")
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data["posts"], &posts)
	assert.Len(t, posts, 1)
	decode(t, env.Meta["hasNextPage"], &hasNext)
	assert.False(t, hasNext)
	var last *string
	decode(t, env.Meta["nextCursor"], &last)
	assert.Nil(t, last)

	code, _ = s.do(t, http.MethodGet, "/api/v1/timeline?cursor=yesterday", "", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/accounts/"+alice.ID+"/posts", "", "")
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data["posts"], &posts)
	assert.Len(t, posts, 3)

	code, _ = s.do(t, http.MethodGet, "/api/v1/accounts/missing/posts", "", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLikesAndComments(t *testing.T) {
	s := newServer(t)
	alice := testutil.CreateAccount(t, s.db, "alice")
	bob := testutil.CreateAccount(t, s.db, "bob")
	post := testutil.CreatePostAt(t, s.db, alice.ID, "like me", time.Now())

	code, env := s.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/like", bob.ID, "")
	require.Equal(t, http.StatusOK, code)
	var liked bool
	var count int64
	decode(t, env.Data["liked"], &liked)
	decode(t, env.Data["like_count"], &count)
	assert.True(t, liked)
	assert.Equal(t, int64(1), count)

	code, env = s.do(t, http.MethodGet, "/api/v1/posts/like-status?ids="+post.ID+",nope", bob.ID, "")
	require.Equal(t, http.StatusOK, code)
	var status map[string]bool
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &status))
	assert.Equal(t, map[string]bool{post.ID: true, "nope": false}, status)

	code, env = s.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/like", bob.ID, "")
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data["liked"], &liked)
	decode(t, env.Data["like_count"], &count)
	assert.False(t, liked)
	assert.Equal(t, int64(0), count)

	code, _ = s.do(t, http.MethodPost, "/api/v1/posts/missing/like", bob.ID, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/comments", bob.ID, `{"content":"nice"}`)
	require.Equal(t, http.StatusCreated, code)
	var comment models.Comment
	decode(t, env.Data["comment"], &comment)

	code, env = s.do(t, http.MethodGet, "/api/v1/posts/"+post.ID+"/comments", "", "")
	require.Equal(t, http.StatusOK, code)
	var comments []models.CommentView
	decode(t, env.Data["comments"], &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "bob", comments[0].Author.Handle)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/comments/"+comment.ID, alice.ID, "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodDelete, "/api/v1/comments/"+comment.ID, bob.ID, "")
	assert.Equal(t, http.StatusOK, code)
}

func TestFollowsAndProfile(t *testing.T) {
	s := newServer(t)
	alice := testutil.CreateAccount(t, s.db, "alice")
	bob := testutil.CreateAccount(t, s.db, "bob")
	testutil.CreatePostAt(t, s.db, bob.ID, "from bob", time.Now().Add(-time.Minute))

	code, _ := s.do(t, http.MethodPost, "/api/v1/accounts/"+alice.ID+"/follow", alice.ID, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/accounts/missing/follow", alice.ID, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, env := s.do(t, http.MethodPost, "/api/v1/accounts/"+bob.ID+"/follow", alice.ID, "")
	require.Equal(t, http.StatusOK, code)
	var following bool
	decode(t, env.Data["following"], &following)
	assert.True(t, following)

	code, env = s.do(t, http.MethodGet, "/api/v1/feed", alice.ID, "")
	require.Equal(t, http.StatusOK, code)
	var posts []models.TimelinePost
	decode(t, env.Data["posts"], &posts)
	require.Len(t, posts, 1)
	assert.Equal(t, bob.ID, posts[0].AuthorID)

	code, env = s.do(t, http.MethodGet, "/api/v1/accounts/"+bob.ID+"/followers", "", "")
	require.Equal(t, http.StatusOK, code)
	var accounts []models.AccountSummary
	decode(t, env.Data["accounts"], &accounts)
	require.Len(t, accounts, 1)
	assert.Equal(t, alice.ID, accounts[0].ID)

	code, env = s.do(t, http.MethodGet, "/api/v1/accounts/"+bob.ID, "", "")
	require.Equal(t, http.StatusOK, code)
	var profile models.Account
	var postCount int64
	decode(t, env.Data["account"], &profile)
	decode(t, env.Data["post_count"], &postCount)
	assert.Equal(t, int64(1), profile.FollowerCount)
	assert.Equal(t, int64(1), postCount)

	code, env = s.do(t, http.MethodGet, "/api/v1/accounts/"+bob.ID+"/follow-status", alice.ID, "")
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data["following"], &following)
	assert.True(t, following)

	code, _ = s.do(t, http.MethodPost, "/api/v1/accounts/"+bob.ID+"/follow", alice.ID, "")
	require.Equal(t, http.StatusOK, code)
	code, env = s.do(t, http.MethodGet, "/api/v1/feed", alice.ID, "")
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data["posts"], &posts)
	assert.Empty(t, posts)
}

func TestSearchAndReindex(t *testing.T) {
	s := newServer(t)
	alice := testutil.CreateAccount(t, s.db, "alice")
	s.search.results = []search.Result{{ID: alice.ID, Type: search.TypeAccount, Title: "Test alice", Score: 2}}

	code, env := s.do(t, http.MethodGet, "/api/v1/search?q=alice", alice.ID, "")
	require.Equal(t, http.StatusOK, code)
	var results []search.Result
	decode(t, env.Data["results"], &results)
	require.Len(t, results, 1)
	assert.Equal(t, search.TypeAccount, results[0].Type)

	code, env = s.do(t, http.MethodGet, "/api/v1/search?q=", alice.ID, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]", string(env.Data["results"]))

	code, _ = s.do(t, http.MethodPost, "/api/v1/admin/reindex", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/admin/reindex", "", "", middleware.AdminTokenHeader, "ops")
	require.Equal(t, http.StatusOK, code)
	var posts int
	decode(t, env.Data["posts"], &posts)
	assert.Equal(t, 2, posts)
	assert.Equal(t, 1, s.search.reindex)
	assert.NoError(t, s.search.lastCtxErr)
}

func TestBookmarksAndNotifications(t *testing.T) {
	s := newServer(t)
	alice := testutil.CreateAccount(t, s.db, "alice")
	bob := testutil.CreateAccount(t, s.db, "bob")
	post := testutil.CreatePostAt(t, s.db, alice.ID, "save me", time.Now())

	code, env := s.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/bookmark", bob.ID, "")
	require.Equal(t, http.StatusOK, code)
	var bookmarked bool
	decode(t, env.Data["bookmarked"], &bookmarked)
	assert.True(t, bookmarked)

	code, env = s.do(t, http.MethodGet, "/api/v1/posts/"+post.ID+"/bookmark-status", bob.ID, "")
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data["bookmarked"], &bookmarked)
	assert.True(t, bookmarked)

	code, env = s.do(t, http.MethodGet, "/api/v1/bookmarks", bob.ID, "")
	require.Equal(t, http.StatusOK, code)
	var posts []models.TimelinePost
	decode(t, env.Data["posts"], &posts)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)

	code, _ = s.do(t, http.MethodGet, "/api/v1/bookmarks", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(t, http.MethodPost, "/api/v1/posts/missing/bookmark", bob.ID, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/like", bob.ID, "")
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPost, "/api/v1/accounts/"+alice.ID+"/follow", bob.ID, "")
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/notifications/unread-count", alice.ID, "")
	require.Equal(t, http.StatusOK, code)
	var count int64
	decode(t, env.Data["count"], &count)
	assert.Equal(t, int64(2), count)

	code, env = s.do(t, http.MethodGet, "/api/v1/notifications?unread=true", alice.ID, "")
	require.Equal(t, http.StatusOK, code)
	var notifications []models.NotificationView
	decode(t, env.Data["notifications"], &notifications)
	require.Len(t, notifications, 2)
	assert.Equal(t, "bob", notifications[0].Actor.Handle)

	code, _ = s.do(t, http.MethodPut, "/api/v1/notifications/"+notifications[0].ID+"/read", bob.ID, "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodPut, "/api/v1/notifications/"+notifications[0].ID+"/read", alice.ID, "")
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodPut, "/api/v1/notifications/read-all", alice.ID, "")
	require.Equal(t, http.StatusOK, code)
	var updated int64
	decode(t, env.Data["updated"], &updated)
	assert.Equal(t, int64(1), updated)

	code, env = s.do(t, http.MethodGet, "/api/v1/notifications?unread=true", alice.ID, "")
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data["notifications"], &notifications)
	assert.Empty(t, notifications)
}
