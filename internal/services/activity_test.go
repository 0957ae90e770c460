package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notificationTypes(views []models.NotificationView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Type)
	}
	return out
}

func TestNotifications_LikeCommentFollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateAccount(t, f.db, "alice")
	b := testutil.CreateAccount(t, f.db, "bob")
	p, err := f.posts.Create(ctx, a.ID, "hello", nil)
	require.NoError(t, err)

	_, err = f.engagement.ToggleLike(ctx, b.ID, p.ID)
	require.NoError(t, err)
	comment, err := f.engagement.AddComment(ctx, b.ID, p.ID, "nice")
	require.NoError(t, err)
	_, err = f.graph.ToggleFollow(ctx, b.ID, a.ID)
	require.NoError(t, err)

	views, err := f.notices.List(ctx, a.ID, 0, 0, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.NotificationLike, models.NotificationComment, models.NotificationFollow}, notificationTypes(views))
	for _, v := range views {
		assert.Equal(t, b.ID, v.Actor.ID)
		assert.Equal(t, "bob", v.Actor.Handle)
		assert.False(t, v.IsRead)
		switch v.Type {
		case models.NotificationComment:
			require.NotNil(t, v.CommentID)
			assert.Equal(t, comment.ID, *v.CommentID)
			assert.Equal(t, p.ID, v.TargetID)
		case models.NotificationFollow:
			assert.Equal(t, models.TargetAccount, v.TargetType)
		}
	}

	unread, err := f.notices.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	none, err := f.notices.List(ctx, b.ID, 0, 0, false)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNotifications_UndoRetracts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateAccount(t, f.db, "alice")
	b := testutil.CreateAccount(t, f.db, "bob")
	p, err := f.posts.Create(ctx, a.ID, "hello", nil)
	require.NoError(t, err)

	_, err = f.engagement.ToggleLike(ctx, b.ID, p.ID)
	require.NoError(t, err)
	_, err = f.engagement.ToggleLike(ctx, b.ID, p.ID)
	require.NoError(t, err)

	c, err := f.engagement.AddComment(ctx, b.ID, p.ID, "first")
	require.NoError(t, err)
	_, err = f.engagement.AddComment(ctx, b.ID, p.ID, "second")
	require.NoError(t, err)
	require.NoError(t, f.engagement.DeleteComment(ctx, c.ID, b.ID))

	_, err = f.graph.ToggleFollow(ctx, b.ID, a.ID)
	require.NoError(t, err)
	_, err = f.graph.ToggleFollow(ctx, b.ID, a.ID)
	require.NoError(t, err)

	views, err := f.notices.List(ctx, a.ID, 0, 0, false)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.NotificationComment, views[0].Type)
	assert.NotEqual(t, c.ID, *views[0].CommentID)
}

func TestNotifications_SkipSelfActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateAccount(t, f.db, "alice")
	p, err := f.posts.Create(ctx, a.ID, "talking to myself", nil)
	require.NoError(t, err)

	_, err = f.engagement.ToggleLike(ctx, a.ID, p.ID)
	require.NoError(t, err)
	_, err = f.engagement.AddComment(ctx, a.ID, p.ID, "agreed")
	require.NoError(t, err)

	assert.Zero(t, f.count(t, &models.Notification{}))
}

func TestNotifications_MarkRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateAccount(t, f.db, "alice")
	b := testutil.CreateAccount(t, f.db, "bob")
	c := testutil.CreateAccount(t, f.db, "carol")
	_, err := f.graph.ToggleFollow(ctx, b.ID, a.ID)
	require.NoError(t, err)
	_, err = f.graph.ToggleFollow(ctx, c.ID, a.ID)
	require.NoError(t, err)

	views, err := f.notices.List(ctx, a.ID, 0, 0, false)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.ErrorIs(t, f.notices.MarkRead(ctx, views[0].ID, b.ID), ErrNotFound)
	assert.ErrorIs(t, f.notices.MarkRead(ctx, "missing", a.ID), ErrNotFound)
	require.NoError(t, f.notices.MarkRead(ctx, views[0].ID, a.ID))

	unread, err := f.notices.List(ctx, a.ID, 0, 0, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, views[1].ID, unread[0].ID)

	n, err := f.notices.MarkAllRead(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	count, err := f.notices.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// A read follow notification survives the unfollow.
	_, err = f.graph.ToggleFollow(ctx, b.ID, a.ID)
	require.NoError(t, err)
	all, err := f.notices.List(ctx, a.ID, 0, 0, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestBookmarks_ToggleAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateAccount(t, f.db, "alice")
	b := testutil.CreateAccount(t, f.db, "bob")
	p, err := f.posts.Create(ctx, a.ID, "keep this", nil)
	require.NoError(t, err)

	status, err := f.bookmarks.ToggleBookmark(ctx, b.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, status.Bookmarked)

	saved, err := f.bookmarks.IsBookmarked(ctx, b.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	assert.Equal(t, map[string]bool{p.ID: true, "other": false},
		f.bookmarks.BatchBookmarkStatus(ctx, b.ID, []string{p.ID, " other ", "", p.ID}))
	assert.Equal(t, map[string]bool{}, f.bookmarks.BatchBookmarkStatus(ctx, b.ID, nil))

	status, err = f.bookmarks.ToggleBookmark(ctx, b.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, status.Bookmarked)
	assert.Zero(t, f.count(t, &models.Bookmark{}))

	_, err = f.bookmarks.ToggleBookmark(ctx, b.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookmarks_ListPagesBySaveTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateAccount(t, f.db, "alice")
	b := testutil.CreateAccount(t, f.db, "bob")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var posts []models.Post
	for i := 0; i < 3; i++ {
		posts = append(posts, testutil.CreatePostAt(t, f.db, a.ID, "post", base.Add(time.Duration(i)*time.Minute)))
	}
	// Saved in reverse order of posting.
	for i, p := range posts {
		require.NoError(t, f.db.Create(&models.Bookmark{
			AccountID: b.ID,
			PostID:    p.ID,
			CreatedAt: base.Add(time.Hour - time.Duration(i)*time.Minute),
		}).Error)
	}

	page, err := f.bookmarks.ListBookmarks(ctx, b.ID, 2, "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, posts[0].ID, page.Posts[0].ID)
	assert.Equal(t, posts[1].ID, page.Posts[1].ID)
	assert.Equal(t, "alice", page.Posts[0].Author.Handle)

	page, err = f.bookmarks.ListBookmarks(ctx, b.ID, 2, *page.NextCursor)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, posts[2].ID, page.Posts[0].ID)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextCursor)

	_, err = f.bookmarks.ListBookmarks(ctx, b.ID, 2, "yesterday")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestBookmarks_DroppedWithPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateAccount(t, f.db, "alice")
	b := testutil.CreateAccount(t, f.db, "bob")
	p, err := f.posts.Create(ctx, a.ID, "short lived", nil)
	require.NoError(t, err)
	_, err = f.bookmarks.ToggleBookmark(ctx, b.ID, p.ID)
	require.NoError(t, err)
	_, err = f.engagement.ToggleLike(ctx, b.ID, p.ID)
	require.NoError(t, err)

	require.NoError(t, f.posts.Delete(ctx, p.ID, a.ID))

	assert.Zero(t, f.count(t, &models.Bookmark{}))
	assert.Zero(t, f.count(t, &models.Notification{}))
	page, err := f.bookmarks.ListBookmarks(ctx, b.ID, 0, "")
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
}
