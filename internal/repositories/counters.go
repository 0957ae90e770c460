package repositories

import (
	"github.com/anonto42/murmur/backend/internal/models"
	"gorm.io/gorm"
)

// recountAccounts recomputes follower/following counters from the follows
// table. A nil ids slice recounts every account.
func recountAccounts(tx *gorm.DB, ids []string) error {
	q := tx.Model(&models.Account{})
	if ids == nil {
		q = q.Session(&gorm.Session{AllowGlobalUpdate: true})
	} else {
		if len(ids) == 0 {
			return nil
		}
		q = q.Where("id IN ?", ids)
	}
	return q.UpdateColumns(map[string]interface{}{
		"follower_count":  gorm.Expr("(SELECT COUNT(*) FROM follows WHERE follows.following_id = accounts.id)"),
		"following_count": gorm.Expr("(SELECT COUNT(*) FROM follows WHERE follows.follower_id = accounts.id)"),
	}).Error
}

// recountPosts recomputes like/reply counters from likes and comments.
// A nil ids slice recounts every post.
func recountPosts(tx *gorm.DB, ids []string) error {
	q := tx.Model(&models.Post{})
	if ids == nil {
		q = q.Session(&gorm.Session{AllowGlobalUpdate: true})
	} else {
		if len(ids) == 0 {
			return nil
		}
		q = q.Where("id IN ?", ids)
	}
	return q.UpdateColumns(map[string]interface{}{
		"like_count":  gorm.Expr("(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id)"),
		"reply_count": gorm.Expr("(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id)"),
	}).Error
}

func uniqueIDs(groups ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, g := range groups {
		for _, id := range g {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
