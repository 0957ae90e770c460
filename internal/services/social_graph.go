package services

import (
	"context"
	"log"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/repositories"
	"github.com/pkg/errors"
)

// FeedMaintainer keeps home feeds in step with follow edges.
type FeedMaintainer interface {
	Backfill(ctx context.Context, followerID, followingID string) error
	Prune(ctx context.Context, followerID, followingID string) error
}

// SocialGraph owns follow edges and the account counters derived from them.
type SocialGraph struct {
	follows  repositories.FollowRepository
	accounts repositories.AccountRepository
	feed     FeedMaintainer
	notifier Notifier
}

func NewSocialGraph(follows repositories.FollowRepository, accounts repositories.AccountRepository, feed FeedMaintainer, notifier Notifier) *SocialGraph {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &SocialGraph{follows: follows, accounts: accounts, feed: feed, notifier: notifier}
}

// ToggleFollow flips the follow edge from followerID to followingID.
func (g *SocialGraph) ToggleFollow(ctx context.Context, followerID, followingID string) (*models.FollowStatus, error) {
	if followerID == followingID {
		return nil, ErrSelfFollow
	}
	ok, err := g.accounts.Exists(ctx, followingID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	following, err := g.follows.Exists(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}

	if following {
		removed, err := g.follows.Unfollow(ctx, followerID, followingID)
		if err != nil {
			return nil, err
		}
		if removed {
			g.notifier.Unfollowed(ctx, followerID, followingID)
		}
		if g.feed != nil {
			if err := g.feed.Prune(ctx, followerID, followingID); err != nil {
				log.Printf("pruning feed of %s after unfollowing %s failed: %v", followerID, followingID, err)
			}
		}
		return &models.FollowStatus{Following: false}, nil
	}

	added, err := g.follows.Follow(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}
	if added {
		g.notifier.Followed(ctx, followerID, followingID)
	}
	if g.feed != nil {
		if err := g.feed.Backfill(ctx, followerID, followingID); err != nil {
			log.Printf("backfilling feed of %s from %s failed: %v", followerID, followingID, err)
		}
	}
	return &models.FollowStatus{Following: true}, nil
}

func (g *SocialGraph) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return g.follows.Exists(ctx, followerID, followingID)
}

// BatchFollowStatus reports, for every requested account id, whether
// followerID follows it. Lookup failures degrade to an empty map.
func (g *SocialGraph) BatchFollowStatus(ctx context.Context, followerID string, targetIDs []string) map[string]bool {
	ids := normalizeIDs(targetIDs)
	if len(ids) == 0 {
		return map[string]bool{}
	}
	hits, err := g.follows.FollowingIDs(ctx, followerID, ids)
	if err != nil {
		log.Printf("batch follow status for %s failed: %v", followerID, err)
		return map[string]bool{}
	}
	return fillStatus(ids, hits)
}

func (g *SocialGraph) ListFollowers(ctx context.Context, accountID string, limit, offset int) ([]models.AccountSummary, error) {
	return g.list(ctx, accountID, limit, offset, g.follows.ListFollowers)
}

func (g *SocialGraph) ListFollowing(ctx context.Context, accountID string, limit, offset int) ([]models.AccountSummary, error) {
	return g.list(ctx, accountID, limit, offset, g.follows.ListFollowing)
}

func (g *SocialGraph) list(ctx context.Context, accountID string, limit, offset int,
	fetch func(ctx context.Context, accountID string, limit, offset int) ([]models.Account, error)) ([]models.AccountSummary, error) {
	ok, err := g.accounts.Exists(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	limit = ClampLimit(limit, DefaultListLimit, MaxListLimit)
	if offset < 0 {
		offset = 0
	}

	accounts, err := fetch(ctx, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]models.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.ToSummary())
	}
	return out, nil
}

// Profile returns the account with its current counters.
func (g *SocialGraph) Profile(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := g.accounts.GetByID(ctx, accountID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return account, err
}
