package search

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50

	// candidateFactor widens the backend fetch so Go-side rescoring has
	// room to reorder.
	candidateFactor = 3
)

// ReindexStats summarizes a full rebuild.
type ReindexStats struct {
	Accounts int           `json:"accounts"`
	Posts    int           `json:"posts"`
	Duration time.Duration `json:"duration"`
}

// Bridge writes through to the search backend asynchronously and serves
// unified search queries. Index failures are logged, never returned.
type Bridge struct {
	backend    Backend
	accounts   repositories.AccountRepository
	posts      repositories.PostRepository
	dispatcher *Dispatcher
}

func NewBridge(backend Backend, accounts repositories.AccountRepository, posts repositories.PostRepository, dispatcher *Dispatcher) *Bridge {
	return &Bridge{backend: backend, accounts: accounts, posts: posts, dispatcher: dispatcher}
}

// IndexPost queues post for indexing. The author's name and handle are
// resolved when the task runs.
func (b *Bridge) IndexPost(post models.Post) {
	b.dispatcher.Enqueue(Task{
		Name: "index post " + post.ID,
		Run: func(ctx context.Context) error {
			author, err := b.accounts.GetByID(ctx, post.AuthorID)
			if err != nil {
				log.Printf("search: author %s of post %s unavailable: %v", post.AuthorID, post.ID, err)
			}
			return b.backend.UpsertPosts(ctx, []PostDocument{postDocument(post, author)})
		},
	})
}

func (b *Bridge) RemovePost(id string) {
	b.dispatcher.Enqueue(Task{
		Name: "remove post " + id,
		Run: func(ctx context.Context) error {
			return b.backend.DeletePost(ctx, id)
		},
	})
}

func (b *Bridge) IndexAccount(account models.Account) {
	b.dispatcher.Enqueue(Task{
		Name: "index account " + account.ID,
		Run: func(ctx context.Context) error {
			return b.backend.UpsertAccounts(ctx, []AccountDocument{accountDocument(account)})
		},
	})
}

func (b *Bridge) RemoveAccount(id string) {
	b.dispatcher.Enqueue(Task{
		Name: "remove account " + id,
		Run: func(ctx context.Context) error {
			return b.backend.DeleteAccount(ctx, id)
		},
	})
}

// Search queries accounts and posts concurrently and returns one list
// sorted by score. It returns an empty list on any failure.
func (b *Bridge) Search(ctx context.Context, query string, limit int) []Result {
	query = strings.TrimSpace(query)
	terms := queryTerms(query)
	if len(terms) == 0 {
		return []Result{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	candidates := limit * candidateFactor

	var accountHits []AccountHit
	var postHits []PostHit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accountHits, err = b.backend.FindAccounts(gctx, query, terms, candidates)
		return err
	})
	g.Go(func() error {
		var err error
		postHits, err = b.backend.FindPosts(gctx, query, terms, candidates)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("search: query %q failed: %v", query, err)
		return []Result{}
	}

	byID := make(map[string]Result, len(accountHits)+len(postHits))
	add := func(r Result, textScore float64) {
		if textScore > r.Score {
			r.Score = textScore
		}
		if r.Score <= 0 {
			return
		}
		key := r.Type + ":" + r.ID
		if prev, ok := byID[key]; ok && prev.Score >= r.Score {
			return
		}
		byID[key] = r
	}
	for _, h := range accountHits {
		add(scoreAccount(terms, h), h.TextScore)
	}
	for _, h := range postHits {
		add(scorePost(terms, h), h.TextScore)
	}

	results := make([]Result, 0, len(byID))
	for _, r := range byID {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// ReindexAll rebuilds both collections from the relational store. It runs
// synchronously and is meant for operators, not the request path.
func (b *Bridge) ReindexAll(ctx context.Context) (*ReindexStats, error) {
	started := time.Now()
	stats := &ReindexStats{}

	if err := b.backend.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	err := b.accounts.FindInBatches(ctx, func(batch []models.Account) error {
		docs := make([]AccountDocument, 0, len(batch))
		for _, a := range batch {
			docs = append(docs, accountDocument(a))
		}
		if err := b.backend.UpsertAccounts(ctx, docs); err != nil {
			return err
		}
		stats.Accounts += len(docs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = b.posts.FindInBatches(ctx, func(batch []models.Post) error {
		ids := make([]string, 0, len(batch))
		for _, p := range batch {
			ids = append(ids, p.AuthorID)
		}
		authors, err := b.accounts.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		docs := make([]PostDocument, 0, len(batch))
		for _, p := range batch {
			var author *models.Account
			if a, ok := authors[p.AuthorID]; ok {
				author = &a
			}
			docs = append(docs, postDocument(p, author))
		}
		if err := b.backend.UpsertPosts(ctx, docs); err != nil {
			return err
		}
		stats.Posts += len(docs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats.Duration = time.Since(started)
	log.Printf("search: reindexed %d accounts and %d posts in %s", stats.Accounts, stats.Posts, stats.Duration)
	return stats, nil
}

// Close drains pending index tasks.
// Dropped counts index writes discarded because the queue was full.
func (b *Bridge) Dropped() int64 { return b.dispatcher.Dropped() }

// Failed counts index writes the backend rejected.
func (b *Bridge) Failed() int64 { return b.dispatcher.Failed() }

func (b *Bridge) Close(ctx context.Context) error {
	return b.dispatcher.Close(ctx)
}
