package search

import "context"

// Backend is the document store behind the search bridge.
type Backend interface {
	EnsureIndexes(ctx context.Context) error
	UpsertAccounts(ctx context.Context, docs []AccountDocument) error
	UpsertPosts(ctx context.Context, docs []PostDocument) error
	DeleteAccount(ctx context.Context, id string) error
	DeletePost(ctx context.Context, id string) error
	// FindAccounts and FindPosts return candidates for query; terms are the
	// normalized query words. Final scoring happens in the bridge.
	FindAccounts(ctx context.Context, query string, terms []string, limit int) ([]AccountHit, error)
	FindPosts(ctx context.Context, query string, terms []string, limit int) ([]PostHit, error)
}
