package services

import "github.com/anonto42/murmur/backend/internal/models"

// PostIndexer receives post writes for the search index. Implementations
// must not block the caller.
type PostIndexer interface {
	IndexPost(post models.Post)
	RemovePost(id string)
}

// AccountIndexer receives account writes for the search index.
type AccountIndexer interface {
	IndexAccount(account models.Account)
	RemoveAccount(id string)
}

// Indexer is the full write-through surface of the search bridge.
type Indexer interface {
	PostIndexer
	AccountIndexer
}

// NopIndexer discards every index write.
type NopIndexer struct{}

func (NopIndexer) IndexPost(models.Post)       {}
func (NopIndexer) RemovePost(string)           {}
func (NopIndexer) IndexAccount(models.Account) {}
func (NopIndexer) RemoveAccount(string)        {}
