package services

import (
	"context"
	"strings"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/repositories"
	"github.com/pkg/errors"
)

// AccountService provisions and removes accounts for operator tooling and
// keeps the search index informed.
type AccountService struct {
	accounts repositories.AccountRepository
	posts    repositories.PostRepository
	indexer  Indexer
}

func NewAccountService(accounts repositories.AccountRepository, posts repositories.PostRepository, indexer Indexer) *AccountService {
	if indexer == nil {
		indexer = NopIndexer{}
	}
	return &AccountService{accounts: accounts, posts: posts, indexer: indexer}
}

func (s *AccountService) Create(ctx context.Context, req models.CreateAccountRequest) (*models.Account, error) {
	account := &models.Account{
		Name:   strings.TrimSpace(req.Name),
		Handle: strings.ToLower(strings.TrimSpace(req.Handle)),
		Bio:    strings.TrimSpace(req.Bio),
	}
	if account.Name == "" || account.Handle == "" {
		return nil, ErrInvalidContent
	}
	if uid := strings.TrimSpace(req.FirebaseUID); uid != "" {
		account.FirebaseUID = &uid
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	s.indexer.IndexAccount(*account)
	return account, nil
}

// Delete removes an account and everything it owns, and drops the account
// and its posts from the search index.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	out, err := s.accounts.Delete(ctx, id)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	for _, postID := range out.PostIDs {
		s.indexer.RemovePost(postID)
	}
	s.indexer.RemoveAccount(id)
	return nil
}

// RepairCounters recomputes every follow, like and reply counter from the
// authoritative rows.
func (s *AccountService) RepairCounters(ctx context.Context) error {
	if err := s.accounts.RecountFollows(ctx, nil); err != nil {
		return err
	}
	return s.posts.RecountEngagement(ctx, nil)
}
