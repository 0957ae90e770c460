package cli

import (
	"context"
	"log"
	"time"

	"github.com/anonto42/murmur/backend/internal/repositories"
	"github.com/anonto42/murmur/backend/internal/search"
	"github.com/anonto42/murmur/backend/internal/services"
	"github.com/anonto42/murmur/backend/pkg/config"
	"gorm.io/gorm"
)

// reindexTaskTimeout bounds single index tasks queued by CLI commands.
const reindexTaskTimeout = 30 * time.Second

// Reindexer rebuilds the search index.
type Reindexer interface {
	ReindexAll(ctx context.Context) (*search.ReindexStats, error)
}

// Runtime is what a command needs once connected.
type Runtime struct {
	Config   *config.Config
	DB       *gorm.DB
	Accounts *services.AccountService
	Search   Reindexer

	closers []func()
}

// Close releases connections in reverse order of opening.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

// Connect loads configuration and opens PostgreSQL, plus the MongoDB
// search database when withSearch is set.
func Connect(_ context.Context, withSearch bool) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := config.InitPostgres(cfg)
	if err != nil {
		return nil, err
	}
	conns := &config.DB{Postgres: db}
	rt := &Runtime{Config: cfg, DB: db}
	rt.closers = append(rt.closers, conns.CloseDB)

	accountRepo := repositories.NewPostgresAccountRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)

	var indexer services.Indexer = services.NopIndexer{}
	if withSearch {
		client, err := config.InitMongo(cfg.MongoURI)
		if err != nil {
			rt.Close()
			return nil, err
		}
		conns.Mongo = client

		backend := search.NewMongoBackend(client.Database(cfg.SearchMongoDB))
		bridge := search.NewBridge(backend, accountRepo, postRepo,
			search.NewDispatcher(cfg.SearchWorkers, cfg.SearchQueueSize, reindexTaskTimeout))
		rt.closers = append(rt.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), reindexTaskTimeout)
			defer cancel()
			if err := bridge.Close(ctx); err != nil {
				log.Printf("search: draining index queue: %v", err)
			}
		})
		rt.Search = bridge
		indexer = bridge
	}

	rt.Accounts = services.NewAccountService(accountRepo, postRepo, indexer)
	return rt, nil
}
