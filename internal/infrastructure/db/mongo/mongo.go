package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/singleflight"

	"github.com/plannr/event-planner/internal/core/domain"
	"github.com/plannr/event-planner/internal/pkg/metrics"
)

const (
	defaultTimeout          = 10 * time.Second
	defaultSelectionTimeout = 5 * time.Second
)

// Config captures the settings required to establish a MongoDB connection.
type Config struct {
	URI              string
	Database         string
	Timeout          time.Duration
	SelectionTimeout time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. Default timeouts are
// applied when none are provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	selection := cfg.SelectionTimeout
	if selection <= 0 {
		selection = defaultSelectionTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(selection)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Provider hands out a process-wide database handle that is established on
// first use. Concurrent callers during establishment share the same attempt;
// a failed attempt is not cached, so the next caller tries again.
type Provider struct {
	cfg Config
	log zerolog.Logger

	connect func(context.Context, Config) (*mongo.Client, *mongo.Database, error)
	init    func(context.Context, *mongo.Database) error

	group  singleflight.Group
	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database
}

// NewProvider returns a Provider that connects with cfg and creates the
// collection indexes once connected.
func NewProvider(cfg Config, log zerolog.Logger) *Provider {
	return &Provider{
		cfg:     cfg,
		log:     log,
		connect: Connect,
		init:    EnsureIndexes,
	}
}

// Database returns the shared handle, connecting if necessary. Errors are
// wrapped with domain.ErrStorage.
func (p *Provider) Database(ctx context.Context) (*mongo.Database, error) {
	if db := p.cached(); db != nil {
		return db, nil
	}

	v, err, _ := p.group.Do("connect", func() (any, error) {
		if db := p.cached(); db != nil {
			return db, nil
		}

		// One caller giving up must not fail the others waiting on this attempt.
		attemptCtx := context.WithoutCancel(ctx)

		client, db, err := p.connect(attemptCtx, p.cfg)
		if err != nil {
			metrics.StorageConnectAttemptsTotal.WithLabelValues("error").Inc()
			p.log.Error().Err(err).Msg("mongodb connection failed")
			return nil, err
		}
		if p.init != nil {
			if err := p.init(attemptCtx, db); err != nil {
				metrics.StorageConnectAttemptsTotal.WithLabelValues("error").Inc()
				p.log.Error().Err(err).Msg("mongodb index setup failed")
				if client != nil {
					_ = client.Disconnect(attemptCtx)
				}
				return nil, err
			}
		}

		p.mu.Lock()
		p.client, p.db = client, db
		p.mu.Unlock()

		metrics.StorageConnectAttemptsTotal.WithLabelValues("success").Inc()
		p.log.Info().Str("database", p.cfg.Database).Msg("mongodb connected")
		return db, nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w: %w", domain.ErrStorage, err)
	}
	return v.(*mongo.Database), nil
}

// Close disconnects the shared client if one was established.
func (p *Provider) Close(ctx context.Context) error {
	p.mu.Lock()
	client := p.client
	p.client, p.db = nil, nil
	p.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func (p *Provider) cached() *mongo.Database {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.db
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// email index is what makes concurrent registrations safe.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, userIndexes()); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	if _, err := db.Collection(eventsCollection).Indexes().CreateMany(ctx, eventIndexes()); err != nil {
		return fmt.Errorf("create event indexes: %w", err)
	}
	return nil
}
