package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Store bundles the repositories of one database.
type Store struct {
	db       *mongo.Database
	Users    *UserRepository
	Profiles *ProfileRepository
	Posts    *PostRepository
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Profiles: NewProfileRepository(db),
		Posts:    NewPostRepository(db),
	}
}

// EnsureIndexes creates every index the repositories rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if err := s.Users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if err := s.Profiles.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("profiles indexes: %w", err)
	}
	if err := s.Posts.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("posts indexes: %w", err)
	}
	return nil
}

// Ping checks both the client connection and that the database answers
// commands; it backs the readiness check.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, nil); err != nil {
		return err
	}
	return s.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}
