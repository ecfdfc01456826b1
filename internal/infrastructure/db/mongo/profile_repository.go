package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devconnector/devconnector-api/internal/core/domain"
)

const collectionProfiles = "profiles"

type ProfileRepository struct {
	col *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{col: db.Collection(collectionProfiles)}
}

// FindByOwner retrieves the profile owned by ownerID.
func (r *ProfileRepository) FindByOwner(ctx context.Context, ownerID string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Profile
	if err := r.col.FindOne(ctx, bson.M{"user": ownerID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	profiles := make([]*domain.Profile, 0)
	if err := cur.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}

// Insert stores a new profile. The unique owner index turns a second
// profile for the same user into a conflict.
func (r *ProfileRepository) Insert(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConcurrentUpdate
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// Replace writes the whole document back, guarded by its version.
func (r *ProfileRepository) Replace(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	next := *p
	next.Version = p.Version + 1
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID, "version": p.Version}, &next)
	if err != nil {
		return fmt.Errorf("replace profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return staleOr(ctx, r.col, p.ID, domain.ErrProfileNotFound)
	}
	p.Version = next.Version
	return nil
}

func (r *ProfileRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"user": ownerID}); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// EnsureIndexes creates the one-profile-per-user index.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// staleOr tells a lost version race apart from a document that is gone.
func staleOr(ctx context.Context, col *mongo.Collection, id string, gone error) error {
	n, err := col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("check %s: %w", col.Name(), err)
	}
	if n == 0 {
		return gone
	}
	return domain.ErrConcurrentUpdate
}
