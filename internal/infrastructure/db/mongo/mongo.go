// Package mongo is the document-store backend. MongoDB has no foreign keys,
// so vote inserts check the idea first; uniqueness is still owned by the
// unique indexes created in EnsureIndexes.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ideaboard/idea-voting/internal/infrastructure/password"
)

const defaultTimeout = 10 * time.Second

const (
	collectionUsers    = "users"
	collectionRoles    = "roles"
	collectionIdeas    = "ideas"
	collectionVotes    = "votes"
	collectionCounters = "counters"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database.
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

// Store implements ports.CredentialStore, ports.IdeaRepository and
// ports.VoteRepository.
type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	roles    *mongo.Collection
	ideas    *mongo.Collection
	votes    *mongo.Collection
	counters *mongo.Collection
	hasher   password.Hasher
}

func NewStore(client *mongo.Client, db *mongo.Database, hasher password.Hasher) *Store {
	return &Store{
		client:   client,
		users:    db.Collection(collectionUsers),
		roles:    db.Collection(collectionRoles),
		ideas:    db.Collection(collectionIdeas),
		votes:    db.Collection(collectionVotes),
		counters: db.Collection(collectionCounters),
		hasher:   hasher,
	}
}

// EnsureIndexes creates the unique indexes the store depends on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "normalized_username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_users_normalized_username"),
		},
		{
			Keys:    bson.D{{Key: "normalized_email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_users_normalized_email"),
		},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	_, err = s.votes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "idea_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_votes_user_idea"),
		},
		{Keys: bson.D{{Key: "idea_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("votes indexes: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// nextID hands out sequential integer ids per counter name, starting at 1.
func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return counter.Seq, nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
