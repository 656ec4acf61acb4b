package mongo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

type userDocument struct {
	ID                 string   `bson:"_id"`
	Username           string   `bson:"username"`
	NormalizedUsername string   `bson:"normalized_username"`
	Email              string   `bson:"email"`
	NormalizedEmail    string   `bson:"normalized_email"`
	PasswordHash       string   `bson:"password_hash"`
	Roles              []string `bson:"roles"`
	CreatedAt          int64    `bson:"created_at"`
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Roles:        d.Roles,
		CreatedAt:    unixToTime(d.CreatedAt),
	}
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"normalized_username": domain.NormalizeIdentity(username)})
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"normalized_email": domain.NormalizeIdentity(email)})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *Store) Create(ctx context.Context, user *domain.User, plain string) (*domain.User, error) {
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, err
	}

	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	doc := userDocument{
		ID:                 uuid.NewString(),
		Username:           user.Username,
		NormalizedUsername: domain.NormalizeIdentity(user.Username),
		Email:              user.Email,
		NormalizedEmail:    domain.NormalizeIdentity(user.Email),
		PasswordHash:       hash,
		Roles:              []string{},
		CreatedAt:          createdAt.Unix(),
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *Store) VerifyPassword(_ context.Context, user *domain.User, plain string) bool {
	if user == nil {
		return false
	}
	return s.hasher.Compare(user.PasswordHash, plain)
}

func (s *Store) RolesOf(ctx context.Context, user *domain.User) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc struct {
		Roles []string `bson:"roles"`
	}
	err := s.users.FindOne(ctx, bson.M{"_id": user.ID},
		options.FindOne().SetProjection(bson.M{"roles": 1})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("load roles: %w", err)
	}
	slices.Sort(doc.Roles)
	return doc.Roles, nil
}

// EnsureRole upserts by name. Two first-time upserts racing on the same _id
// can surface a duplicate key error; the role exists either way.
func (s *Store) EnsureRole(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.roles.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$setOnInsert": bson.M{"name": name}},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("ensure role: %w", err)
	}
	return nil
}

func (s *Store) AssignRole(ctx context.Context, user *domain.User, name string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := s.roles.FindOne(ctx, bson.M{"_id": name}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrRoleNotFound
		}
		return fmt.Errorf("find role: %w", err)
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$addToSet": bson.M{"roles": name}},
	)
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
