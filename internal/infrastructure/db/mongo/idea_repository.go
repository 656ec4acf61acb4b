package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

type ideaDocument struct {
	ID          int64  `bson:"_id"`
	Title       string `bson:"title"`
	Description string `bson:"description"`
	CreatedByID string `bson:"created_by_id"`
	CreatedAt   int64  `bson:"created_at"`
}

func (s *Store) CreateIdea(ctx context.Context, idea *domain.Idea) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := s.nextID(ctx, collectionIdeas)
	if err != nil {
		return err
	}
	createdAt := idea.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	doc := ideaDocument{
		ID:          id,
		Title:       idea.Title,
		Description: idea.Description,
		CreatedByID: idea.CreatedByID,
		CreatedAt:   createdAt.Unix(),
	}
	if _, err := s.ideas.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert idea: %w", err)
	}

	idea.ID = id
	idea.CreatedAt = unixToTime(doc.CreatedAt)
	return nil
}

func (s *Store) ListIdeas(ctx context.Context) ([]domain.Idea, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := s.ideas.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	defer cur.Close(ctx)

	var docs []ideaDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode ideas: %w", err)
	}

	ideas := make([]domain.Idea, 0, len(docs))
	for _, d := range docs {
		ideas = append(ideas, domain.Idea{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			CreatedByID: d.CreatedByID,
			CreatedAt:   unixToTime(d.CreatedAt),
		})
	}
	return ideas, nil
}
