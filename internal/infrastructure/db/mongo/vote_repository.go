package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

type voteDocument struct {
	ID        int64  `bson:"_id"`
	UserID    string `bson:"user_id"`
	IdeaID    int64  `bson:"idea_id"`
	CreatedAt int64  `bson:"created_at"`
}

func (s *Store) IdeaExists(ctx context.Context, ideaID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := s.ideas.CountDocuments(ctx, bson.M{"_id": ideaID})
	if err != nil {
		return false, fmt.Errorf("idea exists: %w", err)
	}
	return n > 0, nil
}

func (s *Store) HasVoted(ctx context.Context, voterID string, ideaID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := s.votes.CountDocuments(ctx, bson.M{"user_id": voterID, "idea_id": ideaID})
	if err != nil {
		return false, fmt.Errorf("has voted: %w", err)
	}
	return n > 0, nil
}

// InsertVote checks the idea in place of a foreign key. The unique index
// uq_votes_user_idea rejects the second of two racing inserts.
func (s *Store) InsertVote(ctx context.Context, vote *domain.Vote) error {
	exists, err := s.IdeaExists(ctx, vote.IdeaID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrIdeaNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := s.nextID(ctx, collectionVotes)
	if err != nil {
		return err
	}
	createdAt := vote.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.votes.InsertOne(ctx, voteDocument{
		ID:        id,
		UserID:    vote.UserID,
		IdeaID:    vote.IdeaID,
		CreatedAt: createdAt.Unix(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateVote
		}
		return fmt.Errorf("insert vote: %w", err)
	}
	vote.ID = id
	return nil
}

func (s *Store) CountVotes(ctx context.Context, ideaID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := s.votes.CountDocuments(ctx, bson.M{"idea_id": ideaID})
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return n, nil
}

func (s *Store) VotesByVoter(ctx context.Context, voterID string) ([]domain.VotedIdea, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": voterID}}},
		{{Key: "$sort", Value: bson.D{{Key: "idea_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionIdeas,
			"localField":   "idea_id",
			"foreignField": "_id",
			"as":           "idea",
		}}},
		{{Key: "$unwind", Value: "$idea"}},
		{{Key: "$project", Value: bson.M{
			"_id":         0,
			"idea_id":     1,
			"title":       "$idea.title",
			"description": "$idea.description",
		}}},
	}

	cur, err := s.votes.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("votes by voter: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		IdeaID      int64  `bson:"idea_id"`
		Title       string `bson:"title"`
		Description string `bson:"description"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode votes: %w", err)
	}

	out := make([]domain.VotedIdea, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.VotedIdea{IdeaID: r.IdeaID, Title: r.Title, Description: r.Description})
	}
	return out, nil
}

func (s *Store) Tally(ctx context.Context) ([]domain.IdeaTally, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionVotes,
			"localField":   "_id",
			"foreignField": "idea_id",
			"as":           "votes",
		}}},
		{{Key: "$project", Value: bson.M{
			"title":       1,
			"description": 1,
			"vote_count":  bson.M{"$size": "$votes"},
		}}},
	}

	cur, err := s.ideas.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("tally votes: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID          int64  `bson:"_id"`
		Title       string `bson:"title"`
		Description string `bson:"description"`
		VoteCount   int64  `bson:"vote_count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode tally: %w", err)
	}

	out := make([]domain.IdeaTally, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.IdeaTally{
			IdeaID:      r.ID,
			Title:       r.Title,
			Description: r.Description,
			VoteCount:   r.VoteCount,
		})
	}
	return out, nil
}
