package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

func (s *Store) IdeaExists(ctx context.Context, ideaID int64) (bool, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var n int64
	if err := db.Model(&ideaRow{}).Where("id = ?", ideaID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("idea exists: %w", err)
	}
	return n > 0, nil
}

func (s *Store) HasVoted(ctx context.Context, voterID string, ideaID int64) (bool, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var n int64
	err := db.Model(&voteRow{}).
		Where("user_id = ? AND idea_id = ?", voterID, ideaID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("has voted: %w", err)
	}
	return n > 0, nil
}

// InsertVote maps a uq_votes_user_idea violation to domain.ErrDuplicateVote
// and a foreign-key violation to domain.ErrIdeaNotFound.
func (s *Store) InsertVote(ctx context.Context, vote *domain.Vote) error {
	row := voteRow{UserID: vote.UserID, IdeaID: vote.IdeaID, CreatedAt: vote.CreatedAt}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	err := db.Create(&row).Error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicateVote
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.ErrIdeaNotFound
	case err != nil:
		return fmt.Errorf("insert vote: %w", err)
	}
	vote.ID = row.ID
	return nil
}

func (s *Store) CountVotes(ctx context.Context, ideaID int64) (int64, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var n int64
	if err := db.Model(&voteRow{}).Where("idea_id = ?", ideaID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return n, nil
}

func (s *Store) VotesByVoter(ctx context.Context, voterID string) ([]domain.VotedIdea, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	out := []domain.VotedIdea{}
	err := db.Table("votes v").
		Select("i.id AS idea_id, i.title, i.description").
		Joins("JOIN ideas i ON i.id = v.idea_id").
		Where("v.user_id = ?", voterID).
		Order("i.id").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("votes by voter: %w", err)
	}
	return out, nil
}

func (s *Store) Tally(ctx context.Context) ([]domain.IdeaTally, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	out := []domain.IdeaTally{}
	err := db.Table("ideas i").
		Select("i.id AS idea_id, i.title, i.description, COUNT(v.id) AS vote_count").
		Joins("LEFT JOIN votes v ON v.idea_id = i.id").
		Group("i.id, i.title, i.description").
		Order("i.id").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("tally votes: %w", err)
	}
	return out, nil
}
