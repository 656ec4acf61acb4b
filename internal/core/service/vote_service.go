package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ideaboard/idea-voting/internal/core/domain"
	"github.com/ideaboard/idea-voting/internal/core/ports"
)

// VoteService is the voting ledger. Uniqueness of (voter, idea) is owned by
// the repository's storage constraint; the HasVoted lookup only saves a
// round trip in the common case.
type VoteService struct {
	repo  ports.VoteRepository
	cache ports.VoteCountCache // optional
	now   func() time.Time
	log   zerolog.Logger
}

// NewVoteService returns a VoteService. cache may be nil.
func NewVoteService(repo ports.VoteRepository, cache ports.VoteCountCache, log zerolog.Logger) *VoteService {
	return &VoteService{repo: repo, cache: cache, now: time.Now, log: log}
}

// CastVote records voterID's vote for ideaID.
func (s *VoteService) CastVote(ctx context.Context, voterID string, ideaID int64) error {
	// 1. The idea must exist.
	exists, err := s.repo.IdeaExists(ctx, ideaID)
	if err != nil {
		return fmt.Errorf("cast vote: %w", err)
	}
	if !exists {
		return domain.ErrIdeaNotFound
	}

	// 2. Fast-path duplicate check.
	voted, err := s.repo.HasVoted(ctx, voterID, ideaID)
	if err != nil {
		return fmt.Errorf("cast vote: %w", err)
	}
	if voted {
		return domain.ErrDuplicateVote
	}

	// 3. Insert. A concurrent caller that got past step 2 is stopped here by
	// the unique constraint. Never retried.
	err = s.repo.InsertVote(ctx, &domain.Vote{
		UserID:    voterID,
		IdeaID:    ideaID,
		CreatedAt: s.now().UTC(),
	})
	switch {
	case errors.Is(err, domain.ErrDuplicateVote):
		s.log.Warn().Str("voter_id", voterID).Int64("idea_id", ideaID).Msg("duplicate vote rejected by constraint")
		return err
	case errors.Is(err, domain.ErrIdeaNotFound):
		return err
	case err != nil:
		return fmt.Errorf("cast vote: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, ideaID); err != nil {
			s.log.Warn().Err(err).Int64("idea_id", ideaID).Msg("failed to invalidate vote count")
		}
	}

	s.log.Info().Str("voter_id", voterID).Int64("idea_id", ideaID).Msg("vote cast")
	return nil
}

// CountVotes returns the number of votes for ideaID, reading through the
// cache when one is configured.
func (s *VoteService) CountVotes(ctx context.Context, ideaID int64) (int64, error) {
	// Taken before the database read so a concurrent vote blocks the fill.
	generation, cacheable := int64(0), false
	if s.cache != nil {
		count, found, err := s.cache.Get(ctx, ideaID)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Int64("idea_id", ideaID).Msg("vote count cache read failed")
		case found:
			return count, nil
		default:
			generation, err = s.cache.Generation(ctx, ideaID)
			if err != nil {
				s.log.Warn().Err(err).Int64("idea_id", ideaID).Msg("vote count generation read failed")
			} else {
				cacheable = true
			}
		}
	}

	exists, err := s.repo.IdeaExists(ctx, ideaID)
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	if !exists {
		return 0, domain.ErrIdeaNotFound
	}

	count, err := s.repo.CountVotes(ctx, ideaID)
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}

	if cacheable {
		stored, err := s.cache.Set(ctx, ideaID, count, generation)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Int64("idea_id", ideaID).Msg("vote count cache write failed")
		case !stored:
			s.log.Debug().Int64("idea_id", ideaID).Msg("vote count changed during read, not cached")
		}
	}
	return count, nil
}

func (s *VoteService) VotesByVoter(ctx context.Context, voterID string) ([]domain.VotedIdea, error) {
	votes, err := s.repo.VotesByVoter(ctx, voterID)
	if err != nil {
		return nil, fmt.Errorf("votes by voter: %w", err)
	}
	return votes, nil
}

func (s *VoteService) Tally(ctx context.Context) ([]domain.IdeaTally, error) {
	tally, err := s.repo.Tally(ctx)
	if err != nil {
		return nil, fmt.Errorf("tally votes: %w", err)
	}
	return tally, nil
}
