package ports

import (
	"context"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

// VoteRepository persists votes and answers the queries built on them.
type VoteRepository interface {
	IdeaExists(ctx context.Context, ideaID int64) (bool, error)
	HasVoted(ctx context.Context, voterID string, ideaID int64) (bool, error)
	// InsertVote must reject a second vote for the same (voter, idea) pair
	// with domain.ErrDuplicateVote even when the caller raced past HasVoted,
	// and a vote for a missing idea with domain.ErrIdeaNotFound.
	InsertVote(ctx context.Context, vote *domain.Vote) error
	CountVotes(ctx context.Context, ideaID int64) (int64, error)
	VotesByVoter(ctx context.Context, voterID string) ([]domain.VotedIdea, error)
	Tally(ctx context.Context) ([]domain.IdeaTally, error)
}

// VoteCountCache is an optional read-through cache for per-idea counts.
//
// Every Invalidate bumps the idea's generation. A reader takes Generation
// before it counts in the database and hands it to Set, which stores the
// count only while the generation is unchanged. A vote that commits during
// the read therefore never leaves its stale count behind.
type VoteCountCache interface {
	Get(ctx context.Context, ideaID int64) (count int64, found bool, err error)
	Generation(ctx context.Context, ideaID int64) (int64, error)
	// Set reports whether the count was stored.
	Set(ctx context.Context, ideaID int64, count int64, generation int64) (bool, error)
	Invalidate(ctx context.Context, ideaID int64) error
}

// VoteService defines the voting ledger use cases.
type VoteService interface {
	CastVote(ctx context.Context, voterID string, ideaID int64) error
	CountVotes(ctx context.Context, ideaID int64) (int64, error)
	VotesByVoter(ctx context.Context, voterID string) ([]domain.VotedIdea, error)
	Tally(ctx context.Context) ([]domain.IdeaTally, error)
}
