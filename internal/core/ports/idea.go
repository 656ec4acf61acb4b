package ports

import (
	"context"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

// IdeaRepository persists ideas.
type IdeaRepository interface {
	// CreateIdea assigns idea.ID and idea.CreatedAt.
	CreateIdea(ctx context.Context, idea *domain.Idea) error
	ListIdeas(ctx context.Context) ([]domain.Idea, error)
}

// IdeaService defines the idea catalog use cases.
type IdeaService interface {
	List(ctx context.Context) ([]domain.Idea, error)
	Create(ctx context.Context, title, description, creatorID string) (*domain.Idea, error)
}
