package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ideaboard/idea-voting/internal/core/domain"
	"github.com/ideaboard/idea-voting/internal/core/ports"
)

type IdeaService struct {
	repo ports.IdeaRepository
	log  zerolog.Logger
}

func NewIdeaService(repo ports.IdeaRepository, log zerolog.Logger) *IdeaService {
	return &IdeaService{repo: repo, log: log}
}

func (s *IdeaService) List(ctx context.Context) ([]domain.Idea, error) {
	ideas, err := s.repo.ListIdeas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	return ideas, nil
}

// Create stores a new idea authored by creatorID. Blank titles or
// descriptions are rejected before touching storage.
func (s *IdeaService) Create(ctx context.Context, title, description, creatorID string) (*domain.Idea, error) {
	var problems []string
	if strings.TrimSpace(title) == "" {
		problems = append(problems, "title must not be empty")
	}
	if strings.TrimSpace(description) == "" {
		problems = append(problems, "description must not be empty")
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}

	idea := &domain.Idea{
		Title:       title,
		Description: description,
		CreatedByID: creatorID,
	}
	if err := s.repo.CreateIdea(ctx, idea); err != nil {
		return nil, fmt.Errorf("create idea: %w", err)
	}

	s.log.Info().Int64("idea_id", idea.ID).Str("created_by", creatorID).Msg("idea created")
	return idea, nil
}
