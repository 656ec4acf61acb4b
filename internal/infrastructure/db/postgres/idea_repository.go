package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

func (s *Store) CreateIdea(ctx context.Context, idea *domain.Idea) error {
	row := ideaRow{
		Title:       idea.Title,
		Description: idea.Description,
		CreatedByID: idea.CreatedByID,
		CreatedAt:   idea.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("insert idea: %w", err)
	}
	idea.ID = row.ID
	idea.CreatedAt = row.CreatedAt.UTC()
	return nil
}

func (s *Store) ListIdeas(ctx context.Context) ([]domain.Idea, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var rows []ideaRow
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}

	ideas := make([]domain.Idea, 0, len(rows))
	for _, r := range rows {
		ideas = append(ideas, r.toDomain())
	}
	return ideas, nil
}
