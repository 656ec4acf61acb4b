package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

type stubIdeaRepository struct {
	ideas  []domain.Idea
	err    error
	nextID int64
}

func (r *stubIdeaRepository) CreateIdea(_ context.Context, idea *domain.Idea) error {
	if r.err != nil {
		return r.err
	}
	r.nextID++
	idea.ID = r.nextID
	idea.CreatedAt = time.Now().UTC()
	r.ideas = append(r.ideas, *idea)
	return nil
}

func (r *stubIdeaRepository) ListIdeas(_ context.Context) ([]domain.Idea, error) {
	return r.ideas, r.err
}

func TestIdeaService_Create(t *testing.T) {
	repo := &stubIdeaRepository{}
	svc := NewIdeaService(repo, zerolog.Nop())

	idea, err := svc.Create(context.Background(), "Dark mode", "Add a dark theme", "user-1")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if idea.ID != 1 || idea.CreatedByID != "user-1" {
		t.Fatalf("unexpected idea: %+v", idea)
	}
	if len(repo.ideas) != 1 {
		t.Fatalf("expected idea to be stored")
	}
}

func TestIdeaService_Create_Validation(t *testing.T) {
	repo := &stubIdeaRepository{}
	svc := NewIdeaService(repo, zerolog.Nop())

	_, err := svc.Create(context.Background(), "  ", "", "user-1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || len(verr.Problems) != 2 {
		t.Fatalf("expected two problems, got %v", err)
	}
	if len(repo.ideas) != 0 {
		t.Fatalf("expected nothing stored")
	}
}

func TestIdeaService_List_PropagatesError(t *testing.T) {
	repoErr := errors.New("db down")
	svc := NewIdeaService(&stubIdeaRepository{err: repoErr}, zerolog.Nop())

	if _, err := svc.List(context.Background()); !errors.Is(err, repoErr) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}
