package mongo

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ideaboard/idea-voting/internal/core/domain"
	"github.com/ideaboard/idea-voting/internal/infrastructure/password"
)

// setupTestStore connects to TEST_MONGO_URI and uses a throwaway database.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set (skipping)")
	}

	ctx := context.Background()
	client, db, err := Connect(ctx, Config{URI: uri, Database: "ideas_test_" + uuid.NewString()[:8]})
	if err != nil {
		t.Skipf("test mongo unavailable (skipping): %v", err)
	}
	store := NewStore(client, db, password.NewHasher(bcrypt.MinCost))
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = store.Close(ctx)
	})
	return store
}

func TestStore_UserLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u, err := s.Create(ctx, &domain.User{Username: "Alice", Email: "alice@x.com"}, "pw123")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx, &domain.User{Username: "alice", Email: "b@x.com"}, "pw"); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}

	found, err := s.FindByEmail(ctx, "ALICE@x.com")
	if err != nil || found.ID != u.ID {
		t.Fatalf("FindByEmail: %+v, %v", found, err)
	}
	if !s.VerifyPassword(ctx, found, "pw123") {
		t.Fatal("expected password to verify")
	}

	if err := s.AssignRole(ctx, u, domain.RoleUser); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
	_ = s.EnsureRole(ctx, domain.RoleUser)
	_ = s.EnsureRole(ctx, domain.RoleUser)
	if err := s.AssignRole(ctx, u, domain.RoleUser); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	roles, _ := s.RolesOf(ctx, u)
	if len(roles) != 1 || roles[0] != domain.RoleUser {
		t.Fatalf("unexpected roles: %v", roles)
	}
}

func TestStore_ConcurrentVotes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	idea := &domain.Idea{Title: "Dark mode", Description: "Add a dark theme", CreatedByID: "u"}
	if err := s.CreateIdea(ctx, idea); err != nil {
		t.Fatalf("CreateIdea: %v", err)
	}
	if idea.ID != 1 {
		t.Fatalf("expected first idea id 1, got %d", idea.ID)
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.InsertVote(ctx, &domain.Vote{UserID: "u", IdeaID: idea.ID}); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrDuplicateVote) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 {
		t.Fatalf("expected exactly one vote, got %d", ok)
	}
	if err := s.InsertVote(ctx, &domain.Vote{UserID: "u", IdeaID: 999}); !errors.Is(err, domain.ErrIdeaNotFound) {
		t.Fatalf("expected ErrIdeaNotFound, got %v", err)
	}

	tally, err := s.Tally(ctx)
	if err != nil || len(tally) != 1 || tally[0].VoteCount != 1 {
		t.Fatalf("unexpected tally %+v, err %v", tally, err)
	}
	mine, err := s.VotesByVoter(ctx, "u")
	if err != nil || len(mine) != 1 || mine[0].Title != "Dark mode" {
		t.Fatalf("unexpected history %+v, err %v", mine, err)
	}
}
