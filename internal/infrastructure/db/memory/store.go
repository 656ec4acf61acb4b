// Package memory is an in-process store for local development and tests.
// A single mutex stands in for the unique and foreign-key constraints the
// database backends enforce.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ideaboard/idea-voting/internal/core/domain"
	"github.com/ideaboard/idea-voting/internal/infrastructure/password"
)

type voteKey struct {
	userID string
	ideaID int64
}

// Store implements ports.CredentialStore, ports.IdeaRepository and
// ports.VoteRepository.
type Store struct {
	mu sync.RWMutex

	hasher     password.Hasher
	users      map[string]*domain.User // by id
	byUsername map[string]string       // normalized username -> id
	byEmail    map[string]string       // normalized email -> id
	roles      map[string]bool
	userRoles  map[string][]string

	ideas      []domain.Idea
	nextIdeaID int64

	votes      []domain.Vote
	voteIndex  map[voteKey]bool
	nextVoteID int64
}

func NewStore(hasher password.Hasher) *Store {
	return &Store{
		hasher:     hasher,
		users:      make(map[string]*domain.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
		roles:      make(map[string]bool),
		userRoles:  make(map[string][]string),
		voteIndex:  make(map[voteKey]bool),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[domain.NormalizeIdentity(username)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return s.userCopy(id), nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[domain.NormalizeIdentity(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return s.userCopy(id), nil
}

func (s *Store) Create(_ context.Context, user *domain.User, plain string) (*domain.User, error) {
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nameKey := domain.NormalizeIdentity(user.Username)
	emailKey := domain.NormalizeIdentity(user.Email)
	if _, taken := s.byUsername[nameKey]; taken {
		return nil, domain.ErrDuplicateIdentity
	}
	if _, taken := s.byEmail[emailKey]; taken {
		return nil, domain.ErrDuplicateIdentity
	}

	created := &domain.User{
		ID:           uuid.NewString(),
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: hash,
		CreatedAt:    user.CreatedAt,
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	s.users[created.ID] = created
	s.byUsername[nameKey] = created.ID
	s.byEmail[emailKey] = created.ID
	return s.userCopy(created.ID), nil
}

func (s *Store) VerifyPassword(_ context.Context, user *domain.User, plain string) bool {
	if user == nil {
		return false
	}
	return s.hasher.Compare(user.PasswordHash, plain)
}

func (s *Store) RolesOf(_ context.Context, user *domain.User) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.userRoles[user.ID]), nil
}

func (s *Store) EnsureRole(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[name] = true
	return nil
}

func (s *Store) AssignRole(_ context.Context, user *domain.User, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.roles[name] {
		return domain.ErrRoleNotFound
	}
	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if !slices.Contains(s.userRoles[user.ID], name) {
		s.userRoles[user.ID] = append(s.userRoles[user.ID], name)
	}
	return nil
}

func (s *Store) CreateIdea(_ context.Context, idea *domain.Idea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextIdeaID++
	idea.ID = s.nextIdeaID
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = time.Now().UTC()
	}
	s.ideas = append(s.ideas, *idea)
	return nil
}

func (s *Store) ListIdeas(context.Context) ([]domain.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ideas), nil
}

func (s *Store) IdeaExists(_ context.Context, ideaID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ideaByID(ideaID)
	return ok, nil
}

func (s *Store) HasVoted(_ context.Context, voterID string, ideaID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voteIndex[voteKey{voterID, ideaID}], nil
}

func (s *Store) InsertVote(_ context.Context, vote *domain.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ideaByID(vote.IdeaID); !ok {
		return domain.ErrIdeaNotFound
	}
	key := voteKey{vote.UserID, vote.IdeaID}
	if s.voteIndex[key] {
		return domain.ErrDuplicateVote
	}
	s.nextVoteID++
	vote.ID = s.nextVoteID
	s.votes = append(s.votes, *vote)
	s.voteIndex[key] = true
	return nil
}

func (s *Store) CountVotes(_ context.Context, ideaID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, v := range s.votes {
		if v.IdeaID == ideaID {
			n++
		}
	}
	return n, nil
}

func (s *Store) VotesByVoter(_ context.Context, voterID string) ([]domain.VotedIdea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.VotedIdea{}
	for _, v := range s.votes {
		if v.UserID != voterID {
			continue
		}
		idea, _ := s.ideaByID(v.IdeaID)
		out = append(out, domain.VotedIdea{IdeaID: idea.ID, Title: idea.Title, Description: idea.Description})
	}
	slices.SortFunc(out, func(a, b domain.VotedIdea) int { return cmp.Compare(a.IdeaID, b.IdeaID) })
	return out, nil
}

func (s *Store) Tally(context.Context) ([]domain.IdeaTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[int64]int64, len(s.ideas))
	for _, v := range s.votes {
		counts[v.IdeaID]++
	}
	out := make([]domain.IdeaTally, 0, len(s.ideas))
	for _, idea := range s.ideas {
		out = append(out, domain.IdeaTally{
			IdeaID:      idea.ID,
			Title:       idea.Title,
			Description: idea.Description,
			VoteCount:   counts[idea.ID],
		})
	}
	return out, nil
}

// ideaByID relies on ids being assigned sequentially from 1.
func (s *Store) ideaByID(id int64) (domain.Idea, bool) {
	if id < 1 || id > int64(len(s.ideas)) {
		return domain.Idea{}, false
	}
	return s.ideas[id-1], true
}

func (s *Store) userCopy(id string) *domain.User {
	u := *s.users[id]
	u.Roles = slices.Clone(s.userRoles[id])
	return &u
}
