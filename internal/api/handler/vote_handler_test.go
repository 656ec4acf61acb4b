package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

type stubVoteService struct {
	castFn  func(ctx context.Context, voterID string, ideaID int64) error
	countFn func(ctx context.Context, ideaID int64) (int64, error)
	mineFn  func(ctx context.Context, voterID string) ([]domain.VotedIdea, error)
	tallyFn func(ctx context.Context) ([]domain.IdeaTally, error)
}

func (s *stubVoteService) CastVote(ctx context.Context, voterID string, ideaID int64) error {
	return s.castFn(ctx, voterID, ideaID)
}

func (s *stubVoteService) CountVotes(ctx context.Context, ideaID int64) (int64, error) {
	return s.countFn(ctx, ideaID)
}

func (s *stubVoteService) VotesByVoter(ctx context.Context, voterID string) ([]domain.VotedIdea, error) {
	return s.mineFn(ctx, voterID)
}

func (s *stubVoteService) Tally(ctx context.Context) ([]domain.IdeaTally, error) {
	return s.tallyFn(ctx)
}

var bobClaims = &domain.Claims{UserID: "u-bob", Username: "bob", Roles: []string{domain.RoleUser}}

func TestVoteHandler_Cast(t *testing.T) {
	e := newTestEcho()
	stub := &stubVoteService{
		castFn: func(_ context.Context, voterID string, ideaID int64) error {
			if voterID != "u-bob" || ideaID != 1 {
				t.Fatalf("unexpected vote %s/%d", voterID, ideaID)
			}
			return nil
		},
	}
	c, rec := jsonRequest(e, http.MethodPost, "/vote", `{"ideaId":1}`)
	withClaims(c, bobClaims)

	if err := NewVoteHandler(stub).Cast(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestVoteHandler_Cast_ServiceErrors(t *testing.T) {
	for _, want := range []error{domain.ErrDuplicateVote, domain.ErrIdeaNotFound} {
		e := newTestEcho()
		stub := &stubVoteService{
			castFn: func(context.Context, string, int64) error { return want },
		}
		c, _ := jsonRequest(e, http.MethodPost, "/vote", `{"ideaId":1}`)
		withClaims(c, bobClaims)

		if err := NewVoteHandler(stub).Cast(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestVoteHandler_Cast_ZeroOrMissingIdeaIDIsNotFound(t *testing.T) {
	for _, body := range []string{`{}`, `{"ideaId":0}`, `{"ideaId":-3}`} {
		e := newTestEcho()
		var called bool
		stub := &stubVoteService{
			castFn: func(_ context.Context, _ string, ideaID int64) error {
				called = true
				if ideaID > 0 {
					t.Fatalf("unexpected idea id %d", ideaID)
				}
				return domain.ErrIdeaNotFound
			},
		}
		c, _ := jsonRequest(e, http.MethodPost, "/vote", body)
		withClaims(c, bobClaims)

		err := NewVoteHandler(stub).Cast(c)
		if !called {
			t.Fatalf("%s: expected the service to decide", body)
		}
		if !errors.Is(err, domain.ErrIdeaNotFound) {
			t.Fatalf("%s: expected ErrIdeaNotFound, got %v", body, err)
		}
	}
}

func TestVoteHandler_Cast_MalformedJSON(t *testing.T) {
	e := newTestEcho()
	c, _ := jsonRequest(e, http.MethodPost, "/vote", `{"ideaId":"one"}`)
	withClaims(c, bobClaims)

	err := NewVoteHandler(&stubVoteService{}).Cast(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestVoteHandler_CountForIdea(t *testing.T) {
	e := newTestEcho()
	stub := &stubVoteService{
		countFn: func(_ context.Context, ideaID int64) (int64, error) { return 3, nil },
	}
	c, rec := jsonRequest(e, http.MethodGet, "/vote/idea/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := NewVoteHandler(stub).CountForIdea(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp voteCountResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.IdeaID != 1 || resp.VoteCount != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestVoteHandler_CountForIdea_BadID(t *testing.T) {
	for _, id := range []string{"abc", "0", "-4"} {
		e := newTestEcho()
		c, _ := jsonRequest(e, http.MethodGet, "/vote/idea/"+id, "")
		c.SetParamNames("id")
		c.SetParamValues(id)

		if err := NewVoteHandler(&stubVoteService{}).CountForIdea(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("id %q: expected validation error, got %v", id, err)
		}
	}
}

func TestVoteHandler_AllAndMine(t *testing.T) {
	e := newTestEcho()
	stub := &stubVoteService{
		tallyFn: func(context.Context) ([]domain.IdeaTally, error) {
			return []domain.IdeaTally{{IdeaID: 1, Title: "A", Description: "a", VoteCount: 2}}, nil
		},
		mineFn: func(_ context.Context, voterID string) ([]domain.VotedIdea, error) {
			return []domain.VotedIdea{{IdeaID: 1, Title: "A", Description: "a"}}, nil
		},
	}
	h := NewVoteHandler(stub)

	c, rec := jsonRequest(e, http.MethodGet, "/vote/all", "")
	if err := h.All(c); err != nil {
		t.Fatalf("All: %v", err)
	}
	var tally []tallyItem
	_ = json.Unmarshal(rec.Body.Bytes(), &tally)
	if len(tally) != 1 || tally[0].VoteCount != 2 {
		t.Fatalf("unexpected tally: %+v", tally)
	}

	c, rec = jsonRequest(e, http.MethodGet, "/vote/my-votes", "")
	withClaims(c, bobClaims)
	if err := h.MyVotes(c); err != nil {
		t.Fatalf("MyVotes: %v", err)
	}
	var mine []votedIdeaItem
	_ = json.Unmarshal(rec.Body.Bytes(), &mine)
	if len(mine) != 1 || mine[0].IdeaID != 1 {
		t.Fatalf("unexpected history: %+v", mine)
	}
}
