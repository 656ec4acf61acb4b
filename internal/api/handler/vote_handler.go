package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ideaboard/idea-voting/internal/api/metrics"
	"github.com/ideaboard/idea-voting/internal/core/domain"
	"github.com/ideaboard/idea-voting/internal/core/ports"
)

// VoteHandler serves the voting ledger.
type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

// Cast handles POST /vote.
//
// @Summary      Vote for an idea
// @Description  Each user can vote for a given idea once.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      voteRequest  true  "Idea to vote for"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse  "malformed payload or duplicate vote"
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /vote [post]
func (h *VoteHandler) Cast(c echo.Context) error {
	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	err = h.service.CastVote(c.Request().Context(), claims.UserID, req.IdeaID)
	metrics.VotesTotal.WithLabelValues(voteResult(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "vote recorded"})
}

// All handles GET /vote/all.
//
// @Summary      Vote tally
// @Tags         votes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   tallyItem
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /vote/all [get]
func (h *VoteHandler) All(c echo.Context) error {
	tally, err := h.service.Tally(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]tallyItem, 0, len(tally))
	for _, t := range tally {
		out = append(out, tallyItem{IdeaID: t.IdeaID, Title: t.Title, Description: t.Description, VoteCount: t.VoteCount})
	}
	return c.JSON(http.StatusOK, out)
}

// CountForIdea handles GET /vote/idea/:id.
//
// @Summary      Vote count for one idea
// @Tags         votes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Idea id"
// @Success      200  {object}  voteCountResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /vote/idea/{id} [get]
func (h *VoteHandler) CountForIdea(c echo.Context) error {
	ideaID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || ideaID <= 0 {
		return domain.NewValidationError("id must be a positive integer")
	}

	count, err := h.service.CountVotes(c.Request().Context(), ideaID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, voteCountResponse{IdeaID: ideaID, VoteCount: count})
}

// MyVotes handles GET /vote/my-votes.
//
// @Summary      Ideas the caller voted for
// @Tags         votes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   votedIdeaItem
// @Failure      401  {object}  errorResponse
// @Router       /vote/my-votes [get]
func (h *VoteHandler) MyVotes(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	votes, err := h.service.VotesByVoter(c.Request().Context(), claims.UserID)
	if err != nil {
		return err
	}

	out := make([]votedIdeaItem, 0, len(votes))
	for _, v := range votes {
		out = append(out, votedIdeaItem{IdeaID: v.IdeaID, Title: v.Title, Description: v.Description})
	}
	return c.JSON(http.StatusOK, out)
}

func voteResult(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, domain.ErrDuplicateVote):
		return "duplicate"
	case errors.Is(err, domain.ErrIdeaNotFound):
		return "idea_not_found"
	default:
		return "error"
	}
}
