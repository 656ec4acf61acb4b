package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ideaboard/idea-voting/internal/api/metrics"
	"github.com/ideaboard/idea-voting/internal/core/ports"
)

// IdeaHandler serves the idea catalog.
type IdeaHandler struct {
	service ports.IdeaService
}

func NewIdeaHandler(service ports.IdeaService) *IdeaHandler {
	return &IdeaHandler{service: service}
}

// List handles GET /ideas.
//
// @Summary      List ideas
// @Tags         ideas
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ideaSummary
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /ideas [get]
func (h *IdeaHandler) List(c echo.Context) error {
	ideas, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]ideaSummary, 0, len(ideas))
	for _, i := range ideas {
		out = append(out, ideaSummary{ID: i.ID, Title: i.Title, Description: i.Description})
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /ideas.
//
// @Summary      Create an idea
// @Tags         ideas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createIdeaRequest  true  "Idea"
// @Success      201   {object}  ideaResponse
// @Header       201   {string}  Location  "URL of the created idea"
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /ideas [post]
func (h *IdeaHandler) Create(c echo.Context) error {
	var req createIdeaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	idea, err := h.service.Create(c.Request().Context(), req.Title, req.Description, claims.UserID)
	if err != nil {
		return err
	}

	metrics.IdeasCreatedTotal.Inc()
	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/ideas/%d", idea.ID))
	return c.JSON(http.StatusCreated, ideaResponse{
		ID:          idea.ID,
		Title:       idea.Title,
		Description: idea.Description,
		CreatedByID: idea.CreatedByID,
		CreatedAt:   idea.CreatedAt,
	})
}
