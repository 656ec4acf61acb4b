package handler

import "time"

// errorResponse mirrors the envelope rendered by the API error handler.
type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	IsAdmin  bool   `json:"isAdmin"`
}

type registerResponse struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

// loginRequest is not validated with tags: every empty or wrong field must
// produce the same 401.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// --- Ideas ---

type createIdeaRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description" validate:"required"`
}

type ideaSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ideaResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedByID string    `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
}

// --- Votes ---

// voteRequest carries no validation tags: an absent or unknown id is a
// missing idea, reported by the service as 404.
type voteRequest struct {
	IdeaID int64 `json:"ideaId"`
}

type voteCountResponse struct {
	IdeaID    int64 `json:"ideaId"`
	VoteCount int64 `json:"voteCount"`
}

type tallyItem struct {
	IdeaID      int64  `json:"ideaId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VoteCount   int64  `json:"voteCount"`
}

type votedIdeaItem struct {
	IdeaID      int64  `json:"ideaId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
