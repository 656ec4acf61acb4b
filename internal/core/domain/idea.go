package domain

import "time"

// Idea is a proposal that users can vote on. Only admins create ideas.
type Idea struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedByID string    `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
}
