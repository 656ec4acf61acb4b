package domain

import "time"

// Vote records that a user voted for an idea. At most one exists per
// (UserID, IdeaID) pair.
type Vote struct {
	ID        int64
	UserID    string
	IdeaID    int64
	CreatedAt time.Time
}

// VotedIdea is a row of a voter's history.
type VotedIdea struct {
	IdeaID      int64
	Title       string
	Description string
}

// IdeaTally pairs an idea with its current vote count.
type IdeaTally struct {
	IdeaID      int64
	Title       string
	Description string
	VoteCount   int64
}
