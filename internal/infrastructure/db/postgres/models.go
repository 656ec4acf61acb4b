package postgres

import (
	"time"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

type userRow struct {
	ID                 string `gorm:"type:uuid;primaryKey"`
	Username           string
	NormalizedUsername string
	Email              string
	NormalizedEmail    string
	PasswordHash       string
	CreatedAt          time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

type roleRow struct {
	ID   int `gorm:"primaryKey"`
	Name string
}

func (roleRow) TableName() string { return "roles" }

type userRoleRow struct {
	UserID string `gorm:"type:uuid;primaryKey"`
	RoleID int    `gorm:"primaryKey"`
}

func (userRoleRow) TableName() string { return "user_roles" }

type ideaRow struct {
	ID          int64 `gorm:"primaryKey"`
	Title       string
	Description string
	CreatedByID string `gorm:"type:uuid"`
	CreatedAt   time.Time
}

func (ideaRow) TableName() string { return "ideas" }

func (r ideaRow) toDomain() domain.Idea {
	return domain.Idea{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		CreatedByID: r.CreatedByID,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type voteRow struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    string `gorm:"type:uuid"`
	IdeaID    int64
	CreatedAt time.Time
}

func (voteRow) TableName() string { return "votes" }
