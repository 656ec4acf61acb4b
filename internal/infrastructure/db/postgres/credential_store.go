package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

func (s *Store) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findUser(ctx, "normalized_username = ?", domain.NormalizeIdentity(username))
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, "normalized_email = ?", domain.NormalizeIdentity(email))
}

func (s *Store) findUser(ctx context.Context, query string, arg string) (*domain.User, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var row userRow
	if err := db.Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return row.toDomain(), nil
}

// Create relies on the unique constraints over the normalized columns, so two
// concurrent registrations for the same identity cannot both succeed.
func (s *Store) Create(ctx context.Context, user *domain.User, plain string) (*domain.User, error) {
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, err
	}

	row := userRow{
		ID:                 uuid.NewString(),
		Username:           user.Username,
		NormalizedUsername: domain.NormalizeIdentity(user.Username),
		Email:              user.Email,
		NormalizedEmail:    domain.NormalizeIdentity(user.Email),
		PasswordHash:       hash,
		CreatedAt:          user.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	if err := db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) VerifyPassword(_ context.Context, user *domain.User, plain string) bool {
	if user == nil {
		return false
	}
	return s.hasher.Compare(user.PasswordHash, plain)
}

func (s *Store) RolesOf(ctx context.Context, user *domain.User) ([]string, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var names []string
	err := db.Table("roles r").
		Select("r.name").
		Joins("JOIN user_roles ur ON ur.role_id = r.id").
		Where("ur.user_id = ?", user.ID).
		Order("r.name").
		Scan(&names).Error
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	return names, nil
}

// EnsureRole inserts the role unless a row with that name exists.
func (s *Store) EnsureRole(ctx context.Context, name string) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&roleRow{Name: name}).Error
	if err != nil {
		return fmt.Errorf("ensure role: %w", err)
	}
	return nil
}

func (s *Store) AssignRole(ctx context.Context, user *domain.User, name string) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	var role roleRow
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRoleNotFound
		}
		return fmt.Errorf("find role: %w", err)
	}

	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&userRoleRow{UserID: user.ID, RoleID: role.ID}).Error
	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.ErrUserNotFound
	case err != nil:
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}
