package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"follow-graph/internal/domain"
	"follow-graph/internal/repository"
)

const minUsernameLength = 3

// UserService describes account lifecycle operations.
type UserService interface {
	CreateUser(ctx context.Context, username string) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

// CreateUser persists a new user node with empty adjacency lists. The
// existence check ahead of the insert is a fast path only; the store's
// uniqueness constraint is the authoritative guard, so two concurrent
// identical requests still resolve to one user and one failure.
func (s *userService) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLength {
		return nil, domain.ErrInvalidUsername
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, err
	}

	return user, nil
}
