package repository

import (
	"context"
	"errors"

	"follow-graph/internal/domain"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indicates a uniqueness constraint rejected the write.
	ErrDuplicate = errors.New("record already exists")
	// ErrNoMatch indicates a conditional write matched no record: the
	// precondition on the current state did not hold.
	ErrNoMatch = errors.New("no record matched")
)

// UserRepository defines persistence operations for user nodes.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// ListAll returns every user with both adjacency lists resolved to
	// peers, in store iteration order.
	ListAll(ctx context.Context) ([]domain.UserView, error)
	// ResolvePeers projects the given ids onto {id, username} pairs,
	// skipping ids without a user record.
	ResolvePeers(ctx context.Context, ids []string) ([]domain.Peer, error)
}
