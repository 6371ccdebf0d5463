package repository

import (
	"context"
	"time"

	"follow-graph/internal/domain"
)

// GraphRepository defines persistence operations for follow edges. Both
// sides of an edge live in separate adjacency tables; each write below
// touches exactly one side and is conditional on the current edge state, so
// a failed or interrupted pair of calls leaves a repairable half-edge
// rather than corrupt state.
type GraphRepository interface {
	Init(ctx context.Context) error

	// AddFollowing records the outgoing side of userID -> followeeID.
	// Fails with ErrNoMatch when userID has no record or the side is
	// already present.
	AddFollowing(ctx context.Context, userID, followeeID string, since time.Time) error
	// AddFollower records the incoming side of followerID -> userID under
	// the same conditions.
	AddFollower(ctx context.Context, userID, followerID string, since time.Time) error
	// RemoveFollowing deletes the outgoing side of userID -> followeeID,
	// failing with ErrNoMatch when it is not present.
	RemoveFollowing(ctx context.Context, userID, followeeID string) error
	// RemoveFollower deletes the incoming side of followerID -> userID,
	// failing with ErrNoMatch when it is not present.
	RemoveFollower(ctx context.Context, userID, followerID string) error

	// FollowerEdges returns the incoming edges of userID with timestamps.
	FollowerEdges(ctx context.Context, userID string) ([]domain.EdgeRef, error)
	// FollowerIDs returns the set of ids following userID.
	FollowerIDs(ctx context.Context, userID string) ([]string, error)

	// DanglingFollowings returns outgoing sides whose incoming mirror is
	// missing; DanglingFollowers the reverse.
	DanglingFollowings(ctx context.Context) ([]domain.HalfEdge, error)
	DanglingFollowers(ctx context.Context) ([]domain.HalfEdge, error)
}
