package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"follow-graph/internal/domain"
	"follow-graph/internal/repository"
)

// The two adjacency tables are a redundant mirror of each other: a full
// edge A -> B is one row in followings (owned by A) plus one row in
// followers (owned by B). They are deliberately written by separate
// statements without a shared transaction and carry no foreign keys, so a
// half-edge is representable and survives until a repair pass removes or
// completes it.
const createEdgeTables = `
CREATE TABLE IF NOT EXISTS followings (
	user_id TEXT NOT NULL,
	followee_id TEXT NOT NULL,
	since DATETIME NOT NULL,
	PRIMARY KEY (user_id, followee_id)
);
CREATE TABLE IF NOT EXISTS followers (
	user_id TEXT NOT NULL,
	follower_id TEXT NOT NULL,
	since DATETIME NOT NULL,
	PRIMARY KEY (user_id, follower_id)
);
`

type GraphRepository struct {
	db *sql.DB
}

func NewGraphRepository(db *sql.DB) repository.GraphRepository {
	return &GraphRepository{db: db}
}

func (r *GraphRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createEdgeTables); err != nil {
		return fmt.Errorf("create edge tables: %w", err)
	}
	return nil
}

func (r *GraphRepository) AddFollowing(ctx context.Context, userID, followeeID string, since time.Time) error {
	return r.conditionalInsert(ctx, `
INSERT INTO followings (user_id, followee_id, since)
SELECT ?, ?, ?
WHERE EXISTS (SELECT 1 FROM users WHERE id = ?)
AND NOT EXISTS (SELECT 1 FROM followings WHERE user_id = ? AND followee_id = ?)`,
		userID, followeeID, since, userID, userID, followeeID)
}

func (r *GraphRepository) AddFollower(ctx context.Context, userID, followerID string, since time.Time) error {
	return r.conditionalInsert(ctx, `
INSERT INTO followers (user_id, follower_id, since)
SELECT ?, ?, ?
WHERE EXISTS (SELECT 1 FROM users WHERE id = ?)
AND NOT EXISTS (SELECT 1 FROM followers WHERE user_id = ? AND follower_id = ?)`,
		userID, followerID, since, userID, userID, followerID)
}

func (r *GraphRepository) RemoveFollowing(ctx context.Context, userID, followeeID string) error {
	return r.conditionalDelete(ctx, `
DELETE FROM followings
WHERE user_id = ? AND followee_id = ?`,
		userID, followeeID)
}

func (r *GraphRepository) RemoveFollower(ctx context.Context, userID, followerID string) error {
	return r.conditionalDelete(ctx, `
DELETE FROM followers
WHERE user_id = ? AND follower_id = ?`,
		userID, followerID)
}

// conditionalInsert applies an edge insert guarded on owner existence and
// edge absence. Zero affected rows means the guard did not hold; a unique
// violation from a concurrent insert of the same pair means the same.
func (r *GraphRepository) conditionalInsert(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return repository.ErrNoMatch
		}
		return fmt.Errorf("insert edge: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("edge rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNoMatch
	}
	return nil
}

func (r *GraphRepository) conditionalDelete(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete edge: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("edge rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNoMatch
	}
	return nil
}

func (r *GraphRepository) FollowerEdges(ctx context.Context, userID string) ([]domain.EdgeRef, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT follower_id, since
FROM followers
WHERE user_id = ?
ORDER BY since`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query follower edges: %w", err)
	}
	defer rows.Close()

	edges := []domain.EdgeRef{}
	for rows.Next() {
		var e domain.EdgeRef
		if err := rows.Scan(&e.PeerID, &e.Since); err != nil {
			return nil, fmt.Errorf("scan follower edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate follower edges: %w", err)
	}
	return edges, nil
}

func (r *GraphRepository) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT follower_id
FROM followers
WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query follower ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan follower id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate follower ids: %w", err)
	}
	return ids, nil
}

func (r *GraphRepository) DanglingFollowings(ctx context.Context) ([]domain.HalfEdge, error) {
	return r.scanHalfEdges(ctx, `
SELECT f.user_id, f.followee_id, f.since
FROM followings f
LEFT JOIN followers m ON m.user_id = f.followee_id AND m.follower_id = f.user_id
WHERE m.user_id IS NULL`)
}

func (r *GraphRepository) DanglingFollowers(ctx context.Context) ([]domain.HalfEdge, error) {
	return r.scanHalfEdges(ctx, `
SELECT f.follower_id, f.user_id, f.since
FROM followers f
LEFT JOIN followings m ON m.user_id = f.follower_id AND m.followee_id = f.user_id
WHERE m.user_id IS NULL`)
}

func (r *GraphRepository) scanHalfEdges(ctx context.Context, query string) ([]domain.HalfEdge, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query half edges: %w", err)
	}
	defer rows.Close()

	var edges []domain.HalfEdge
	for rows.Next() {
		var e domain.HalfEdge
		if err := rows.Scan(&e.FollowerID, &e.FolloweeID, &e.Since); err != nil {
			return nil, fmt.Errorf("scan half edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate half edges: %w", err)
	}
	return edges, nil
}
