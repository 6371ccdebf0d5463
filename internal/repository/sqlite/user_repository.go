package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"follow-graph/internal/domain"
	"follow-graph/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL
);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, username, created_at)
VALUES (?, ?, ?)`,
		user.ID,
		user.Username,
		user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return fmt.Errorf("insert user: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, created_at
FROM users
WHERE username = ?`,
		username,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, created_at
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

// ListAll loads every user in insertion order and resolves both adjacency
// lists against the users table. Edge rows whose peer has no user record
// are dropped from the resolved lists.
func (r *UserRepository) ListAll(ctx context.Context) ([]domain.UserView, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, username
FROM users
ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var views []domain.UserView
	index := make(map[string]int)
	for rows.Next() {
		var v domain.UserView
		if err := rows.Scan(&v.ID, &v.Username); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		v.Followers = []domain.Peer{}
		v.Followings = []domain.Peer{}
		index[v.ID] = len(views)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	collect := func(query string, assign func(view *domain.UserView, peer domain.Peer)) error {
		rows, err := r.db.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("resolve peers: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var ownerID string
			var peer domain.Peer
			if err := rows.Scan(&ownerID, &peer.ID, &peer.Username); err != nil {
				return fmt.Errorf("scan peer row: %w", err)
			}
			if i, ok := index[ownerID]; ok {
				assign(&views[i], peer)
			}
		}
		return rows.Err()
	}

	err = collect(`
SELECT f.user_id, u.id, u.username
FROM followers f
JOIN users u ON u.id = f.follower_id
ORDER BY f.since`, func(view *domain.UserView, peer domain.Peer) {
		view.Followers = append(view.Followers, peer)
	})
	if err != nil {
		return nil, err
	}

	err = collect(`
SELECT f.user_id, u.id, u.username
FROM followings f
JOIN users u ON u.id = f.followee_id
ORDER BY f.since`, func(view *domain.UserView, peer domain.Peer) {
		view.Followings = append(view.Followings, peer)
	})
	if err != nil {
		return nil, err
	}

	return views, nil
}

func (r *UserRepository) ResolvePeers(ctx context.Context, ids []string) ([]domain.Peer, error) {
	if len(ids) == 0 {
		return []domain.Peer{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
SELECT id, username
FROM users
WHERE id IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("resolve peer ids: %w", err)
	}
	defer rows.Close()

	peers := []domain.Peer{}
	for rows.Next() {
		var p domain.Peer
		if err := rows.Scan(&p.ID, &p.Username); err != nil {
			return nil, fmt.Errorf("scan peer: %w", err)
		}
		peers = append(peers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate peers: %w", err)
	}
	return peers, nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
