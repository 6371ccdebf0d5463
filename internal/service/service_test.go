package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"follow-graph/internal/domain"
	"follow-graph/internal/repository"
	"follow-graph/internal/repository/sqlite"
	"follow-graph/internal/service"
)

type fixture struct {
	users     service.UserService
	graph     service.GraphService
	userRepo  repository.UserRepository
	graphRepo repository.GraphRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "followgraph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	graphRepo := sqlite.NewGraphRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, graphRepo.Init(ctx))

	return &fixture{
		users:     service.NewUserService(userRepo),
		graph:     service.NewGraphService(userRepo, graphRepo),
		userRepo:  userRepo,
		graphRepo: graphRepo,
	}
}

func (f *fixture) createUser(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := f.users.CreateUser(context.Background(), username)
	require.NoError(t, err)
	return user
}

func (f *fixture) view(t *testing.T, id string) domain.UserView {
	t.Helper()
	views, err := f.graph.ListUsers(context.Background())
	require.NoError(t, err)
	for _, v := range views {
		if v.ID == id {
			return v
		}
	}
	t.Fatalf("no view for user %s", id)
	return domain.UserView{}
}

func peerIDs(peers []domain.Peer) []string {
	ids := make([]string, len(peers))
	for i := range peers {
		ids[i] = peers[i].ID
	}
	return ids
}
