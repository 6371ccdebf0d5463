package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "follow-graph/internal/http"
	"follow-graph/internal/repository/sqlite"
	"follow-graph/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	graphRepo := sqlite.NewGraphRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, graphRepo.Init(ctx))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := apphttp.NewHandler(
		service.NewUserService(userRepo),
		service.NewGraphService(userRepo, graphRepo),
		nil,
		"",
		"",
	)
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec.Code, env
}

func createUser(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()

	code, env := doJSON(t, router, http.MethodPost, "/api/users", gin.H{"username": username})
	require.Equal(t, http.StatusCreated, code)
	require.True(t, env.Success)

	var user struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	return user.ID
}

func TestCreateUserEndpoint(t *testing.T) {
	router := newTestRouter(t)

	code, env := doJSON(t, router, http.MethodPost, "/api/users", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.Status)
	assert.Equal(t, "user created", env.Message)

	// too short
	code, env = doJSON(t, router, http.MethodPost, "/api/users", gin.H{"username": "ab"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)

	// duplicate
	code, env = doJSON(t, router, http.MethodPost, "/api/users", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)
}

func TestFollowEndpoints(t *testing.T) {
	router := newTestRouter(t)

	alice := createUser(t, router, "alice")
	bob := createUser(t, router, "bob")

	code, env := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/users/%s/follow/%s", alice, bob), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	// repeat follow conflicts
	code, env = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/users/%s/follow/%s", alice, bob), nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)

	// self follow is an input error
	code, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/users/%s/follow/%s", alice, alice), nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// malformed id
	code, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/users/%s/follow/%s", "bogus", bob), nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/users/%s/follow/%s", alice, bob), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, _ = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/users/%s/follow/%s", alice, bob), nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestListUsersEndpoint(t *testing.T) {
	router := newTestRouter(t)

	alice := createUser(t, router, "alice")
	bob := createUser(t, router, "bob")
	code, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/users/%s/follow/%s", alice, bob), nil)
	require.Equal(t, http.StatusOK, code)

	code, env := doJSON(t, router, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, code)

	var users []apphttp.UserViewResponse
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	require.Len(t, users[0].Followings, 1)
	assert.Equal(t, "bob", users[0].Followings[0].Username)
	require.Len(t, users[1].Followers, 1)
	assert.Equal(t, "alice", users[1].Followers[0].Username)
}

func TestDailyFollowerCountsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	alice := createUser(t, router, "alice")
	bob := createUser(t, router, "bob")
	code, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/users/%s/follow/%s", alice, bob), nil)
	require.Equal(t, http.StatusOK, code)

	code, env := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/users/%s/followers/daily", bob), nil)
	require.Equal(t, http.StatusOK, code)

	var counts []apphttp.DailyCountResponse
	require.NoError(t, json.Unmarshal(env.Data, &counts))
	require.Len(t, counts, 1)
	assert.Equal(t, 1, counts[0].Count)

	code, _ = doJSON(t, router, http.MethodGet, "/api/users/bogus/followers/daily", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMutualFollowersEndpoint(t *testing.T) {
	router := newTestRouter(t)

	a := createUser(t, router, "usera")
	b := createUser(t, router, "userb")
	x := createUser(t, router, "userx")

	for _, target := range []string{a, b} {
		code, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/users/%s/follow/%s", x, target), nil)
		require.Equal(t, http.StatusOK, code)
	}

	code, env := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/users/%s/mutual/%s", a, b), nil)
	require.Equal(t, http.StatusOK, code)

	var peers []apphttp.PeerResponse
	require.NoError(t, json.Unmarshal(env.Data, &peers))
	require.Len(t, peers, 1)
	assert.Equal(t, "userx", peers[0].Username)

	// unknown user
	code, _ = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/users/%s/mutual/%s", a, "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestReconcileEndpoint(t *testing.T) {
	router := newTestRouter(t)

	code, env := doJSON(t, router, http.MethodPost, "/api/admin/reconcile", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	var report apphttp.ReconcileResponse
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Zero(t, report.CompletedFollowers)
}

func TestSnapshotEndpointsWithoutStorage(t *testing.T) {
	router := newTestRouter(t)

	code, env := doJSON(t, router, http.MethodPost, "/api/admin/snapshots", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, env.Success)

	code, _ = doJSON(t, router, http.MethodGet, "/api/admin/snapshots", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
