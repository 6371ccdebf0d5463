package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"follow-graph/internal/domain"
	"follow-graph/internal/service"
	"follow-graph/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	graph     service.GraphService
	storage   storage.Service
	bucket    string
	keyPrefix string
}

func NewHandler(users service.UserService, graph service.GraphService, store storage.Service, bucket, keyPrefix string) *Handler {
	return &Handler{
		users:     users,
		graph:     graph,
		storage:   store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/users", h.createUser)
		api.GET("/users", h.listUsers)
		api.POST("/users/:id/follow/:target", h.follow)
		api.DELETE("/users/:id/follow/:target", h.unfollow)
		api.GET("/users/:id/followers/daily", h.dailyFollowerCounts)
		api.GET("/users/:id/mutual/:other", h.mutualFollowers)
		api.POST("/admin/reconcile", h.reconcile)
		api.POST("/admin/snapshots", h.createSnapshot)
		api.GET("/admin/snapshots", h.listSnapshots)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// apiResponse is the uniform envelope of every endpoint: a status code, a
// human-readable message, a success flag and an optional payload.
type apiResponse struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, apiResponse{
		Success: true,
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	c.JSON(status, apiResponse{
		Success: false,
		Status:  status,
		Message: err.Error(),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrInvalidIdentifier),
		errors.Is(err, domain.ErrIdentityConflict):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateUsername),
		errors.Is(err, domain.ErrFollowingUpdateFailed),
		errors.Is(err, domain.ErrFollowersUpdateFailed),
		errors.Is(err, domain.ErrUnfollowingUpdateFailed),
		errors.Is(err, domain.ErrUnfollowersUpdateFailed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{
			Success: false,
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "user created", userToResponse(user))
}

func (h *Handler) follow(c *gin.Context) {
	err := h.graph.Follow(c.Request.Context(), c.Param("id"), c.Param("target"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "followed", nil)
}

func (h *Handler) unfollow(c *gin.Context) {
	err := h.graph.Unfollow(c.Request.Context(), c.Param("id"), c.Param("target"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "unfollowed", nil)
}

func (h *Handler) listUsers(c *gin.Context) {
	views, err := h.graph.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]UserViewResponse, len(views))
	for i := range views {
		resp[i] = viewToResponse(views[i])
	}
	respond(c, http.StatusOK, "users", resp)
}

func (h *Handler) dailyFollowerCounts(c *gin.Context) {
	counts, err := h.graph.DailyFollowerCounts(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]DailyCountResponse, len(counts))
	for i := range counts {
		resp[i] = DailyCountResponse{Date: counts[i].Date, Count: counts[i].Count}
	}
	respond(c, http.StatusOK, "daily follower counts", resp)
}

func (h *Handler) mutualFollowers(c *gin.Context) {
	peers, err := h.graph.MutualFollowers(c.Request.Context(), c.Param("id"), c.Param("other"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "mutual followers", peersToResponse(peers))
}

func (h *Handler) reconcile(c *gin.Context) {
	report, err := h.graph.Reconcile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "reconcile complete", ReconcileResponse{
		CompletedFollowers:  report.CompletedFollowers,
		CompletedFollowings: report.CompletedFollowings,
		DroppedHalfEdges:    report.DroppedHalfEdges,
	})
}

func (h *Handler) createSnapshot(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusServiceUnavailable, apiResponse{
			Success: false,
			Status:  http.StatusServiceUnavailable,
			Message: "storage service not configured",
		})
		return
	}

	views, err := h.graph.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]UserViewResponse, len(views))
	for i := range views {
		resp[i] = viewToResponse(views[i])
	}
	data, err := json.Marshal(resp)
	if err != nil {
		respondError(c, err)
		return
	}

	location, err := h.storage.UploadSnapshot(c.Request.Context(), data, storage.UploadOptions{
		Bucket:    h.bucket,
		KeyPrefix: h.keyPrefix,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "snapshot uploaded", SnapshotResponse{
		Location: location,
		Users:    len(views),
	})
}

func (h *Handler) listSnapshots(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusServiceUnavailable, apiResponse{
			Success: false,
			Status:  http.StatusServiceUnavailable,
			Message: "storage service not configured",
		})
		return
	}

	objects, err := h.storage.ListObjects(c.Request.Context(), h.bucket, h.keyPrefix)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	respond(c, http.StatusOK, "snapshots", resp)
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

type PeerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type UserViewResponse struct {
	ID         string         `json:"id"`
	Username   string         `json:"username"`
	Followers  []PeerResponse `json:"followers"`
	Followings []PeerResponse `json:"followings"`
}

type DailyCountResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type ReconcileResponse struct {
	CompletedFollowers  int `json:"completed_followers"`
	CompletedFollowings int `json:"completed_followings"`
	DroppedHalfEdges    int `json:"dropped_half_edges"`
}

type SnapshotResponse struct {
	Location string `json:"location"`
	Users    int    `json:"users"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func viewToResponse(view domain.UserView) UserViewResponse {
	return UserViewResponse{
		ID:         view.ID,
		Username:   view.Username,
		Followers:  peersToResponse(view.Followers),
		Followings: peersToResponse(view.Followings),
	}
}

func peersToResponse(peers []domain.Peer) []PeerResponse {
	resp := make([]PeerResponse, len(peers))
	for i := range peers {
		resp[i] = PeerResponse{ID: peers[i].ID, Username: peers[i].Username}
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
