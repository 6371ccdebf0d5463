package domain

import "time"

// User represents a node of the follow graph.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// EdgeRef is one endpoint's view of a directed follow edge: the peer's id
// and the moment the edge was created.
type EdgeRef struct {
	PeerID string
	Since  time.Time
}

// Peer is a lightweight user reference produced when adjacency lists are
// resolved against the user store.
type Peer struct {
	ID       string
	Username string
}

// UserView is a user together with both adjacency lists resolved to peers.
type UserView struct {
	ID         string
	Username   string
	Followers  []Peer
	Followings []Peer
}

// DailyCount is one bucket of the per-day follower histogram. Date is a UTC
// calendar date formatted as YYYY-MM-DD.
type DailyCount struct {
	Date  string
	Count int
}

// HalfEdge is an edge present on one endpoint's adjacency list whose mirror
// row on the other endpoint is missing.
type HalfEdge struct {
	FollowerID string
	FolloweeID string
	Since      time.Time
}
