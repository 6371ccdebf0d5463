package domain

import "errors"

var (
	// ErrInvalidUsername indicates the username does not meet the minimum length.
	ErrInvalidUsername = errors.New("username must be at least 3 characters")
	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidIdentifier indicates a malformed user identifier.
	ErrInvalidIdentifier = errors.New("invalid user identifier")
	// ErrIdentityConflict is returned when an operation receives the same user twice.
	ErrIdentityConflict = errors.New("user and target must be different")
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrFollowingUpdateFailed means the outgoing side of a follow could not
	// be written: the follower does not exist or the edge is already present.
	ErrFollowingUpdateFailed = errors.New("could not update followings")
	// ErrFollowersUpdateFailed means the incoming side of a follow could not
	// be written after the outgoing side succeeded.
	ErrFollowersUpdateFailed = errors.New("could not update followers")
	// ErrUnfollowingUpdateFailed means the outgoing side of an unfollow
	// matched nothing: the follower does not exist or the edge is absent.
	ErrUnfollowingUpdateFailed = errors.New("could not update unfollowings")
	// ErrUnfollowersUpdateFailed means the incoming side of an unfollow
	// matched nothing after the outgoing side succeeded.
	ErrUnfollowersUpdateFailed = errors.New("could not update unfollowers")
)
