package engine

import "errors"

// Domain errors returned by the engines. Handlers map these onto HTTP
// status codes with errors.Is.
var (
	ErrInvalidReaction = errors.New("unrecognized reaction type")
	ErrAlreadyReacted  = errors.New("user already reacted to this post")
	ErrNoReaction      = errors.New("user has no reaction on this post")

	ErrSelfRequest          = errors.New("cannot send a friend request to yourself")
	ErrUserNotFound         = errors.New("user not found")
	ErrRelationshipExists   = errors.New("a relationship already exists between these users")
	ErrRequestNotFound      = errors.New("friend request not found")
	ErrRequestNoLongerValid = errors.New("friend request is no longer valid")
	ErrNotFriends           = errors.New("users are not friends")
)
