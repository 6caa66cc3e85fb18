package models

import (
	"time"

	"gorm.io/gorm"
)

// Buckets a counterpart can occupy in a user's relationship record. The
// unique (owner, counterpart) index keeps a counterpart in at most one
// bucket at a time.
const (
	BucketSent     = "sent"
	BucketPending  = "pending"
	BucketAccepted = "accepted"
)

// FriendLink is one direction of the relationship between two users. A
// "sent" link always pairs with a reverse "pending" link, and an "accepted"
// link with a reverse "accepted" link carrying the same Since timestamp.
// Both directions are always written inside one transaction.
type FriendLink struct {
	gorm.Model
	OwnerID       uint      `json:"owner_id" gorm:"uniqueIndex:idx_owner_counterpart"`
	CounterpartID uint      `json:"counterpart_id" gorm:"uniqueIndex:idx_owner_counterpart"`
	Bucket        string    `json:"bucket" gorm:"type:varchar(16);index"`
	Since         time.Time `json:"since"`
}

// CreateFriendRequest defines the request body for sending a friend request
type CreateFriendRequest struct {
	UserID uint `json:"userId" validate:"required"`
}

// WithdrawFriendRequest defines the request body for canceling a sent
// request or declining a received one
type WithdrawFriendRequest struct {
	TargetUserID uint `json:"targetUserId" validate:"required"`
}

// AcceptFriendRequest defines the request body for accepting a request
type AcceptFriendRequest struct {
	SenderUserID uint `json:"senderUserId" validate:"required"`
}

// RemoveFriendRequest defines the request body for removing a friend
type RemoveFriendRequest struct {
	FriendUserID uint `json:"friendUserId" validate:"required"`
}

// FriendEntry is one counterpart in the sentRequests or pending collections
type FriendEntry struct {
	UserID uint      `json:"userId"`
	Since  time.Time `json:"since"`
}

// AcceptedFriendEntry is one confirmed friendship
type AcceptedFriendEntry struct {
	UserID      uint      `json:"userId"`
	FriendSince time.Time `json:"friendSince"`
}

// FriendList is a user's full relationship record as returned by the API
type FriendList struct {
	SentRequests []FriendEntry         `json:"sentRequests"`
	Pending      []FriendEntry         `json:"pending"`
	Accepted     []AcceptedFriendEntry `json:"accepted"`
}
