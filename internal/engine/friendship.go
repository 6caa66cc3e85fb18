package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/friendo-social/backend/internal/keylock"
	"github.com/friendo-social/backend/internal/models"
	"github.com/friendo-social/backend/internal/repositories"
	"gorm.io/gorm"
)

// FriendshipEngine drives the request/accept/decline/remove lifecycle
// symmetrically across two users' relationship records. Every mutation of a
// pair runs under an order-normalized pair lock, and the repository writes
// both directions inside one transaction, so the Requested and Accepted
// states are always entered and left on both sides together.
type FriendshipEngine struct {
	users   repositories.UserRepository
	friends repositories.FriendshipRepository
	locks   *keylock.KeyLock
}

// NewFriendshipEngine creates a new FriendshipEngine
func NewFriendshipEngine(users repositories.UserRepository, friends repositories.FriendshipRepository, locks *keylock.KeyLock) *FriendshipEngine {
	return &FriendshipEngine{users: users, friends: friends, locks: locks}
}

// pairKey is identical for both orderings of the pair
func pairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("friendpair:%d:%d", a, b)
}

// SendFriendRequest moves the pair (sender, receiver) from Start to
// Requested: sender gains a sentRequests entry, receiver a pending one.
// Any existing link between the pair, whatever its bucket, is a conflict.
func (e *FriendshipEngine) SendFriendRequest(ctx context.Context, senderID, receiverID uint) error {
	if senderID == receiverID {
		return ErrSelfRequest
	}

	if _, err := e.users.GetUserByID(receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	key := pairKey(senderID, receiverID)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	link, err := e.friends.GetLink(senderID, receiverID)
	if err != nil {
		return err
	}
	if link != nil {
		return ErrRelationshipExists
	}

	return e.friends.CreateRequestLinks(senderID, receiverID, time.Now())
}

// AcceptFriendRequest moves the pair to Accepted from the pending side.
// When the sender's own sentRequests entry has meanwhile disappeared, the
// stale pending entry is dropped and ErrRequestNoLongerValid is returned;
// no one-sided friendship is created.
func (e *FriendshipEngine) AcceptFriendRequest(ctx context.Context, accepterID, senderID uint) error {
	key := pairKey(accepterID, senderID)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	link, err := e.friends.GetLink(accepterID, senderID)
	if err != nil {
		return err
	}
	if link == nil || link.Bucket != models.BucketPending {
		return ErrRequestNotFound
	}

	reverse, err := e.friends.GetLink(senderID, accepterID)
	if err != nil {
		return err
	}
	if reverse == nil || reverse.Bucket != models.BucketSent {
		if err := e.friends.DeleteLink(accepterID, senderID); err != nil {
			return err
		}
		return ErrRequestNoLongerValid
	}

	return e.friends.AcceptLinks(accepterID, senderID, time.Now())
}

// WithdrawFriendRequest takes a Requested pair back to Start in either
// orientation: the caller canceling a request they sent, or declining one
// they received. Both sides' entries are removed together.
func (e *FriendshipEngine) WithdrawFriendRequest(ctx context.Context, callerID, otherID uint) error {
	key := pairKey(callerID, otherID)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	link, err := e.friends.GetLink(callerID, otherID)
	if err != nil {
		return err
	}
	if link == nil || (link.Bucket != models.BucketSent && link.Bucket != models.BucketPending) {
		return ErrRequestNotFound
	}

	return e.friends.DeleteLinks(callerID, otherID)
}

// RemoveFriend takes an Accepted pair back to Start, removing both
// accepted entries.
func (e *FriendshipEngine) RemoveFriend(ctx context.Context, callerID, friendID uint) error {
	key := pairKey(callerID, friendID)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	link, err := e.friends.GetLink(callerID, friendID)
	if err != nil {
		return err
	}
	if link == nil || link.Bucket != models.BucketAccepted {
		return ErrNotFriends
	}

	return e.friends.DeleteLinks(callerID, friendID)
}

// ListRelationships returns a user's full relationship record grouped into
// the three collections.
func (e *FriendshipEngine) ListRelationships(ctx context.Context, userID uint) (*models.FriendList, error) {
	if _, err := e.users.GetUserByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	links, err := e.friends.GetLinksByOwner(userID)
	if err != nil {
		return nil, err
	}

	list := &models.FriendList{
		SentRequests: []models.FriendEntry{},
		Pending:      []models.FriendEntry{},
		Accepted:     []models.AcceptedFriendEntry{},
	}
	for _, link := range links {
		switch link.Bucket {
		case models.BucketSent:
			list.SentRequests = append(list.SentRequests, models.FriendEntry{UserID: link.CounterpartID, Since: link.Since})
		case models.BucketPending:
			list.Pending = append(list.Pending, models.FriendEntry{UserID: link.CounterpartID, Since: link.Since})
		case models.BucketAccepted:
			list.Accepted = append(list.Accepted, models.AcceptedFriendEntry{UserID: link.CounterpartID, FriendSince: link.Since})
		}
	}
	return list, nil
}
