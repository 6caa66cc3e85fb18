package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/friendo-social/backend/internal/keylock"
	"github.com/friendo-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) CreateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *user
	return &out, nil
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetUserByUsername(username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpdateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) DeleteUser(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

// fakeFriendRepo is an in-memory FriendshipRepository keyed on the
// (owner, counterpart) pair
type fakeFriendRepo struct {
	mu    sync.Mutex
	links map[[2]uint]*models.FriendLink
}

func newFakeFriendRepo() *fakeFriendRepo {
	return &fakeFriendRepo{links: make(map[[2]uint]*models.FriendLink)}
}

func (r *fakeFriendRepo) GetLink(ownerID, counterpartID uint) (*models.FriendLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[[2]uint{ownerID, counterpartID}]
	if !ok {
		return nil, nil
	}
	out := *link
	return &out, nil
}

func (r *fakeFriendRepo) GetLinksByOwner(ownerID uint) ([]models.FriendLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.FriendLink{}
	for key, link := range r.links {
		if key[0] == ownerID {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (r *fakeFriendRepo) CreateRequestLinks(senderID, receiverID uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[[2]uint{senderID, receiverID}] = &models.FriendLink{
		OwnerID: senderID, CounterpartID: receiverID, Bucket: models.BucketSent, Since: at,
	}
	r.links[[2]uint{receiverID, senderID}] = &models.FriendLink{
		OwnerID: receiverID, CounterpartID: senderID, Bucket: models.BucketPending, Since: at,
	}
	return nil
}

func (r *fakeFriendRepo) AcceptLinks(accepterID, senderID uint, since time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[[2]uint{accepterID, senderID}] = &models.FriendLink{
		OwnerID: accepterID, CounterpartID: senderID, Bucket: models.BucketAccepted, Since: since,
	}
	r.links[[2]uint{senderID, accepterID}] = &models.FriendLink{
		OwnerID: senderID, CounterpartID: accepterID, Bucket: models.BucketAccepted, Since: since,
	}
	return nil
}

func (r *fakeFriendRepo) DeleteLinks(userA, userB uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.links, [2]uint{userA, userB})
	delete(r.links, [2]uint{userB, userA})
	return nil
}

func (r *fakeFriendRepo) DeleteLink(ownerID, counterpartID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.links, [2]uint{ownerID, counterpartID})
	return nil
}

func newTestFriendshipEngine(t *testing.T) (*FriendshipEngine, *fakeUserRepo, *fakeFriendRepo, uint, uint) {
	t.Helper()
	users := newFakeUserRepo()
	friends := newFakeFriendRepo()
	eng := NewFriendshipEngine(users, friends, keylock.New())

	alice := &models.User{Username: "alice", Email: "alice@example.com"}
	bob := &models.User{Username: "bobby", Email: "bob@example.com"}
	require.NoError(t, users.CreateUser(alice))
	require.NoError(t, users.CreateUser(bob))
	return eng, users, friends, alice.ID, bob.ID
}

func TestFriendLifecycle(t *testing.T) {
	eng, _, _, alice, bob := newTestFriendshipEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.SendFriendRequest(ctx, alice, bob))

	bobList, err := eng.ListRelationships(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobList.Pending, 1)
	assert.Equal(t, alice, bobList.Pending[0].UserID)

	aliceList, err := eng.ListRelationships(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceList.SentRequests, 1)
	assert.Equal(t, bob, aliceList.SentRequests[0].UserID)

	require.NoError(t, eng.AcceptFriendRequest(ctx, bob, alice))

	aliceList, err = eng.ListRelationships(ctx, alice)
	require.NoError(t, err)
	bobList, err = eng.ListRelationships(ctx, bob)
	require.NoError(t, err)

	require.Len(t, aliceList.Accepted, 1)
	require.Len(t, bobList.Accepted, 1)
	assert.Equal(t, bob, aliceList.Accepted[0].UserID)
	assert.Equal(t, alice, bobList.Accepted[0].UserID)
	assert.False(t, aliceList.Accepted[0].FriendSince.IsZero())
	assert.Equal(t, aliceList.Accepted[0].FriendSince, bobList.Accepted[0].FriendSince)

	assert.Empty(t, aliceList.SentRequests)
	assert.Empty(t, aliceList.Pending)
	assert.Empty(t, bobList.SentRequests)
	assert.Empty(t, bobList.Pending)
}

func TestSendFriendRequestTwiceConflicts(t *testing.T) {
	eng, _, _, alice, bob := newTestFriendshipEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.SendFriendRequest(ctx, alice, bob))
	assert.ErrorIs(t, eng.SendFriendRequest(ctx, alice, bob), ErrRelationshipExists)
}

func TestSendFriendRequestWhileInboundPending(t *testing.T) {
	eng, _, _, alice, bob := newTestFriendshipEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.SendFriendRequest(ctx, alice, bob))
	// Bob requesting back would put alice in two of bob's buckets.
	assert.ErrorIs(t, eng.SendFriendRequest(ctx, bob, alice), ErrRelationshipExists)
}

func TestSendFriendRequestToSelf(t *testing.T) {
	eng, _, _, alice, _ := newTestFriendshipEngine(t)

	assert.ErrorIs(t, eng.SendFriendRequest(context.Background(), alice, alice), ErrSelfRequest)
}

func TestSendFriendRequestUnknownReceiver(t *testing.T) {
	eng, _, _, alice, _ := newTestFriendshipEngine(t)

	assert.ErrorIs(t, eng.SendFriendRequest(context.Background(), alice, 999), ErrUserNotFound)
}

func TestAcceptWithoutPending(t *testing.T) {
	eng, _, _, alice, bob := newTestFriendshipEngine(t)

	assert.ErrorIs(t, eng.AcceptFriendRequest(context.Background(), bob, alice), ErrRequestNotFound)
}

func TestAcceptStaleRequest(t *testing.T) {
	eng, _, friends, alice, bob := newTestFriendshipEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.SendFriendRequest(ctx, alice, bob))
	// Alice's side vanishes (account deleted or request withdrawn racily).
	require.NoError(t, friends.DeleteLink(alice, bob))

	assert.ErrorIs(t, eng.AcceptFriendRequest(ctx, bob, alice), ErrRequestNoLongerValid)

	// The stale pending entry is gone and no friendship was created.
	bobList, err := eng.ListRelationships(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobList.Pending)
	assert.Empty(t, bobList.Accepted)
}

func TestWithdrawCancelsOwnRequest(t *testing.T) {
	eng, _, _, alice, bob := newTestFriendshipEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.SendFriendRequest(ctx, alice, bob))
	require.NoError(t, eng.WithdrawFriendRequest(ctx, alice, bob))

	bobList, err := eng.ListRelationships(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobList.Pending)

	aliceList, err := eng.ListRelationships(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, aliceList.SentRequests)
}

func TestWithdrawDeclinesReceivedRequest(t *testing.T) {
	eng, _, _, alice, bob := newTestFriendshipEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.SendFriendRequest(ctx, alice, bob))
	require.NoError(t, eng.WithdrawFriendRequest(ctx, bob, alice))

	aliceList, err := eng.ListRelationships(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, aliceList.SentRequests)
	assert.Empty(t, aliceList.Pending)
	assert.Empty(t, aliceList.Accepted)
}

func TestWithdrawWithoutRequest(t *testing.T) {
	eng, _, _, alice, bob := newTestFriendshipEngine(t)

	assert.ErrorIs(t, eng.WithdrawFriendRequest(context.Background(), alice, bob), ErrRequestNotFound)
}

func TestRemoveFriend(t *testing.T) {
	eng, _, _, alice, bob := newTestFriendshipEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.SendFriendRequest(ctx, alice, bob))
	require.NoError(t, eng.AcceptFriendRequest(ctx, bob, alice))
	require.NoError(t, eng.RemoveFriend(ctx, bob, alice))

	aliceList, err := eng.ListRelationships(ctx, alice)
	require.NoError(t, err)
	bobList, err := eng.ListRelationships(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, aliceList.Accepted)
	assert.Empty(t, bobList.Accepted)
}

func TestRemoveFriendNotFriends(t *testing.T) {
	eng, _, _, alice, bob := newTestFriendshipEngine(t)
	ctx := context.Background()

	assert.ErrorIs(t, eng.RemoveFriend(ctx, alice, bob), ErrNotFriends)

	// A merely requested pair is not removable as friends either.
	require.NoError(t, eng.SendFriendRequest(ctx, alice, bob))
	assert.ErrorIs(t, eng.RemoveFriend(ctx, alice, bob), ErrNotFriends)
}

func TestListRelationshipsUnknownUser(t *testing.T) {
	eng, _, _, _, _ := newTestFriendshipEngine(t)

	_, err := eng.ListRelationships(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
