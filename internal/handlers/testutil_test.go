package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/friendo-social/backend/internal/cache"
	"github.com/friendo-social/backend/internal/engine"
	"github.com/friendo-social/backend/internal/keylock"
	"github.com/friendo-social/backend/internal/middleware"
	"github.com/friendo-social/backend/internal/models"
	"github.com/friendo-social/backend/internal/repositories"
	"github.com/friendo-social/backend/internal/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-key"

// --- in-memory fakes ---

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

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*models.Post)}
}

func (r *fakePostRepo) CreatePost(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	if post.ThumbsUps == nil {
		post.ThumbsUps = []uint{}
	}
	if post.Hearts == nil {
		post.Hearts = []uint{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	stored := *post
	r.posts[post.ID.Hex()] = &stored
	return nil
}

func (r *fakePostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	out := *post
	out.ThumbsUps = append([]uint{}, post.ThumbsUps...)
	out.Hearts = append([]uint{}, post.Hearts...)
	out.Comments = append([]models.Comment{}, post.Comments...)
	return &out, nil
}

func (r *fakePostRepo) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Post{}
	for _, p := range r.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePostRepo) DeletePost(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) UpdateReactionTally(ctx context.Context, id string, tally models.ReactionTally) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return repositories.ErrPostNotFound
	}
	post.ReactionTally = models.ReactionTally{
		ThumbsUpCount: tally.ThumbsUpCount,
		ThumbsUps:     append([]uint{}, tally.ThumbsUps...),
		HeartCount:    tally.HeartCount,
		Hearts:        append([]uint{}, tally.Hearts...),
	}
	return nil
}

func (r *fakePostRepo) AddComment(ctx context.Context, postID string, comment models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return repositories.ErrPostNotFound
	}
	post.Comments = append(post.Comments, comment)
	return nil
}

func (r *fakePostRepo) RemoveComment(ctx context.Context, postID string, commentID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return repositories.ErrPostNotFound
	}
	for i, cm := range post.Comments {
		if cm.ID == commentID {
			post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)
			return nil
		}
	}
	return repositories.ErrCommentNotFound
}

// --- test server wiring, mirroring the production router with fakes ---

type testServer struct {
	e       *echo.Echo
	users   *fakeUserRepo
	posts   *fakePostRepo
	friends *fakeFriendRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	e := echo.New()
	e.Validator = validators.NewValidator()

	users := newFakeUserRepo()
	posts := newFakePostRepo()
	friends := newFakeFriendRepo()
	feedCache := cache.New("")

	locks := keylock.New()
	reactionEngine := engine.NewReactionEngine(posts, locks)
	friendshipEngine := engine.NewFriendshipEngine(users, friends, locks)

	authHandler := NewAuthHandler(users, testJWTSecret)
	authHandler.RegisterAuthRoutes(e.Group("/auth"))

	postHandler := NewPostHandler(posts, feedCache)
	postHandler.RegisterPublicRoutes(e.Group("/post"))

	friendshipHandler := NewFriendshipHandler(friendshipEngine)
	e.GET("/user/friend/list/:userId", friendshipHandler.ListFriends)

	userGroup := e.Group("/user")
	userGroup.Use(middleware.SessionAuth(testJWTSecret))
	postHandler.RegisterUserRoutes(userGroup)
	NewReactionHandler(reactionEngine, feedCache).RegisterReactionRoutes(userGroup)
	NewCommentHandler(posts, feedCache).RegisterCommentRoutes(userGroup)
	friendshipHandler.RegisterFriendshipRoutes(userGroup)
	NewAccountHandler(users).RegisterAccountRoutes(userGroup)

	return &testServer{e: e, users: users, posts: posts, friends: friends}
}

func (ts *testServer) request(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
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
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

// registerUser registers an account and returns its session cookies
func (ts *testServer) registerUser(t *testing.T, username, email, password string) []*http.Cookie {
	t.Helper()

	rec := ts.request(t, http.MethodPost, "/auth/register", map[string]string{
		"email":          email,
		"username":       username,
		"password":       password,
		"passwordVerify": password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}
