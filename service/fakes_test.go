package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ripple/identity"
	"ripple/models"
	"ripple/store"
)

// In-memory fakes of the store interfaces. A shared clock hands out
// strictly increasing timestamps so createdAt ordering is deterministic.

type fakeClock struct {
	mu  sync.Mutex
	now int64
}

func (c *fakeClock) next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now++
	return c.now
}

type fakeUserStore struct {
	mu    sync.Mutex
	clock *fakeClock
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore(clock *fakeClock) *fakeUserStore {
	return &fakeUserStore{clock: clock, users: make(map[primitive.ObjectID]*models.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ClerkID == user.ClerkID || u.Email == user.Email || u.Username == user.Username {
			return nil, errors.New("duplicate key")
		}
	}
	now := s.clock.next()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakeUserStore) GetByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ClerkID == clerkID {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeUserStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[primitive.ObjectID]*models.User)
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			result[id] = u
		}
	}
	return result, nil
}

func (s *fakeUserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, update store.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.Location != nil {
		u.Location = *update.Location
	}
	if update.ProfilePicture != nil {
		u.ProfilePicture = *update.ProfilePicture
	}
	if update.BannerImage != nil {
		u.BannerImage = *update.BannerImage
	}
	u.UpdatedAt = s.clock.next()
	return u, nil
}

func (s *fakeUserStore) AddFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	follower, ok := s.users[followerID]
	if !ok {
		return store.ErrNotFound
	}
	target, ok := s.users[targetID]
	if !ok {
		return store.ErrNotFound
	}
	follower.Following = addToSet(follower.Following, targetID)
	target.Followers = addToSet(target.Followers, followerID)
	return nil
}

func (s *fakeUserStore) RemoveFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	follower, ok := s.users[followerID]
	if !ok {
		return store.ErrNotFound
	}
	target, ok := s.users[targetID]
	if !ok {
		return store.ErrNotFound
	}
	follower.Following = pull(follower.Following, targetID)
	target.Followers = pull(target.Followers, followerID)
	return nil
}

type fakePostStore struct {
	mu    sync.Mutex
	clock *fakeClock
	posts map[primitive.ObjectID]*models.Post
}

func newFakePostStore(clock *fakeClock) *fakePostStore {
	return &fakePostStore{clock: clock, posts: make(map[primitive.ObjectID]*models.Post)}
}

func (s *fakePostStore) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.next()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []primitive.ObjectID{}
	}
	s.posts[post.ID] = post
	return post, nil
}

func (s *fakePostStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.posts[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakePostStore) List(ctx context.Context) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortPostsDesc(s.posts, func(p *models.Post) bool { return true }), nil
}

func (s *fakePostStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortPostsDesc(s.posts, func(p *models.Post) bool { return p.UserID == userID }), nil
}

func (s *fakePostStore) AddLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return store.ErrNotFound
	}
	p.Likes = addToSet(p.Likes, userID)
	return nil
}

func (s *fakePostStore) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return store.ErrNotFound
	}
	p.Likes = pull(p.Likes, userID)
	return nil
}

func (s *fakePostStore) AddComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return store.ErrNotFound
	}
	p.Comments = append(p.Comments, commentID)
	return nil
}

func (s *fakePostStore) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return store.ErrNotFound
	}
	p.Comments = pull(p.Comments, commentID)
	return nil
}

func (s *fakePostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

type fakeCommentStore struct {
	mu       sync.Mutex
	clock    *fakeClock
	comments map[primitive.ObjectID]*models.Comment
}

func newFakeCommentStore(clock *fakeClock) *fakeCommentStore {
	return &fakeCommentStore{clock: clock, comments: make(map[primitive.ObjectID]*models.Comment)}
}

func (s *fakeCommentStore) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.next()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if comment.Likes == nil {
		comment.Likes = []primitive.ObjectID{}
	}
	s.comments[comment.ID] = comment
	return comment, nil
}

func (s *fakeCommentStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.comments[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakeCommentStore) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []models.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			result = append(result, *c)
		}
	}
	sortCommentsDesc(result)
	return result, nil
}

func (s *fakeCommentStore) ListByPosts(ctx context.Context, postIDs []primitive.ObjectID) (map[primitive.ObjectID][]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[primitive.ObjectID][]models.Comment, len(postIDs))
	for _, postID := range postIDs {
		for _, c := range s.comments {
			if c.PostID == postID {
				result[postID] = append(result[postID], *c)
			}
		}
		sortCommentsDesc(result[postID])
	}
	return result, nil
}

func (s *fakeCommentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *fakeCommentStore) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, c := range s.comments {
		if c.PostID == postID {
			delete(s.comments, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeNotificationStore struct {
	mu            sync.Mutex
	clock         *fakeClock
	notifications map[primitive.ObjectID]*models.Notification
}

func newFakeNotificationStore(clock *fakeClock) *fakeNotificationStore {
	return &fakeNotificationStore{clock: clock, notifications: make(map[primitive.ObjectID]*models.Notification)}
}

func (s *fakeNotificationStore) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.next()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = now
	n.UpdatedAt = now
	s.notifications[n.ID] = n
	return n, nil
}

func (s *fakeNotificationStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.notifications[id]; ok {
		copied := *n
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakeNotificationStore) ListByRecipient(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []models.Notification{}
	for _, n := range s.notifications {
		if n.ToID == userID {
			result = append(result, *n)
		}
	}
	sortNotificationsDesc(result)
	return result, nil
}

func (s *fakeNotificationStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

func (s *fakeNotificationStore) DeleteByPost(ctx context.Context, postID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.notifications {
		if n.PostID != nil && *n.PostID == postID {
			delete(s.notifications, id)
		}
	}
	return nil
}

func (s *fakeNotificationStore) all() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []models.Notification{}
	for _, n := range s.notifications {
		result = append(result, *n)
	}
	return result
}

// fakeTransactor runs the function directly and records how often it was
// asked to; the fakes have no real transactions.
type fakeTransactor struct {
	mu    sync.Mutex
	calls int
}

func (t *fakeTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	return fn(ctx)
}

type fakeProvider struct {
	mu       sync.Mutex
	profiles map[string]*identity.Profile
	calls    int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{profiles: make(map[string]*identity.Profile)}
}

func (p *fakeProvider) FetchProfile(ctx context.Context, externalID string) (*identity.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if profile, ok := p.profiles[externalID]; ok {
		return profile, nil
	}
	return nil, errors.New("unknown identity")
}

type fakeUploader struct {
	url string
	err error
}

func (u *fakeUploader) Upload(ctx context.Context, file io.Reader, folder, publicID string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

type pushRecord struct {
	UserID primitive.ObjectID
	Title  string
	Body   string
}

type fakePushSender struct {
	mu   sync.Mutex
	sent []pushRecord
}

func (s *fakePushSender) Send(userID primitive.ObjectID, title, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, pushRecord{UserID: userID, Title: title, Body: body})
}

type fakeStaleNotifier struct {
	mu     sync.Mutex
	events map[string][]string
}

func newFakeStaleNotifier() *fakeStaleNotifier {
	return &fakeStaleNotifier{events: make(map[string][]string)}
}

func (s *fakeStaleNotifier) NotifyStale(userID string, resourceKeys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[userID] = append(s.events[userID], resourceKeys...)
}

// ---- helpers ----

func addToSet(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range set {
		if existing == id {
			return set
		}
	}
	return append(set, id)
}

func pull(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	result := set[:0]
	for _, existing := range set {
		if existing != id {
			result = append(result, existing)
		}
	}
	return result
}

func sortPostsDesc(posts map[primitive.ObjectID]*models.Post, match func(*models.Post) bool) []models.Post {
	result := []models.Post{}
	for _, p := range posts {
		if match(p) {
			result = append(result, *p)
		}
	}
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].CreatedAt > result[i].CreatedAt {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result
}

func sortCommentsDesc(comments []models.Comment) {
	for i := 0; i < len(comments); i++ {
		for j := i + 1; j < len(comments); j++ {
			if comments[j].CreatedAt > comments[i].CreatedAt {
				comments[i], comments[j] = comments[j], comments[i]
			}
		}
	}
}

func sortNotificationsDesc(notifications []models.Notification) {
	for i := 0; i < len(notifications); i++ {
		for j := i + 1; j < len(notifications); j++ {
			if notifications[j].CreatedAt > notifications[i].CreatedAt {
				notifications[i], notifications[j] = notifications[j], notifications[i]
			}
		}
	}
}
