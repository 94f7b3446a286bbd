package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ripple/identity"
	"ripple/models"
)

// testEnv wires every service against the in-memory fakes.
type testEnv struct {
	users         *fakeUserStore
	posts         *fakePostStore
	comments      *fakeCommentStore
	notifications *fakeNotificationStore
	provider      *fakeProvider
	uploader      *fakeUploader
	push          *fakePushSender
	stale         *fakeStaleNotifier
	tx            *fakeTransactor

	postSvc         *PostService
	commentSvc      *CommentService
	followSvc       *FollowService
	userSvc         *UserService
	notificationSvc *NotificationService
}

func newTestEnv() *testEnv {
	clock := &fakeClock{}
	env := &testEnv{
		users:         newFakeUserStore(clock),
		posts:         newFakePostStore(clock),
		comments:      newFakeCommentStore(clock),
		notifications: newFakeNotificationStore(clock),
		provider:      newFakeProvider(),
		uploader:      &fakeUploader{url: "https://cdn.example.com/image.jpg"},
		push:          &fakePushSender{},
		stale:         newFakeStaleNotifier(),
		tx:            &fakeTransactor{},
	}

	notifier := NewNotifier(env.notifications, env.push, env.stale)
	env.postSvc = NewPostService(env.posts, env.comments, env.users, env.notifications, env.uploader, env.tx, notifier)
	env.commentSvc = NewCommentService(env.comments, env.posts, env.users, notifier)
	env.followSvc = NewFollowService(env.users, env.tx, notifier)
	env.userSvc = NewUserService(env.users, env.provider)
	env.notificationSvc = NewNotificationService(env.notifications, env.users, env.posts)
	return env
}

// seedUser creates a synced user record directly in the store.
func (env *testEnv) seedUser(t *testing.T, clerkID, username string) *models.User {
	t.Helper()
	user, err := env.users.Create(context.Background(), &models.User{
		ClerkID:  clerkID,
		Email:    username + "@example.com",
		Username: username,
	})
	require.NoError(t, err)
	return user
}

// registerIdentity makes the external identity known to the provider.
func (env *testEnv) registerIdentity(clerkID string, profile identity.Profile) {
	env.provider.profiles[clerkID] = &profile
}
