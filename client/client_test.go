package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testServer counts requests per method+path and serves canned responses.
type testServer struct {
	mu        sync.Mutex
	hits      map[string]int
	responses map[string]string
	server    *httptest.Server
}

func newTestServer() *testServer {
	ts := &testServer{
		hits:      make(map[string]int),
		responses: make(map[string]string),
	}
	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		key := r.Method + " " + r.URL.Path
		ts.hits[key]++
		body, ok := ts.responses[key]
		ts.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Post not found","kind":"NOT_FOUND"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	return ts
}

func (ts *testServer) respond(method, path, body string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.responses[method+" "+path] = body
}

func (ts *testServer) count(method, path string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.hits[method+" "+path]
}

func (ts *testServer) close() { ts.server.Close() }

func TestGetUsesCache(t *testing.T) {
	ts := newTestServer()
	defer ts.close()
	ts.respond("GET", "/posts", `[{"id":"1","content":"hello"}]`)

	c := New(ts.server.URL, "token")
	ctx := context.Background()

	first, err := c.Get(ctx, KeyPosts)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","content":"hello"}]`, string(first))

	// The second read is served from cache without touching the server.
	second, err := c.Get(ctx, KeyPosts)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 1, ts.count("GET", "/posts"))
}

func TestMutationInvalidatesAndRefetches(t *testing.T) {
	ts := newTestServer()
	defer ts.close()
	ts.respond("GET", "/posts", `[{"id":"1","likes":[]}]`)
	ts.respond("POST", "/posts/1/like", `{"message":"Post liked successfully"}`)

	c := New(ts.server.URL, "token")
	ctx := context.Background()

	refetched := make(chan json.RawMessage, 1)
	c.Watch(KeyPosts, func(data json.RawMessage) {
		refetched <- data
	})

	_, err := c.Get(ctx, KeyPosts)
	require.NoError(t, err)

	// The server's view changes underneath the cache; only an
	// invalidation-driven re-read can observe it.
	ts.respond("GET", "/posts", `[{"id":"1","likes":["u1"]}]`)

	require.NoError(t, c.ToggleLike(ctx, "1"))

	select {
	case data := <-refetched:
		assert.JSONEq(t, `[{"id":"1","likes":["u1"]}]`, string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never received the refetched feed")
	}

	// The cache now holds the fresh payload.
	data, err := c.Get(ctx, KeyPosts)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","likes":["u1"]}]`, string(data))
	assert.Equal(t, 2, ts.count("GET", "/posts"))
}

func TestFailedMutationKeepsCache(t *testing.T) {
	ts := newTestServer()
	defer ts.close()
	ts.respond("GET", "/posts", `[{"id":"1"}]`)

	c := New(ts.server.URL, "token")
	ctx := context.Background()

	_, err := c.Get(ctx, KeyPosts)
	require.NoError(t, err)

	// No response registered for the like; the server answers 404.
	err = c.ToggleLike(ctx, "missing")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_FOUND", apiErr.Kind)
	assert.Equal(t, "Post not found", apiErr.Message)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	// The failed mutation must not have invalidated anything.
	_, err = c.Get(ctx, KeyPosts)
	require.NoError(t, err)
	assert.Equal(t, 1, ts.count("GET", "/posts"))
}

func TestMutationResponseIsNotCached(t *testing.T) {
	ts := newTestServer()
	defer ts.close()
	ts.respond("POST", "/users/sync", `{"message":"User synced"}`)
	ts.respond("GET", "/users/me", `{"username":"jane"}`)

	c := New(ts.server.URL, "token")
	ctx := context.Background()

	_, err := c.SyncUser(ctx)
	require.NoError(t, err)

	// The mutation body is never installed under "me"; the next read
	// goes back to the server.
	data, err := c.Get(ctx, KeyMe)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"jane"}`, string(data))
	assert.Equal(t, 1, ts.count("GET", "/users/me"))
}

func TestCommentInvalidatesPostFeeds(t *testing.T) {
	ts := newTestServer()
	defer ts.close()
	ts.respond("GET", "/posts", `[{"id":"1","comments":[]}]`)
	ts.respond("GET", "/posts/user/jane", `[{"id":"1","comments":[]}]`)
	ts.respond("GET", "/comments/post/1", `[]`)
	ts.respond("POST", "/comments/post/1", `{"id":"c1","content":"hi"}`)

	c := New(ts.server.URL, "token")
	ctx := context.Background()

	for _, key := range []string{KeyPosts, KeyUserPosts("jane"), KeyComments("1")} {
		_, err := c.Get(ctx, key)
		require.NoError(t, err)
	}

	_, err := c.CreateComment(ctx, "1", "hi")
	require.NoError(t, err)

	// Comment counts are denormalized onto posts, so every feed that
	// could carry the post is stale along with the comment list.
	_, err = c.Get(ctx, KeyPosts)
	require.NoError(t, err)
	_, err = c.Get(ctx, KeyUserPosts("jane"))
	require.NoError(t, err)
	_, err = c.Get(ctx, KeyComments("1"))
	require.NoError(t, err)
	assert.Equal(t, 2, ts.count("GET", "/posts"))
	assert.Equal(t, 2, ts.count("GET", "/posts/user/jane"))
	assert.Equal(t, 2, ts.count("GET", "/comments/post/1"))

	// Notifications were untouched by the mutation.
	ts.respond("GET", "/notifications", `[]`)
	_, err = c.Get(ctx, KeyNotifications)
	require.NoError(t, err)
	_, err = c.Get(ctx, KeyNotifications)
	require.NoError(t, err)
	assert.Equal(t, 1, ts.count("GET", "/notifications"))
}

func TestErrorEnvelopeFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	c := New(server.URL, "")
	_, err := c.Get(context.Background(), KeyPosts)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INTERNAL_ERROR", apiErr.Kind)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := New(server.URL, "session-token")
	_, err := c.Get(context.Background(), KeyPosts)
	require.NoError(t, err)
	assert.Equal(t, "Bearer session-token", gotAuth)
}
