// Package client is the consumer-side data layer for the Ripple API: an
// HTTP client whose reads go through a resource-keyed cache and whose
// mutations invalidate every key they could have changed. A successful
// mutation response is never treated as new state; bound views re-derive
// state by re-reading.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"sync"
	"time"
)

// APIError is the machine-checkable error surfaced by the server boundary.
type APIError struct {
	Kind    string `json:"kind"`
	Message string `json:"error"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

// Watcher receives the re-fetched data for a resource key it is bound to.
type Watcher func(data json.RawMessage)

type Client struct {
	baseURL string
	token   string
	http    *http.Client

	cache *resourceCache

	mu       sync.RWMutex
	watchers map[string][]Watcher
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:  baseURL,
		token:    token,
		http:     &http.Client{Timeout: 15 * time.Second},
		cache:    newResourceCache(),
		watchers: make(map[string][]Watcher),
	}
}

// Watch binds fn to a resource key: every time the key is invalidated and
// re-fetched, fn gets the fresh payload.
func (c *Client) Watch(key string, fn Watcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers[key] = append(c.watchers[key], fn)
}

// Get returns the resource under key, from cache when fresh, otherwise
// from the server.
func (c *Client) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if data, ok := c.cache.get(key); ok {
		return data, nil
	}
	return c.fetch(ctx, key)
}

func (c *Client) fetch(ctx context.Context, key string) (json.RawMessage, error) {
	path, err := pathForKey(key)
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, data)
	return data, nil
}

// invalidateAndRefetch is the post-mutation half of the consistency
// contract: mark affected keys stale, then re-fetch any the UI is bound
// to. It runs only on mutation success.
func (c *Client) invalidateAndRefetch(selectors ...string) {
	touched := c.cache.invalidate(selectors...)

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, key := range touched {
		watchers := c.watchers[key]
		if len(watchers) == 0 {
			continue
		}
		go func(key string, watchers []Watcher) {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			data, err := c.fetch(ctx, key)
			if err != nil {
				log.Printf("Background refetch of %q failed: %v", key, err)
				return
			}
			for _, fn := range watchers {
				fn(data)
			}
		}(key, watchers)
	}
}

// ---- mutations ----

// CreatePost sends a multipart post; image may be nil.
func (c *Client) CreatePost(ctx context.Context, content string, image []byte, imageName string) (json.RawMessage, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("content", content); err != nil {
		return nil, err
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", imageName)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(image); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodPost, "/posts", writer.FormDataContentType(), &body)
	if err != nil {
		return nil, err
	}
	c.invalidateAndRefetch(KeyPosts, "posts:user:")
	return data, nil
}

func (c *Client) ToggleLike(ctx context.Context, postID string) error {
	_, err := c.do(ctx, http.MethodPost, "/posts/"+postID+"/like", "", nil)
	if err != nil {
		return err
	}
	c.invalidateAndRefetch(KeyPosts, "posts:user:")
	return nil
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/posts/"+postID, "", nil)
	if err != nil {
		return err
	}
	c.invalidateAndRefetch(KeyPosts, "posts:user:", KeyComments(postID))
	return nil
}

func (c *Client) CreateComment(ctx context.Context, postID, content string) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodPost, "/comments/post/"+postID, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.invalidateAndRefetch(KeyComments(postID), KeyPosts, "posts:user:")
	return data, nil
}

// DeleteComment invalidates every comment list; the comment's post is not
// known client-side from the id alone.
func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/comments/"+commentID, "", nil)
	if err != nil {
		return err
	}
	c.invalidateAndRefetch("comments:post:", KeyPosts, "posts:user:")
	return nil
}

func (c *Client) ToggleFollow(ctx context.Context, targetUserID string) error {
	_, err := c.do(ctx, http.MethodPost, "/follow/"+targetUserID, "", nil)
	if err != nil {
		return err
	}
	c.invalidateAndRefetch(KeyMe, "user:")
	return nil
}

func (c *Client) SyncUser(ctx context.Context) (json.RawMessage, error) {
	data, err := c.do(ctx, http.MethodPost, "/users/sync", "", nil)
	if err != nil {
		return nil, err
	}
	c.invalidateAndRefetch(KeyMe)
	return data, nil
}

func (c *Client) UpdateProfile(ctx context.Context, fields map[string]string) (json.RawMessage, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodPut, "/users/profile", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.invalidateAndRefetch(KeyMe, "user:", KeyPosts, "posts:user:")
	return data, nil
}

func (c *Client) DeleteNotification(ctx context.Context, notificationID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/notifications/"+notificationID, "", nil)
	if err != nil {
		return err
	}
	c.invalidateAndRefetch(KeyNotifications)
	return nil
}

// ---- transport ----

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Kind == "" {
			apiErr.Kind = "INTERNAL_ERROR"
			apiErr.Message = "Something went wrong"
		}
		return nil, apiErr
	}
	return data, nil
}

func pathForKey(key string) (string, error) {
	switch {
	case key == KeyPosts:
		return "/posts", nil
	case key == KeyNotifications:
		return "/notifications", nil
	case key == KeyMe:
		return "/users/me", nil
	case len(key) > len("posts:user:") && key[:len("posts:user:")] == "posts:user:":
		return "/posts/user/" + key[len("posts:user:"):], nil
	case len(key) > len("comments:post:") && key[:len("comments:post:")] == "comments:post:":
		return "/comments/post/" + key[len("comments:post:"):], nil
	case len(key) > len("user:") && key[:len("user:")] == "user:":
		return "/users/" + key[len("user:"):], nil
	default:
		return "", fmt.Errorf("unknown resource key %q", key)
	}
}
