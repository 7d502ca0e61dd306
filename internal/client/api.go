package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"social_gateway/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	snippetLen      = 100
)

// Login posts credentials to /login, stores the returned token and returns
// the response. Unlike Do, a 401 here means "wrong credentials" and does not
// touch the stored session.
func (c *Client) Login(ctx context.Context, username, password string) (*models.Envelope, error) {
	env, err := c.Send(ctx, http.MethodPost, "/login", models.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	if !env.IsJSON() {
		return env, fmt.Errorf("%w: %s", ErrInvalidResponse, snippet(env.Raw))
	}
	if !env.OK() {
		return env, newAPIError(env)
	}

	token, shape := ExtractToken(env.Raw)
	if shape == ShapeNone {
		if c.log != nil {
			c.log.Warnw("client_login_no_token", "username", username, "status", env.Status)
		}
		return env, ErrNoToken
	}
	if c.store != nil {
		c.store.Set(token)
	}
	if c.log != nil {
		c.log.Debugw("client_login_ok", "username", username, "shape", shape.String())
	}
	return env, nil
}

// Register posts a new account to /register. Like Login it does not treat 401
// as a session failure.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.Envelope, error) {
	env, err := c.Send(ctx, http.MethodPost, "/register", reg)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return env, newAPIError(env)
	}
	return env, nil
}

// Logout forgets the stored token. The backend keeps no session to end.
func (c *Client) Logout() {
	if c.store != nil {
		c.store.Clear()
	}
}

func (c *Client) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	return c.profile(ctx, http.MethodGet, "/users/me", nil)
}

func (c *Client) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.UserProfile, error) {
	return c.profile(ctx, http.MethodPut, "/users/me", upd)
}

func (c *Client) UserProfile(ctx context.Context, username string) (*models.UserProfile, error) {
	return c.profile(ctx, http.MethodGet, "/users/"+url.PathEscape(username), nil)
}

func (c *Client) Follow(ctx context.Context, userID int64) error {
	_, err := c.Do(ctx, http.MethodPost, "/users/"+strconv.FormatInt(userID, 10)+"/follow", nil)
	return err
}

func (c *Client) Unfollow(ctx context.Context, userID int64) error {
	_, err := c.Do(ctx, http.MethodDelete, "/users/"+strconv.FormatInt(userID, 10)+"/follow", nil)
	return err
}

func (c *Client) CreatePost(ctx context.Context, content string) (*models.Post, error) {
	env, err := c.Do(ctx, http.MethodPost, "/posts", map[string]string{"content": content})
	if err != nil {
		return nil, err
	}
	var p models.Post
	if err := decode(env, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Posts returns one page of the home feed.
func (c *Client) Posts(ctx context.Context, page, size int) (*models.PostPage, error) {
	return c.postPage(ctx, "/posts", page, size)
}

func (c *Client) UserPosts(ctx context.Context, username string, page, size int) (*models.PostPage, error) {
	return c.postPage(ctx, "/users/"+url.PathEscape(username)+"/posts", page, size)
}

func (c *Client) Like(ctx context.Context, postID int64) error {
	_, err := c.Do(ctx, http.MethodPost, "/posts/"+strconv.FormatInt(postID, 10)+"/like", nil)
	return err
}

func (c *Client) Unlike(ctx context.Context, postID int64) error {
	_, err := c.Do(ctx, http.MethodDelete, "/posts/"+strconv.FormatInt(postID, 10)+"/like", nil)
	return err
}

// Health reads the gateway's /health report.
func (c *Client) Health(ctx context.Context) (*models.HealthReport, error) {
	env, err := c.Do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	var report models.HealthReport
	if err := decode(env, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Test calls the gateway's /test route: GET when data is nil, otherwise a
// POST echoing data back. The envelope is returned whatever its status.
func (c *Client) Test(ctx context.Context, data any) (*models.Envelope, error) {
	if data == nil {
		return c.Send(ctx, http.MethodGet, "/test", nil)
	}
	return c.Send(ctx, http.MethodPost, "/test", data)
}

func (c *Client) profile(ctx context.Context, method, path string, body any) (*models.UserProfile, error) {
	env, err := c.Do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	var u models.UserProfile
	if err := decode(env, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) postPage(ctx context.Context, path string, page, size int) (*models.PostPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	env, err := c.Do(ctx, http.MethodGet, path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return decodePostPage(env, page, size)
}

// decodePostPage accepts a bare array or a paged object.
func decodePostPage(env *models.Envelope, page, size int) (*models.PostPage, error) {
	raw := bytes.TrimSpace(env.Raw)
	if len(raw) > 0 && raw[0] == '[' {
		var posts []models.Post
		if err := json.Unmarshal(raw, &posts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return &models.PostPage{Content: posts, Page: page, Size: size, Last: len(posts) < size}, nil
	}
	var p models.PostPage
	if err := decode(env, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func snippet(raw []byte) string {
	if len(raw) <= snippetLen {
		return string(raw)
	}
	return string(raw[:snippetLen]) + "..."
}
