package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/minasenanami/wonderful-editor/internal/config"
	"github.com/minasenanami/wonderful-editor/internal/service"
	"github.com/minasenanami/wonderful-editor/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestApp(t *testing.T, flags string) *fiber.App {
	t.Helper()
	db := testutil.NewTestDB(t)
	_, rdb := testutil.NewTestRedis(t)

	cfg := &config.Config{
		Env:               "test",
		BcryptCost:        bcrypt.MinCost,
		FeatureFlags:      flags,
		SessionMaxDevices: 10,
	}
	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	return s.App()
}

// session tracks the rolling token headers of one signed-in client.
type session struct {
	headers service.TokenHeaders
}

func (s *session) apply(req *http.Request) {
	req.Header.Set(service.HeaderAccessToken, s.headers.AccessToken)
	req.Header.Set(service.HeaderClient, s.headers.Client)
	req.Header.Set(service.HeaderUID, s.headers.UID)
}

// absorb picks up rotated credentials when the response carries them.
func (s *session) absorb(resp *http.Response) {
	if tok := resp.Header.Get(service.HeaderAccessToken); tok != "" {
		s.headers = service.TokenHeaders{
			AccessToken: tok,
			Client:      resp.Header.Get(service.HeaderClient),
			UID:         resp.Header.Get(service.HeaderUID),
		}
	}
}

type apiResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r apiResponse) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), string(r.Body))
}

func do(t *testing.T, app *fiber.App, sess *session, method, target string, body interface{}) apiResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if sess != nil {
		sess.apply(req)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if sess != nil {
		sess.absorb(resp)
	}
	return apiResponse{Status: resp.StatusCode, Header: resp.Header, Body: raw}
}

func register(t *testing.T, app *fiber.App, name, email string) *session {
	t.Helper()
	sess := &session{}
	resp := do(t, app, sess, http.MethodPost, "/api/v1/auth/", map[string]string{
		"name": name, "email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	require.NotEmpty(t, sess.headers.AccessToken)
	assert.Equal(t, email, sess.headers.UID)
	return sess
}

func TestAPI_RegisterAndSignIn(t *testing.T) {
	app := newTestApp(t, "")
	register(t, app, "Alice", "alice@example.com")

	sess := &session{}
	resp := do(t, app, sess, http.MethodPost, "/api/v1/auth/sign_in", map[string]string{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Status)
	assert.NotEmpty(t, resp.Header.Get(service.HeaderClient))
	assert.NotEmpty(t, resp.Header.Get(service.HeaderExpiry))

	var body struct {
		Data userJSON `json:"data"`
	}
	resp.decode(t, &body)
	assert.Equal(t, "Alice", body.Data.Name)
	assert.NotContains(t, string(resp.Body), "password")

	resp = do(t, app, sess, http.MethodGet, "/api/v1/auth/validate_token", nil)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestAPI_LoginFailuresAreUniform(t *testing.T) {
	app := newTestApp(t, "")
	register(t, app, "Alice", "alice@example.com")

	attempts := []map[string]string{
		{"email": "alice@example.com", "password": "wrong-password"},
		{"email": "nobody@example.com", "password": "password123"},
	}
	var bodies []string
	for _, a := range attempts {
		resp := do(t, app, nil, http.MethodPost, "/api/v1/auth/sign_in", a)
		require.Equal(t, http.StatusUnauthorized, resp.Status)
		assert.Empty(t, resp.Header.Get(service.HeaderAccessToken))
		assert.Empty(t, resp.Header.Get(service.HeaderClient))
		bodies = append(bodies, string(resp.Body))
	}
	assert.JSONEq(t, `{"errors":["Invalid login credentials. Please try again."]}`, bodies[0])
	assert.Equal(t, bodies[0], bodies[1])
}

func TestAPI_TokenRotationRejectsReplay(t *testing.T) {
	app := newTestApp(t, "")
	sess := register(t, app, "Alice", "alice@example.com")

	stale := *sess
	resp := do(t, app, sess, http.MethodGet, "/api/v1/auth/validate_token", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.NotEqual(t, stale.headers.AccessToken, sess.headers.AccessToken)
	assert.Equal(t, stale.headers.Client, sess.headers.Client)

	resp = do(t, app, &stale, http.MethodGet, "/api/v1/auth/validate_token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	// The rotated token keeps working.
	resp = do(t, app, sess, http.MethodGet, "/api/v1/auth/validate_token", nil)
	assert.Equal(t, http.StatusOK, resp.Status)

	resp = do(t, app, sess, http.MethodDelete, "/api/v1/auth/sign_out", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	resp = do(t, app, sess, http.MethodGet, "/api/v1/auth/validate_token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}

func TestAPI_ArticleLifecycleAndOwnership(t *testing.T) {
	app := newTestApp(t, "")
	owner := register(t, app, "Owner", "owner@example.com")
	other := register(t, app, "Other", "other@example.com")

	resp := do(t, app, owner, http.MethodPost, "/api/v1/articles/", map[string]interface{}{
		"article": map[string]string{"title": "T1", "body": "B1"},
	})
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	var created articleDetail
	resp.decode(t, &created)
	assert.Equal(t, "owner@example.com", created.User.Email)

	resp = do(t, app, other, http.MethodPost, "/api/v1/articles/", map[string]string{"title": "Later", "body": "x"})
	require.Equal(t, http.StatusOK, resp.Status)

	listTitles := func() []string {
		r := do(t, app, nil, http.MethodGet, "/api/v1/articles/", nil)
		require.Equal(t, http.StatusOK, r.Status)
		var items []articleListItem
		r.decode(t, &items)
		titles := make([]string, 0, len(items))
		for _, it := range items {
			titles = append(titles, it.Title)
		}
		return titles
	}
	assert.Equal(t, []string{"Later", "T1"}, listTitles())

	articlePath := "/api/v1/articles/" + strconv.FormatUint(uint64(created.ID), 10)
	resp = do(t, app, owner, http.MethodPatch, articlePath, map[string]interface{}{
		"article": map[string]string{"title": "T2"},
	})
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))

	resp = do(t, app, nil, http.MethodGet, articlePath, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var got articleDetail
	resp.decode(t, &got)
	assert.Equal(t, "T2", got.Title)
	assert.Equal(t, "B1", got.Body)
	assert.Equal(t, []string{"T2", "Later"}, listTitles())

	// A non-owner sees the same response as for a missing article.
	resp = do(t, app, other, http.MethodPatch, articlePath, map[string]interface{}{
		"article": map[string]string{"title": "hijacked"},
	})
	assert.Equal(t, http.StatusNotFound, resp.Status)
	missing := do(t, app, other, http.MethodPatch, "/api/v1/articles/999999", map[string]interface{}{
		"article": map[string]string{"title": "hijacked"},
	})
	assert.Equal(t, http.StatusNotFound, missing.Status)

	resp = do(t, app, other, http.MethodDelete, articlePath, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	resp = do(t, app, nil, http.MethodGet, articlePath, nil)
	resp.decode(t, &got)
	assert.Equal(t, "T2", got.Title)

	resp = do(t, app, nil, http.MethodPatch, articlePath, map[string]string{"title": "anon"})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = do(t, app, owner, http.MethodDelete, articlePath, nil)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	resp = do(t, app, nil, http.MethodGet, articlePath, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestAPI_Likes(t *testing.T) {
	app := newTestApp(t, "")
	owner := register(t, app, "Owner", "owner@example.com")
	fan := register(t, app, "Fan", "fan@example.com")

	resp := do(t, app, owner, http.MethodPost, "/api/v1/articles/", map[string]string{"title": "T", "body": "B"})
	require.Equal(t, http.StatusOK, resp.Status)
	var article articleDetail
	resp.decode(t, &article)
	likePath := "/api/v1/articles/" + strconv.FormatUint(uint64(article.ID), 10) + "/like"

	resp = do(t, app, fan, http.MethodPost, likePath, nil)
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))

	resp = do(t, app, fan, http.MethodPost, likePath, nil)
	assert.Equal(t, http.StatusConflict, resp.Status)

	// Owners may like their own articles.
	resp = do(t, app, owner, http.MethodPost, likePath, nil)
	assert.Equal(t, http.StatusCreated, resp.Status)

	resp = do(t, app, nil, http.MethodPost, likePath, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = do(t, app, fan, http.MethodPost, "/api/v1/articles/999999/like", nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	for i := 0; i < 2; i++ {
		resp = do(t, app, fan, http.MethodDelete, likePath, nil)
		assert.Equal(t, http.StatusNoContent, resp.Status)
	}
}

func TestAPI_ActivityFeedGate(t *testing.T) {
	off := newTestApp(t, "")
	resp := do(t, off, nil, http.MethodGet, "/api/v1/ws/articles", nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	on := newTestApp(t, "activity_feed=on")
	resp = do(t, on, nil, http.MethodGet, "/api/v1/ws/articles", nil)
	assert.Equal(t, http.StatusUpgradeRequired, resp.Status)
}

func TestAPI_Health(t *testing.T) {
	app := newTestApp(t, "")

	resp := do(t, app, nil, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, resp.Status)

	resp = do(t, app, nil, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	resp.decode(t, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["redis"])
}

