package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/storefront/client/auth/mock"
	"github.com/viant/storefront/client/auth/store"
	"github.com/viant/storefront/model"
)

func TestEndpointRefresher_Refresh(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u7",
		"email": "kim@example.com",
		"role":  "customer",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	var testCases = []struct {
		description string
		status      int
		body        string
		expectToken string
		expectUser  *store.Identity
		expectErr   error
		expectCode  int
	}{
		{
			description: "camel case token with user",
			status:      http.StatusOK,
			body:        `{"accessToken":"tok2","user":{"id":"u1","email":"ann@example.com"}}`,
			expectToken: "tok2",
			expectUser:  &store.Identity{ID: "u1", Email: "ann@example.com"},
		},
		{
			description: "oauth2 style token",
			status:      http.StatusOK,
			body:        `{"access_token":"tok3"}`,
			expectToken: "tok3",
		},
		{
			description: "identity from token claims",
			status:      http.StatusOK,
			body:        `{"accessToken":"` + signed + `"}`,
			expectToken: signed,
			expectUser:  &store.Identity{ID: "u7", Email: "kim@example.com", Role: "customer"},
		},
		{
			description: "missing token",
			status:      http.StatusOK,
			body:        `{}`,
			expectErr:   ErrNoAccessToken,
		},
		{
			description: "rejected refresh",
			status:      http.StatusUnauthorized,
			body:        `{"error":"invalid refresh token"}`,
			expectCode:  http.StatusUnauthorized,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, RefreshPath, r.URL.Path)
				w.WriteHeader(testCase.status)
				_, _ = w.Write([]byte(testCase.body))
			}))
			defer server.Close()

			credentials, err := NewEndpointRefresher(server.URL+RefreshPath, nil).Refresh(context.Background())
			if testCase.expectErr != nil {
				assert.ErrorIs(t, err, testCase.expectErr)
				return
			}
			if testCase.expectCode != 0 {
				statusErr, ok := err.(*StatusError)
				require.True(t, ok, "expected StatusError, got %v", err)
				assert.Equal(t, testCase.expectCode, statusErr.StatusCode)
				assert.Contains(t, statusErr.Body, "invalid refresh token")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expectToken, credentials.AccessToken)
			assert.Equal(t, testCase.expectUser, credentials.User)
		})
	}
}

func TestFileJar_Persists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "r1", Path: "/auth", MaxAge: 3600, HttpOnly: true})
			http.SetCookie(w, &http.Cookie{Name: "gone", Value: "x", Path: "/", MaxAge: -1})
		}
	}))
	defer server.Close()

	location := filepath.Join(t.TempDir(), "cookies.json")
	jar, err := NewFileJar(context.Background(), location)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}
	resp, err := client.Post(server.URL+"/auth/login", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	reloaded, err := NewFileJar(context.Background(), location)
	require.NoError(t, err)
	cookies := reloaded.Cookies(mustParseURL(t, server.URL+RefreshPath))
	require.Len(t, cookies, 1)
	assert.Equal(t, "refresh_token", cookies[0].Name)
	assert.Equal(t, "r1", cookies[0].Value)
	assert.Empty(t, reloaded.Cookies(mustParseURL(t, server.URL+"/api/cart")))
}

func TestCoordinator_SessionCookieSaveFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "r1", Path: "/auth", HttpOnly: true})
		case RefreshPath:
			if cookie, err := r.Cookie("refresh_token"); err != nil || cookie.Value != "r1" {
				http.Error(w, "no refresh cookie", http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"accessToken":"tok2"}`))
		default:
			if r.Header.Get("Authorization") != "Bearer tok2" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			}
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	jar, err := NewFileJar(context.Background(), filepath.Join(dir, "cookies.json"))
	require.NoError(t, err)
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	jar.URL = filepath.Join(blocker, "cookies.json")

	logger, hook := logtest.NewNullLogger()
	coordinator, err := New(
		WithCookieJar(jar),
		WithRefreshURL(server.URL+RefreshPath),
		WithLogger(logrus.NewEntry(logger)),
	)
	require.NoError(t, err)

	login, err := NewRequest(http.MethodPost, server.URL+"/auth/login", nil)
	require.NoError(t, err)
	resp, err := coordinator.Execute(SkipRefresh(context.Background()), login)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Error(t, jar.Err())
	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Message == "failed to persist session cookies" {
			warned = true
		}
	}
	assert.True(t, warned)

	// the cookie still lives in memory and reaches the refresh endpoint
	cart, err := NewRequest(http.MethodGet, server.URL+"/api/cart", nil)
	require.NoError(t, err)
	resp, err = coordinator.Execute(context.Background(), cart)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "tok2", coordinator.Store().AccessToken())
}

func TestCoordinator_MockStorefront(t *testing.T) {
	server, err := mock.NewHTTPTestServer(mock.WithRefreshDelay(100 * time.Millisecond))
	require.NoError(t, err)
	defer server.Close()

	jar, err := NewFileJar(context.Background(), filepath.Join(t.TempDir(), "cookies.json"))
	require.NoError(t, err)
	coordinator, err := New(WithCookieJar(jar), WithRefreshURL(server.URL+RefreshPath))
	require.NoError(t, err)

	login, err := NewRequest(http.MethodPost, server.URL+"/auth/login", jsonBody(t, &model.LoginRequest{Email: "ann@example.com", Password: "secret"}))
	require.NoError(t, err)
	resp, err := coordinator.Execute(SkipRefresh(context.Background()), login)
	require.NoError(t, err)
	session := &model.Session{}
	decodeJSON(t, resp, session)
	require.NoError(t, coordinator.Store().SetCredentials(&store.Credentials{AccessToken: session.AccessToken, User: session.User}))

	server.ExpireAccessTokens()
	const callers = 20
	var wg sync.WaitGroup
	statuses := make([]int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			request, _ := NewRequest(http.MethodGet, server.URL+"/api/cart", nil)
			resp, err := coordinator.Execute(context.Background(), request)
			if err != nil {
				return
			}
			statuses[i] = resp.StatusCode
			drain(resp)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		assert.Equal(t, http.StatusOK, statuses[i])
	}
	assert.EqualValues(t, 1, server.RefreshCalls())
	assert.NotEqual(t, session.AccessToken, coordinator.Store().AccessToken())
	require.NotNil(t, coordinator.Store().Credentials().User)
	assert.Equal(t, "u1", coordinator.Store().Credentials().User.ID)
	assert.LessOrEqual(t, testutil.ToFloat64(coordinator.Metrics().LockAcquisitions), float64(1))

	// revoked sessions: the next expiry ends in a single failed refresh and cleared credentials
	server.RevokeSessions()
	server.ExpireAccessTokens()
	request, err := NewRequest(http.MethodGet, server.URL+"/auth/me", nil)
	require.NoError(t, err)
	resp, err = coordinator.Execute(context.Background(), request)
	require.NoError(t, err)
	drain(resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.EqualValues(t, 2, server.RefreshCalls())
	assert.Nil(t, coordinator.Store().Credentials())
}

func mustParseURL(t *testing.T, rawURL string) *url.URL {
	t.Helper()
	ret, err := url.Parse(rawURL)
	require.NoError(t, err)
	return ret
}

func jsonBody(t *testing.T, value interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(value)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func decodeJSON(t *testing.T, resp *http.Response, value interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(value))
}
