package mock

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/storefront/client/auth/store"
	"github.com/viant/storefront/model"
)

type testClient struct {
	t      *testing.T
	server *HTTPTestServer
	client *http.Client
}

func newTestClient(t *testing.T, opts ...Option) *testClient {
	server, err := NewHTTPTestServer(opts...)
	require.NoError(t, err)
	t.Cleanup(server.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, server: server, client: &http.Client{Jar: jar}}
}

func (c *testClient) call(method, path, token string, body interface{}, result interface{}) int {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(c.t, err)
	}
	req, err := http.NewRequest(method, c.server.URL+path, bytes.NewReader(payload))
	require.NoError(c.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if result != nil && resp.StatusCode < http.StatusMultipleChoices {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(result))
	}
	return resp.StatusCode
}

func (c *testClient) login(email, password string) *model.Session {
	c.t.Helper()
	session := &model.Session{}
	status := c.call(http.MethodPost, "/auth/login", "", &model.LoginRequest{Email: email, Password: password}, session)
	require.Equal(c.t, http.StatusOK, status)
	return session
}

func TestService_Login(t *testing.T) {
	var testCases = []struct {
		description string
		email       string
		password    string
		expected    int
	}{
		{description: "valid customer", email: "ann@example.com", password: "secret", expected: http.StatusOK},
		{description: "valid admin", email: "admin@example.com", password: "admin", expected: http.StatusOK},
		{description: "wrong password", email: "ann@example.com", password: "nope", expected: http.StatusUnauthorized},
		{description: "unknown user", email: "bob@example.com", password: "secret", expected: http.StatusUnauthorized},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			c := newTestClient(t)
			session := &model.Session{}
			status := c.call(http.MethodPost, "/auth/login", "", &model.LoginRequest{Email: testCase.email, Password: testCase.password}, session)
			assert.Equal(t, testCase.expected, status)
			if testCase.expected != http.StatusOK {
				assert.EqualValues(t, 0, c.server.Logins())
				return
			}
			assert.NotEmpty(t, session.AccessToken)
			require.NotNil(t, session.User)
			assert.Equal(t, testCase.email, session.User.Email)
			assert.Equal(t, 1, c.server.Sessions())
		})
	}
}

func TestService_ProtectedResource(t *testing.T) {
	c := newTestClient(t)
	assert.Equal(t, http.StatusUnauthorized, c.call(http.MethodGet, "/auth/me", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, c.call(http.MethodGet, "/auth/me", "garbage", nil, nil))

	session := c.login("ann@example.com", "secret")
	identity := &store.Identity{}
	assert.Equal(t, http.StatusOK, c.call(http.MethodGet, "/auth/me", session.AccessToken, nil, identity))
	assert.Equal(t, "u1", identity.ID)

	c.server.ExpireAccessTokens()
	assert.Equal(t, http.StatusUnauthorized, c.call(http.MethodGet, "/auth/me", session.AccessToken, nil, nil))
}

func TestService_RefreshRotation(t *testing.T) {
	c := newTestClient(t)
	first := c.login("ann@example.com", "secret")
	c.server.ExpireAccessTokens()

	renewed := &model.Session{}
	assert.Equal(t, http.StatusOK, c.call(http.MethodPost, "/auth/refresh", "", nil, renewed))
	assert.NotEqual(t, first.AccessToken, renewed.AccessToken)
	assert.Equal(t, http.StatusOK, c.call(http.MethodGet, "/auth/me", renewed.AccessToken, nil, nil))
	assert.EqualValues(t, 1, c.server.RefreshCalls())
	assert.Equal(t, 1, c.server.Sessions())
}

func TestService_RefreshReuseRevokes(t *testing.T) {
	c := newTestClient(t)
	c.login("ann@example.com", "secret")
	cookies := c.client.Jar.Cookies(mustURL(t, c.server.URL+"/auth/refresh"))
	require.Len(t, cookies, 1)
	stolen := cookies[0].Value

	assert.Equal(t, http.StatusOK, c.call(http.MethodPost, "/auth/refresh", "", nil, &model.Session{}))

	// presenting the rotated token again revokes every session of the user
	req, err := http.NewRequest(http.MethodPost, c.server.URL+"/auth/refresh", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: stolen})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, c.server.Sessions())
	assert.Equal(t, http.StatusUnauthorized, c.call(http.MethodPost, "/auth/refresh", "", nil, nil))
}

func TestService_RefreshWithoutCookie(t *testing.T) {
	c := newTestClient(t)
	assert.Equal(t, http.StatusUnauthorized, c.call(http.MethodPost, "/auth/refresh", "", nil, nil))
	assert.EqualValues(t, 1, c.server.RefreshCalls())
}

func TestService_Logout(t *testing.T) {
	c := newTestClient(t)
	c.login("ann@example.com", "secret")
	assert.Equal(t, http.StatusNoContent, c.call(http.MethodPost, "/auth/logout", "", nil, nil))
	assert.Equal(t, 0, c.server.Sessions())
	assert.Equal(t, http.StatusUnauthorized, c.call(http.MethodPost, "/auth/refresh", "", nil, nil))
}

func TestService_Catalog(t *testing.T) {
	c := newTestClient(t)
	page := &model.ProductPage{}
	assert.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/products", "", nil, page))
	assert.Equal(t, len(defaultProducts()), page.Total)

	product := &model.Product{}
	assert.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/products/"+page.Items[0].ID, "", nil, product))
	assert.Equal(t, page.Items[0].Name, product.Name)
	assert.Equal(t, http.StatusNotFound, c.call(http.MethodGet, "/api/products/missing", "", nil, nil))

	customer := c.login("ann@example.com", "secret")
	assert.Equal(t, http.StatusForbidden, c.call(http.MethodPost, "/api/products", customer.AccessToken, &model.Product{Name: "Lamp"}, nil))
	admin := c.login("admin@example.com", "admin")
	created := &model.Product{}
	assert.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/api/products", admin.AccessToken, &model.Product{Name: "Lamp", Category: "home"}, created))
	assert.NotEmpty(t, created.ID)

	filtered := &model.ProductPage{}
	assert.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/products?category=home", "", nil, filtered))
	assert.Contains(t, productIDs(filtered.Items), created.ID)
}

func TestService_CatalogPaging(t *testing.T) {
	c := newTestClient(t)
	var testCases = []struct {
		description string
		query       string
		expectItems int
	}{
		{description: "first page", query: "?page=1", expectItems: len(defaultProducts())},
		{description: "invalid page", query: "?page=abc", expectItems: len(defaultProducts())},
		{description: "past the end", query: "?page=2", expectItems: 0},
		{description: "huge page", query: "?page=9223372036854775807", expectItems: 0},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			page := &model.ProductPage{}
			assert.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/products"+testCase.query, "", nil, page))
			assert.Len(t, page.Items, testCase.expectItems)
		})
	}
}

func TestService_CartAndPromocode(t *testing.T) {
	c := newTestClient(t)
	session := c.login("ann@example.com", "secret")
	cart := &model.Cart{}
	assert.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/cart", session.AccessToken, &model.CartItem{ProductID: "p1", Quantity: 2}, cart))
	assert.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/cart/merge", session.AccessToken, []*model.CartItem{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 1}}, cart))
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	promocode := &model.Promocode{}
	assert.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/promocodes/apply", session.AccessToken, &model.Promocode{Code: "welcome10"}, promocode))
	assert.Equal(t, 10, promocode.Discount)
	assert.Equal(t, http.StatusNotFound, c.call(http.MethodPost, "/api/promocodes/apply", session.AccessToken, &model.Promocode{Code: "BOGUS"}, nil))

	assert.Equal(t, http.StatusOK, c.call(http.MethodDelete, "/api/cart?productId=p1", session.AccessToken, nil, cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p2", cart.Items[0].ProductID)
	assert.Equal(t, "WELCOME10", cart.Code)
}

func TestService_Favorites(t *testing.T) {
	c := newTestClient(t)
	session := c.login("ann@example.com", "secret")
	favorites := &model.Favorites{}
	assert.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/favorites", session.AccessToken, map[string]string{"productId": "p3"}, favorites))
	assert.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/favorites/merge", session.AccessToken, &model.Favorites{ProductIDs: []string{"p3", "p4"}}, favorites))
	assert.Equal(t, []string{"p3", "p4"}, favorites.ProductIDs)
	assert.Equal(t, http.StatusOK, c.call(http.MethodDelete, "/api/favorites?productId=p3", session.AccessToken, nil, favorites))
	assert.Equal(t, []string{"p4"}, favorites.ProductIDs)
}

func productIDs(products []*model.Product) []string {
	var result []string
	for _, product := range products {
		result = append(result, product.ID)
	}
	return result
}

func mustURL(t *testing.T, rawURL string) *url.URL {
	t.Helper()
	ret, err := url.Parse(rawURL)
	require.NoError(t, err)
	return ret
}

func TestService_Cors(t *testing.T) {
	var testCases = []struct {
		description  string
		options      []Option
		origin       string
		expectStatus int
		expectOrigin string
	}{
		{description: "any origin", origin: "https://shop.example.com", expectStatus: http.StatusNoContent, expectOrigin: "https://shop.example.com"},
		{description: "allowed origin", options: []Option{WithCors(&Cors{AllowOrigins: []string{"https://shop.example.com"}})}, origin: "https://shop.example.com", expectStatus: http.StatusNoContent, expectOrigin: "https://shop.example.com"},
		{description: "rejected origin", options: []Option{WithCors(&Cors{AllowOrigins: []string{"https://shop.example.com"}})}, origin: "https://evil.example.com", expectStatus: http.StatusForbidden},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			c := newTestClient(t, testCase.options...)
			req, err := http.NewRequest(http.MethodOptions, c.server.URL+"/auth/refresh", nil)
			require.NoError(t, err)
			req.Header.Set("Origin", testCase.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, testCase.expectStatus, resp.StatusCode)
			assert.Equal(t, testCase.expectOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
			if testCase.expectOrigin != "" {
				assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
				assert.Equal(t, http.MethodPost, resp.Header.Get("Access-Control-Allow-Methods"))
			}
			assert.EqualValues(t, 0, c.server.RefreshCalls())
		})
	}
}

func TestService_EchoesRequestID(t *testing.T) {
	c := newTestClient(t)
	req, err := http.NewRequest(http.MethodGet, c.server.URL+"/api/products", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "r-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "r-42", resp.Header.Get("X-Request-Id"))
}
