package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/viant/storefront/client/auth/store"
	"github.com/viant/storefront/client/auth/transport"
	"github.com/viant/storefront/model"
	"golang.org/x/oauth2"
)

type Client struct {
	baseURL     string
	coordinator *transport.Coordinator
	guest       GuestSource
	logger      *logrus.Entry
}

// Login signs the user in, stores the issued credentials and merges guest state into the account
func (c *Client) Login(ctx context.Context, email, password string) (*store.Identity, error) {
	request := &model.LoginRequest{Email: email, Password: password}
	session, err := send[model.Session](transport.SkipRefresh(ctx), c, http.MethodPost, "/auth/login", request)
	if err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, transport.ErrNoAccessToken
	}
	user := session.User
	if user == nil {
		user, _ = store.IdentityFromToken(session.AccessToken)
	}
	err = c.coordinator.Store().SetCredentials(&store.Credentials{AccessToken: session.AccessToken, User: user})
	if errors.Is(err, store.ErrNotPersisted) {
		c.logger.WithError(err).Warn("session kept in memory only")
	} else if err != nil {
		return nil, fmt.Errorf("failed to store credentials: %w", err)
	}
	c.mergeGuestState(ctx)
	return user, nil
}

// mergeGuestState logs merge failures; the login itself stands
func (c *Client) mergeGuestState(ctx context.Context) {
	if c.guest == nil {
		return
	}
	state, err := c.guest(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("failed to read guest state")
		return
	}
	if state.IsEmpty() {
		return
	}
	if len(state.CartItems) > 0 {
		if _, err = send[model.Cart](ctx, c, http.MethodPost, "/api/cart/merge", state.CartItems); err != nil {
			c.logger.WithError(err).Warn("failed to merge guest cart")
		}
	}
	if len(state.FavoriteIDs) > 0 {
		if _, err = send[model.Favorites](ctx, c, http.MethodPost, "/api/favorites/merge", &model.Favorites{ProductIDs: state.FavoriteIDs}); err != nil {
			c.logger.WithError(err).Warn("failed to merge guest favorites")
		}
	}
}

// Logout ends the server session; local credentials are cleared even when the call fails
func (c *Client) Logout(ctx context.Context) error {
	_, err := send[struct{}](transport.SkipRefresh(ctx), c, http.MethodPost, "/auth/logout", nil)
	if clearErr := c.coordinator.Store().ClearCredentials(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

// Me returns the signed-in user
func (c *Client) Me(ctx context.Context) (*store.Identity, error) {
	return send[store.Identity](ctx, c, http.MethodGet, "/auth/me", nil)
}

// Credentials returns the current credentials, nil when signed out
func (c *Client) Credentials() *store.Credentials {
	return c.coordinator.Store().Credentials()
}

// TokenSource exposes the session access token to golang.org/x/oauth2 consumers; renewal stays with the coordinator
func (c *Client) TokenSource() oauth2.TokenSource {
	return store.TokenSource(c.coordinator.Store())
}

func (c *Client) Products(ctx context.Context, category string, page int) (*model.ProductPage, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	path := "/api/products"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return send[model.ProductPage](ctx, c, http.MethodGet, path, nil)
}

func (c *Client) Product(ctx context.Context, ID string) (*model.Product, error) {
	return send[model.Product](ctx, c, http.MethodGet, "/api/products/"+url.PathEscape(ID), nil)
}

// CreateProduct adds a catalog entry, admin only
func (c *Client) CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	return send[model.Product](ctx, c, http.MethodPost, "/api/products", product)
}

func (c *Client) Cart(ctx context.Context) (*model.Cart, error) {
	return send[model.Cart](ctx, c, http.MethodGet, "/api/cart", nil)
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (*model.Cart, error) {
	return send[model.Cart](ctx, c, http.MethodPost, "/api/cart", &model.CartItem{ProductID: productID, Quantity: quantity})
}

// RemoveFromCart removes a cart line; an empty productID empties the cart
func (c *Client) RemoveFromCart(ctx context.Context, productID string) (*model.Cart, error) {
	path := "/api/cart"
	if productID != "" {
		path += "?productId=" + url.QueryEscape(productID)
	}
	return send[model.Cart](ctx, c, http.MethodDelete, path, nil)
}

func (c *Client) Favorites(ctx context.Context) (*model.Favorites, error) {
	return send[model.Favorites](ctx, c, http.MethodGet, "/api/favorites", nil)
}

func (c *Client) AddFavorite(ctx context.Context, productID string) (*model.Favorites, error) {
	return send[model.Favorites](ctx, c, http.MethodPost, "/api/favorites", map[string]string{"productId": productID})
}

func (c *Client) RemoveFavorite(ctx context.Context, productID string) (*model.Favorites, error) {
	return send[model.Favorites](ctx, c, http.MethodDelete, "/api/favorites?productId="+url.QueryEscape(productID), nil)
}

func (c *Client) ApplyPromocode(ctx context.Context, code string) (*model.Promocode, error) {
	return send[model.Promocode](ctx, c, http.MethodPost, "/api/promocodes/apply", &model.Promocode{Code: code})
}

// Do issues an arbitrary storefront call and returns the raw response body
func (c *Client) Do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	_, data, err := c.execute(ctx, method, path, reader)
	return data, err
}

func (c *Client) execute(ctx context.Context, method, path string, body io.Reader) (int, []byte, error) {
	request, err := transport.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	request.Header.Set("Accept", "application/json")
	if len(request.Body) > 0 {
		request.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.coordinator.Execute(ctx, request)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read %v %v response: %w", method, path, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return resp.StatusCode, data, newStatusError(resp.StatusCode, data)
	}
	return resp.StatusCode, data, nil
}

func send[R any](ctx context.Context, client *Client, method, path string, payload interface{}) (*R, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %v %v request: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}
	status, data, err := client.execute(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	var result R
	if status == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return &result, nil
	}
	if err = json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode %v %v response: %w", method, path, err)
	}
	return &result, nil
}

// Coordinator returns the session refresh coordinator used by the client
func (c *Client) Coordinator() *transport.Coordinator {
	return c.coordinator
}

func New(baseURL string, coordinator *transport.Coordinator, options ...Option) *Client {
	ret := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		coordinator: coordinator,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		ret.logger = logrus.NewEntry(logger)
	}
	return ret
}
