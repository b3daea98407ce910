// Package model defines the storefront payloads exchanged with the API.
package model

import "github.com/viant/storefront/client/auth/store"

// Product is a catalog entry
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
}

// ProductPage is one page of a catalog listing
type ProductPage struct {
	Items []*Product `json:"items"`
	Page  int        `json:"page"`
	Total int        `json:"total"`
}

// CartItem is a cart line
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart holds the user's cart lines
type Cart struct {
	Items    []*CartItem `json:"items"`
	Discount int         `json:"discount,omitempty"`
	Code     string      `json:"code,omitempty"`
}

// Favorites lists favorite product ids
type Favorites struct {
	ProductIDs []string `json:"productIds"`
}

// Promocode is the result of applying a promotional code
type Promocode struct {
	Code     string `json:"code"`
	Discount int    `json:"discount"`
}

// LoginRequest carries user credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned by login and refresh
type Session struct {
	AccessToken string          `json:"accessToken"`
	User        *store.Identity `json:"user,omitempty"`
}
