package mock

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/viant/storefront/model"
)

const pageSize = 20

func (s *Service) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	s.productsMu.RLock()
	var matched []*model.Product
	for _, product := range s.products {
		if category == "" || strings.EqualFold(product.Category, category) {
			matched = append(matched, product)
		}
	}
	s.productsMu.RUnlock()
	result := &model.ProductPage{Page: page, Total: len(matched), Items: []*model.Product{}}
	if page <= len(matched)/pageSize+1 {
		from := (page - 1) * pageSize
		to := min(from+pageSize, len(matched))
		result.Items = matched[from:to]
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Service) productHandler(w http.ResponseWriter, r *http.Request, ID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.productsMu.RLock()
	defer s.productsMu.RUnlock()
	for _, product := range s.products {
		if product.ID == ID {
			writeJSON(w, http.StatusOK, product)
			return
		}
	}
	writeError(w, http.StatusNotFound, "product not found")
}

func (s *Service) createProductHandler(w http.ResponseWriter, r *http.Request, _ string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !identityFrom(r.Context()).IsAdmin() {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}
	product := &model.Product{}
	if err := json.NewDecoder(r.Body).Decode(product); err != nil || product.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid product")
		return
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	s.productsMu.Lock()
	s.products = append(s.products, product)
	s.productsMu.Unlock()
	writeJSON(w, http.StatusCreated, product)
}

func (s *Service) cartHandler(w http.ResponseWriter, r *http.Request, user string) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		item := &model.CartItem{}
		if err := json.NewDecoder(r.Body).Decode(item); err != nil || item.ProductID == "" {
			writeError(w, http.StatusBadRequest, "invalid cart item")
			return
		}
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		s.addToCart(user, item)
	case http.MethodDelete:
		productID := r.URL.Query().Get("productId")
		s.carts.Update(user, func(current *model.Cart, _ bool) *model.Cart {
			next := &model.Cart{}
			if current != nil {
				next.Code, next.Discount = current.Code, current.Discount
				for _, item := range current.Items {
					if productID != "" && item.ProductID != productID {
						next.Items = append(next.Items, item)
					}
				}
			}
			return next
		})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.cart(user))
}

func (s *Service) mergeCartHandler(w http.ResponseWriter, r *http.Request, user string) {
	var items []*model.CartItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid cart items")
		return
	}
	for _, item := range items {
		if item != nil && item.ProductID != "" && item.Quantity > 0 {
			s.addToCart(user, item)
		}
	}
	writeJSON(w, http.StatusOK, s.cart(user))
}

func (s *Service) addToCart(user string, item *model.CartItem) {
	s.carts.Update(user, func(current *model.Cart, _ bool) *model.Cart {
		next := &model.Cart{}
		if current != nil {
			next.Code, next.Discount = current.Code, current.Discount
		}
		merged := false
		if current != nil {
			for _, existing := range current.Items {
				line := *existing
				if line.ProductID == item.ProductID {
					line.Quantity += item.Quantity
					merged = true
				}
				next.Items = append(next.Items, &line)
			}
		}
		if !merged {
			next.Items = append(next.Items, &model.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		return next
	})
}

func (s *Service) cart(user string) *model.Cart {
	if cart, ok := s.carts.Get(user); ok && cart != nil {
		return cart
	}
	return &model.Cart{Items: []*model.CartItem{}}
}

func (s *Service) favoritesHandler(w http.ResponseWriter, r *http.Request, user string) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		request := &struct {
			ProductID string `json:"productId"`
		}{}
		if err := json.NewDecoder(r.Body).Decode(request); err != nil || request.ProductID == "" {
			writeError(w, http.StatusBadRequest, "invalid favorite")
			return
		}
		s.addFavorites(user, request.ProductID)
	case http.MethodDelete:
		productID := r.URL.Query().Get("productId")
		s.favorites.Update(user, func(current []string, _ bool) []string {
			var next []string
			for _, ID := range current {
				if ID != productID {
					next = append(next, ID)
				}
			}
			return next
		})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.favoriteList(user))
}

func (s *Service) mergeFavoritesHandler(w http.ResponseWriter, r *http.Request, user string) {
	request := &model.Favorites{}
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid favorites")
		return
	}
	s.addFavorites(user, request.ProductIDs...)
	writeJSON(w, http.StatusOK, s.favoriteList(user))
}

func (s *Service) addFavorites(user string, productIDs ...string) {
	s.favorites.Update(user, func(current []string, _ bool) []string {
		next := append([]string(nil), current...)
		for _, candidate := range productIDs {
			found := false
			for _, ID := range next {
				if ID == candidate {
					found = true
					break
				}
			}
			if !found && candidate != "" {
				next = append(next, candidate)
			}
		}
		return next
	})
}

func (s *Service) favoriteList(user string) *model.Favorites {
	productIDs, _ := s.favorites.Get(user)
	if productIDs == nil {
		productIDs = []string{}
	}
	return &model.Favorites{ProductIDs: productIDs}
}

func (s *Service) applyPromocodeHandler(w http.ResponseWriter, r *http.Request, user string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	request := &model.Promocode{}
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid promocode")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(request.Code))
	discount, ok := promocodes[code]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown promocode")
		return
	}
	s.carts.Update(user, func(current *model.Cart, _ bool) *model.Cart {
		next := &model.Cart{}
		if current != nil {
			next.Items = current.Items
		}
		next.Code, next.Discount = code, discount
		return next
	})
	writeJSON(w, http.StatusOK, &model.Promocode{Code: code, Discount: discount})
}
