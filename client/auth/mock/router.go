package mock

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Handler routes HTTP requests to the mock storefront endpoints.
type Handler struct {
	Service *Service
}

// ServeHTTP dispatches incoming HTTP requests based on URL path.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := h.Service
	switch path := r.URL.Path; {
	case path == "/auth/login":
		s.loginHandler(w, r)
	case path == "/auth/logout":
		s.logoutHandler(w, r)
	case path == "/auth/refresh":
		if s.RefreshHandler != nil {
			s.RefreshHandler(w, r)
		} else {
			s.defaultRefreshHandler(w, r)
		}
	case path == "/auth/me":
		s.protected(s.meHandler)(w, r)
	case strings.HasPrefix(path, "/api/"):
		if s.ResourceHandler != nil {
			s.ResourceHandler(w, r)
			return
		}
		s.resourceHandler(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Service) resourceHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/products":
		if r.Method == http.MethodGet {
			s.listProductsHandler(w, r)
			return
		}
		s.protected(s.createProductHandler)(w, r)
	case strings.HasPrefix(path, "/api/products/"):
		s.productHandler(w, r, strings.TrimPrefix(path, "/api/products/"))
	case path == "/api/cart":
		s.protected(s.cartHandler)(w, r)
	case path == "/api/cart/merge":
		s.protected(s.mergeCartHandler)(w, r)
	case path == "/api/favorites":
		s.protected(s.favoritesHandler)(w, r)
	case path == "/api/favorites/merge":
		s.protected(s.mergeFavoritesHandler)(w, r)
	case path == "/api/promocodes/apply":
		s.protected(s.applyPromocodeHandler)(w, r)
	default:
		http.NotFound(w, r)
	}
}

type userHandler func(w http.ResponseWriter, r *http.Request, user string)

func (s *Service) protected(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.authenticate(r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="storefront", error="invalid_token"`)
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		r = r.WithContext(withIdentity(r.Context(), identity))
		next(w, r, identity.ID)
	}
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
