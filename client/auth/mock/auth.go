package mock

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/viant/storefront/client/auth/store"
	"github.com/viant/storefront/model"
)

func (s *Service) loginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	request := &model.LoginRequest{}
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid login request")
		return
	}
	anAccount, ok := s.accounts[request.Email]
	if !ok || anAccount.password != request.Password {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	s.logins.Add(1)
	s.issueSession(w, anAccount.identity)
}

// defaultRefreshHandler rotates the refresh cookie; a rotated token presented again revokes the user's sessions
func (s *Service) defaultRefreshHandler(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.RefreshDelay > 0 {
		time.Sleep(s.RefreshDelay)
	}
	cookie, err := r.Cookie(RefreshCookie)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}
	identity, ok := s.sessions.Take(cookie.Value)
	if !ok {
		if userID, reused := s.rotated.Get(cookie.Value); reused {
			s.revokeUser(userID)
		}
		s.clearRefreshCookie(w)
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	s.rotated.Put(cookie.Value, identity.ID)
	s.issueSession(w, identity)
}

func (s *Service) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(RefreshCookie); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	s.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) meHandler(w http.ResponseWriter, r *http.Request, _ string) {
	writeJSON(w, http.StatusOK, identityFrom(r.Context()))
}

func (s *Service) issueSession(w http.ResponseWriter, identity *store.Identity) {
	accessToken, err := s.createAccessToken(identity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	refreshToken := uuid.NewString()
	s.sessions.Put(refreshToken, identity)
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    refreshToken,
		Path:     "/auth",
		MaxAge:   int(s.RefreshTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, &model.Session{AccessToken: accessToken, User: identity})
}

func (s *Service) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: RefreshCookie, Value: "", Path: "/auth", MaxAge: -1, HttpOnly: true})
}

func (s *Service) revokeUser(userID string) {
	s.sessions.Range(func(key string, identity *store.Identity) bool {
		if identity.ID == userID {
			s.sessions.Delete(key)
		}
		return true
	})
}
