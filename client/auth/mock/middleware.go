package mock

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	allowOriginHeader      = "Access-Control-Allow-Origin"
	allowHeadersHeader     = "Access-Control-Allow-Headers"
	allowMethodsHeader     = "Access-Control-Allow-Methods"
	requestMethodHeader    = "Access-Control-Request-Method"
	allowCredentialsHeader = "Access-Control-Allow-Credentials"
	exposeHeadersHeader    = "Access-Control-Expose-Headers"
	maxAgeHeader           = "Access-Control-Max-Age"
)

// Middleware is a function that takes an http.Handler and returns an http.Handler
type Middleware func(next http.Handler) http.Handler

// chain applies middlewares so that the first one is outermost
func chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Cors defines cross origin rules for browser storefronts; credentials must be allowed
// for the refresh cookie to reach /auth/refresh.
type Cors struct {
	AllowOrigins  []string `yaml:"AllowOrigins,omitempty"`
	AllowHeaders  []string `yaml:"AllowHeaders,omitempty"`
	ExposeHeaders []string `yaml:"ExposeHeaders,omitempty"`
	MaxAge        int64    `yaml:"MaxAge,omitempty"`
}

func (c *Cors) allowed(origin string) bool {
	for _, candidate := range c.AllowOrigins {
		if candidate == "*" || candidate == origin {
			return true
		}
	}
	return false
}

func (c *Cors) setHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" || !c.allowed(origin) {
		return
	}
	// a credentialed response never carries the "*" origin
	w.Header().Set(allowOriginHeader, origin)
	w.Header().Add("Vary", "Origin")
	w.Header().Set(allowCredentialsHeader, "true")
	if method := r.Header.Get(requestMethodHeader); method != "" {
		w.Header().Set(allowMethodsHeader, method)
	}
	if len(c.AllowHeaders) > 0 {
		w.Header().Set(allowHeadersHeader, strings.Join(c.AllowHeaders, ", "))
	}
	if len(c.ExposeHeaders) > 0 {
		w.Header().Set(exposeHeadersHeader, strings.Join(c.ExposeHeaders, ", "))
	}
	if c.MaxAge > 0 {
		w.Header().Set(maxAgeHeader, strconv.FormatInt(c.MaxAge, 10))
	}
}

// Middleware sets CORS headers, answers preflight requests and rejects unknown origins
func (c *Cors) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && !c.allowed(origin) {
			writeError(w, http.StatusForbidden, "origin not allowed")
			return
		}
		c.setHeaders(w, r)
		if r.Method == http.MethodOptions && r.Header.Get(requestMethodHeader) != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// echoRequestID returns the caller's X-Request-Id so that an original call and its replay can be correlated
func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ID := r.Header.Get("X-Request-Id"); ID != "" {
			w.Header().Set("X-Request-Id", ID)
		}
		next.ServeHTTP(w, r)
	})
}

func defaultCors() *Cors {
	return &Cors{
		AllowOrigins:  []string{"*"},
		AllowHeaders:  []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders: []string{"WWW-Authenticate", "X-Request-Id"},
		MaxAge:        600,
	}
}
