package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
)

// RequestIDHeader carries the identifier shared by an original call and its replay
const RequestIDHeader = "X-Request-Id"

// ErrRequestNil is returned when Execute is called without a request
var ErrRequestNil = errors.New("transport: request was nil")

// Request describes a replayable HTTP call.
// Callers must only use it for calls that are safe to issue twice.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
	ID     string
}

// NewRequest creates a request descriptor, buffering body so that it can be replayed
func NewRequest(method, URL string, body io.Reader) (*Request, error) {
	ret := &Request{Method: method, URL: URL, Header: http.Header{}}
	if body != nil {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		ret.Body = data
	}
	return ret, nil
}

// FromHTTPRequest converts req into a descriptor; req.Body is consumed and closed
func FromHTTPRequest(req *http.Request) (*Request, error) {
	ret := &Request{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		ID:     req.Header.Get(RequestIDHeader),
	}
	if ret.Header == nil {
		ret.Header = http.Header{}
	}
	if req.Body != nil && req.Body != http.NoBody {
		data, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
		ret.Body = data
	}
	return ret, nil
}

func (r *Request) build(ctx context.Context, accessToken string) (*http.Request, error) {
	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}
	ret, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, err
	}
	for key, values := range r.Header {
		ret.Header[key] = append([]string(nil), values...)
	}
	ret.Header.Del("Authorization")
	if accessToken != "" {
		ret.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if r.ID != "" {
		ret.Header.Set(RequestIDHeader, r.ID)
	}
	return ret, nil
}
