package transport

import (
	"errors"
	"net/http"
)

// RoundTripper routes http.Client traffic through the Coordinator
type RoundTripper struct {
	coordinator *Coordinator
}

func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if r.coordinator == nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, errors.New("transport: coordinator was nil")
	}
	request, err := FromHTTPRequest(req)
	if err != nil {
		return nil, err
	}
	return r.coordinator.Execute(req.Context(), request)
}
