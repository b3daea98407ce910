package transport

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// sessionCookies carries the ambient refresh cookie for coordinator calls, which go through
// RoundTrip directly rather than http.Client. Rotations issued by the server are written back
// to the jar and logged.
type sessionCookies struct {
	next   http.RoundTripper
	jar    http.CookieJar
	logger *logrus.Entry
}

// persistentJar is implemented by jars that save cookies, i.e. FileJar
type persistentJar interface {
	Err() error
}

func withSessionCookies(next http.RoundTripper, jar http.CookieJar, logger *logrus.Entry) http.RoundTripper {
	if jar == nil || next == nil {
		return next
	}
	return &sessionCookies{next: next, jar: jar, logger: logger}
}

func (s *sessionCookies) RoundTrip(req *http.Request) (*http.Response, error) {
	outbound := req.Clone(req.Context())
	for _, cookie := range s.jar.Cookies(outbound.URL) {
		outbound.AddCookie(cookie)
	}
	resp, err := s.next.RoundTrip(outbound)
	if err != nil {
		return nil, err
	}
	issued := resp.Cookies()
	if len(issued) == 0 {
		return resp, nil
	}
	s.jar.SetCookies(outbound.URL, issued)
	for _, cookie := range issued {
		entry := s.logger.WithFields(logrus.Fields{"cookie": cookie.Name, "path": outbound.URL.Path})
		if cookie.MaxAge < 0 || cookie.Value == "" {
			entry.Debug("session cookie removed")
			continue
		}
		entry.Debug("session cookie issued")
	}
	if persistent, ok := s.jar.(persistentJar); ok {
		if err := persistent.Err(); err != nil {
			s.logger.WithError(err).Warn("failed to persist session cookies")
		}
	}
	return resp, nil
}
