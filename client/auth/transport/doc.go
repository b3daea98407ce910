// Package transport implements the session refresh coordinator that sits in
// front of storefront API calls.
//
// When a call is rejected with `401 Unauthorized` the Coordinator performs a single
// shared refresh against the refresh endpoint, stores the renewed credentials and
// replays every pending call once. Concurrent callers that observe the 401 while a
// refresh is in flight wait for it instead of issuing their own.
//
// The Coordinator can be used directly via Execute or as an http.RoundTripper.
package transport
