// Package mock provides an in-process storefront API used to exercise the session
// refresh coordinator without a real backend.
//
// The mock issues short-lived RS256 access tokens, keeps the refresh token in an
// HttpOnly cookie that is rotated on every refresh and revokes the whole session when
// a rotated refresh token is reused, which is how concurrent uncoordinated refreshes
// break sessions against real servers.
package mock
