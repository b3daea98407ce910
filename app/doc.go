// Package app implements the storefront command line.
//
// Options are resolved from flags, then the YAML file given with --config (any afs URL),
// then defaults. A .env file in the working directory is loaded first, so environment
// backed flags such as STOREFRONT_URL can live there.
//
// Commands:
//   - login:  signs in with --email/--password and persists the session under --state
//   - logout: ends the session and clears persisted credentials
//   - me:     prints the signed-in user
//   - get:    issues an arbitrary call, i.e. get /api/cart -X POST -d '{"productId":"p1"}'
//   - demo:   runs an in-process storefront and shows N concurrent 401s sharing one refresh
package app
