// Package client implements a typed Go client for the storefront API.
//
// Every call goes through a transport.Coordinator, so an expired access token is renewed
// once for all in-flight calls and the calls are replayed transparently. Login and logout
// bypass the coordinator's refresh handling.
//
// On top of the transport the package adds:
//   - Login/Logout/Me session helpers that keep the credential store in sync.
//   - Typed helpers for catalog, cart, favorites and promocode endpoints.
//   - An optional guest state source merged into the account after login.
//
// Example:
//
//	coordinator, _ := transport.New(transport.WithRefreshURL("https://shop.example.com/auth/refresh"))
//	cli := client.New("https://shop.example.com", coordinator)
//	_, _ = cli.Login(ctx, "ann@example.com", "secret")
//	cart, _ := cli.AddToCart(ctx, "p1", 2)
//	fmt.Println(cart.Items)
package client
