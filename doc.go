// Package storefront wires a storefront API client from declarative options.
//
// NewClient builds the credential store and cookie jar (in memory, or persisted under
// StateURL through afs), the session refresh coordinator with its metrics, and the typed
// API client on top of it.
//
// Example:
//
//	cli, err := storefront.NewClient(ctx, &storefront.ClientOptions{
//		URL:      "https://shop.example.com",
//		StateURL: "/home/ann/.storefront",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	identity, err := cli.Login(ctx, "ann@example.com", "secret")
package storefront
