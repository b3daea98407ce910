package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/storefront"
	"github.com/viant/storefront/client/auth/mock"
)

const demoRefreshDelay = 200 * time.Millisecond

// demo runs an in-process storefront, expires the session and fires concurrent calls at it
func (c *command) demo(ctx context.Context) error {
	server, err := mock.NewHTTPTestServer(mock.WithRefreshDelay(demoRefreshDelay))
	if err != nil {
		return err
	}
	defer server.Close()

	options := c.options.ClientOptions
	options.URL = server.URL
	options.StateURL = ""
	cli, err := storefront.NewClient(ctx, &options)
	if err != nil {
		return err
	}
	email, password := c.options.Email, c.options.Password
	if email == "" {
		email, password = "ann@example.com", "secret"
	}
	if _, err = cli.Login(ctx, email, password); err != nil {
		return err
	}
	server.ExpireAccessTokens()
	c.logger.WithField("calls", c.options.Concurrency).Info("access token expired, firing concurrent calls")

	var succeeded atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < c.options.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cli.Cart(ctx); err != nil {
				c.logger.WithError(err).Warn("call failed")
				return
			}
			succeeded.Add(1)
		}()
	}
	wg.Wait()
	_, err = fmt.Fprintf(c.stdout, "calls: %d, succeeded: %d, refresh calls: %d\n", c.options.Concurrency, succeeded.Load(), server.RefreshCalls())
	if err != nil {
		return err
	}
	if int(succeeded.Load()) != c.options.Concurrency {
		return fmt.Errorf("%d of %d calls failed", c.options.Concurrency-int(succeeded.Load()), c.options.Concurrency)
	}
	return nil
}
