package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/storefront"
)

const envFile = ".env"

// Run executes the storefront command line
func Run(args []string) error {
	return run(context.Background(), args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if err := loadEnv(envFile); err != nil {
		return err
	}
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	if err := options.resolve(ctx, afs.New()); err != nil {
		return err
	}
	logger, err := newLogger(options.LogLevel, stderr)
	if err != nil {
		return err
	}
	options.Logger = logger
	var registry *prometheus.Registry
	if options.MetricsFile != "" {
		registry = prometheus.NewRegistry()
		options.Registerer = registry
	}
	cmd := &command{options: options, stdout: stdout, logger: logger}
	if err = cmd.run(ctx); err != nil {
		return err
	}
	if registry != nil {
		if err = prometheus.WriteToTextfile(options.MetricsFile, registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

type command struct {
	options *Options
	stdout  io.Writer
	logger  *logrus.Entry
}

func (c *command) run(ctx context.Context) error {
	switch name := c.options.Args.Command; name {
	case "demo":
		return c.demo(ctx)
	case "login", "logout", "me", "token", "get":
	case "":
		return fmt.Errorf("command was empty, supported: login, logout, me, token, get, demo")
	default:
		return fmt.Errorf("unsupported command: %v", name)
	}
	cli, err := storefront.NewClient(ctx, &c.options.ClientOptions)
	if err != nil {
		return err
	}
	switch c.options.Args.Command {
	case "login":
		if c.options.Email == "" || c.options.Password == "" {
			return fmt.Errorf("login requires --email and --password")
		}
		identity, err := cli.Login(ctx, c.options.Email, c.options.Password)
		if err != nil {
			return err
		}
		c.logger.WithField("user", identity.ID).Info("signed in")
		return c.print(identity)
	case "logout":
		if err = cli.Logout(ctx); err != nil {
			return err
		}
		c.logger.Info("signed out")
		return nil
	case "me":
		identity, err := cli.Me(ctx)
		if err != nil {
			return err
		}
		return c.print(identity)
	case "token":
		token, err := cli.TokenSource().Token()
		if err != nil {
			return err
		}
		return c.print(token)
	default:
		if c.options.Args.Path == "" {
			return fmt.Errorf("get requires a path, i.e. /api/cart")
		}
		var body []byte
		if c.options.Data != "" {
			body = []byte(c.options.Data)
		}
		data, err := cli.Do(ctx, c.options.Method, c.options.Args.Path, body)
		if err != nil {
			return err
		}
		_, err = c.stdout.Write(data)
		return err
	}
}

func (c *command) print(value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, string(data))
	return err
}
