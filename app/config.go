package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/viant/afs"
	"github.com/viant/storefront"
	"gopkg.in/yaml.v3"
)

const stateDir = ".storefront"

// loadEnv loads a dotenv file when present; variables already set in the environment win
func loadEnv(location string) error {
	if location == "" {
		return nil
	}
	if err := godotenv.Load(location); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %v: %w", location, err)
	}
	return nil
}

// loadConfig downloads and decodes the YAML client config at URL
func loadConfig(ctx context.Context, fs afs.Service, URL string) (*storefront.ClientOptions, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := &storefront.ClientOptions{}
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	return ret, nil
}

// resolve applies flags over config file over defaults
func (o *Options) resolve(ctx context.Context, fs afs.Service) error {
	if o.ConfigURL != "" {
		config, err := loadConfig(ctx, fs, o.ConfigURL)
		if err != nil {
			return err
		}
		o.ClientOptions.Merge(config)
	}
	if o.StateURL == "" {
		if home, err := os.UserHomeDir(); err == nil {
			o.StateURL = filepath.Join(home, stateDir)
		}
	}
	return nil
}
