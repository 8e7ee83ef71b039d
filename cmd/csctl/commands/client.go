package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/central-storage/csclient/internal/constants"
	"github.com/central-storage/csclient/internal/logging"
	"github.com/central-storage/csclient/pkg/csapi"
	"github.com/central-storage/csclient/pkg/csclient"
)

// UserAgent is sent with every request the CLI makes. main sets the version suffix.
var UserAgent = "csctl"

// NewLogger creates the CLI logger. --verbose lowers the level to debug.
func NewLogger() *logging.Logger {
	level := viper.GetString("log_level")
	if level == "" {
		level = "warn"
	}

	if viper.GetBool("verbose") {
		level = "debug"
	}

	return logging.New(logging.Config{
		Env:    "development",
		Level:  level,
		Output: os.Stderr,
	})
}

// clientConfig builds the library configuration from the effective CLI configuration.
func clientConfig(config *Config, logger csapi.Logger) *csapi.Config {
	return &csapi.Config{
		APIEndpoint:    config.API,
		Token:          config.Token,
		Username:       config.Username,
		Password:       viper.GetString("password"),
		HTTPTimeout:    constants.DefaultHTTPTimeout,
		RetryMax:       constants.DefaultRetryMax,
		RetryWaitMin:   constants.DefaultRetryWaitMin,
		RetryWaitMax:   constants.DefaultRetryWaitMax,
		Debug:          viper.GetBool("verbose"),
		Logger:         logger,
		UserAgent:      UserAgent,
		Cache:          config.Cache.CacheConfig(),
		TokenPersister: NewConfigPersister(),
	}
}

// newClient creates a client for the configured API without requiring credentials.
func newClient(ctx context.Context) (csapi.Client, error) {
	config := loadConfig()
	if config.API == "" {
		return nil, constants.ErrNoAPIEndpoint
	}

	client, err := csclient.New(ctx, clientConfig(config, NewLogger()))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// newAuthenticatedClient creates a client and fails early when no usable token is available.
func newAuthenticatedClient(ctx context.Context) (csapi.Client, error) {
	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}

	if !client.Auth().Authenticated() {
		return nil, constants.ErrNotAuthenticated
	}

	return client, nil
}
