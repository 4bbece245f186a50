// Package app wires configuration into a ready-to-use SCIM client.
package app

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/provision-tools/scim2/pkg/client"
	"github.com/provision-tools/scim2/pkg/config"
	"github.com/provision-tools/scim2/pkg/engine"
)

type App struct {
	Config *config.Config
	Log    *zerolog.Logger
	Client *client.Client
}

func New(cfg *config.Config) (*App, error) {
	log := newLogger(cfg)

	eng, err := newEngine(cfg, log)
	if err != nil {
		return nil, err
	}

	opts := []client.Option{client.WithLogger(log)}

	var defaults []client.RequestOption

	if cfg.Client.SkipRequestValidation {
		defaults = append(defaults, client.SkipRequestValidation())
	}

	if cfg.Client.SkipResponseValidation {
		defaults = append(defaults, client.SkipResponseValidation())
	}

	if cfg.Client.ErrorsAsValues {
		defaults = append(defaults, client.SCIMErrorsAsValues())
	}

	if len(defaults) > 0 {
		opts = append(opts, client.WithDefaults(defaults...))
	}

	return &App{
		Config: cfg,
		Log:    log,
		Client: client.New(eng, opts...),
	}, nil
}

func newLogger(cfg *config.Config) *zerolog.Logger {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(cfg.Logging.LogLevelParsed).
		With().Timestamp().Logger()

	return &log
}

func newEngine(cfg *config.Config, log *zerolog.Logger) (engine.Engine, error) {
	provider := cfg.Provider
	if provider.BaseURL == "" {
		return nil, errors.New("provider.base_url is required")
	}

	opts := []engine.HTTPOption{
		engine.WithLogger(log),
		engine.WithTimeout(time.Duration(provider.TimeoutSeconds) * time.Second),
	}

	if provider.UserAgent != "" {
		opts = append(opts, engine.WithUserAgent(provider.UserAgent))
	}

	if provider.Insecure {
		opts = append(opts, engine.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
			},
		}))
	}

	switch auth := provider.Auth; {
	case auth.Basic.Enabled:
		opts = append(opts, engine.WithBasicAuth(auth.Basic.Username, auth.Basic.Password))
	case auth.Bearer.Enabled:
		opts = append(opts, engine.WithBearerToken(auth.Bearer.Token))
	case auth.OAuth2.Enabled:
		credentials := clientcredentials.Config{
			ClientID:     auth.OAuth2.ClientID,
			ClientSecret: auth.OAuth2.ClientSecret,
			TokenURL:     auth.OAuth2.TokenURL,
			Scopes:       auth.OAuth2.Scopes,
		}

		opts = append(opts, engine.WithTokenSource(credentials.TokenSource(context.Background())))
	}

	return engine.NewHTTPEngine(provider.BaseURL, opts...)
}
