package config

import (
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Logging LoggingConfig `json:"logging"`

	Provider struct {
		BaseURL        string     `json:"base_url"`
		TimeoutSeconds int        `json:"timeout_seconds"`
		UserAgent      string     `json:"user_agent"`
		Insecure       bool       `json:"insecure"`
		Auth           AuthConfig `json:"auth"`
	} `json:"provider"`

	Client ClientConfig `json:"client"`
}

type LoggingConfig struct {
	LogLevel       string        `json:"log_level"`
	LogLevelParsed zerolog.Level `json:"-"`
}

type AuthConfig struct {
	Basic struct {
		Enabled  bool   `json:"enabled"`
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"basic"`
	Bearer struct {
		Enabled bool   `json:"enabled"`
		Token   string `json:"token"`
	} `json:"bearer"`
	OAuth2 struct {
		Enabled      bool     `json:"enabled"`
		TokenURL     string   `json:"token_url"`
		ClientID     string   `json:"client_id"`
		ClientSecret string   `json:"client_secret"`
		Scopes       []string `json:"scopes"`
	} `json:"oauth2"`
}

type ClientConfig struct {
	SkipRequestValidation  bool `json:"skip_request_validation"`
	SkipResponseValidation bool `json:"skip_response_validation"`
	ErrorsAsValues         bool `json:"errors_as_values"`
}

func NewConfig(configPath string) (*Config, error) {
	file := "config.yaml"
	v := viper.New()

	if configPath != "" {
		exists, err := fileExists(configPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to determine if config file '%s' exists", configPath)
		}

		if !exists {
			return nil, errors.Errorf("config file '%s' doesn't exist", configPath)
		}

		file = configPath
	}

	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetConfigFile(file)
	v.SetEnvPrefix("SCIM2")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults.
	v.SetDefault("provider.timeout_seconds", 30)
	v.SetDefault("provider.auth.basic.enabled", "false")
	v.SetDefault("provider.auth.bearer.enabled", "false")
	v.SetDefault("provider.auth.oauth2.enabled", "false")

	// Allow setting via env vars.
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.auth.basic.password", "")
	v.SetDefault("provider.auth.bearer.token", "")
	v.SetDefault("provider.auth.oauth2.client_secret", "")

	configExists, err := fileExists(file)
	if err != nil {
		return nil, errors.Wrapf(err, "filesystem error")
	}

	if configExists {
		if err = v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file '%s'", file)
		}
	}
	v.AutomaticEnv()

	cfg := new(Config)

	err = v.UnmarshalExact(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "json"
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config file")
	}

	if cfg.Logging.LogLevel == "" {
		cfg.Logging.LogLevelParsed = zerolog.InfoLevel
	} else {
		cfg.Logging.LogLevelParsed, err = zerolog.ParseLevel(cfg.Logging.LogLevel)
		if err != nil {
			return nil, errors.Wrapf(err, "logging.log_level failed to parse")
		}
	}

	return cfg, nil
}

func fileExists(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return true, nil
	} else if os.IsNotExist(err) {
		return false, nil
	} else {
		return false, errors.Wrapf(err, "failed to stat file '%s'", path)
	}
}
