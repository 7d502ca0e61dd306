package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config keys. Each one can be overridden by the upper-cased env var with dots
// replaced by underscores (backend.url -> BACKEND_URL).
const (
	KeyPort          = "port"
	KeyBackendURL    = "backend.url"
	KeyClientBaseURL = "client.base_url"
	KeyCookieSecure  = "cookie.secure"
	KeySessionDBPath = "session.db_path"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
)

const (
	DefaultPort          = "8080"
	DefaultBackendURL    = "http://backend:8081"
	DefaultSessionDBPath = "socialctl.db"
)

// Config is the resolved runtime configuration shared by both binaries.
type Config struct {
	Port          string
	BackendURL    string
	ClientBaseURL string
	CookieSecure  bool
	SessionDBPath string
	LogLevel      string
	LogFormat     string
}

// Load reads .env (if present), configs/config.yml (if present) and the
// environment, in increasing order of precedence.
func Load(configPaths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := newViper(configPaths)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v)
}

func newViper(configPaths []string) *viper.Viper {
	v := viper.New()
	if len(configPaths) == 0 {
		configPaths = []string{"configs"}
	}
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyBackendURL, DefaultBackendURL)
	v.SetDefault(KeyClientBaseURL, "")
	v.SetDefault(KeyCookieSecure, false)
	v.SetDefault(KeySessionDBPath, DefaultSessionDBPath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          strings.TrimPrefix(strings.TrimSpace(v.GetString(KeyPort)), ":"),
		BackendURL:    strings.TrimRight(strings.TrimSpace(v.GetString(KeyBackendURL)), "/"),
		ClientBaseURL: strings.TrimRight(strings.TrimSpace(v.GetString(KeyClientBaseURL)), "/"),
		CookieSecure:  v.GetBool(KeyCookieSecure),
		SessionDBPath: v.GetString(KeySessionDBPath),
		LogLevel:      v.GetString(KeyLogLevel),
		LogFormat:     v.GetString(KeyLogFormat),
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = DefaultBackendURL
	}
	if cfg.ClientBaseURL == "" {
		cfg.ClientBaseURL = "http://localhost:" + cfg.Port + "/api"
	}

	if err := validateOrigin(KeyBackendURL, cfg.BackendURL); err != nil {
		return nil, err
	}
	if err := validateOrigin(KeyClientBaseURL, cfg.ClientBaseURL); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateOrigin(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: parse %q: %w", key, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: unsupported scheme %q in %q", key, u.Scheme, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: missing host in %q", key, raw)
	}
	return nil
}
