package sciforma

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/orgsync-backend/internal/platform/envutil"
)

// DefaultScope is requested from the token endpoint when SCIFORMA_SCOPE is
// unset.
const DefaultScope = "organizations:read organizations:write"

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 4
)

type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
	Timeout      time.Duration
	MaxRetries   int
	RateLimitRPS float64
}

type ConfigErrorCode string

const (
	ConfigErrorMissingBaseURL      ConfigErrorCode = "missing_base_url"
	ConfigErrorInvalidBaseURL      ConfigErrorCode = "invalid_base_url"
	ConfigErrorMissingTokenURL     ConfigErrorCode = "missing_token_url"
	ConfigErrorInvalidTokenURL     ConfigErrorCode = "invalid_token_url"
	ConfigErrorMissingClientID     ConfigErrorCode = "missing_client_id"
	ConfigErrorMissingClientSecret ConfigErrorCode = "missing_client_secret"
	ConfigErrorInvalidRateLimit    ConfigErrorCode = "invalid_rate_limit"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid sciforma config"
	}
	switch e.Code {
	case ConfigErrorMissingBaseURL:
		return "SCIFORMA_BASE_URL is required"
	case ConfigErrorInvalidBaseURL:
		return fmt.Sprintf(
			"invalid SCIFORMA_BASE_URL=%q; expected absolute URL like https://sciforma.example.com/api",
			e.Value,
		)
	case ConfigErrorMissingTokenURL:
		return "SCIFORMA_TOKEN_URL is required"
	case ConfigErrorInvalidTokenURL:
		return fmt.Sprintf(
			"invalid SCIFORMA_TOKEN_URL=%q; expected absolute URL",
			e.Value,
		)
	case ConfigErrorMissingClientID:
		return "SCIFORMA_CLIENT_ID is required"
	case ConfigErrorMissingClientSecret:
		return "SCIFORMA_CLIENT_SECRET is required"
	case ConfigErrorInvalidRateLimit:
		return fmt.Sprintf(
			"invalid SCIFORMA_RATE_LIMIT_RPS=%q; expected non-negative number",
			e.Value,
		)
	default:
		return "invalid sciforma config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func ResolveConfigFromEnv() (Config, error) {
	rawRPS := strings.TrimSpace(os.Getenv("SCIFORMA_RATE_LIMIT_RPS"))
	rps := 0.0
	if rawRPS != "" {
		parsed, err := strconv.ParseFloat(rawRPS, 64)
		if err != nil {
			return Config{}, &ConfigError{
				Code:  ConfigErrorInvalidRateLimit,
				Value: rawRPS,
				Cause: err,
			}
		}
		rps = parsed
	}

	cfg := Config{
		BaseURL:      strings.TrimSpace(os.Getenv("SCIFORMA_BASE_URL")),
		TokenURL:     strings.TrimSpace(os.Getenv("SCIFORMA_TOKEN_URL")),
		ClientID:     strings.TrimSpace(os.Getenv("SCIFORMA_CLIENT_ID")),
		ClientSecret: strings.TrimSpace(os.Getenv("SCIFORMA_CLIENT_SECRET")),
		Scope:        strings.TrimSpace(os.Getenv("SCIFORMA_SCOPE")),
		Timeout:      envutil.Seconds("REQUEST_TIMEOUT_SECONDS", defaultTimeout),
		MaxRetries:   envutil.Int("SCIFORMA_MAX_RETRIES", defaultMaxRetries),
		RateLimitRPS: rps,
	}
	if cfg.Scope == "" {
		cfg.Scope = DefaultScope
	}

	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return &ConfigError{Code: ConfigErrorMissingBaseURL}
	}
	if err := validateAbsoluteURL(cfg.BaseURL); err != nil {
		return &ConfigError{
			Code:  ConfigErrorInvalidBaseURL,
			Value: cfg.BaseURL,
			Cause: err,
		}
	}
	if strings.TrimSpace(cfg.TokenURL) == "" {
		return &ConfigError{Code: ConfigErrorMissingTokenURL}
	}
	if err := validateAbsoluteURL(cfg.TokenURL); err != nil {
		return &ConfigError{
			Code:  ConfigErrorInvalidTokenURL,
			Value: cfg.TokenURL,
			Cause: err,
		}
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return &ConfigError{Code: ConfigErrorMissingClientID}
	}
	if strings.TrimSpace(cfg.ClientSecret) == "" {
		return &ConfigError{Code: ConfigErrorMissingClientSecret}
	}
	if cfg.RateLimitRPS < 0 {
		return &ConfigError{
			Code:  ConfigErrorInvalidRateLimit,
			Value: strconv.FormatFloat(cfg.RateLimitRPS, 'f', -1, 64),
		}
	}
	return nil
}

func validateAbsoluteURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
		return fmt.Errorf("missing scheme or host")
	}
	return nil
}
