package sciforma

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/yungbote/orgsync-backend/internal/observability"
	"github.com/yungbote/orgsync-backend/internal/platform/ctxutil"
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
)

// refreshSkew renews a cached token this long before its advertised expiry.
const refreshSkew = 30 * time.Second

// TokenProvider hands out a bearer token for the organization API. Tokens
// are cached until shortly before expiry; Invalidate drops the cache after
// the remote rejects a token so the next call re-authenticates.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

type tokenProvider struct {
	log      *logger.Logger
	cfg      clientcredentials.Config
	http     *http.Client
	throttle *throttle

	mu      sync.Mutex
	current *oauth2.Token
}

func NewTokenProvider(log *logger.Logger, cfg Config) (TokenProvider, error) {
	return newTokenProvider(log, cfg, newThrottle(cfg.RateLimitRPS))
}

// newTokenProvider lets the API client share its throttle, so token
// exchanges count against the same request budget as organization calls.
func newTokenProvider(log *logger.Logger, cfg Config, th *throttle) (*tokenProvider, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	scope := strings.TrimSpace(cfg.Scope)
	if scope == "" {
		scope = DefaultScope
	}

	return &tokenProvider{
		log: log.With("client", "SciformaTokenProvider"),
		cfg: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       strings.Fields(scope),
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		http:     &http.Client{Timeout: timeout},
		throttle: th,
	}, nil
}

func (p *tokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cachedValid() {
		return p.current.AccessToken, nil
	}

	tok, err := p.fetch(ctx)
	if err != nil {
		return "", err
	}
	p.current = tok
	return tok.AccessToken, nil
}

func (p *tokenProvider) Invalidate() {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
}

// cachedValid must be called with the mutex held. A token without an
// advertised expiry is trusted until the remote rejects it.
func (p *tokenProvider) cachedValid() bool {
	if p.current == nil || strings.TrimSpace(p.current.AccessToken) == "" {
		return false
	}
	if p.current.Expiry.IsZero() {
		return true
	}
	return time.Until(p.current.Expiry) > refreshSkew
}

func (p *tokenProvider) fetch(ctx context.Context) (*oauth2.Token, error) {
	const op = "token"

	if err := p.throttle.wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	ctx = context.WithValue(ctxutil.Default(ctx), oauth2.HTTPClient, p.http)
	tok, err := p.cfg.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			err = &OperationError{
				Code:       OperationErrorAuthFailed,
				Operation:  op,
				StatusCode: status,
				Message:    fmt.Sprintf("token endpoint status=%d body=%q", status, truncateBody(retrieveErr.Body)),
				Cause:      err,
			}
		} else {
			err = classifyCallError(op, "token request failed", err)
		}
		if metrics := observability.Current(); metrics != nil {
			metrics.ObserveRemoteCall(op, metricStatus(err), time.Since(start))
		}
		return nil, err
	}
	if metrics := observability.Current(); metrics != nil {
		metrics.ObserveRemoteCall(op, "ok", time.Since(start))
	}
	if strings.TrimSpace(tok.AccessToken) == "" {
		return nil, opErr(op, OperationErrorAuthFailed, "token endpoint returned empty access_token", nil)
	}

	if tok.Expiry.IsZero() {
		p.log.Debug("Sciforma token acquired", "expires", "unspecified")
	} else {
		p.log.Debug("Sciforma token acquired", "expires_in", time.Until(tok.Expiry).Truncate(time.Second).String())
	}
	return tok, nil
}
