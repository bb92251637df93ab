package sciforma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/orgsync-backend/internal/observability"
	"github.com/yungbote/orgsync-backend/internal/platform/ctxutil"
	"github.com/yungbote/orgsync-backend/internal/platform/httpx"
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
)

const maxErrorBodyBytes = 1024

// Client talks to the Sciforma organization API. Every call is throttled,
// authenticated with a cached client-credentials token, and retried with
// exponential backoff on transient failures. A 401 invalidates the cached
// token and re-authenticates exactly once before giving up.
type Client interface {
	// LookupOrganizationByDescription returns the first organization whose
	// description matches, or (nil, nil) when the remote has no match.
	LookupOrganizationByDescription(ctx context.Context, description string) (*Organization, error)
	CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*Organization, error)
	PatchOrganization(ctx context.Context, id int64, req PatchOrganizationRequest) error
}

// Organization is the normalized remote record.
type Organization struct {
	ID          int64
	Name        string
	Description string
}

// CreateOrganizationRequest creates a record under ParentID. The remote
// places new records in the "last/unordered" slot; ordering is applied later
// via PatchOrganization.
type CreateOrganizationRequest struct {
	ParentID    int64
	Name        string
	Description string
}

// PatchOrganizationRequest is a merge patch: nil fields are left untouched
// by the remote. An all-nil patch is acknowledged locally without a call.
type PatchOrganizationRequest struct {
	ParentID      *int64
	Name          *string
	NextSiblingID *int64
	Code          *string
}

func (r PatchOrganizationRequest) empty() bool {
	return r.ParentID == nil && r.Name == nil && r.NextSiblingID == nil && r.Code == nil
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	cfg, err := ResolveConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return New(log, cfg)
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if strings.TrimSpace(cfg.Scope) == "" {
		cfg.Scope = DefaultScope
	}

	th := newThrottle(cfg.RateLimitRPS)
	tokens, err := newTokenProvider(log, cfg, th)
	if err != nil {
		return nil, err
	}

	log.Info(
		"Sciforma client configured",
		"base_url", strings.TrimRight(cfg.BaseURL, "/"),
		"timeout", cfg.Timeout.String(),
		"max_retries", cfg.MaxRetries,
		"rate_limit_rps", cfg.RateLimitRPS,
	)

	return &client{
		log:        log.With("client", "SciformaClient"),
		cfg:        cfg,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     tokens,
		throttle:   th,
		maxRetries: cfg.MaxRetries,
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	throttle   *throttle
	maxRetries int
}

func (c *client) LookupOrganizationByDescription(ctx context.Context, description string) (*Organization, error) {
	const op = "lookup"
	if c == nil || c.httpClient == nil {
		return nil, opErr(op, OperationErrorValidation, "sciforma client unavailable", nil)
	}
	desc := strings.TrimSpace(description)
	if desc == "" {
		return nil, opErr(op, OperationErrorValidation, "description is required", nil)
	}

	query := url.Values{"description": []string{desc}}
	_, raw, err := c.do(ctx, op, http.MethodGet, "/organizations?"+query.Encode(), "", nil)
	if err != nil {
		// A remote that answers no-match lookups with 404 still means
		// "absent", not a failed run.
		var opErrTyped *OperationError
		if errors.As(err, &opErrTyped) && opErrTyped.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	return decodeFirstOrganization(op, raw)
}

func (c *client) CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*Organization, error) {
	const op = "create"
	if c == nil || c.httpClient == nil {
		return nil, opErr(op, OperationErrorValidation, "sciforma client unavailable", nil)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		return nil, opErr(op, OperationErrorValidation, "name is required", nil)
	}
	if req.Description == "" {
		return nil, opErr(op, OperationErrorValidation, "description is required", nil)
	}

	wire := createOrganizationWire{
		ParentID:      req.ParentID,
		Name:          req.Name,
		Description:   req.Description,
		NextSiblingID: NoSiblingOnWire,
	}
	body, err := json.Marshal(wire)
	if err != nil {
		return nil, opErr(op, OperationErrorEncodeFailed, "encode create request failed", err)
	}

	_, raw, err := c.do(ctx, op, http.MethodPost, "/organizations", "application/json", body)
	if err != nil {
		return nil, err
	}

	org, err := decodeFirstOrganization(op, raw)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, opErr(op, OperationErrorDecodeFailed, "create response missing organization id", nil)
	}
	return org, nil
}

func (c *client) PatchOrganization(ctx context.Context, id int64, req PatchOrganizationRequest) error {
	const op = "patch"
	if c == nil || c.httpClient == nil {
		return opErr(op, OperationErrorValidation, "sciforma client unavailable", nil)
	}
	if id <= 0 {
		return opErr(op, OperationErrorValidation, fmt.Sprintf("organization id must be positive, got %d", id), nil)
	}
	if req.empty() {
		c.log.Debug("Sciforma patch skipped, no fields to change", "organization_id", id)
		return nil
	}

	wire := patchOrganizationWire{
		ParentID:      req.ParentID,
		Name:          req.Name,
		NextSiblingID: req.NextSiblingID,
		Code:          req.Code,
	}
	body, err := json.Marshal(wire)
	if err != nil {
		return opErr(op, OperationErrorEncodeFailed, "encode patch request failed", err)
	}

	path := "/organizations/" + strconv.FormatInt(id, 10)
	// The remote answers a patch with either the updated record or an empty
	// acknowledgement; both count as success and neither is decoded.
	_, _, err = c.do(ctx, op, http.MethodPatch, path, "application/merge-patch+json", body)
	return err
}

// --- wire types ---

// NoSiblingOnWire is the remote's "last/unordered" ordering slot marker,
// stamped on every create.
const NoSiblingOnWire int64 = -10

type createOrganizationWire struct {
	ParentID      int64  `json:"parent_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	NextSiblingID int64  `json:"next_sibling_id"`
}

type patchOrganizationWire struct {
	ParentID      *int64  `json:"parent_id,omitempty"`
	Name          *string `json:"name,omitempty"`
	NextSiblingID *int64  `json:"next_sibling_id,omitempty"`
	Code          *string `json:"code,omitempty"`
}

type wireOrganization struct {
	ID          wireID `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// wireID tolerates numeric and quoted identifiers; some deployments return
// ids as strings.
type wireID struct {
	raw string
}

func (w *wireID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	if s == "null" {
		s = ""
	}
	w.raw = strings.TrimSpace(s)
	return nil
}

func (w wireID) empty() bool { return w.raw == "" }

func (w wireID) int64() (int64, error) {
	return strconv.ParseInt(w.raw, 10, 64)
}

// decodeFirstOrganization accepts either a JSON array of records or a single
// record, returning the first one. An empty body, empty array, or a first
// record without an id all mean "no match".
func decodeFirstOrganization(op string, raw []byte) (*Organization, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var first wireOrganization
	if strings.HasPrefix(trimmed, "[") {
		var list []wireOrganization
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, opErr(op, OperationErrorDecodeFailed, "decode organizations response failed", err)
		}
		if len(list) == 0 {
			return nil, nil
		}
		first = list[0]
	} else {
		if err := json.Unmarshal(raw, &first); err != nil {
			return nil, opErr(op, OperationErrorDecodeFailed, "decode organization response failed", err)
		}
	}

	if first.ID.empty() {
		return nil, nil
	}
	id, err := first.ID.int64()
	if err != nil {
		return nil, opErr(op, OperationErrorDecodeFailed, fmt.Sprintf("organization id %q is not an integer", first.ID.raw), err)
	}
	if id <= 0 {
		// A non-positive identifier is not a usable target; callers treat
		// the record as absent.
		return nil, nil
	}
	return &Organization{
		ID:          id,
		Name:        first.Name,
		Description: first.Description,
	}, nil
}

// --- HTTP / retry helpers ---

func (c *client) do(ctx context.Context, op, method, path, contentType string, body []byte) (*http.Response, []byte, error) {
	backoff := 1 * time.Second
	reauthed := false
	attempt := 0
	start := time.Now()

	for {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		if err := c.throttle.wait(ctx); err != nil {
			return nil, nil, err
		}

		resp, raw, err := c.doOnce(ctx, op, method, path, contentType, body)
		if err == nil {
			if metrics := observability.Current(); metrics != nil {
				metrics.ObserveRemoteCall(op, strconv.Itoa(resp.StatusCode), time.Since(start))
			}
			return resp, raw, nil
		}

		if isAuthFailure(err) {
			if reauthed {
				if metrics := observability.Current(); metrics != nil {
					metrics.ObserveRemoteCall(op, metricStatus(err), time.Since(start))
				}
				return nil, nil, err
			}
			reauthed = true
			c.tokens.Invalidate()
			c.log.Warn("Sciforma auth rejected, re-authenticating once",
				"op", op,
				"path", path,
			)
			continue
		}

		if !isRetryableCall(err) || attempt == c.maxRetries {
			if metrics := observability.Current(); metrics != nil {
				metrics.ObserveRemoteCall(op, metricStatus(err), time.Since(start))
			}
			return nil, nil, err
		}

		if metrics := observability.Current(); metrics != nil {
			metrics.IncRemoteRetry(op)
		}
		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("Sciforma request retrying",
			"op", op,
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
		attempt++
	}
}

func (c *client) doOnce(ctx context.Context, op, method, path, contentType string, body []byte) (*http.Response, []byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, opErr(op, OperationErrorTransportFailed, "build request failed", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, classifyCallError(op, "sciforma request failed", err)
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, opErr(op, OperationErrorDecodeFailed, "read response failed", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, statusError(op, resp.StatusCode, raw)
	}
	return resp, raw, nil
}

func statusError(op string, status int, raw []byte) error {
	code := OperationErrorRemoteRejected
	switch {
	case status == http.StatusUnauthorized:
		code = OperationErrorAuthFailed
	case httpx.IsRetryableHTTPStatus(status):
		code = OperationErrorTransientUnavailable
	}
	return &OperationError{
		Code:       code,
		Operation:  op,
		StatusCode: status,
		Message:    fmt.Sprintf("sciforma http status=%d body=%q", status, truncateBody(raw)),
	}
}

func isAuthFailure(err error) bool {
	var opErrTyped *OperationError
	return errors.As(err, &opErrTyped) && opErrTyped.Code == OperationErrorAuthFailed
}

// metricStatus is the status label for a failed call: the HTTP status when
// the remote answered, otherwise the failure class.
func metricStatus(err error) string {
	var opErrTyped *OperationError
	if errors.As(err, &opErrTyped) {
		if opErrTyped.StatusCode > 0 {
			return strconv.Itoa(opErrTyped.StatusCode)
		}
		return string(opErrTyped.Code)
	}
	return "error"
}

func isRetryableCall(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var opErrTyped *OperationError
	if errors.As(err, &opErrTyped) {
		switch opErrTyped.Code {
		case OperationErrorTimeout, OperationErrorTransportFailed, OperationErrorTransientUnavailable:
			return true
		default:
			return false
		}
	}
	return httpx.IsRetryableError(err)
}

func truncateBody(raw []byte) string {
	if len(raw) <= maxErrorBodyBytes {
		return string(raw)
	}
	return string(raw[:maxErrorBodyBytes]) + "..."
}
