// Package profile checks that a submitted profile link points at a live page
// on an allowed domain.
//
// Validation is a two step affair. The URL is parsed and its host checked
// against [Validator.AllowedDomains] without any network traffic; only then is
// the page probed, HEAD first and GET as a fallback for servers that reject
// HEAD. Probing is bounded by [Validator.Timeout] across both requests.
package profile

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/cache"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/observability"
)

// Defaults.
const (
	DefaultDomain    = "ns.com"
	DefaultTimeout   = 5 * time.Second
	DefaultUserAgent = "NS-Startup-Atlas/1.0 (Profile Validator)"
)

// Status classifies a validation outcome.
type Status string

const (
	StatusValid         Status = "valid"
	StatusInvalidFormat Status = "invalid-format"
	StatusWrongDomain   Status = "wrong-domain"
	StatusUnreachable   Status = "unreachable"
	StatusErrorStatus   Status = "error-status"
)

// Result is the outcome of [Validator.Validate].
type Result struct {
	Status     Status `json:"status"`
	Valid      bool   `json:"valid"`
	Message    string `json:"error,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// Err returns the outcome as a structured error, or nil when valid.
func (r Result) Err() error {
	switch r.Status {
	case StatusValid:
		return nil
	case StatusInvalidFormat:
		return errors.New(errors.ErrCodeInvalidURL, "%s", r.Message)
	case StatusWrongDomain:
		return errors.New(errors.ErrCodeWrongDomain, "%s", r.Message)
	case StatusErrorStatus:
		if r.StatusCode == http.StatusNotFound {
			return errors.New(errors.ErrCodeNotFound, "%s", r.Message)
		}
		return errors.New(errors.ErrCodeUpstreamStatus, "%s", r.Message)
	default:
		if r.Message == msgTimeout {
			return errors.New(errors.ErrCodeTimeout, "%s", r.Message)
		}
		return errors.New(errors.ErrCodeNetwork, "%s", r.Message)
	}
}

const (
	msgNotFound = "Profile not found"
	msgTimeout  = "Request timed out"
	msgNoVerify = "Could not verify profile"
)

// Validator checks profile URLs.
type Validator struct {
	// AllowedDomains lists the hosts a profile may live on. Subdomains of
	// an allowed domain are accepted too.
	AllowedDomains []string
	Timeout        time.Duration
	UserAgent      string
	HTTP           *http.Client
	Logger         *log.Logger

	// Cache, when set, remembers definitive outcomes (valid and
	// error-status) for cache.ProfileTTL. Unreachable outcomes are retried.
	Cache cache.Cache
	Keyer cache.Keyer
}

// NewValidator creates a validator with the default domain, timeout and user
// agent.
func NewValidator(logger *log.Logger) *Validator {
	if logger == nil {
		logger = log.Default()
	}
	return &Validator{
		AllowedDomains: []string{DefaultDomain},
		Timeout:        DefaultTimeout,
		UserAgent:      DefaultUserAgent,
		HTTP:           &http.Client{},
		Logger:         logger,
	}
}

// Validate checks raw and probes it. It never returns an error: every
// failure is described by the result.
func (v *Validator) Validate(ctx context.Context, raw string) Result {
	start := time.Now()
	res := v.validate(ctx, raw)
	observability.Profile().OnProfileCheck(ctx, string(res.Status), time.Since(start))
	v.logger().Debug("profile checked", "status", res.Status, "code", res.StatusCode)
	return res
}

func (v *Validator) validate(ctx context.Context, raw string) Result {
	u, err := errors.ValidateURL(raw)
	if err != nil {
		return Result{Status: StatusInvalidFormat, Message: errors.UserMessage(err)}
	}
	if !v.allowed(u.Hostname()) {
		return Result{Status: StatusWrongDomain, Message: "URL must be from " + strings.Join(v.domains(), " or ")}
	}
	target := u.String()

	key := ""
	if v.Cache != nil {
		key = v.keyer().ProfileKey(target)
		if data, ok, err := v.Cache.Get(ctx, key); err == nil && ok {
			var cached Result
			if json.Unmarshal(data, &cached) == nil {
				observability.Cache().OnCacheHit(ctx, "profile")
				return cached
			}
		}
		observability.Cache().OnCacheMiss(ctx, "profile")
	}

	res := v.probe(ctx, target)
	if key != "" && res.Status != StatusUnreachable {
		if data, err := json.Marshal(res); err == nil {
			if err := v.Cache.Set(ctx, key, data, cache.ProfileTTL); err == nil {
				observability.Cache().OnCacheSet(ctx, "profile", len(data))
			}
		}
	}
	return res
}

// probe issues HEAD, falling back to GET when HEAD fails or is refused.
func (v *Validator) probe(ctx context.Context, target string) Result {
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	code, err := v.do(ctx, http.MethodHead, target)
	if err != nil && ctx.Err() == nil || code == http.StatusMethodNotAllowed || code == http.StatusNotImplemented {
		v.logger().Debug("HEAD refused, retrying with GET", "code", code, "error", err)
		code, err = v.do(ctx, http.MethodGet, target)
	}
	if err != nil {
		if isTimeout(ctx, err) {
			return Result{Status: StatusUnreachable, Message: msgTimeout}
		}
		v.logger().Warn("profile check failed", "error", err)
		return Result{Status: StatusUnreachable, Message: msgNoVerify}
	}

	switch {
	case code >= 200 && code < 300:
		return Result{Status: StatusValid, Valid: true, StatusCode: code}
	case code == http.StatusNotFound:
		return Result{Status: StatusErrorStatus, Message: msgNotFound, StatusCode: code}
	default:
		return Result{Status: StatusErrorStatus, Message: fmt.Sprintf("Server returned %d", code), StatusCode: code}
	}
}

func (v *Validator) do(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	ua := v.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	client := v.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (v *Validator) allowed(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, d := range v.domains() {
		d = strings.ToLower(d)
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func (v *Validator) domains() []string {
	if len(v.AllowedDomains) == 0 {
		return []string{DefaultDomain}
	}
	return v.AllowedDomains
}

func (v *Validator) keyer() cache.Keyer {
	if v.Keyer == nil {
		return cache.NewDefaultKeyer()
	}
	return v.Keyer
}

func (v *Validator) logger() *log.Logger {
	if v.Logger == nil {
		return log.Default()
	}
	return v.Logger
}

func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() == context.DeadlineExceeded {
		return true
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}
