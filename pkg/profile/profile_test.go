package profile

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/cache"
	"github.com/matzehuels/atlas/pkg/errors"
)

func testValidator() *Validator {
	v := NewValidator(log.NewWithOptions(io.Discard, log.Options{}))
	v.AllowedDomains = []string{"127.0.0.1"}
	return v
}

func TestValidateOffline(t *testing.T) {
	v := NewValidator(log.NewWithOptions(io.Discard, log.Options{}))
	tests := []struct {
		raw    string
		status Status
		msg    string
	}{
		{"", StatusInvalidFormat, "URL is required"},
		{"not a url", StatusInvalidFormat, "Invalid URL format"},
		{"ftp://ns.com/x", StatusInvalidFormat, "Invalid URL format"},
		{"https://example.com/u/alice", StatusWrongDomain, "URL must be from ns.com"},
		{"https://evilns.com/u/alice", StatusWrongDomain, "URL must be from ns.com"},
		{"https://ns.com.evil.io/u/alice", StatusWrongDomain, "URL must be from ns.com"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := v.Validate(context.Background(), tt.raw)
			if got.Status != tt.status || got.Message != tt.msg || got.Valid {
				t.Errorf("Validate(%q) = %+v", tt.raw, got)
			}
		})
	}
}

func TestAllowedSubdomains(t *testing.T) {
	v := NewValidator(nil)
	for host, want := range map[string]bool{
		"ns.com":         true,
		"NS.com":         true,
		"www.ns.com":     true,
		"a.b.ns.com":     true,
		"ns.com.":        true,
		"xns.com":        false,
		"ns.co":          false,
		"ns.com.evil.io": false,
	} {
		if got := v.allowed(host); got != want {
			t.Errorf("allowed(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestValidateProbe(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		status   Status
		msg      string
		wantCode int
	}{
		{
			name: "ok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("User-Agent") != DefaultUserAgent {
					t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
				}
			},
			status: StatusValid, wantCode: 200,
		},
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(404) },
			status:  StatusErrorStatus, msg: "Profile not found", wantCode: 404,
		},
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(503) },
			status:  StatusErrorStatus, msg: "Server returned 503", wantCode: 503,
		},
		{
			name: "head refused",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodHead {
					w.WriteHeader(http.StatusMethodNotAllowed)
				}
			},
			status: StatusValid, wantCode: 200,
		},
		{
			name: "redirect followed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/old" {
					http.Redirect(w, r, "/new", http.StatusMovedPermanently)
				}
			},
			status: StatusValid, wantCode: 200,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			got := testValidator().Validate(context.Background(), srv.URL+"/old")
			if got.Status != tt.status || got.Message != tt.msg || got.StatusCode != tt.wantCode {
				t.Errorf("Validate() = %+v", got)
			}
			if got.Valid != (tt.status == StatusValid) {
				t.Errorf("Valid = %v", got.Valid)
			}
		})
	}
}

func TestValidateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	v := testValidator()
	v.Timeout = 50 * time.Millisecond
	got := v.Validate(context.Background(), srv.URL)
	if got.Status != StatusUnreachable || got.Message != "Request timed out" {
		t.Errorf("Validate() = %+v", got)
	}
	if !errors.Is(got.Err(), errors.ErrCodeTimeout) {
		t.Errorf("Err() = %v", got.Err())
	}
}

func TestValidateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	got := testValidator().Validate(context.Background(), url)
	if got.Status != StatusUnreachable || got.Message != "Could not verify profile" {
		t.Errorf("Validate() = %+v", got)
	}
}

func TestValidateCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(404)
	}))
	defer srv.Close()

	v := testValidator()
	v.Cache = cache.NewMemoryCache()
	for range 3 {
		if got := v.Validate(context.Background(), srv.URL+"/u/bob"); got.Message != "Profile not found" {
			t.Fatalf("Validate() = %+v", got)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestResultErr(t *testing.T) {
	tests := []struct {
		res  Result
		code errors.Code
	}{
		{Result{Status: StatusInvalidFormat, Message: "Invalid URL format"}, errors.ErrCodeInvalidURL},
		{Result{Status: StatusWrongDomain, Message: "URL must be from ns.com"}, errors.ErrCodeWrongDomain},
		{Result{Status: StatusErrorStatus, Message: "Profile not found", StatusCode: 404}, errors.ErrCodeNotFound},
		{Result{Status: StatusErrorStatus, Message: "Server returned 500", StatusCode: 500}, errors.ErrCodeUpstreamStatus},
		{Result{Status: StatusUnreachable, Message: "Could not verify profile"}, errors.ErrCodeNetwork},
	}
	for _, tt := range tests {
		if got := errors.GetCode(tt.res.Err()); got != tt.code {
			t.Errorf("%s: code = %s, want %s", tt.res.Status, got, tt.code)
		}
	}
	if (Result{Status: StatusValid, Valid: true}).Err() != nil {
		t.Error("valid result has an error")
	}
}
