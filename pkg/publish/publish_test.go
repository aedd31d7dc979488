package publish

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"s3://bucket", Target{Bucket: "bucket"}, false},
		{"s3://bucket/", Target{Bucket: "bucket"}, false},
		{"s3://bucket/site/atlas/", Target{Bucket: "bucket", Prefix: "site/atlas"}, false},
		{"gs://bucket", Target{}, true},
		{"s3://", Target{}, true},
		{"bucket/prefix", Target{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTarget(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTarget(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTargetKey(t *testing.T) {
	if got := (Target{Bucket: "b"}).Key("svg"); got != "atlas.svg" {
		t.Errorf("Key = %q", got)
	}
	tgt := Target{Bucket: "b", Prefix: "public/map"}
	if got := tgt.Key("json"); got != "public/map/atlas.json" {
		t.Errorf("Key = %q", got)
	}
	if got := tgt.String(); got != "s3://b/public/map" {
		t.Errorf("String = %q", got)
	}
}

type putRecord struct {
	path         string
	contentType  string
	cacheControl string
	version      string
	body         string
}

func fakeS3(t *testing.T, fail bool) (*httptest.Server, *[]putRecord) {
	t.Helper()
	var mu sync.Mutex
	var puts []putRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "unexpected", http.StatusMethodNotAllowed)
			return
		}
		if fail {
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, `<?xml version="1.0"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		puts = append(puts, putRecord{
			path:         r.URL.Path,
			contentType:  r.Header.Get("Content-Type"),
			cacheControl: r.Header.Get("Cache-Control"),
			version:      r.Header.Get("X-Amz-Meta-Atlas-Version"),
			body:         string(body),
		})
		mu.Unlock()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &puts
}

func newTestPublisher(t *testing.T, endpoint string) *Publisher {
	t.Helper()
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	p, err := New(context.Background(), Target{Bucket: "atlas-bucket", Prefix: "site"}, Options{
		Region:          "us-east-1",
		Endpoint:        endpoint,
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	}, log.New(io.Discard))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestPublish(t *testing.T) {
	srv, puts := fakeS3(t, false)
	p := newTestPublisher(t, srv.URL)

	objs, err := p.Publish(context.Background(), map[string][]byte{
		"svg":  []byte("<svg/>"),
		"json": []byte(`{"version":"v1"}`),
	}, "v1")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(objs) != 2 || objs[0].Format != "json" || objs[1].Format != "svg" {
		t.Fatalf("objects = %+v, want json then svg", objs)
	}
	if objs[1].URL != "s3://atlas-bucket/site/atlas.svg" {
		t.Errorf("URL = %q", objs[1].URL)
	}

	if len(*puts) != 2 {
		t.Fatalf("server saw %d puts, want 2", len(*puts))
	}
	svg := (*puts)[1]
	if svg.path != "/atlas-bucket/site/atlas.svg" {
		t.Errorf("path = %q", svg.path)
	}
	if !strings.HasPrefix(svg.contentType, "image/svg+xml") {
		t.Errorf("Content-Type = %q", svg.contentType)
	}
	if svg.cacheControl != "no-cache" {
		t.Errorf("Cache-Control = %q", svg.cacheControl)
	}
	if svg.version != "v1" {
		t.Errorf("version metadata = %q", svg.version)
	}
	if svg.body != "<svg/>" {
		t.Errorf("body = %q", svg.body)
	}
}

func TestPublishFailure(t *testing.T) {
	srv, _ := fakeS3(t, true)
	p := newTestPublisher(t, srv.URL)

	objs, err := p.Publish(context.Background(), map[string][]byte{"svg": []byte("<svg/>")}, "")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(objs) != 0 {
		t.Errorf("objects = %+v, want none", objs)
	}
}
