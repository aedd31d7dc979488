// Package publish uploads rendered atlas artifacts to S3-compatible storage.
//
// A target is written as s3://bucket/prefix. Each artifact is stored under
// prefix/atlas.<format> with its content type, so a static site or CDN can
// serve the latest snapshot directly from the bucket.
package publish

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/render"
)

// DefaultRegion is used when neither the options nor the AWS environment name one.
const DefaultRegion = "us-east-1"

// BaseName is the file stem of every uploaded artifact.
const BaseName = "atlas"

// Target is a parsed s3://bucket/prefix URL.
type Target struct {
	Bucket string
	Prefix string
}

// String returns the target in s3:// form.
func (t Target) String() string {
	if t.Prefix == "" {
		return "s3://" + t.Bucket
	}
	return "s3://" + t.Bucket + "/" + t.Prefix
}

// Key returns the object key for an artifact format.
func (t Target) Key(format string) string {
	name := BaseName + "." + format
	if t.Prefix == "" {
		return name
	}
	return path.Join(t.Prefix, name)
}

// ParseTarget parses an s3://bucket/prefix URL.
func ParseTarget(raw string) (Target, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return Target{}, errors.New(errors.ErrCodeInvalidInput, "invalid publish target %q (want s3://bucket/prefix)", raw)
	}
	return Target{Bucket: u.Host, Prefix: strings.Trim(u.Path, "/")}, nil
}

// Options configures the S3 client.
type Options struct {
	Region   string
	Endpoint string // optional; e.g. a MinIO URL
	// PathStyle addresses buckets as endpoint/bucket rather than bucket.endpoint.
	PathStyle bool

	// Static credentials; when empty the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// CacheControl is set on every object. Empty means "no-cache".
	CacheControl string
}

// Publisher writes artifacts to one target.
type Publisher struct {
	client       *s3.Client
	target       Target
	cacheControl string
	logger       *log.Logger
	now          func() time.Time
}

// New builds a Publisher from the default AWS configuration.
func New(ctx context.Context, target Target, opts Options, logger *log.Logger, optFns ...func(*s3.Options)) (*Publisher, error) {
	region := opts.Region
	if region == "" {
		region = DefaultRegion
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load AWS config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = opts.PathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		for _, fn := range optFns {
			fn(o)
		}
	})
	return NewFromClient(client, target, opts.CacheControl, logger), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *s3.Client, target Target, cacheControl string, logger *log.Logger) *Publisher {
	if cacheControl == "" {
		cacheControl = "no-cache"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{client: client, target: target, cacheControl: cacheControl, logger: logger, now: time.Now}
}

// Target returns the destination.
func (p *Publisher) Target() Target { return p.target }

// Object describes one uploaded artifact.
type Object struct {
	Format string
	Key    string
	URL    string
	Size   int
}

// Publish uploads every artifact, in format order. The version, when not
// empty, is attached as x-amz-meta-atlas-version. It stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, artifacts map[string][]byte, version string) ([]Object, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	slices.Sort(formats)

	meta := map[string]string{"published-at": p.now().UTC().Format(time.RFC3339)}
	if version != "" {
		meta["atlas-version"] = version
	}

	out := make([]Object, 0, len(formats))
	for _, f := range formats {
		data := artifacts[f]
		key := p.target.Key(f)
		contentType := "application/octet-stream"
		if format, err := render.ParseFormat(f); err == nil {
			contentType = format.ContentType()
		}

		_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(p.target.Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
			ContentType:   aws.String(contentType),
			CacheControl:  aws.String(p.cacheControl),
			Metadata:      meta,
		})
		if err != nil {
			return out, errors.Wrap(errors.ErrCodeUpstreamStatus, err, "upload %s", key)
		}
		p.logger.Debug("published artifact", "key", key, "bytes", len(data))
		out = append(out, Object{Format: f, Key: key, URL: "s3://" + p.target.Bucket + "/" + key, Size: len(data)})
	}
	return out, nil
}
