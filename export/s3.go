package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jadedragon942/dbinspect/adapter"
)

const defaultRegion = "us-east-1"

// S3Location is a parsed "s3://bucket/prefix?region=...&endpoint=..." URL.
type S3Location struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

// ParseS3URL parses an S3 destination. The region defaults to us-east-1; an
// endpoint selects an S3 compatible service such as MinIO.
func ParseS3URL(raw string) (S3Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return S3Location{}, fmt.Errorf("invalid s3 url: %w", err)
	}
	if u.Scheme != "s3" {
		return S3Location{}, fmt.Errorf("invalid scheme: expected s3, got %s", u.Scheme)
	}
	if u.Host == "" {
		return S3Location{}, errors.New("s3 url must name a bucket")
	}

	loc := S3Location{
		Bucket:   u.Host,
		Prefix:   strings.TrimPrefix(u.Path, "/"),
		Region:   u.Query().Get("region"),
		Endpoint: u.Query().Get("endpoint"),
	}
	if loc.Prefix != "" && !strings.HasSuffix(loc.Prefix, "/") {
		loc.Prefix += "/"
	}
	if loc.Region == "" {
		loc.Region = defaultRegion
	}
	return loc, nil
}

// Key returns the object key for name under the location's prefix.
func (l S3Location) Key(name string) string {
	return l.Prefix + name
}

// IsS3URL reports whether dest names an S3 location rather than a directory.
func IsS3URL(dest string) bool {
	return strings.HasPrefix(dest, "s3://")
}

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Writer uploads snapshots to a bucket.
type S3Writer struct {
	loc      S3Location
	uploader uploader
	now      func() time.Time
}

// NewS3Writer loads the default AWS configuration for the location's region.
func NewS3Writer(ctx context.Context, rawURL string) (*S3Writer, error) {
	loc, err := ParseS3URL(rawURL)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(loc.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var options []func(*s3.Options)
	if loc.Endpoint != "" {
		options = append(options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(loc.Endpoint)
			o.UsePathStyle = true
		})
	}
	client := s3.NewFromConfig(cfg, options...)
	return newS3Writer(loc, manager.NewUploader(client)), nil
}

func newS3Writer(loc S3Location, u uploader) *S3Writer {
	return &S3Writer{loc: loc, uploader: u, now: time.Now}
}

func (w *S3Writer) Location() S3Location {
	return w.loc
}

func (w *S3Writer) Write(ctx context.Context, name string, data []byte, format Format) error {
	key := w.loc.Key(name)
	adapter.Logger().Debug().Str("bucket", w.loc.Bucket).Str("key", key).Msg("uploading snapshot")

	_, err := w.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.loc.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(format.ContentType()),
		Metadata: map[string]string{
			"dbinspect-format":    string(format),
			"dbinspect-timestamp": w.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to bucket %s: %w", key, w.loc.Bucket, err)
	}
	return nil
}
