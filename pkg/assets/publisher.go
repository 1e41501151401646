package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client is the subset of the AWS S3 client the publisher needs.
// *s3.Client satisfies it.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads built asset bundles and their manifest to S3.
type Publisher struct {
	client       S3Client
	bucket       string
	prefix       string
	cacheControl string
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithCacheControl sets the Cache-Control header for uploaded assets.
// Fingerprinted assets default to a one-year immutable policy.
func WithCacheControl(value string) PublisherOption {
	return func(p *Publisher) {
		p.cacheControl = value
	}
}

// NewPublisher creates a publisher targeting bucket with an optional
// key prefix (e.g. "console/assets/").
func NewPublisher(client S3Client, bucket, prefix string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		client:       client,
		bucket:       bucket,
		prefix:       prefix,
		cacheControl: "public, max-age=31536000, immutable",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish uploads every manifest entry from dist and then the manifest
// itself. The manifest is uploaded last so a partially pushed bundle
// is never referenced, and with no-cache so clients pick it up fast.
func (p *Publisher) Publish(ctx context.Context, dist fs.FS, manifest *Manifest) error {
	for source, resolved := range manifest.All() {
		data, err := fs.ReadFile(dist, resolved)
		if err != nil {
			return fmt.Errorf("assets: read %s: %w", resolved, err)
		}
		if err := p.put(ctx, resolved, data, p.cacheControl); err != nil {
			return fmt.Errorf("assets: upload %s (for %s): %w", resolved, source, err)
		}
	}

	data, err := json.Marshal(manifest.All())
	if err != nil {
		return fmt.Errorf("assets: encode manifest: %w", err)
	}
	if err := p.put(ctx, "manifest.json", data, "no-cache"); err != nil {
		return fmt.Errorf("assets: upload manifest: %w", err)
	}
	return nil
}

func (p *Publisher) put(ctx context.Context, key string, data []byte, cacheControl string) error {
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(p.prefix + key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
		Metadata: map[string]string{
			"published-at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	return err
}
