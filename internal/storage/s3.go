// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides an S3-compatible object storage client for blog
// images. It wraps the AWS SDK v2 and is configured for path-style access
// so it works against any S3-compatible endpoint.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"consultblog/internal/slug"
)

// ImagePrefix is the key prefix under which post images are stored.
const ImagePrefix = "blog-images"

// Config holds the connection settings for the image bucket.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string // optional CDN/direct URL for public files
}

// Client wraps an S3 client for one public bucket.
type Client struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string
}

// New creates an S3 storage client with path-style addressing. Returns
// (nil, nil) if endpoint, credentials or bucket are empty, allowing the app
// to start without storage.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, nil
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:        s3Client,
		bucket:    cfg.Bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Upload stores a publicly readable object under key.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=3600"),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// Delete removes an object from the bucket.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// FileURL returns the public URL for key.
// Uses the configured public URL if set, otherwise builds a path-style URL.
func (c *Client) FileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}

// Bucket returns the name of the image bucket.
func (c *Client) Bucket() string {
	return c.bucket
}

// ExtractKey extracts the object key from a public file URL. Returns
// ("", false) if the URL does not belong to this storage.
func (c *Client) ExtractKey(rawURL string) (string, bool) {
	if c.publicURL != "" {
		prefix := c.publicURL + "/"
		if strings.HasPrefix(rawURL, prefix) {
			return rawURL[len(prefix):], true
		}
	}

	prefix := c.endpoint + "/" + c.bucket + "/"
	if strings.HasPrefix(rawURL, prefix) {
		return rawURL[len(prefix):], true
	}

	return "", false
}

// ObjectKey builds a collision-resistant key for an uploaded image:
// blog-images/{unix millis}-{suffix}-{slugified name}{.ext}. An empty
// suffix is replaced by eight random hex characters.
func ObjectKey(filename string, now time.Time, suffix string) string {
	if suffix == "" {
		suffix = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}

	ext := strings.ToLower(path.Ext(filename))
	base := slug.Generate(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	if base == "" {
		base = "image"
	}
	// Only keep extensions that are plain alphanumerics.
	if slug.Generate(strings.TrimPrefix(ext, ".")) != strings.TrimPrefix(ext, ".") {
		ext = ""
	}

	return fmt.Sprintf("%s/%d-%s-%s%s", ImagePrefix, now.UnixMilli(), suffix, base, ext)
}
