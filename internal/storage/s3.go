// Package storage uploads expense attachments to an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/metrics"
)

const (
	MaxUploadSize = 10 << 20
	DefaultBucket = "archivos"
	keyPrefix     = "egresos/"
)

var ErrTooLarge = errors.New("file exceeds the upload limit")

type Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	PublicURL    string
	UsePathStyle bool
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3 struct {
	client    objectPutter
	bucket    string
	publicURL string
	now       func() time.Time
}

// New builds the uploader. It returns ErrStorageDisabled when the bucket or the
// credentials are missing.
func New(ctx context.Context, cfg Config) (*S3, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, domain.ErrStorageDisabled
	}
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = DefaultBucket
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("New: aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(strings.TrimRight(cfg.Endpoint, "/"))
		}
	})

	public := cfg.PublicURL
	if public == "" {
		switch {
		case cfg.Endpoint != "":
			public = strings.TrimRight(cfg.Endpoint, "/") + "/" + bucket
		default:
			public = "https://" + bucket + ".s3." + region + ".amazonaws.com"
		}
	}

	return newS3(client, bucket, public), nil
}

func newS3(client objectPutter, bucket, publicURL string) *S3 {
	return &S3{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

// Upload stores the file under egresos/ and returns its public URL.
func (s *S3) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		metrics.Uploads.WithLabelValues("error").Inc()
		return "", fmt.Errorf("Upload: read: %w", err)
	}
	if len(body) > MaxUploadSize {
		metrics.Uploads.WithLabelValues("too_large").Inc()
		return "", fmt.Errorf("Upload: %w", ErrTooLarge)
	}

	suffix, err := randomSuffix(6)
	if err != nil {
		return "", fmt.Errorf("Upload: %w", err)
	}
	key := ObjectKey(s.now(), filename, suffix)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		metrics.Uploads.WithLabelValues("error").Inc()
		return "", fmt.Errorf("Upload: put %s: %w", key, err)
	}

	metrics.Uploads.WithLabelValues("ok").Inc()
	return s.publicURL + "/" + key, nil
}

// ObjectKey builds egresos/<unix millis>-<suffix>.<ext>.
func ObjectKey(now time.Time, filename, suffix string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "bin"
	}
	return keyPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix + "." + strings.ToLower(ext)
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomSuffix(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(base36)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random suffix: %w", err)
		}
		b[i] = base36[v.Int64()]
	}
	return string(b), nil
}
