package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// DefaultRootPrefix is the key prefix under which all tenant objects live.
const DefaultRootPrefix = "tenants/"

// S3Client is the subset of the S3 API used by this package. Narrowed to an
// interface so tests can substitute a fake client.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Config contains S3 connection settings.
type Config struct {
	Bucket         string `env:"STORAGE_S3_BUCKET,required"`
	Region         string `env:"STORAGE_S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"STORAGE_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"STORAGE_S3_SECRET_KEY"`
	Endpoint       string `env:"STORAGE_S3_ENDPOINT"`                        // Endpoint overrides the AWS endpoint for S3-compatible services.
	ForcePathStyle bool   `env:"STORAGE_S3_FORCE_PATH_STYLE" envDefault:"false"` // ForcePathStyle is required by MinIO and most compatibles.
	RootPrefix     string `env:"STORAGE_S3_ROOT_PREFIX" envDefault:"tenants/"`
}

// Storage is the bucket-wide handle. Safe for concurrent use.
type Storage struct {
	client S3Client
	bucket string
	root   string
}

// Option configures Storage construction.
type Option func(*Storage)

// WithClient substitutes a pre-configured S3 client. Used by tests.
func WithClient(client S3Client) Option {
	return func(s *Storage) {
		s.client = client
	}
}

// New builds a Storage from config, constructing an S3 client unless one is
// injected via WithClient.
func New(ctx context.Context, cfg Config, opts ...Option) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, ErrMissingBucket
	}

	root := cfg.RootPrefix
	if root == "" {
		root = DefaultRootPrefix
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}

	s := &Storage{bucket: cfg.Bucket, root: root}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		loadOpts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, err
		}
		s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return s, nil
}

// ForTenant returns a view of the bucket restricted to the tenant's prefix.
// The prefix is derived deterministically from the slug.
func (s *Storage) ForTenant(slug string) *TenantStore {
	return &TenantStore{
		client: s.client,
		bucket: s.bucket,
		prefix: s.root + slug + "/",
	}
}

// TenantStore addresses only objects under one tenant's key prefix.
type TenantStore struct {
	client S3Client
	bucket string
	prefix string
}

// Prefix returns the tenant's key prefix, e.g. "tenants/acme/".
func (t *TenantStore) Prefix() string {
	return t.prefix
}

func (t *TenantStore) key(name string) string {
	return t.prefix + strings.TrimPrefix(name, "/")
}

// Put uploads an object under the tenant prefix.
func (t *TenantStore) Put(ctx context.Context, name string, body io.Reader, contentType string) error {
	_, err := t.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(t.bucket),
		Key:         aws.String(t.key(name)),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return errors.Join(ErrUploadFailed, err)
	}
	return nil
}

// Get streams an object. The caller owns the returned reader.
func (t *TenantStore) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := t.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(name)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

// Delete removes a single object. Deleting a missing object is not an error.
func (t *TenantStore) Delete(ctx context.Context, name string) error {
	_, err := t.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(name)),
	})
	if err != nil {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}

// List returns object names (relative to the tenant prefix) under the given
// subprefix.
func (t *TenantStore) List(ctx context.Context, subprefix string) ([]string, error) {
	var names []string
	var token *string

	for {
		out, err := t.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(t.bucket),
			Prefix:            aws.String(t.key(subprefix)),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, errors.Join(ErrListFailed, err)
		}
		for _, obj := range out.Contents {
			names = append(names, strings.TrimPrefix(aws.ToString(obj.Key), t.prefix))
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			return names, nil
		}
		token = out.NextContinuationToken
	}
}

// Purge deletes every object under the tenant prefix. Used during tenant
// teardown; idempotent on an already-empty prefix.
func (t *TenantStore) Purge(ctx context.Context) error {
	var token *string

	for {
		out, err := t.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(t.bucket),
			Prefix:            aws.String(t.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return errors.Join(ErrListFailed, err)
		}

		if len(out.Contents) > 0 {
			objects := make([]types.ObjectIdentifier, len(out.Contents))
			for i, obj := range out.Contents {
				objects[i] = types.ObjectIdentifier{Key: obj.Key}
			}
			if _, err := t.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(t.bucket),
				Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
			}); err != nil {
				return errors.Join(ErrDeleteFailed, err)
			}
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			return nil
		}
		token = out.NextContinuationToken
	}
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}
