package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"twarchive/internal/archive"
)

// S3Store stores blobs as objects in an S3 bucket, keyed by digest under an
// optional prefix. It works against AWS and S3-compatible services (MinIO,
// Backblaze B2) via a custom endpoint.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// S3Options configures an S3Store. AccessKeyID and SecretAccessKey are
// optional: when empty the default AWS credential chain is used.
type S3Options struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Store creates a blob store backed by the given bucket.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 blob store requires a bucket")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			// S3-compatible services rarely support virtual-hosted buckets.
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   opts.Bucket,
		prefix:   opts.Prefix,
	}, nil
}

func (s *S3Store) key(digest string) string {
	if s.prefix == "" {
		return digest
	}
	return s.prefix + "/" + digest
}

// Put stores content under its digest. Uploading the same digest twice
// overwrites the object with identical bytes, which is safe.
func (s *S3Store) Put(digest string, r io.Reader, size int64) error {
	_, err := s.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(digest)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading blob %s: %w", digest, err)
	}
	return nil
}

// Get retrieves content by digest and writes it to w.
func (s *S3Store) Get(digest string, w io.Writer) error {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(digest)),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return fmt.Errorf("blob not found: %s", digest)
		}
		return fmt.Errorf("downloading blob %s: %w", digest, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading blob %s: %w", digest, err)
	}
	return nil
}

// Exists reports whether an object with the given digest is stored.
func (s *S3Store) Exists(digest string) (bool, error) {
	_, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(digest)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking blob %s: %w", digest, err)
	}
	return true, nil
}

func isNoSuchKey(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey"
}

func isNotFound(err error) bool {
	// HeadObject reports a missing key as a bare 404 without a NoSuchKey code.
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	code := apiErr.ErrorCode()
	return code == "NotFound" || code == "NoSuchKey"
}

// Compile-time check that S3Store implements the BlobStore interface
var _ archive.BlobStore = (*S3Store)(nil)
