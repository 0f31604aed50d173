package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ObjectPutter is the subset of the S3 client the ingestor needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Bucket string
	Region string
	Prefix string
	// PublicBaseURL is prepended to object keys; defaults to the bucket's
	// virtual-hosted URL.
	PublicBaseURL string
}

// S3Ingestor stores uploads as new objects and returns their public URL.
type S3Ingestor struct {
	client ObjectPutter
	opts   S3Options
	newKey func() string
}

func NewS3Ingestor(client ObjectPutter, opts S3Options) *S3Ingestor {
	if opts.PublicBaseURL == "" {
		opts.PublicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &S3Ingestor{client: client, opts: opts, newKey: func() string { return uuid.New().String() }}
}

// NewS3IngestorFromEnv builds the S3 client from the default AWS credential chain.
func NewS3IngestorFromEnv(ctx context.Context, opts S3Options) (*S3Ingestor, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Ingestor(s3.NewFromConfig(cfg), opts), nil
}

func (s *S3Ingestor) Ingest(ctx context.Context, u Upload) (string, error) {
	if u.Body == nil {
		return "", fmt.Errorf("%w: empty body", ErrUpload)
	}
	b, err := io.ReadAll(u.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrUpload, u.Filename, err)
	}

	key := path.Join(s.opts.Prefix, s.newKey()+strings.ToLower(filepath.Ext(u.Filename)))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.opts.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(b),
		ContentLength: aws.Int64(int64(len(b))),
		ContentType:   aws.String(contentType(u.ContentType, b)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put s3://%s/%s: %v", ErrUpload, s.opts.Bucket, key, err)
	}
	return s.opts.PublicBaseURL + "/" + key, nil
}
