package source

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// objectGetter is the subset of *s3.Client used by S3Fetcher.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config locates one object in an S3-compatible bucket (AWS S3 or MinIO).
type S3Config struct {
	Bucket    string
	Key       string
	Region    string
	Endpoint  string // optional; enables a custom endpoint such as MinIO
	PathStyle bool

	// AccessKeyID and SecretAccessKey pin static credentials. Both empty
	// falls back to the default AWS credentials chain.
	AccessKeyID     string
	SecretAccessKey string
}

// S3Fetcher reads one object.
type S3Fetcher struct {
	client objectGetter
	bucket string
	key    string
	limit  int64
}

// NewS3Fetcher builds a fetcher for cfg.
func NewS3Fetcher(ctx context.Context, cfg S3Config) (*S3Fetcher, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, fmt.Errorf("%w: s3 bucket and key required", ErrUnsupportedKind)
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: s3 config: %v", ErrFetch, err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3Fetcher(client, cfg.Bucket, cfg.Key), nil
}

func newS3Fetcher(client objectGetter, bucket, key string) *S3Fetcher {
	return &S3Fetcher{client: client, bucket: bucket, key: key, limit: maxPayloadBytes}
}

func (f *S3Fetcher) Name() string { return "s3://" + f.bucket + "/" + f.key }

// Fetch downloads the object body.
func (f *S3Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(f.bucket), Key: aws.String(f.key)})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s: no such key", ErrFetch, f.Name())
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, f.Name(), err)
	}
	defer func() { _ = out.Body.Close() }()

	return readPayload(out.Body, f.limit, f.Name())
}

// DecoderForKey picks a decoder from an object key or file name suffix.
// Unknown suffixes are read as JSON.
func DecoderForKey(key string) (string, Decoder) {
	switch strings.ToLower(path.Ext(key)) {
	case ".xlsx":
		return "xlsx", DecodeXLSX
	case ".js", ".txt", ".gviz":
		return "gviz", DecodeGviz
	default:
		return "json", DecodeJSON
	}
}
