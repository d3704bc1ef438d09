package scoresource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds the parameters of an S3-compatible bucket (AWS S3 or MinIO).
type S3Config struct {
	Bucket          string
	Prefix          string // key prefix of the score files, e.g. "scores/hssp/"
	Region          string // default us-east-1
	Endpoint        string // optional custom endpoint
	AccessKeyID     string // optional, falls back to the default credential chain
	SecretAccessKey string
	PathStyle       bool
}

// Bucket reads score files from an S3 bucket.
type Bucket struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewBucket creates a bucket reader from cfg.
func NewBucket(ctx context.Context, cfg S3Config, optFns ...func(*s3.Options)) (*Bucket, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		for _, fn := range optFns {
			fn(o)
		}
	})
	return &Bucket{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Object returns a source for the object at prefix+name.
func (b *Bucket) Object(name string) S3Object {
	return S3Object{bucket: b, key: b.prefix + name}
}

// Exists reports whether an object exists. A 404 is not an error.
func (b *Bucket) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &b.bucket, Key: &key})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("head s3://%s/%s: %w", b.bucket, key, err)
}

// List returns the score objects below the bucket prefix, sorted by key.
func (b *Bucket) List(ctx context.Context) ([]Source, error) {
	var keys []string
	var token *string
	for {
		out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &b.bucket,
			Prefix:            &b.prefix,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", b.bucket, b.prefix, err)
		}
		for _, obj := range out.Contents {
			k := aws.ToString(obj.Key)
			if strings.HasSuffix(k, ScoreExt) || strings.HasSuffix(k, ScoreExt+".gz") {
				keys = append(keys, k)
			}
		}
		if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Strings(keys)

	sources := make([]Source, len(keys))
	for i, k := range keys {
		sources[i] = S3Object{bucket: b, key: k}
	}
	return sources, nil
}

// Resolver returns a resolver for the score files of one structure.
func (b *Bucket) Resolver(base string, naming Naming) Resolver {
	return ResolverFunc(func(ctx context.Context, chainID string) (Source, bool, error) {
		name := naming.FileName(base, chainID)
		for _, candidate := range []string{name, name + ".gz"} {
			obj := b.Object(candidate)
			ok, err := b.Exists(ctx, obj.key)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return obj, true, nil
			}
		}
		return nil, false, nil
	})
}

// S3Object is a score file stored in S3.
type S3Object struct {
	bucket *Bucket
	key    string
}

// Name returns the object's base name.
func (o S3Object) Name() string {
	return path.Base(o.key)
}

// Key returns the full object key.
func (o S3Object) Key() string {
	return o.key
}

// Open downloads the object.
func (o S3Object) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := o.bucket.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &o.bucket.bucket, Key: &o.key})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", o.bucket.bucket, o.key, err)
	}
	rc, err := maybeGzip(out.Body)
	if err != nil {
		out.Body.Close()
		return nil, err
	}
	return rc, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
