package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"dentcheck/internal/config"
	"dentcheck/pkg/logger"
)

const s3KeyPrefix = "checkup-images/"

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps blobs in an S3-compatible bucket (AWS, MinIO).
type S3Store struct {
	client s3API
	bucket string
	prefix string
	now    func() time.Time
}

func NewS3Store(ctx context.Context, cfg config.S3Config, publicPrefix string) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.LogInfo("S3 blob store ready: bucket=%s endpoint=%s", cfg.Bucket, cfg.Endpoint)
	return newS3Store(client, cfg.Bucket, publicPrefix), nil
}

func newS3Store(client s3API, bucket, publicPrefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: normalizePrefix(publicPrefix), now: time.Now}
}

func (s *S3Store) Store(ctx context.Context, data []byte, suggestedName string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty blob")
	}

	name := blobName(s.now(), suggestedName, data)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s3KeyPrefix + name),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mimetype.Detect(data).String()),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return s.prefix + name, nil
}

func (s *S3Store) Delete(ctx context.Context, reference string) DeleteResult {
	name, err := nameFromReference(s.prefix, reference)
	if err != nil {
		return DeleteResult{Reference: reference, Err: err}
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3KeyPrefix + name),
	})
	return DeleteResult{Reference: reference, Err: err}
}

func (s *S3Store) Open(ctx context.Context, reference string) (io.ReadCloser, error) {
	name, err := nameFromReference(s.prefix, reference)
	if err != nil {
		return nil, ErrBlobNotFound
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3KeyPrefix + name),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

func (s *S3Store) List(ctx context.Context) ([]BlobInfo, error) {
	var out []BlobInfo
	var token *string

	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s3KeyPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}

		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s3KeyPrefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			out = append(out, BlobInfo{
				Reference: s.prefix + name,
				Size:      aws.ToInt64(obj.Size),
				ModTime:   aws.ToTime(obj.LastModified),
			})
		}

		if !aws.ToBool(page.IsTruncated) {
			return out, nil
		}
		token = page.NextContinuationToken
	}
}
