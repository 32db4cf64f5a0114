// pkg/archive/s3.go
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the subset of the S3 client used by S3Sink.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink stores report files as objects under Prefix in Bucket.
type S3Sink struct {
	Client PutObjectAPI
	Bucket string
	Prefix string
}

/*
NewS3Sink builds an S3Sink using the default AWS credential chain
(environment, shared config, instance role).

Parameters:
  - region: Overrides the region from the environment when non-empty.
*/
func NewS3Sink(ctx context.Context, bucket, prefix, region string) (*S3Sink, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Sink{Client: s3.NewFromConfig(cfg), Bucket: bucket, Prefix: prefix}, nil
}

func (s *S3Sink) Name() string {
	return "s3://" + path.Join(s.Bucket, s.Prefix)
}

// Key is the object key for fileName.
func (s *S3Sink) Key(fileName string) string {
	prefix := strings.Trim(s.Prefix, "/")
	if prefix == "" {
		return fileName
	}
	return prefix + "/" + fileName
}

func (s *S3Sink) Upload(ctx context.Context, fileName string, data []byte) error {
	key := s.Key(fileName)
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.Bucket, key, err)
	}
	return nil
}
