package cache

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/LimeMojito/trading-data-stream/internal/errs"
)

// S3API is the subset of *s3.Client this tier needs; satisfied by the real
// SDK client and easy to fake in tests (spec §6 "Object-store contract").
type S3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Store struct {
	client      S3API
	bucket      string
	contentType string
}

func (s s3Store) exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, errs.Wrap(errs.Io, err, "head s3 object %s", path)
}

func (s s3Store) get(ctx context.Context, path string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errs.New(errs.NotFound, "s3 object %s not found", path)
		}
		return nil, errs.Wrap(errs.Io, err, "get s3 object %s", path)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "read s3 object body %s", path)
	}
	return data, nil
}

func (s s3Store) put(ctx context.Context, path string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(path),
		Body:               bytes.NewReader(data),
		ContentType:        aws.String(s.contentType),
		ContentDisposition: aws.String(path),
		ContentLength:      aws.Int64(int64(len(data))),
	})
	if err != nil {
		return errs.Wrap(errs.Io, err, "put s3 object %s", path)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	var nf *types.NoSuchKey
	if errors.As(err, &nf) {
		return true
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return true
	}
	return false
}

// NewS3ByteCache constructs the S3-backed ByteCache tier for raw tick
// files, content-type application/octet-stream.
func NewS3ByteCache(client S3API, bucket string, fallback ByteCache) ByteCache {
	return newByteTier("s3", s3Store{client: client, bucket: bucket, contentType: "application/octet-stream"}, fallback)
}

// newS3BarStore constructs a raw byteStore-shaped S3 client for bar
// JSON payloads (content-type application/json); used by NewS3BarCache.
func newS3BarStore(client S3API, bucket string) byteStore {
	return s3Store{client: client, bucket: bucket, contentType: "application/json"}
}
