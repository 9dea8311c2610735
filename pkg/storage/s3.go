package storage

import (
	"bytes"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Provider is a Provider backed by an S3 bucket and key prefix, using the
// classic v1 SDK the way dolthub-dolt's NBS block store does for its own
// S3 backend.
type S3Provider struct {
	client *s3.S3
	bucket string
	prefix string
}

// NewS3Provider builds an S3Provider from an already-configured session
// (region, credentials, endpoint overrides all live in the session).
func NewS3Provider(sess *session.Session, bucket, prefix string) *S3Provider {
	return &S3Provider{
		client: s3.New(sess),
		bucket: bucket,
		prefix: strings.TrimSuffix(prefix, "/"),
	}
}

func (p *S3Provider) fullKey(key string) string {
	if p.prefix == "" {
		return key
	}
	return p.prefix + "/" + key
}

func (p *S3Provider) Get(key string) ([]byte, error) {
	out, err := p.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.fullKey(key)),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, &StorageError{Kind: ErrKindNotFound, Key: key, Cause: err}
		}
		return nil, &StorageError{Kind: ErrKindIO, Key: key, Cause: err}
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &StorageError{Kind: ErrKindIO, Key: key, Cause: err}
	}
	return data, nil
}

func (p *S3Provider) Set(key string, data []byte) error {
	_, err := p.client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.fullKey(key)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return &StorageError{Kind: ErrKindIO, Key: key, Cause: err}
	}
	return nil
}

func (p *S3Provider) Delete(key string) error {
	_, err := p.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.fullKey(key)),
	})
	if err != nil {
		return &StorageError{Kind: ErrKindIO, Key: key, Cause: err}
	}
	return nil
}

func (p *S3Provider) ListPrefix(prefix string) ([]string, error) {
	var keys []string
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
		Prefix: aws.String(p.fullKey(prefix)),
	}
	err := p.client.ListObjectsV2Pages(input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			k := aws.StringValue(obj.Key)
			if p.prefix != "" {
				k = strings.TrimPrefix(k, p.prefix+"/")
			}
			keys = append(keys, k)
		}
		return true
	})
	if err != nil {
		return nil, &StorageError{Kind: ErrKindIO, Key: prefix, Cause: err}
	}
	return keys, nil
}
