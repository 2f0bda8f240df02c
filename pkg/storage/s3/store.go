// Package s3 stores uploaded notices in an S3 (or S3-compatible) bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	docstore "legal-aid-be/pkg/storage"
)

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Store struct {
	api     objectAPI
	presign presigner
	bucket  string
	now     func() time.Time
}

var _ docstore.DocumentStore = &Store{}

// New loads the default AWS credential chain. A non-empty endpoint points
// the client at an S3-compatible server (localstack, minio) with path-style
// addressing.
func New(ctx context.Context, bucket, region, endpoint string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3.New: bucket cannot be empty")
	}
	cfg, err := awsCfg.LoadDefaultConfig(ctx, awsCfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return newStore(client, s3.NewPresignClient(client), bucket), nil
}

func newStore(api objectAPI, presign presigner, bucket string) *Store {
	return &Store{api: api, presign: presign, bucket: bucket, now: time.Now}
}

// Store uploads with If-None-Match: * so an existing object is never
// replaced. PutObject is atomic; a failed upload leaves nothing behind.
func (s *Store) Store(ctx context.Context, ownerID, fileName, contentType string, r io.Reader) (docstore.Locator, error) {
	key := docstore.ObjectName(ownerID, fileName, s.now())

	// The SDK needs a seekable body to sign the payload.
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: read upload: %v", docstore.ErrWriteFailed, err)
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		IfNoneMatch:   aws.String("*"),
		Metadata:      map[string]string{"owner_id": ownerID},
	})
	if err != nil {
		if statusCode(err) == http.StatusPreconditionFailed {
			return "", fmt.Errorf("%w: object %s already exists", docstore.ErrWriteFailed, key)
		}
		return "", fmt.Errorf("%w: put s3://%s/%s: %v", docstore.ErrWriteFailed, s.bucket, key, err)
	}

	return docstore.Locator(key), nil
}

func (s *Store) IssueAccessURL(ctx context.Context, loc docstore.Locator) (*docstore.AccessURL, error) {
	if err := docstore.CheckLocator(loc); err != nil {
		return nil, err
	}

	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(string(loc)),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) || statusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", docstore.ErrNotFound, loc)
		}
		return nil, fmt.Errorf("head object %s: %w", loc, err)
	}

	expires := s.now().Add(docstore.AccessURLTTL)
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(string(loc)),
	}, s3.WithPresignExpires(docstore.AccessURLTTL))
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", loc, err)
	}

	return &docstore.AccessURL{URL: req.URL, ExpiresAt: expires}, nil
}

func statusCode(err error) int {
	var re interface{ HTTPStatusCode() int }
	if errors.As(err, &re) {
		return re.HTTPStatusCode()
	}
	return 0
}
