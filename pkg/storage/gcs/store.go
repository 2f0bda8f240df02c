package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	docstore "legal-aid-be/pkg/storage"
)

// Store keeps uploaded notices in a Cloud Storage bucket.
type Store struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

var _ docstore.DocumentStore = &Store{}

func New(ctx context.Context, bucket string, opts ...option.ClientOption) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs.New: bucket cannot be empty")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &Store{client: client, bucket: bucket, now: time.Now}, nil
}

// Store writes the object only if nothing exists under its name yet. The
// object becomes visible when the writer is closed; cancelling the write
// context on a copy failure discards the upload.
func (s *Store) Store(ctx context.Context, ownerID, fileName, contentType string, r io.Reader) (docstore.Locator, error) {
	objectName := docstore.ObjectName(ownerID, fileName, s.now())

	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := s.client.Bucket(s.bucket).Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(writeCtx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, r); err != nil {
		cancel()
		_ = writer.Close()
		return "", fmt.Errorf("%w: copy to gs://%s/%s: %v", docstore.ErrWriteFailed, s.bucket, objectName, err)
	}

	if err := writer.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return "", fmt.Errorf("%w: object %s already exists", docstore.ErrWriteFailed, objectName)
		}
		return "", fmt.Errorf("%w: finalize gs://%s/%s: %v", docstore.ErrWriteFailed, s.bucket, objectName, err)
	}

	return docstore.Locator(objectName), nil
}

func (s *Store) IssueAccessURL(ctx context.Context, loc docstore.Locator) (*docstore.AccessURL, error) {
	if err := docstore.CheckLocator(loc); err != nil {
		return nil, err
	}

	bucket := s.client.Bucket(s.bucket)
	if _, err := bucket.Object(string(loc)).Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", docstore.ErrNotFound, loc)
		}
		return nil, fmt.Errorf("object attrs %s: %w", loc, err)
	}

	expires := s.now().Add(docstore.AccessURLTTL)
	url, err := bucket.SignedURL(string(loc), &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: expires,
	})
	if err != nil {
		return nil, fmt.Errorf("sign url for %s: %w", loc, err)
	}

	return &docstore.AccessURL{URL: url, ExpiresAt: expires}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
