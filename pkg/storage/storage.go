package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// AccessURLTTL is how long an issued access URL stays valid.
const AccessURLTTL = 60 * time.Minute

var (
	ErrWriteFailed    = errors.New("document write failed")
	ErrNotFound       = errors.New("document not found")
	ErrInvalidLocator = errors.New("invalid document locator")
)

// Locator is the durable, backend-specific reference to a stored document.
type Locator string

type AccessURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DocumentStore persists uploaded files and hands out time-limited links
// to them. Store must never leave a partial object under the returned
// locator.
type DocumentStore interface {
	Store(ctx context.Context, ownerID, fileName, contentType string, r io.Reader) (Locator, error)
	IssueAccessURL(ctx context.Context, loc Locator) (*AccessURL, error)
}

// ObjectName builds "<ownerId>/<unixnanos>-<fileName>".
func ObjectName(ownerID, fileName string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "document.pdf"
	}
	return fmt.Sprintf("%s/%d-%s", ownerID, now.UnixNano(), base)
}

// CheckLocator rejects empty locators and anything that could escape the
// owner prefix.
func CheckLocator(loc Locator) error {
	s := string(loc)
	if s == "" || strings.HasPrefix(s, "/") || strings.Contains(s, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidLocator, s)
	}
	for _, part := range strings.Split(s, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidLocator, s)
		}
	}
	return nil
}
