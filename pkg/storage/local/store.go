package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	docstore "legal-aid-be/pkg/storage"
)

const locatorClaim = "loc"

// Store is the development backend: files live under a directory and
// access URLs point at the API's own download route, authorised by a
// short-lived signed token.
type Store struct {
	dir     string
	baseURL string
	secret  []byte
	now     func() time.Time
}

var _ docstore.DocumentStore = &Store{}

func New(dir, baseURL string, secret []byte) (*Store, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("local.New: secret cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		now:     time.Now,
	}, nil
}

// Store writes to a temp file in the destination directory and renames it
// into place once the copy is complete.
func (s *Store) Store(ctx context.Context, ownerID, fileName, contentType string, r io.Reader) (docstore.Locator, error) {
	loc := docstore.Locator(docstore.ObjectName(ownerID, fileName, s.now()))
	if err := docstore.CheckLocator(loc); err != nil {
		return "", err
	}

	final := s.path(loc)
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", docstore.ErrWriteFailed, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(final), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", docstore.ErrWriteFailed, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := io.Copy(tmp, readerWithContext(ctx, r)); err != nil {
		cleanup()
		return "", fmt.Errorf("%w: copy %s: %v", docstore.ErrWriteFailed, loc, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return "", fmt.Errorf("%w: sync %s: %v", docstore.ErrWriteFailed, loc, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%w: close %s: %v", docstore.ErrWriteFailed, loc, err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%w: rename %s: %v", docstore.ErrWriteFailed, loc, err)
	}

	return loc, nil
}

func (s *Store) IssueAccessURL(ctx context.Context, loc docstore.Locator) (*docstore.AccessURL, error) {
	if err := docstore.CheckLocator(loc); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.path(loc)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", docstore.ErrNotFound, loc)
		}
		return nil, fmt.Errorf("stat %s: %w", loc, err)
	}

	expires := s.now().Add(docstore.AccessURLTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		locatorClaim: string(loc),
		"exp":        expires.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign download token: %w", err)
	}

	return &docstore.AccessURL{
		URL:       fmt.Sprintf("%s/api/documents/download?token=%s", s.baseURL, url.QueryEscape(signed)),
		ExpiresAt: expires,
	}, nil
}

// Resolve verifies a download token and returns the file it grants access to.
func (s *Store) Resolve(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", docstore.ErrInvalidLocator, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", docstore.ErrInvalidLocator
	}
	loc, _ := claims[locatorClaim].(string)
	if err := docstore.CheckLocator(docstore.Locator(loc)); err != nil {
		return "", err
	}

	p := s.path(docstore.Locator(loc))
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("%w: %s", docstore.ErrNotFound, loc)
	}
	return p, nil
}

func (s *Store) path(loc docstore.Locator) string {
	return filepath.Join(s.dir, filepath.FromSlash(string(loc)))
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
