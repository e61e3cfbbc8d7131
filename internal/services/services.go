// Package services implements the poll: the location registry, the vote
// ledger, the tally reads and the admin side features around them. Every
// operation returns *Error for expected failures.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"exit_poll/internal/metrics"
	"exit_poll/internal/storage"
)

// RoleAdmin is the only role that can manage the registry.
const RoleAdmin = "admin"

// TokenIssuer signs access tokens for authenticated admins.
type TokenIssuer interface {
	GenerateToken(adminID uint, role string) (string, error)
}

type Services struct {
	db      *gorm.DB
	store   storage.Store
	metrics *metrics.Metrics
	tokens  TokenIssuer
	now     func() time.Time
}

type Option func(*Services)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Services) { s.metrics = m }
}

func WithTokenIssuer(t TokenIssuer) Option {
	return func(s *Services) { s.tokens = t }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Services) { s.now = now }
}

func New(db *gorm.DB, store storage.Store, opts ...Option) *Services {
	s := &Services{
		db:    db,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AssetRef points at an uploaded file that has been spooled to local disk.
type AssetRef struct {
	LocalPath    string
	OriginalName string
	ContentType  string
}

func (a *AssetRef) present() bool {
	return a != nil && a.LocalPath != ""
}

func (a *AssetRef) hasType(prefix string) bool {
	return strings.HasPrefix(strings.ToLower(a.ContentType), prefix)
}

func (s *Services) upload(ctx context.Context, folder string, ref *AssetRef) (string, error) {
	if s.store == nil {
		return "", unavailable(nil, "no blob store configured")
	}
	url, err := s.store.Upload(ctx, ref.LocalPath, storage.ObjectName(folder, ref.OriginalName), ref.ContentType)
	s.metrics.Upload(err == nil)
	if err != nil {
		return "", unavailable(err, "upload of %s failed", ref.OriginalName)
	}
	return url, nil
}

// discardTimeout bounds the cleanup deletes once they are detached from the
// caller's context.
const discardTimeout = 30 * time.Second

// discard deletes stored assets, logging failures. It is used both for
// compensating a failed write and for removing replaced media. The deletes
// still run when ctx is already cancelled, since a cancelled request is the
// usual reason a write failed after its uploads went through.
func (s *Services) discard(ctx context.Context, urls ...string) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discardTimeout)
	defer cancel()
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := s.store.Delete(ctx, u); err != nil {
			logrus.WithError(err).WithField("url", u).Warn("could not delete stored asset")
		}
	}
}
