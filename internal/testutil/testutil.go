// Package testutil provides throwaway databases and a fake blob store for
// package tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"exit_poll/internal/config"
)

// NewDB opens a private in-memory sqlite database with every table migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// TempAsset writes a small file into the test's temp dir and returns its path.
func TempAsset(t testing.TB, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("asset:"+name), 0o600))
	return p
}

var ErrInjected = errors.New("injected store failure")

// FakeStore keeps uploads in memory. FailUploadAt makes the n-th upload
// (1-based) fail. AfterUpload, when set, runs after every successful upload
// with its 1-based index. Like the real stores, Delete refuses a cancelled
// context.
type FakeStore struct {
	mu           sync.Mutex
	FailUploadAt int
	FailDelete   bool
	AfterUpload  func(n int)
	uploads      int
	objects      map[string]string
	deleted      []string
}

func NewFakeStore() *FakeStore {
	return &FakeStore{objects: map[string]string{}}
}

const fakeBase = "https://blob.test/"

func (f *FakeStore) Upload(_ context.Context, localPath, objectName, contentType string) (string, error) {
	url, n, err := f.put(localPath, objectName, contentType)
	if err != nil {
		return "", err
	}
	if f.AfterUpload != nil {
		f.AfterUpload(n)
	}
	return url, nil
}

func (f *FakeStore) put(localPath, objectName, contentType string) (string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.FailUploadAt > 0 && f.uploads == f.FailUploadAt {
		return "", f.uploads, ErrInjected
	}
	if _, err := os.Stat(localPath); err != nil {
		return "", f.uploads, err
	}
	url := fakeBase + objectName
	f.objects[url] = contentType
	return url, f.uploads, nil
}

func (f *FakeStore) Delete(ctx context.Context, publicURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailDelete {
		return ErrInjected
	}
	if !strings.HasPrefix(publicURL, fakeBase) {
		return errors.New("foreign url")
	}
	delete(f.objects, publicURL)
	f.deleted = append(f.deleted, publicURL)
	return nil
}

// Objects returns the URLs currently stored.
func (f *FakeStore) Objects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.objects))
	for u := range f.objects {
		out = append(out, u)
	}
	return out
}

func (f *FakeStore) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *FakeStore) Has(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[url]
	return ok
}
