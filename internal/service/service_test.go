package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/templui/bookshelf/internal/db"
	"github.com/templui/bookshelf/internal/model"
	"github.com/templui/bookshelf/internal/repository"
	"github.com/templui/bookshelf/internal/storage"
)

// fakeStorage records calls and hands out deterministic URLs
type fakeStorage struct {
	mu         sync.Mutex
	uploadErr  error
	destroyErr error
	// imageErr fails image uploads and image destroys only
	imageErr   error
	onUpload   func(in storage.UploadInput)
	uploads    []storage.UploadInput
	destroyed  map[string]storage.ResourceType
	seq        int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{destroyed: map[string]storage.ResourceType{}}
}

func (f *fakeStorage) Upload(ctx context.Context, in storage.UploadInput) (*storage.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if f.imageErr != nil && in.ResourceType == storage.ResourceImage {
		return nil, f.imageErr
	}
	if _, err := io.Copy(io.Discard, in.Body); err != nil {
		return nil, err
	}
	if f.onUpload != nil {
		f.onUpload(in)
	}

	f.seq++
	f.uploads = append(f.uploads, in)
	publicID := fmt.Sprintf("%s/asset%d", in.Folder, f.seq)
	return &storage.Asset{
		PublicID: publicID,
		URL:      "https://cdn.test/bookshelf/" + publicID + "." + in.Format,
	}, nil
}

func (f *fakeStorage) Destroy(ctx context.Context, publicID string, resourceType storage.ResourceType) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.destroyErr != nil {
		return f.destroyErr
	}
	if f.imageErr != nil && resourceType == storage.ResourceImage {
		return f.imageErr
	}
	f.destroyed[publicID] = resourceType
	return nil
}

type testEnv struct {
	users   repository.UserRepository
	books   repository.BookRepository
	storage *fakeStorage
	assets  *AssetService
	auth    *AuthService
	book    *BookService
	stage   string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.Init("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	env := &testEnv{
		users:   repository.NewUserRepository(database),
		books:   repository.NewBookRepository(database),
		storage: newFakeStorage(),
		stage:   t.TempDir(),
	}
	env.assets = NewAssetService(env.storage)
	env.auth = NewAuthService(env.users, "test-secret")
	env.book = NewBookService(env.books, env.assets)
	return env
}

// stageFile writes content to the staging directory as an intake layer would
func (e *testEnv) stageFile(t *testing.T, name, mimeType, content string) *model.StagedUpload {
	t.Helper()

	f, err := os.CreateTemp(e.stage, "upload-*")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	return &model.StagedUpload{
		Path:         f.Name(),
		MimeType:     mimeType,
		OriginalName: name,
		Size:         int64(len(content)),
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
