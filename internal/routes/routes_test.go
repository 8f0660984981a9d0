package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/bookshelf/internal/app"
	"github.com/templui/bookshelf/internal/config"
)

var pngCover = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func setupServer(t *testing.T) (*app.App, http.Handler) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		AppName:         "Bookshelf",
		AppEnv:          "development",
		AppURL:          "http://bookshelf.test",
		Port:            "5513",
		DBDriver:        "sqlite",
		DBConnection:    ":memory:",
		JWTSecret:       "test-secret",
		UploadDir:       filepath.Join(dir, "uploads"),
		MaxUploadBytes:  30_000_000,
		StorageDriver:   config.StorageDriverLocal,
		LocalStorageDir: filepath.Join(dir, "storage"),
	}

	a, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return a, SetupRoutes(a)
}

type part struct {
	field, filename, contentType string
	content                      []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...part) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func do(t *testing.T, h http.Handler, method, target, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, h http.Handler, path, name, email, password string) string {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"name": name, "email": email, "password": password})
	require.NoError(t, err)
	rec := do(t, h, http.MethodPost, path, "", bytes.NewReader(payload), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func bookFiles() []part {
	return []part{
		{field: "coverImage", filename: "cover.png", contentType: "image/png", content: pngCover},
		{field: "file", filename: "book.pdf", contentType: "application/pdf", content: []byte("%PDF-1.7 book")},
	}
}

func TestBookLifecycle(t *testing.T) {
	a, h := setupServer(t)

	t1 := register(t, h, "/api/users", "Ada", "a@x.com", "longenoughpw")
	adaID, err := a.AuthService.VerifyToken(t1)
	require.NoError(t, err)

	// Create
	body, ct := multipartBody(t, map[string]string{"title": "Book1", "genre": "fi"}, bookFiles()...)
	rec := do(t, h, http.MethodPost, "/api/books", t1, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	// Read
	rec = do(t, h, http.MethodGet, "/api/books/"+created.ID, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Book struct {
			ID         string `json:"id"`
			Title      string `json:"title"`
			Author     string `json:"author"`
			CoverImage string `json:"coverImage"`
			File       string `json:"file"`
		} `json:"book"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, adaID, got.Book.Author)
	assert.Equal(t, "Book1", got.Book.Title)
	assert.Contains(t, got.Book.CoverImage, "/uploads/book-covers/")
	assert.True(t, strings.HasSuffix(got.Book.File, ".pdf"))
	assert.NotContains(t, rec.Body.String(), "password")

	// The local driver serves stored assets
	coverURL, err := url.Parse(got.Book.CoverImage)
	require.NoError(t, err)
	rec = do(t, h, http.MethodGet, coverURL.Path, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngCover, rec.Body.Bytes())

	// List
	rec = do(t, h, http.MethodGet, "/api/books", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID)

	// Another user may not update
	register(t, h, "/api/users/register", "Bob", "b@x.com", "anotherlongpw")
	payload := strings.NewReader(`{"email":"b@x.com","password":"anotherlongpw"}`)
	rec = do(t, h, http.MethodPost, "/api/users/login", "", payload, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	t2 := login.AccessToken

	body, ct = multipartBody(t, map[string]string{"title": "X"})
	rec = do(t, h, http.MethodPost, "/api/books/"+created.ID, t2, body, ct)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"You can not update others book."}`, rec.Body.String())

	// Nor delete
	rec = do(t, h, http.MethodDelete, "/api/books/"+created.ID, t2, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Owner updates
	body, ct = multipartBody(t, map[string]string{"description": "first edition"})
	rec = do(t, h, http.MethodPost, "/api/books/"+created.ID, t1, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"title":"Book1"`)
	assert.Contains(t, rec.Body.String(), `"description":"first edition"`)

	// Owner deletes
	rec = do(t, h, http.MethodDelete, "/api/books/"+created.ID, t1, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/books/"+created.ID, "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, coverURL.Path, "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "remote cover should be gone")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	_, h := setupServer(t)

	tests := []struct {
		method, path, token string
	}{
		{http.MethodPost, "/api/books", ""},
		{http.MethodPost, "/api/books/some-id", ""},
		{http.MethodDelete, "/api/books/some-id", ""},
		{http.MethodPost, "/api/books", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.token, nil, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"message"`)
		})
	}
}

func TestUserRoutes(t *testing.T) {
	_, h := setupServer(t)
	register(t, h, "/api/users", "Ada", "a@x.com", "longenoughpw")

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"duplicate email", "/api/users", `{"name":"Ada","email":"a@x.com","password":"longenoughpw"}`, http.StatusBadRequest, "Email already exists"},
		{"missing fields", "/api/users", `{"name":"Ada"}`, http.StatusBadRequest, "All fields are required"},
		{"malformed body", "/api/users", `{"name":`, http.StatusBadRequest, "invalid request body"},
		{"wrong password", "/api/users/login", `{"email":"a@x.com","password":"wrongpassword"}`, http.StatusUnauthorized, "Invalid email or password"},
		{"unknown email", "/api/users/login", `{"email":"z@x.com","password":"longenoughpw"}`, http.StatusUnauthorized, "Invalid email or password"},
		{"login missing fields", "/api/users/login", `{"email":"a@x.com"}`, http.StatusBadRequest, "All fields are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, "", strings.NewReader(tt.body), "application/json")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, `{"message":"`+tt.wantMsg+`"}`, rec.Body.String())
		})
	}
}

func TestHomeAndFallback(t *testing.T) {
	_, h := setupServer(t)

	rec := do(t, h, http.MethodGet, "/", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Hello APIs!"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/nope", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
