package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stylepipe/config"
	"stylepipe/css"
	"stylepipe/state"
)

type fakeLoader struct {
	fc  css.FileContents
	err error
}

func (f *fakeLoader) Load(_ context.Context, relativePath string) (css.FileContents, error) {
	if f.err != nil {
		return css.FileContents{}, f.err
	}
	fc := f.fc
	fc.RelativePath = relativePath
	return fc, nil
}

func newTestEnv(t *testing.T, loader css.Loader, adminToken config.SecretString) *state.LocalEnv {
	t.Helper()
	next := css.LoaderFunc(func(_ context.Context, relativePath string) (css.FileContents, error) {
		return css.FileContents{RelativePath: relativePath, Content: "cached"}, nil
	})
	retriever := css.NewLastModifiedRetriever(t.TempDir(), nil)
	cache := css.NewCache(next, retriever, t.TempDir(), "", css.InvalidCacheDelete, nil)
	return &state.LocalEnv{
		Cfg:      &config.Config{Server: config.ServerConfig{AdminToken: adminToken}},
		Pipeline: loader,
		Cache:    cache,
	}
}

func TestHandleStylesheet_OKServesContentWithLastModified(t *testing.T) {
	lastModified := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	env := newTestEnv(t, &fakeLoader{fc: css.FileContents{Content: "a{color:red}", LastModified: lastModified}}, "")
	srv := New(env)

	req := httptest.NewRequest(http.MethodGet, "/a.css", nil)
	rec := httptest.NewRecorder()
	srv.handleStylesheet(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "a{color:red}" {
		t.Fatalf("body = %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/css; charset=utf-8" {
		t.Fatalf("Content-Type = %q", got)
	}
	if rec.Header().Get("Last-Modified") == "" {
		t.Fatal("Last-Modified header missing")
	}
}

func TestHandleStylesheet_FreshIfModifiedSinceReturns304(t *testing.T) {
	lastModified := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	env := newTestEnv(t, &fakeLoader{fc: css.FileContents{Content: "a{color:red}", LastModified: lastModified}}, "")
	srv := New(env)

	req := httptest.NewRequest(http.MethodGet, "/a.css", nil)
	req.Header.Set("If-Modified-Since", lastModified.Format(http.TimeFormat))
	rec := httptest.NewRecorder()
	srv.handleStylesheet(rec, req)

	if rec.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("body should be empty on 304, got %q", rec.Body.String())
	}
}

func TestHandleStylesheet_StaleIfModifiedSinceServesFullContent(t *testing.T) {
	lastModified := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	env := newTestEnv(t, &fakeLoader{fc: css.FileContents{Content: "a{color:red}", LastModified: lastModified}}, "")
	srv := New(env)

	req := httptest.NewRequest(http.MethodGet, "/a.css", nil)
	req.Header.Set("If-Modified-Since", lastModified.Add(-time.Hour).Format(http.TimeFormat))
	rec := httptest.NewRecorder()
	srv.handleStylesheet(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for a stale conditional request", rec.Code)
	}
}

func TestHandleStylesheet_NotFoundMapsTo404(t *testing.T) {
	env := newTestEnv(t, &fakeLoader{err: css.ErrNotFound}, "")
	srv := New(env)

	req := httptest.NewRequest(http.MethodGet, "/missing.css", nil)
	rec := httptest.NewRecorder()
	srv.handleStylesheet(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleStylesheet_BadInputMapsTo400(t *testing.T) {
	env := newTestEnv(t, &fakeLoader{err: css.ErrBadInput}, "")
	srv := New(env)

	req := httptest.NewRequest(http.MethodGet, "/../etc/passwd", nil)
	rec := httptest.NewRecorder()
	srv.handleStylesheet(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleStylesheet_OtherErrorMapsTo500(t *testing.T) {
	env := newTestEnv(t, &fakeLoader{err: errBoom}, "")
	srv := New(env)

	req := httptest.NewRequest(http.MethodGet, "/a.css", nil)
	rec := httptest.NewRecorder()
	srv.handleStylesheet(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestHandlePurge_DisabledWithNoAdminToken(t *testing.T) {
	env := newTestEnv(t, &fakeLoader{}, "")
	srv := New(env)

	req := httptest.NewRequest(http.MethodPost, "/admin/purge?path=a.css", nil)
	rec := httptest.NewRecorder()
	srv.handlePurge(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 when no admin token is configured", rec.Code)
	}
}

func TestHandlePurge_WrongTokenForbidden(t *testing.T) {
	env := newTestEnv(t, &fakeLoader{}, "secret")
	srv := New(env)

	req := httptest.NewRequest(http.MethodPost, "/admin/purge?path=a.css", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	srv.handlePurge(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for a wrong token", rec.Code)
	}
}

func TestHandlePurge_MissingPathIsBadRequest(t *testing.T) {
	env := newTestEnv(t, &fakeLoader{}, "secret")
	srv := New(env)

	req := httptest.NewRequest(http.MethodPost, "/admin/purge", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	srv.handlePurge(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 when path is missing", rec.Code)
	}
}

func TestHandlePurge_CorrectTokenEvictsEntry(t *testing.T) {
	env := newTestEnv(t, &fakeLoader{}, "secret")
	srv := New(env)

	req := httptest.NewRequest(http.MethodPost, "/admin/purge?path=a.css", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	srv.handlePurge(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

var errBoom = &boomError{}

type boomError struct{}

func (*boomError) Error() string { return "boom" }
