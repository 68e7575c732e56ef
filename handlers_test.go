package figcms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type stubMailer struct {
	resetLinks []string
	contacts   []ContactForm
	welcomes   []string
	fail       bool
}

func (m *stubMailer) SendPasswordReset(to, name, resetLink string) error {
	if m.fail {
		return fmt.Errorf("smtp down")
	}
	m.resetLinks = append(m.resetLinks, resetLink)
	return nil
}

func (m *stubMailer) SendContactNotification(form ContactForm) error {
	if m.fail {
		return fmt.Errorf("smtp down")
	}
	m.contacts = append(m.contacts, form)
	return nil
}

func (m *stubMailer) SendAdminWelcome(to, name, loginURL string) error {
	if m.fail {
		return fmt.Errorf("smtp down")
	}
	m.welcomes = append(m.welcomes, to)
	return nil
}

func setupTestApp(t *testing.T) (*App, *stubMailer) {
	t.Helper()
	dir := t.TempDir()
	mailer := &stubMailer{}
	a := New(Config{
		JWTSecret:    "test-secret",
		DatabasePath: filepath.Join(dir, "cms.db"),
		UploadsDir:   filepath.Join(dir, "uploads"),
	})
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	a.Store = store
	a.Media = NewMediaLibrary(store, a.Config.UploadsDir)
	a.Cache = NewPostCache(store, a.Config.PostCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.Mailer = mailer
	a.setupMiddleware()
	a.setupRoutes()
	return a, mailer
}

func doJSON(t *testing.T, a *App, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("non-JSON response %d: %s", rec.Code, rec.Body.String())
	}
	return rec, out
}

func TestCreatePostEndpoint(t *testing.T) {
	a, _ := setupTestApp(t)

	rec, out := doJSON(t, a, http.MethodPost, "/api/posts", map[string]any{
		"title":   "Hello World",
		"slug":    "hello-world",
		"content": "<h1>Welcome</h1>",
		"excerpt": "hi",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if out["success"] != true {
		t.Errorf("envelope = %v", out)
	}
	data, _ := out["data"].(map[string]any)
	if data["slug"] != "hello-world" || data["status"] != StatusDraft {
		t.Errorf("data = %v", data)
	}

	// Same slug again: envelope failure, 400.
	rec, out = doJSON(t, a, http.MethodPost, "/api/posts", map[string]any{
		"title":   "Other",
		"slug":    "hello-world",
		"content": "c",
		"excerpt": "e",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("conflict status = %d", rec.Code)
	}
	if out["success"] != false || out["error"] == "" {
		t.Errorf("conflict envelope = %v", out)
	}
}

func TestValidationErrorEnvelope(t *testing.T) {
	a, _ := setupTestApp(t)

	rec, out := doJSON(t, a, http.MethodPost, "/api/posts", map[string]any{"slug": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["error"] != "title is required" {
		t.Errorf("error = %v", out["error"])
	}
}

func TestGetPostBySlugEndpoint(t *testing.T) {
	a, _ := setupTestApp(t)

	in := validInput()
	in.Status = StatusPublished
	if _, err := a.Store.CreatePost(in); err != nil {
		t.Fatal(err)
	}

	rec, out := doJSON(t, a, http.MethodGet, "/api/posts/slug/hello-world", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data, _ := out["data"].(map[string]any)
	if data["title"] != "Hello World" {
		t.Errorf("data = %v", data)
	}

	rec, out = doJSON(t, a, http.MethodGet, "/api/posts/slug/nope", nil)
	if rec.Code != http.StatusNotFound || out["success"] != false {
		t.Errorf("missing slug: %d %v", rec.Code, out)
	}
}

func TestCacheInvalidatedOnMutation(t *testing.T) {
	a, _ := setupTestApp(t)

	// Warm the cache while empty.
	rec, _ := doJSON(t, a, http.MethodGet, "/api/posts/slug/hello-world", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("warmup status = %d", rec.Code)
	}

	rec, _ = doJSON(t, a, http.MethodPost, "/api/posts", map[string]any{
		"title": "Hello World", "slug": "hello-world", "content": "c", "excerpt": "e",
		"status": StatusPublished,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec, _ = doJSON(t, a, http.MethodGet, "/api/posts/slug/hello-world", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("slug lookup after create = %d, cache should be invalidated", rec.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	a, _ := setupTestApp(t)
	mustCreateAdmin(t, a.Store, "admin@fig1.com", "secret123")

	rec, out := doJSON(t, a, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "admin@fig1.com", "password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	token, _ := out["token"].(string)
	if token == "" {
		t.Fatal("login should return a token")
	}
	user, _ := out["user"].(map[string]any)
	if user["email"] != "admin@fig1.com" {
		t.Errorf("user = %v", user)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Error("password hash must not serialize")
	}

	// Wrong password and unknown account read identically.
	rec1, out1 := doJSON(t, a, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "admin@fig1.com", "password": "wrong",
	})
	rec2, out2 := doJSON(t, a, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ghost@fig1.com", "password": "secret123",
	})
	if rec1.Code != http.StatusUnauthorized || rec2.Code != http.StatusUnauthorized {
		t.Fatalf("codes = %d, %d", rec1.Code, rec2.Code)
	}
	if out1["error"] != out2["error"] {
		t.Errorf("credential errors must be indistinguishable: %v vs %v", out1["error"], out2["error"])
	}
}

func TestVerifyEndpoint(t *testing.T) {
	a, _ := setupTestApp(t)
	u := mustCreateAdmin(t, a.Store, "admin@fig1.com", "secret123")

	_, out := doJSON(t, a, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "admin@fig1.com", "password": "secret123",
	})
	token, _ := out["token"].(string)

	rec, out := doJSON(t, a, http.MethodPost, "/api/auth/verify", map[string]string{"token": token})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d", rec.Code)
	}
	user, _ := out["user"].(map[string]any)
	if user["id"] != u.ID {
		t.Errorf("user = %v", user)
	}

	rec, _ = doJSON(t, a, http.MethodPost, "/api/auth/verify", map[string]string{"token": "bogus"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bogus token status = %d", rec.Code)
	}

	// Deactivation kills outstanding tokens.
	if _, err := a.Store.db.Exec(`UPDATE admins SET is_active = 0 WHERE id = ?`, u.ID); err != nil {
		t.Fatal(err)
	}
	rec, _ = doJSON(t, a, http.MethodPost, "/api/auth/verify", map[string]string{"token": token})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("deactivated account token status = %d", rec.Code)
	}
}

func TestForgotPasswordEndpoint(t *testing.T) {
	a, mailer := setupTestApp(t)
	u := mustCreateAdmin(t, a.Store, "admin@fig1.com", "secret123")

	// Unknown email: same answer, no mail.
	rec, out := doJSON(t, a, http.MethodPost, "/api/auth/forgot-password", map[string]string{
		"email": "ghost@fig1.com",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	genericMsg, _ := out["message"].(string)
	if len(mailer.resetLinks) != 0 {
		t.Fatal("no mail for unknown accounts")
	}

	// Known email: same answer, mail with a token link.
	rec, out = doJSON(t, a, http.MethodPost, "/api/auth/forgot-password", map[string]string{
		"email": "admin@fig1.com",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["message"] != genericMsg {
		t.Error("responses must not reveal account existence")
	}
	if len(mailer.resetLinks) != 1 || !strings.Contains(mailer.resetLinks[0], "token=") {
		t.Fatalf("resetLinks = %v", mailer.resetLinks)
	}

	got, err := a.Store.GetAdminByID(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ResetToken == "" || got.ResetExpiry == nil {
		t.Fatal("token should be stored")
	}
}

func TestForgotPasswordMailFailureKeepsToken(t *testing.T) {
	a, mailer := setupTestApp(t)
	u := mustCreateAdmin(t, a.Store, "admin@fig1.com", "secret123")
	mailer.fail = true

	rec, out := doJSON(t, a, http.MethodPost, "/api/auth/forgot-password", map[string]string{
		"email": "admin@fig1.com",
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["success"] != false {
		t.Errorf("envelope = %v", out)
	}

	got, err := a.Store.GetAdminByID(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ResetToken == "" {
		t.Error("token must survive a failed send")
	}
}

func TestResetPasswordEndpoint(t *testing.T) {
	a, mailer := setupTestApp(t)
	mustCreateAdmin(t, a.Store, "admin@fig1.com", "secret123")

	doJSON(t, a, http.MethodPost, "/api/auth/forgot-password", map[string]string{
		"email": "admin@fig1.com",
	})
	link := mailer.resetLinks[0]
	token := link[strings.Index(link, "token=")+len("token="):]

	// Too short.
	rec, _ := doJSON(t, a, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token": token, "password": "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short password status = %d", rec.Code)
	}

	rec, _ = doJSON(t, a, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token": token, "password": "new-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// The new password logs in; the token is spent.
	rec, _ = doJSON(t, a, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "admin@fig1.com", "password": "new-password",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password = %d", rec.Code)
	}
	rec, _ = doJSON(t, a, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token": token, "password": "another-pass",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("spent token status = %d", rec.Code)
	}
}

func TestCreateAdminEndpoint(t *testing.T) {
	a, mailer := setupTestApp(t)

	rec, _ := doJSON(t, a, http.MethodPost, "/api/auth/create-admin", map[string]string{
		"email": "new@fig1.com", "password": "secret123", "name": "New Admin",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(mailer.welcomes) != 1 {
		t.Errorf("welcomes = %v", mailer.welcomes)
	}

	rec, out := doJSON(t, a, http.MethodPost, "/api/auth/create-admin", map[string]string{
		"email": "new@fig1.com", "password": "secret123", "name": "Dup",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d", rec.Code)
	}
	if out["success"] != false {
		t.Errorf("envelope = %v", out)
	}
}

func TestContactEndpoint(t *testing.T) {
	a, mailer := setupTestApp(t)

	rec, _ := doJSON(t, a, http.MethodPost, "/api/contact", map[string]string{
		"name": "Ada", "email": "not-an-email", "brand": "B", "vision": "V",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad email status = %d", rec.Code)
	}

	rec, out := doJSON(t, a, http.MethodPost, "/api/contact", map[string]string{
		"name": "Ada", "email": "ada@example.com", "brand": "B", "vision": "V",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["success"] != true {
		t.Errorf("envelope = %v", out)
	}
	if len(mailer.contacts) != 1 || mailer.contacts[0].Email != "ada@example.com" {
		t.Errorf("contacts = %v", mailer.contacts)
	}
}

func TestUploadMediaEndpoint(t *testing.T) {
	a, _ := setupTestApp(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("fake png"))
	w.WriteField("alt", "a photo")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/media/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	data, _ := out["data"].(map[string]any)
	if data["alt"] != "a photo" {
		t.Errorf("data = %v", data)
	}

	// No file part: envelope failure.
	req = httptest.NewRequest(http.MethodPost, "/api/media/upload", strings.NewReader(""))
	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing file status = %d", rec.Code)
	}
}
