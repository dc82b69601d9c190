package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"job-portal/internal/auth"
	"job-portal/internal/blob"
	"job-portal/internal/storage"
)

func TestBuildAppAdminFlow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := AppConfig{
		Database: storage.Config{Path: filepath.Join(dir, "app.db"), LogLevel: "silent"},
		Storage:  blob.Config{Dir: filepath.Join(dir, "uploads")},
		Auth:     AuthConfig{AdminSecret: "admin-secret", CompanySecret: "company-secret", BcryptCost: bcrypt.MinCost},
		Identity: auth.IdentityConfig{Mode: "session", Secret: "identity-secret"},
	}

	deps, cleanup, err := buildApp(cfg)
	if err != nil {
		t.Fatalf("buildApp error: %v", err)
	}
	defer cleanup()

	if _, err := deps.registry.BootstrapAdmin(context.Background(), "root@example.com", "pw"); err != nil {
		t.Fatalf("BootstrapAdmin error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"email":"root@example.com","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	deps.handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("login: missing token (%v) %s", err, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/pending-companies", nil)
	req.Header.Set(auth.AdminHeader, login.Token)
	w = httptest.NewRecorder()
	deps.handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("pending: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/pending-companies", nil)
	w = httptest.NewRecorder()
	deps.handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("pending without token: expected 401, got %d", w.Code)
	}
}

func TestBuildAppRejectsMissingSecrets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := AppConfig{
		Database: storage.Config{Path: filepath.Join(dir, "app.db"), LogLevel: "silent"},
		Storage:  blob.Config{Dir: filepath.Join(dir, "uploads")},
	}
	if _, _, err := buildApp(cfg); err == nil {
		t.Fatalf("expected error without token secrets")
	}
}
