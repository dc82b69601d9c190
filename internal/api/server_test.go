package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"job-portal/internal/auth"
	"job-portal/internal/blob"
	"job-portal/internal/jobboard"
	"job-portal/internal/model"
	"job-portal/internal/profile"
	"job-portal/internal/registry"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h := newTestHandler(Options{})
	w := do(h, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	h := newTestHandler(Options{})
	w := do(h, http.MethodGet, "/api/nothing", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if body := decode(t, w); body["success"] != false {
		t.Fatalf("expected success=false, got %v", body)
	}
}

func TestAdminLogin(t *testing.T) {
	t.Parallel()

	reg := &stubRegistry{token: "admin-jwt"}
	h := newTestHandler(Options{Registry: reg})

	w := do(h, http.MethodPost, "/api/admin/login", `{"email":"root@example.com","password":"pw"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["success"] != true || body["token"] != "admin-jwt" {
		t.Fatalf("unexpected body %v", body)
	}
	if reg.lastEmail != "root@example.com" {
		t.Fatalf("expected email forwarded, got %q", reg.lastEmail)
	}
}

func TestAdminLoginRejected(t *testing.T) {
	t.Parallel()

	reg := &stubRegistry{err: model.Unauthorized("Invalid credentials")}
	h := newTestHandler(Options{Registry: reg})

	w := do(h, http.MethodPost, "/api/admin/login", `{"email":"a@b.c","password":"x"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if body := decode(t, w); body["message"] != "Invalid credentials" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestGuardRejectsMissingToken(t *testing.T) {
	t.Parallel()

	jobs := &stubJobs{}
	h := newTestHandler(Options{
		Jobs: jobs,
		Auth: Authenticators{Company: stubAuth{err: auth.ErrNoToken}},
	})

	w := do(h, http.MethodPost, "/api/company/post-job", `{"title":"x"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if jobs.postCalls != 0 {
		t.Fatalf("handler must not run when guard rejects")
	}
}

func TestPostJob(t *testing.T) {
	t.Parallel()

	company := &model.Company{ID: "c1", Name: "Acme", Status: model.CompanyApproved, IsVerified: true}
	jobs := &stubJobs{}
	h := newTestHandler(Options{
		Jobs: jobs,
		Auth: Authenticators{Company: stubAuth{actor: auth.Actor{Kind: auth.ActorCompany, Company: company}}},
	})

	payload := `{"title":"Go Developer","description":"d","location":"Remote","salary":"1200","level":"Senior","category":"Engineering"}`
	w := do(h, http.MethodPost, "/api/company/post-job", payload, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if jobs.lastCompany != company {
		t.Fatalf("expected guarded company forwarded")
	}
	if v, _ := jobs.lastInput.Salary.Int(); v != 1200 {
		t.Fatalf("expected salary 1200, got %d", v)
	}
	body := decode(t, w)
	if body["message"] != "Job posted successfully!" || body["newJob"] == nil {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestPostJobForbiddenForPendingCompany(t *testing.T) {
	t.Parallel()

	jobs := &stubJobs{err: model.Forbidden("Company account is not approved")}
	h := newTestHandler(Options{
		Jobs: jobs,
		Auth: Authenticators{Company: stubAuth{actor: auth.Actor{Kind: auth.ActorCompany, Company: &model.Company{ID: "c1"}}}},
	})

	w := do(h, http.MethodPost, "/api/company/post-job", `{"title":"x"}`, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestChangeVisibilityMessage(t *testing.T) {
	t.Parallel()

	jobs := &stubJobs{toggled: &model.Job{ID: "j1", Visible: false}}
	h := newTestHandler(Options{
		Jobs: jobs,
		Auth: Authenticators{Company: stubAuth{actor: auth.Actor{Kind: auth.ActorCompany, Company: &model.Company{ID: "c1"}}}},
	})

	for _, path := range []string{"/api/company/change-visibility", "/api/company/change-visiblity"} {
		w := do(h, http.MethodPost, path, `{"id":"j1"}`, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
		if body := decode(t, w); body["message"] != "Job visibility set to hidden." {
			t.Fatalf("%s: unexpected body %v", path, body)
		}
	}
	if jobs.lastJobID != "j1" {
		t.Fatalf("expected job id forwarded, got %q", jobs.lastJobID)
	}
}

func TestApplyDuplicateIsConflict(t *testing.T) {
	t.Parallel()

	jobs := &stubJobs{err: model.Conflict("You have already applied for this job")}
	h := newTestHandler(Options{
		Jobs: jobs,
		Auth: Authenticators{Seeker: stubAuth{actor: auth.Actor{Kind: auth.ActorSeeker, UserID: "user_1"}}},
	})

	w := do(h, http.MethodPost, "/api/users/apply", `{"jobId":"j1"}`, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if jobs.lastUserID != "user_1" || jobs.lastJobID != "j1" {
		t.Fatalf("unexpected forwarded ids %q %q", jobs.lastUserID, jobs.lastJobID)
	}
}

func TestInternalErrorsAreMasked(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	jobs := &stubJobs{err: errors.New("database is locked")}
	h := newTestHandler(Options{Jobs: jobs, Logger: log.New(&logs, "", 0)})

	w := do(h, http.MethodGet, "/api/jobs", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "database is locked") {
		t.Fatalf("internal error leaked: %s", w.Body.String())
	}
	if !strings.Contains(logs.String(), "database is locked") {
		t.Fatalf("expected internal error logged, got %q", logs.String())
	}
}

func TestRegisterCompanyMultipart(t *testing.T) {
	t.Parallel()

	reg := &stubRegistry{}
	h := newTestHandler(Options{Registry: reg})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"name": "Acme", "email": "hr@acme.io", "password": "secret",
		"website": "https://acme.io", "cin": "cin1", "domain": "acme.io",
	} {
		_ = mw.WriteField(k, v)
	}
	fw, _ := mw.CreateFormFile("image", "logo.png")
	_, _ = fw.Write([]byte("png"))
	_ = mw.Close()

	w := do(h, http.MethodPost, "/api/company/register", buf.String(), map[string]string{"Content-Type": mw.FormDataContentType()})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if reg.registered.Name != "Acme" || reg.registered.CIN != "cin1" {
		t.Fatalf("unexpected registration %+v", reg.registered)
	}
	if reg.logoName != "logo.png" || reg.logoBody != "png" {
		t.Fatalf("unexpected logo %q %q", reg.logoName, reg.logoBody)
	}
}

func TestPublicUserProfile(t *testing.T) {
	t.Parallel()

	profiles := &stubProfiles{user: &profile.PublicUser{Name: "Ann"}}
	h := newTestHandler(Options{Profiles: profiles})

	w := do(h, http.MethodGet, "/api/users/public-profile/user_1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	user, _ := decode(t, w)["user"].(map[string]any)
	if user["name"] != "Ann" {
		t.Fatalf("unexpected user %v", user)
	}
	if profiles.lastID != "user_1" {
		t.Fatalf("expected id forwarded, got %q", profiles.lastID)
	}
}

func newTestHandler(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return NewHandler(opts)
}

func do(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, w.Body.String())
	}
	return body
}

// --- stubs ---

type stubAuth struct {
	actor auth.Actor
	err   error
}

func (s stubAuth) Authenticate(*http.Request) (auth.Actor, error) {
	return s.actor, s.err
}

type stubRegistry struct {
	Registry
	token      string
	err        error
	lastEmail  string
	registered registry.Registration
	logoName   string
	logoBody   string
}

func (s *stubRegistry) AdminLogin(_ context.Context, email, _ string) (string, error) {
	s.lastEmail = email
	return s.token, s.err
}

func (s *stubRegistry) Register(_ context.Context, in registry.Registration, logo *blob.File) error {
	s.registered = in
	if logo != nil {
		data, _ := io.ReadAll(logo.Body)
		s.logoName, s.logoBody = logo.Name, string(data)
	}
	return s.err
}

type stubJobs struct {
	JobBoard
	err         error
	toggled     *model.Job
	postCalls   int
	lastCompany *model.Company
	lastInput   jobboard.JobInput
	lastJobID   string
	lastUserID  string
}

func (s *stubJobs) PostJob(_ context.Context, company *model.Company, in jobboard.JobInput) (*model.JobListing, error) {
	s.postCalls++
	s.lastCompany, s.lastInput = company, in
	if s.err != nil {
		return nil, s.err
	}
	return &model.JobListing{Job: model.Job{ID: "j1", Title: in.Title}, Company: company.Card()}, nil
}

func (s *stubJobs) ToggleVisibility(_ context.Context, _ *model.Company, jobID string) (*model.Job, error) {
	s.lastJobID = jobID
	return s.toggled, s.err
}

func (s *stubJobs) Apply(_ context.Context, userID, jobID string) (*model.JobApplication, error) {
	s.lastUserID, s.lastJobID = userID, jobID
	if s.err != nil {
		return nil, s.err
	}
	return &model.JobApplication{ID: "a1", JobID: jobID, UserID: userID}, nil
}

func (s *stubJobs) ListJobs(context.Context) ([]model.JobListing, error) {
	return nil, s.err
}

type stubProfiles struct {
	Profiles
	user   *profile.PublicUser
	lastID string
}

func (s *stubProfiles) User(_ context.Context, id string) (*profile.PublicUser, error) {
	s.lastID = id
	return s.user, nil
}
