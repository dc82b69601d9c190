package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"job-portal/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(Config{Path: filepath.Join(t.TempDir(), "portal.db"), LogLevel: "silent"})
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func seedCompany(t *testing.T, store *Store, email, cin, domain string) *model.Company {
	t.Helper()

	ctx := context.Background()
	pending := &model.PendingCompany{Name: "Acme", Email: email, PasswordHash: "hash", CIN: cin, Domain: domain}
	if err := store.CreatePendingCompany(ctx, pending); err != nil {
		t.Fatalf("CreatePendingCompany error: %v", err)
	}
	company, err := store.ApprovePendingCompany(ctx, pending.ID)
	if err != nil {
		t.Fatalf("ApprovePendingCompany error: %v", err)
	}
	return company
}

func seedJob(t *testing.T, store *Store, companyID, title string, date time.Time) *model.Job {
	t.Helper()

	job := &model.Job{CompanyID: companyID, Title: title, Salary: 100, Date: date, Visible: true}
	if err := store.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("CreateJob error: %v", err)
	}
	return job
}

func TestStoreRegistrationConflicts(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	seedCompany(t, store, "hr@acme.io", "CIN1", "acme.io")
	if err := store.CreatePendingCompany(ctx, &model.PendingCompany{Name: "Beta", Email: "jobs@beta.io", PasswordHash: "h", CIN: "CIN2", Domain: "beta.io"}); err != nil {
		t.Fatalf("CreatePendingCompany error: %v", err)
	}

	got, err := store.FindRegistrationConflicts(ctx, "HR@acme.io", "CIN2", "gamma.io")
	if err != nil {
		t.Fatalf("FindRegistrationConflicts error: %v", err)
	}
	if !got.Email || !got.CIN || got.Domain {
		t.Fatalf("unexpected conflicts: %+v", got)
	}

	got, err = store.FindRegistrationConflicts(ctx, "new@gamma.io", "CIN3", "gamma.io")
	if err != nil {
		t.Fatalf("FindRegistrationConflicts error: %v", err)
	}
	if got.Any() {
		t.Fatalf("expected no conflicts, got %+v", got)
	}
}

func TestStoreApprovePendingCompany(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	pending := &model.PendingCompany{Name: "Acme", Email: "hr@acme.io", PasswordHash: "hash", CIN: "CIN1", Domain: "acme.io", Image: "logo.png"}
	if err := store.CreatePendingCompany(ctx, pending); err != nil {
		t.Fatalf("CreatePendingCompany error: %v", err)
	}

	company, err := store.ApprovePendingCompany(ctx, pending.ID)
	if err != nil {
		t.Fatalf("ApprovePendingCompany error: %v", err)
	}
	if company.Status != model.CompanyApproved || !company.IsVerified {
		t.Fatalf("expected approved and verified company, got %+v", company)
	}
	if company.Image != "logo.png" || company.PasswordHash != "hash" {
		t.Fatalf("expected fields copied, got %+v", company)
	}

	if _, err := store.ApprovePendingCompany(ctx, pending.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found on second approval, got %v", err)
	}

	pendings, err := store.ListPendingCompanies(ctx)
	if err != nil {
		t.Fatalf("ListPendingCompanies error: %v", err)
	}
	if len(pendings) != 0 {
		t.Fatalf("expected staging table empty, got %d", len(pendings))
	}
}

func TestStoreApproveConflictRemovesPending(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	seedCompany(t, store, "hr@acme.io", "CIN1", "acme.io")

	// 绕过注册检查，模拟并发写入的过期申请。
	stale := &model.PendingCompany{Name: "Acme 2", Email: "other@acme.io", PasswordHash: "h", CIN: "CIN9", Domain: "acme.io"}
	if err := store.CreatePendingCompany(ctx, stale); err != nil {
		t.Fatalf("CreatePendingCompany error: %v", err)
	}

	_, err := store.ApprovePendingCompany(ctx, stale.ID)
	if !errors.Is(err, model.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := store.FindPendingCompanyByEmail(ctx, "other@acme.io"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected stale pending entry removed, got %v", err)
	}
}

func TestStoreListPendingOldestFirst(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, email := range []string{"b@b.io", "a@a.io"} {
		p := &model.PendingCompany{Name: email, Email: email, PasswordHash: "h", CIN: email, Domain: email, SubmittedAt: base.Add(time.Duration(-i) * time.Hour)}
		if err := store.CreatePendingCompany(ctx, p); err != nil {
			t.Fatalf("CreatePendingCompany error: %v", err)
		}
	}

	rows, err := store.ListPendingCompanies(ctx)
	if err != nil {
		t.Fatalf("ListPendingCompanies error: %v", err)
	}
	if len(rows) != 2 || rows[0].Email != "a@a.io" {
		t.Fatalf("expected oldest submission first, got %+v", rows)
	}

	if _, err := store.DeletePendingCompany(ctx, rows[0].ID); err != nil {
		t.Fatalf("DeletePendingCompany error: %v", err)
	}
	if _, err := store.DeletePendingCompany(ctx, rows[0].ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestStoreApplicationUniqueness(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	company := seedCompany(t, store, "hr@acme.io", "CIN1", "acme.io")
	job := seedJob(t, store, company.ID, "Go Developer", time.Now())

	first := &model.JobApplication{CompanyID: company.ID, JobID: job.ID, UserID: "user_1"}
	if err := store.CreateApplication(ctx, first); err != nil {
		t.Fatalf("CreateApplication error: %v", err)
	}
	if first.Status != model.ApplicationPending {
		t.Fatalf("expected Pending status, got %s", first.Status)
	}

	err := store.CreateApplication(ctx, &model.JobApplication{CompanyID: company.ID, JobID: job.ID, UserID: "user_1"})
	if !errors.Is(err, ErrDuplicateApplication) {
		t.Fatalf("expected duplicate application error, got %v", err)
	}

	applied, err := store.HasApplied(ctx, job.ID, "user_1")
	if err != nil || !applied {
		t.Fatalf("expected HasApplied true, got %v %v", applied, err)
	}
}

func TestStoreUpdateApplicationStatusOwnership(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	owner := seedCompany(t, store, "hr@acme.io", "CIN1", "acme.io")
	other := seedCompany(t, store, "hr@beta.io", "CIN2", "beta.io")
	job := seedJob(t, store, owner.ID, "Go Developer", time.Now())

	app := &model.JobApplication{CompanyID: owner.ID, JobID: job.ID, UserID: "user_1"}
	if err := store.CreateApplication(ctx, app); err != nil {
		t.Fatalf("CreateApplication error: %v", err)
	}

	err := store.UpdateApplicationStatus(ctx, other.ID, app.ID, model.ApplicationAccepted)
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found for foreign company, got %v", err)
	}
	got, err := store.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetApplication error: %v", err)
	}
	if got.Status != model.ApplicationPending {
		t.Fatalf("expected status unchanged, got %s", got.Status)
	}

	if err := store.UpdateApplicationStatus(ctx, owner.ID, app.ID, model.ApplicationShortlisted); err != nil {
		t.Fatalf("UpdateApplicationStatus error: %v", err)
	}
	got, _ = store.GetApplication(ctx, app.ID)
	if got.Status != model.ApplicationShortlisted {
		t.Fatalf("expected Shortlisted, got %s", got.Status)
	}
}

func TestStoreToggleJobVisibility(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	owner := seedCompany(t, store, "hr@acme.io", "CIN1", "acme.io")
	other := seedCompany(t, store, "hr@beta.io", "CIN2", "beta.io")
	job := seedJob(t, store, owner.ID, "Go Developer", time.Now())

	if _, err := store.ToggleJobVisibility(ctx, other.ID, job.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found for foreign company, got %v", err)
	}

	got, err := store.ToggleJobVisibility(ctx, owner.ID, job.ID)
	if err != nil {
		t.Fatalf("ToggleJobVisibility error: %v", err)
	}
	if got.Visible {
		t.Fatalf("expected job hidden after toggle")
	}

	visible, err := store.ListVisibleJobs(ctx, JobQuery{})
	if err != nil {
		t.Fatalf("ListVisibleJobs error: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("expected hidden job excluded, got %d", len(visible))
	}

	got, err = store.ToggleJobVisibility(ctx, owner.ID, job.ID)
	if err != nil {
		t.Fatalf("ToggleJobVisibility error: %v", err)
	}
	if !got.Visible {
		t.Fatalf("expected job visible after second toggle")
	}
}

func TestStoreListCompanyJobsCountsApplicants(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	company := seedCompany(t, store, "hr@acme.io", "CIN1", "acme.io")
	now := time.Now()
	older := seedJob(t, store, company.ID, "Older", now.Add(-time.Hour))
	newer := seedJob(t, store, company.ID, "Newer", now)

	for _, user := range []string{"u1", "u2"} {
		if err := store.CreateApplication(ctx, &model.JobApplication{CompanyID: company.ID, JobID: older.ID, UserID: user}); err != nil {
			t.Fatalf("CreateApplication error: %v", err)
		}
	}

	jobs, err := store.ListCompanyJobs(ctx, company.ID)
	if err != nil {
		t.Fatalf("ListCompanyJobs error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != newer.ID || jobs[0].Applicants != 0 {
		t.Fatalf("unexpected first job %+v", jobs[0])
	}
	if jobs[1].ID != older.ID || jobs[1].Applicants != 2 {
		t.Fatalf("unexpected second job %+v", jobs[1])
	}
}

func TestStoreSavedJobs(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	company := seedCompany(t, store, "hr@acme.io", "CIN1", "acme.io")
	kept := seedJob(t, store, company.ID, "Kept", time.Now())
	hidden := seedJob(t, store, company.ID, "Hidden", time.Now())

	for _, id := range []string{kept.ID, hidden.ID} {
		saved, err := store.ToggleSavedJob(ctx, "user_1", id)
		if err != nil || !saved {
			t.Fatalf("expected saved, got %v %v", saved, err)
		}
	}
	if _, err := store.ToggleJobVisibility(ctx, company.ID, hidden.ID); err != nil {
		t.Fatalf("ToggleJobVisibility error: %v", err)
	}

	jobs, err := store.ListSavedJobs(ctx, "user_1")
	if err != nil {
		t.Fatalf("ListSavedJobs error: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != kept.ID {
		t.Fatalf("expected only visible saved job, got %+v", jobs)
	}
	if jobs[0].Company == nil || jobs[0].Company.Name != "Acme" {
		t.Fatalf("expected company preloaded, got %+v", jobs[0].Company)
	}

	saved, err := store.ToggleSavedJob(ctx, "user_1", kept.ID)
	if err != nil || saved {
		t.Fatalf("expected unsaved after second toggle, got %v %v", saved, err)
	}
}

func TestStoreUserProfilePatch(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	user := &model.User{ID: "user_1", Name: "Ada", Email: "ada@example.com"}
	if err := store.EnsureUser(ctx, user); err != nil {
		t.Fatalf("EnsureUser error: %v", err)
	}

	headline := "Engineer"
	skills := []string{"go", "sql"}
	got, err := store.UpdateUserProfile(ctx, "user_1", model.UserProfilePatch{Headline: &headline, Skills: &skills})
	if err != nil {
		t.Fatalf("UpdateUserProfile error: %v", err)
	}
	if got.Headline != "Engineer" || len(got.Skills) != 2 {
		t.Fatalf("unexpected user after patch %+v", got)
	}

	location := "Pune"
	got, err = store.UpdateUserProfile(ctx, "user_1", model.UserProfilePatch{Location: &location})
	if err != nil {
		t.Fatalf("UpdateUserProfile error: %v", err)
	}
	if got.Headline != "Engineer" || got.Location != "Pune" {
		t.Fatalf("expected untouched fields kept, got %+v", got)
	}

	prev, err := store.UpdateUserResume(ctx, "user_1", "/uploads/resumes/a.pdf")
	if err != nil || prev != "" {
		t.Fatalf("UpdateUserResume unexpected %q %v", prev, err)
	}
	if _, err := store.GetUser(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
