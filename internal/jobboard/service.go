package jobboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"job-portal/internal/blob"
	"job-portal/internal/model"
	"job-portal/internal/notifier"
	"job-portal/internal/storage"
	"job-portal/internal/validation"

	"github.com/google/uuid"
)

// ResumeFolder 简历的存储目录。
const ResumeFolder = "resumes"

const notifyTimeout = 5 * time.Second

// Store 职位与申请所需的存储接口。
type Store interface {
	CreateJob(ctx context.Context, job *model.Job) error
	GetJob(ctx context.Context, id string) (*model.Job, error)
	ListVisibleJobs(ctx context.Context, q storage.JobQuery) ([]model.Job, error)
	ListCompanyJobs(ctx context.Context, companyID string) ([]model.OwnJob, error)
	ToggleJobVisibility(ctx context.Context, companyID, jobID string) (*model.Job, error)
	HasApplied(ctx context.Context, jobID, userID string) (bool, error)
	CreateApplication(ctx context.Context, app *model.JobApplication) error
	GetApplication(ctx context.Context, id string) (*model.JobApplication, error)
	ListCompanyApplications(ctx context.Context, companyID string) ([]model.JobApplication, error)
	ListUserApplications(ctx context.Context, userID string) ([]model.JobApplication, error)
	UpdateApplicationStatus(ctx context.Context, companyID, id string, status model.ApplicationStatus) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, id string, patch model.UserProfilePatch) (*model.User, error)
	UpdateUserResume(ctx context.Context, id, resumeURL string) (string, error)
	ToggleSavedJob(ctx context.Context, userID, jobID string) (bool, error)
	ListSavedJobs(ctx context.Context, userID string) ([]model.Job, error)
}

// Service 负责职位发布、申请处理与求职者操作。
type Service struct {
	store    Store
	notifier notifier.Notifier
	blobs    blob.Store
	logger   *log.Logger
	now      func() time.Time
}

// NewService 创建服务，notif 为空时不推送。
func NewService(store Store, notif notifier.Notifier, blobs blob.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(os.Stdout, "[jobboard] ", log.LstdFlags)
	}
	return &Service{store: store, notifier: notif, blobs: blobs, logger: logger, now: time.Now}
}

// RequireApproved 企业写操作前的状态门禁。
func RequireApproved(company *model.Company) error {
	if company == nil || !company.Approved() {
		return model.Forbidden("Company account is not approved")
	}
	return nil
}

// JobInput 发布职位的表单。
type JobInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Salary      Salary `json:"salary" validate:"required"`
	Level       string `json:"level" validate:"required"`
	Category    string `json:"category" validate:"required"`
}

// PostJob 发布职位并广播；推送失败只记录日志。
func (s *Service) PostJob(ctx context.Context, company *model.Company, in JobInput) (*model.JobListing, error) {
	if err := RequireApproved(company); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	salary, ok := in.Salary.Int()
	if !ok {
		return nil, model.Invalid("Salary must be a non-negative integer")
	}

	job := &model.Job{
		CompanyID:   company.ID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Salary:      salary,
		Level:       in.Level,
		Category:    in.Category,
		Date:        s.now(),
		Visible:     true,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("post job: %w", err)
	}
	job.Company = company
	listing := job.Listing()

	if s.notifier != nil {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(nctx, []model.JobListing{listing}); err != nil {
			s.logger.Printf("notify job %s: %v", job.ID, err)
		}
	}
	return &listing, nil
}

// ListOwnJobs 返回企业全部职位及实时申请数。
func (s *Service) ListOwnJobs(ctx context.Context, company *model.Company) ([]model.OwnJob, error) {
	if err := RequireApproved(company); err != nil {
		return nil, err
	}
	jobs, err := s.store.ListCompanyJobs(ctx, company.ID)
	if err != nil {
		return nil, fmt.Errorf("list own jobs: %w", err)
	}
	return jobs, nil
}

// ToggleVisibility 翻转职位可见性，非本企业职位视为不存在。
func (s *Service) ToggleVisibility(ctx context.Context, company *model.Company, jobID string) (*model.Job, error) {
	if err := RequireApproved(company); err != nil {
		return nil, err
	}
	if err := checkID(jobID, "job"); err != nil {
		return nil, err
	}
	return s.store.ToggleJobVisibility(ctx, company.ID, jobID)
}

// ListJobs 返回全部可见职位。
func (s *Service) ListJobs(ctx context.Context) ([]model.JobListing, error) {
	jobs, err := s.store.ListVisibleJobs(ctx, storage.JobQuery{})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return listings(jobs), nil
}

// GetJob 返回单个可见职位。
func (s *Service) GetJob(ctx context.Context, id string) (*model.JobListing, error) {
	job, err := s.visibleJob(ctx, id)
	if err != nil {
		return nil, err
	}
	listing := job.Listing()
	return &listing, nil
}

func (s *Service) visibleJob(ctx context.Context, id string) (*model.Job, error) {
	if err := checkID(id, "job"); err != nil {
		return nil, err
	}
	job, err := s.store.GetJob(ctx, id)
	if errors.Is(err, model.ErrNotFound) || (err == nil && !job.Visible) {
		return nil, model.NotFound("Job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func listings(jobs []model.Job) []model.JobListing {
	out := make([]model.JobListing, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Listing())
	}
	return out
}

func checkID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return model.Invalid("Invalid %s id", what)
	}
	return nil
}
