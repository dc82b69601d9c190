package jobboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-portal/internal/model"
	"job-portal/internal/storage"
)

// ApplicantCard 企业查看申请时可见的求职者字段。
type ApplicantCard struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Resume string `json:"resume"`
}

// ApplicationJob 申请关联的职位字段。
type ApplicationJob struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Category string `json:"category,omitempty"`
	Level    string `json:"level,omitempty"`
	Salary   int64  `json:"salary,omitempty"`
}

// CompanyApplication 企业收到的申请。
type CompanyApplication struct {
	ID     string                  `json:"id"`
	Status model.ApplicationStatus `json:"status"`
	Date   time.Time               `json:"date"`
	User   ApplicantCard           `json:"user"`
	Job    ApplicationJob          `json:"job"`
}

// ApplicationCompany 求职者查看申请时的企业字段。
type ApplicationCompany struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// UserApplication 求职者自己的申请。
type UserApplication struct {
	ID      string                  `json:"id"`
	Status  model.ApplicationStatus `json:"status"`
	Date    time.Time               `json:"date"`
	Company ApplicationCompany      `json:"company"`
	Job     ApplicationJob          `json:"job"`
}

// Apply 申请可见职位，同一职位只能申请一次。
func (s *Service) Apply(ctx context.Context, userID, jobID string) (*model.JobApplication, error) {
	job, err := s.visibleJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	applied, err := s.store.HasApplied(ctx, job.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("apply for job: %w", err)
	}
	if applied {
		return nil, storage.ErrDuplicateApplication
	}

	app := &model.JobApplication{
		CompanyID: job.CompanyID,
		UserID:    userID,
		JobID:     job.ID,
		Date:      s.now(),
		Status:    model.ApplicationPending,
	}
	if err := s.store.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, storage.ErrDuplicateApplication) {
			return nil, err
		}
		return nil, fmt.Errorf("apply for job: %w", err)
	}
	return app, nil
}

// ListApplicants 返回企业收到的申请，最新的在前。
func (s *Service) ListApplicants(ctx context.Context, company *model.Company) ([]CompanyApplication, error) {
	if err := RequireApproved(company); err != nil {
		return nil, err
	}
	apps, err := s.store.ListCompanyApplications(ctx, company.ID)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	out := make([]CompanyApplication, 0, len(apps))
	for _, a := range apps {
		view := CompanyApplication{ID: a.ID, Status: a.Status, Date: a.Date}
		view.User.ID = a.UserID
		if a.User != nil {
			view.User = ApplicantCard{ID: a.User.ID, Name: a.User.Name, Image: a.User.Image, Resume: a.User.Resume}
		}
		view.Job.ID = a.JobID
		if a.Job != nil {
			view.Job = ApplicationJob{ID: a.Job.ID, Title: a.Job.Title, Location: a.Job.Location, Category: a.Job.Category, Level: a.Job.Level, Salary: a.Job.Salary}
		}
		out = append(out, view)
	}
	return out, nil
}

// ListUserApplications 返回求职者的申请，最新的在前。
func (s *Service) ListUserApplications(ctx context.Context, userID string) ([]UserApplication, error) {
	apps, err := s.store.ListUserApplications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user applications: %w", err)
	}
	out := make([]UserApplication, 0, len(apps))
	for _, a := range apps {
		view := UserApplication{ID: a.ID, Status: a.Status, Date: a.Date}
		view.Company.ID = a.CompanyID
		if a.Company != nil {
			view.Company = ApplicationCompany{ID: a.Company.ID, Name: a.Company.Name, Image: a.Company.Image}
		}
		view.Job.ID = a.JobID
		if a.Job != nil {
			view.Job = ApplicationJob{ID: a.Job.ID, Title: a.Job.Title, Location: a.Job.Location}
		}
		out = append(out, view)
	}
	return out, nil
}

// ChangeApplicationStatus 更新申请状态；申请不属于该企业时返回未找到。
func (s *Service) ChangeApplicationStatus(ctx context.Context, company *model.Company, id string, status model.ApplicationStatus) (*model.JobApplication, error) {
	if err := RequireApproved(company); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, model.Invalid("Invalid status value")
	}
	if err := checkID(id, "application"); err != nil {
		return nil, err
	}
	if err := s.store.UpdateApplicationStatus(ctx, company.ID, id, status); err != nil {
		return nil, err
	}
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("change application status: %w", err)
	}
	return app, nil
}
