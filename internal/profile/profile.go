package profile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"job-portal/internal/model"
	"job-portal/internal/storage"

	"github.com/google/uuid"
)

// Store 公开资料所需的只读存储接口。
type Store interface {
	GetCompany(ctx context.Context, id string) (*model.Company, error)
	ListVisibleJobs(ctx context.Context, q storage.JobQuery) ([]model.Job, error)
	CountVisibleJobs(ctx context.Context, companyID string) (int64, error)
	CountApplicationsByStatus(ctx context.Context, companyID string) (map[model.ApplicationStatus]int64, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// 外部身份服务签发的 subject，例如 "user_2abc" 或 "google-oauth2|123"。
var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.:|\-]{1,128}$`)

// PublicCompany 企业公开字段，不含邮箱、密码与 CIN。
type PublicCompany struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Website     string    `json:"website"`
	Domain      string    `json:"domain"`
	Description string    `json:"description"`
	Industry    string    `json:"industry"`
	Location    string    `json:"location"`
	CompanySize string    `json:"companySize"`
	IsVerified  bool      `json:"isVerified"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CompanyPage 企业主页。
type CompanyPage struct {
	Company PublicCompany      `json:"company"`
	Jobs    []model.JobListing `json:"jobs"`
	Stats   model.CompanyStats `json:"stats"`
}

// PublicUser 求职者公开字段。
type PublicUser struct {
	Name          string             `json:"name"`
	Image         string             `json:"image"`
	Email         string             `json:"email"`
	Resume        string             `json:"resume"`
	Headline      string             `json:"headline"`
	Location      string             `json:"location"`
	Skills        []string           `json:"skills"`
	Experience    []model.Experience `json:"experience"`
	Education     []model.Education  `json:"education"`
	PortfolioLink string             `json:"portfolioLink"`
	LinkedinLink  string             `json:"linkedinLink"`
}

// Service 提供无需登录的公开资料查询。
type Service struct {
	store Store
}

// NewService 创建公开资料服务。
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Company 返回企业公开资料、可见职位与统计数据。
func (s *Service) Company(ctx context.Context, id string) (*CompanyPage, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.Invalid("Invalid company id")
	}
	company, err := s.store.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NotFound("Company not found")
		}
		return nil, fmt.Errorf("public company profile: %w", err)
	}

	jobs, err := s.store.ListVisibleJobs(ctx, storage.JobQuery{CompanyID: id})
	if err != nil {
		return nil, fmt.Errorf("public company profile: %w", err)
	}
	visible, err := s.store.CountVisibleJobs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("public company profile: %w", err)
	}
	counts, err := s.store.CountApplicationsByStatus(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("public company profile: %w", err)
	}

	page := &CompanyPage{
		Company: PublicCompany{
			ID:          company.ID,
			Name:        company.Name,
			Image:       company.Image,
			Website:     company.Website,
			Domain:      company.Domain,
			Description: company.Description,
			Industry:    company.Industry,
			Location:    company.Location,
			CompanySize: company.CompanySize,
			IsVerified:  company.IsVerified,
			CreatedAt:   company.CreatedAt,
		},
		Jobs:  make([]model.JobListing, 0, len(jobs)),
		Stats: Stats(visible, counts),
	}
	for _, j := range jobs {
		page.Jobs = append(page.Jobs, j.Listing())
	}
	return page, nil
}

// Stats 计算企业统计：回复率 = round(100 × (录用+拒绝) / 申请总数)，无申请时为 0。
func Stats(visibleJobs int64, counts map[model.ApplicationStatus]int64) model.CompanyStats {
	var total int64
	for _, n := range counts {
		total += n
	}
	stats := model.CompanyStats{
		TotalJobs:  visibleJobs,
		TotalHires: counts[model.ApplicationAccepted],
	}
	if total > 0 {
		responded := counts[model.ApplicationAccepted] + counts[model.ApplicationRejected]
		stats.ResponseRate = int64(math.Round(100 * float64(responded) / float64(total)))
	}
	return stats
}

// User 返回求职者公开资料；ID 格式非法与不存在分别返回 400 与 404 类错误。
func (s *Service) User(ctx context.Context, id string) (*PublicUser, error) {
	if !userIDPattern.MatchString(id) {
		return nil, model.Invalid("Invalid user id")
	}
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NotFound("User not found")
		}
		return nil, fmt.Errorf("public user profile: %w", err)
	}
	return &PublicUser{
		Name:          user.Name,
		Image:         user.Image,
		Email:         user.Email,
		Resume:        user.Resume,
		Headline:      user.Headline,
		Location:      user.Location,
		Skills:        user.Skills,
		Experience:    user.Experience,
		Education:     user.Education,
		PortfolioLink: user.PortfolioLink,
		LinkedinLink:  user.LinkedinLink,
	}, nil
}
