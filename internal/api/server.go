package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"job-portal/internal/auth"
	"job-portal/internal/blob"
	"job-portal/internal/jobboard"
	"job-portal/internal/model"
	"job-portal/internal/profile"
	"job-portal/internal/registry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Registry 企业生命周期与管理员操作。
type Registry interface {
	Register(ctx context.Context, in registry.Registration, logo *blob.File) error
	Login(ctx context.Context, email, password string) (registry.CompanySession, error)
	UpdateProfile(ctx context.Context, companyID string, patch model.CompanyProfilePatch) (*model.Company, error)
	AdminLogin(ctx context.Context, email, password string) (string, error)
	ListPending(ctx context.Context) ([]model.PendingCompany, error)
	Approve(ctx context.Context, pendingID string) (*model.Company, error)
	Reject(ctx context.Context, pendingID string) error
}

// JobBoard 职位、申请与求职者操作。
type JobBoard interface {
	PostJob(ctx context.Context, company *model.Company, in jobboard.JobInput) (*model.JobListing, error)
	ListOwnJobs(ctx context.Context, company *model.Company) ([]model.OwnJob, error)
	ToggleVisibility(ctx context.Context, company *model.Company, jobID string) (*model.Job, error)
	ListApplicants(ctx context.Context, company *model.Company) ([]jobboard.CompanyApplication, error)
	ChangeApplicationStatus(ctx context.Context, company *model.Company, id string, status model.ApplicationStatus) (*model.JobApplication, error)
	ListJobs(ctx context.Context) ([]model.JobListing, error)
	GetJob(ctx context.Context, id string) (*model.JobListing, error)
	Apply(ctx context.Context, userID, jobID string) (*model.JobApplication, error)
	ListUserApplications(ctx context.Context, userID string) ([]jobboard.UserApplication, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, userID string, patch model.UserProfilePatch) (*model.User, error)
	UpdateResume(ctx context.Context, userID string, file *blob.File) (*model.User, error)
	ToggleSaveJob(ctx context.Context, userID, jobID string) (bool, error)
	ListSavedJobs(ctx context.Context, userID string) ([]model.JobListing, error)
}

// Profiles 公开资料查询。
type Profiles interface {
	Company(ctx context.Context, id string) (*profile.CompanyPage, error)
	User(ctx context.Context, id string) (*profile.PublicUser, error)
}

// Authenticators 三类主体的守卫。
type Authenticators struct {
	Admin   auth.Authenticator
	Company auth.Authenticator
	Seeker  auth.Authenticator
}

// CORSConfig 跨域配置，AllowOrigins 为空时允许任意来源。
type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins" json:"allow_origins"`
}

// Options 构造 HTTP 处理器所需的依赖。
type Options struct {
	Registry  Registry
	Jobs      JobBoard
	Profiles  Profiles
	Auth      Authenticators
	Realtime  http.Handler
	UploadDir string
	CORS      CORSConfig
	Logger    *log.Logger
}

type server struct {
	registry Registry
	jobs     JobBoard
	profiles Profiles
	logger   *log.Logger
}

// NewHandler 构造 gin 路由。
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[api] ", log.LstdFlags)
	}
	s := &server{registry: opts.Registry, jobs: opts.Jobs, profiles: opts.Profiles, logger: logger}

	r := gin.New()
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{Output: logger.Writer(), SkipPaths: []string{"/health"}}))
	r.Use(gin.RecoveryWithWriter(logger.Writer()))
	r.Use(cors.New(corsConfig(opts.CORS)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Realtime != nil {
		r.GET("/ws", gin.WrapH(opts.Realtime))
	}
	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	api := r.Group("/api")

	admin := api.Group("/admin")
	admin.POST("/login", s.adminLogin)
	adminOnly := admin.Group("", auth.Guard(opts.Auth.Admin))
	adminOnly.GET("/pending-companies", s.listPendingCompanies)
	adminOnly.POST("/approve-company/:id", s.approveCompany)
	adminOnly.POST("/reject-company/:id", s.rejectCompany)

	company := api.Group("/company")
	company.POST("/register", s.registerCompany)
	company.POST("/login", s.companyLogin)
	company.GET("/public/:id", s.publicCompany)
	companyOnly := company.Group("", auth.Guard(opts.Auth.Company))
	companyOnly.GET("/company", s.companyData)
	companyOnly.PUT("/update-profile", s.updateCompanyProfile)
	companyOnly.POST("/post-job", s.postJob)
	companyOnly.GET("/applicants", s.listApplicants)
	companyOnly.GET("/list-jobs", s.listOwnJobs)
	companyOnly.POST("/change-status", s.changeApplicationStatus)
	companyOnly.POST("/change-visiblity", s.changeVisibility)
	companyOnly.POST("/change-visibility", s.changeVisibility)

	jobs := api.Group("/jobs")
	jobs.GET("", s.listJobs)
	jobs.GET("/:id", s.getJob)

	users := api.Group("/users")
	users.GET("/public-profile/:id", s.publicUser)
	userOnly := users.Group("", auth.Guard(opts.Auth.Seeker))
	userOnly.GET("/user", s.userData)
	userOnly.POST("/apply", s.applyForJob)
	userOnly.GET("/applications", s.userApplications)
	userOnly.POST("/update-resume", s.updateResume)
	userOnly.GET("/saved-jobs", s.savedJobs)
	userOnly.POST("/save-job", s.toggleSaveJob)
	userOnly.PUT("/update-profile", s.updateUserProfile)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})

	return r
}

func corsConfig(cfg CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", auth.CompanyHeader, auth.AdminHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
		c.AllowCredentials = true
	}
	return c
}

// respond 写入 {success: true, message?, ...payload}。
func respond(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// fail 按错误类别写入状态码，未分类错误记录日志并返回通用消息。
func (s *server) fail(c *gin.Context, err error) {
	status := model.StatusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"success": false, "message": model.MessageOf(err)})
}

func (s *server) badBody(c *gin.Context) {
	s.fail(c, model.Invalid("Invalid request body"))
}

func companyOf(c *gin.Context) *model.Company {
	actor, _ := auth.ActorFrom(c)
	return actor.Company
}

func userIDOf(c *gin.Context) string {
	actor, _ := auth.ActorFrom(c)
	return actor.UserID
}
