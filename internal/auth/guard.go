package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"job-portal/internal/model"

	"github.com/gin-gonic/gin"
)

// 三类守卫读取的请求头。
const (
	AdminHeader   = "admin-token"
	CompanyHeader = "token"
)

const actorKey = "actor"

// ActorKind 已认证主体的类型。
type ActorKind string

const (
	ActorAdmin   ActorKind = "admin"
	ActorCompany ActorKind = "company"
	ActorSeeker  ActorKind = "seeker"
)

// Actor 守卫解析出的请求主体，按 Kind 只填充对应字段。
type Actor struct {
	Kind    ActorKind
	Admin   *model.Admin
	Company *model.Company
	UserID  string
}

// Authenticator 从请求中解析主体，失败时返回认证类错误。
type Authenticator interface {
	Authenticate(r *http.Request) (Actor, error)
}

// AdminStore 管理员守卫所需的存储接口。
type AdminStore interface {
	GetAdmin(ctx context.Context, id string) (*model.Admin, error)
}

// CompanyStore 企业守卫所需的存储接口。
type CompanyStore interface {
	GetCompany(ctx context.Context, id string) (*model.Company, error)
}

// UserStore 求职者守卫用于首次访问时建档。
type UserStore interface {
	EnsureUser(ctx context.Context, user *model.User) error
}

// AdminAuthenticator 校验 admin-token 头中的管理员令牌。
type AdminAuthenticator struct {
	issuer *Issuer
	store  AdminStore
}

// NewAdminAuthenticator 创建管理员守卫。
func NewAdminAuthenticator(issuer *Issuer, store AdminStore) *AdminAuthenticator {
	return &AdminAuthenticator{issuer: issuer, store: store}
}

// Authenticate 解析令牌并加载管理员。
func (a *AdminAuthenticator) Authenticate(r *http.Request) (Actor, error) {
	id, err := a.issuer.Parse(tokenFrom(r, AdminHeader))
	if err != nil {
		return Actor{}, err
	}
	admin, err := a.store.GetAdmin(r.Context(), id)
	if err != nil {
		return Actor{}, actorLookupError(err)
	}
	return Actor{Kind: ActorAdmin, Admin: admin}, nil
}

// CompanyAuthenticator 校验 token 头中的企业令牌，每次请求都重新加载企业。
type CompanyAuthenticator struct {
	issuer *Issuer
	store  CompanyStore
}

// NewCompanyAuthenticator 创建企业守卫。
func NewCompanyAuthenticator(issuer *Issuer, store CompanyStore) *CompanyAuthenticator {
	return &CompanyAuthenticator{issuer: issuer, store: store}
}

// Authenticate 解析令牌并加载最新的企业记录，不检查审核状态。
func (a *CompanyAuthenticator) Authenticate(r *http.Request) (Actor, error) {
	id, err := a.issuer.Parse(tokenFrom(r, CompanyHeader))
	if err != nil {
		return Actor{}, err
	}
	company, err := a.store.GetCompany(r.Context(), id)
	if err != nil {
		return Actor{}, actorLookupError(err)
	}
	return Actor{Kind: ActorCompany, Company: company}, nil
}

// SeekerAuthenticator 将 bearer 凭证交给外部身份服务校验。
type SeekerAuthenticator struct {
	verifier IdentityVerifier
	store    UserStore
	logger   *log.Logger
}

// NewSeekerAuthenticator 创建求职者守卫，store 为空时不自动建档。
func NewSeekerAuthenticator(verifier IdentityVerifier, store UserStore, logger *log.Logger) *SeekerAuthenticator {
	if logger == nil {
		logger = log.New(os.Stdout, "[auth] ", log.LstdFlags)
	}
	return &SeekerAuthenticator{verifier: verifier, store: store, logger: logger}
}

// Authenticate 校验凭证，身份带邮箱且尚未建档时创建求职者记录。
// 建档失败（例如同一邮箱已被旧的 subject 占用）只记录日志，身份仍然有效。
func (a *SeekerAuthenticator) Authenticate(r *http.Request) (Actor, error) {
	credential := bearer(r)
	if credential == "" {
		return Actor{}, ErrNoToken
	}
	identity, err := a.verifier.Verify(r.Context(), credential)
	if err != nil {
		return Actor{}, err
	}
	if a.store != nil && identity.Email != "" {
		user := &model.User{ID: identity.Subject, Name: identity.Name, Email: identity.Email, Image: identity.Picture}
		if err := a.store.EnsureUser(r.Context(), user); err != nil {
			a.logger.Printf("provision user %s (%s): %v", identity.Subject, identity.Email, err)
		}
	}
	return Actor{Kind: ActorSeeker, UserID: identity.Subject}, nil
}

// Guard 将 Authenticator 适配为 gin 中间件，失败时以 401 终止请求。
func Guard(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := a.Authenticate(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(model.StatusOf(err), gin.H{"success": false, "message": model.MessageOf(err)})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom 读取守卫写入的主体。
func ActorFrom(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}

// WithActor 写入主体，供测试或自定义中间件使用。
func WithActor(c *gin.Context, actor Actor) {
	c.Set(actorKey, actor)
}

func actorLookupError(err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return ErrActorNotFound
	}
	return err
}

func tokenFrom(r *http.Request, header string) string {
	if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
		return strings.TrimSpace(strings.TrimPrefix(v, "Bearer "))
	}
	return bearer(r)
}

func bearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < 7 || !strings.EqualFold(v[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(v[7:])
}
