package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"job-portal/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// DefaultUserInfoURL Google OIDC 的 userinfo 端点。
const DefaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// IdentityVerifier 校验求职者的 bearer 凭证并返回稳定的主体 ID。
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (model.Identity, error)
}

// IdentityConfig 求职者身份服务配置。
// Mode 为 userinfo 时调用 OIDC userinfo 端点，为 session 时校验共享密钥签发的会话令牌。
type IdentityConfig struct {
	Mode        string `yaml:"mode" json:"mode"`
	UserInfoURL string `yaml:"userinfo_url" json:"userinfo_url"`
	Secret      string `yaml:"secret" json:"secret"`
}

// NewIdentityVerifier 按配置构造身份校验器。
func NewIdentityVerifier(cfg IdentityConfig, client *http.Client) (IdentityVerifier, error) {
	switch strings.ToLower(cfg.Mode) {
	case "", "userinfo":
		return NewUserInfoVerifier(cfg.UserInfoURL, client), nil
	case "session":
		return NewSessionVerifier(cfg.Secret)
	default:
		return nil, fmt.Errorf("unsupported identity mode %q", cfg.Mode)
	}
}

// UserInfoVerifier 以访问令牌调用 userinfo 端点完成校验。
type UserInfoVerifier struct {
	endpoint string
	base     *http.Client
}

// NewUserInfoVerifier 创建校验器，endpoint 为空时使用 Google。
func NewUserInfoVerifier(endpoint string, base *http.Client) *UserInfoVerifier {
	if endpoint == "" {
		endpoint = DefaultUserInfoURL
	}
	return &UserInfoVerifier{endpoint: endpoint, base: base}
}

type userInfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// Verify 请求 userinfo，身份服务拒绝时返回 ErrIdentityRejected。
func (v *UserInfoVerifier) Verify(ctx context.Context, credential string) (model.Identity, error) {
	if credential == "" {
		return model.Identity{}, ErrNoToken
	}
	if v.base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, v.base)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential, TokenType: "Bearer"}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		return model.Identity{}, fmt.Errorf("build userinfo request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return model.Identity{}, model.Upstream("identity provider unavailable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return model.Identity{}, ErrIdentityRejected
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.Identity{}, model.Upstream("identity provider unavailable", fmt.Errorf("userinfo status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return model.Identity{}, model.Upstream("identity provider unavailable", fmt.Errorf("decode userinfo: %w", err))
	}
	if info.Sub == "" {
		return model.Identity{}, ErrIdentityRejected
	}
	return model.Identity{Subject: info.Sub, Name: info.Name, Email: info.Email, Picture: info.Picture}, nil
}

// SessionVerifier 校验会话服务以共享密钥签发的 HS256 令牌。
type SessionVerifier struct {
	secret []byte
}

// NewSessionVerifier 创建会话令牌校验器。
func NewSessionVerifier(secret string) (*SessionVerifier, error) {
	if secret == "" {
		return nil, errors.New("session identity secret is empty")
	}
	return &SessionVerifier{secret: []byte(secret)}, nil
}

type sessionClaims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// Verify 解析会话令牌，过期与格式错误分别返回对应错误。
func (v *SessionVerifier) Verify(_ context.Context, credential string) (model.Identity, error) {
	if credential == "" {
		return model.Identity{}, ErrNoToken
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(credential, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return model.Identity{}, ErrTokenExpired
	case err != nil:
		return model.Identity{}, ErrIdentityRejected
	}
	if claims.Subject == "" {
		return model.Identity{}, ErrIdentityRejected
	}
	return model.Identity{Subject: claims.Subject, Name: claims.Name, Email: claims.Email, Picture: claims.Picture}, nil
}
