package auth

import (
	"errors"
	"fmt"
	"time"

	"job-portal/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind 区分令牌签发对象，防止企业令牌被用于管理员接口。
type TokenKind string

const (
	KindAdmin   TokenKind = "admin"
	KindCompany TokenKind = "company"
)

// 管理员令牌固定一天有效；企业令牌默认七天，可配置。
const (
	AdminTokenTTL          = 24 * time.Hour
	DefaultCompanyTokenTTL = 7 * 24 * time.Hour
)

// 守卫可区分的认证失败原因。
var (
	ErrNoToken          = model.Unauthorized("Not authorized, login again")
	ErrMalformedToken   = model.Unauthorized("Invalid token")
	ErrTokenExpired     = model.Unauthorized("Token expired, login again")
	ErrActorNotFound    = model.Unauthorized("Account not found")
	ErrIdentityRejected = model.Unauthorized("Identity could not be verified")
)

// Claims 令牌载荷，Subject 为主体 ID。
type Claims struct {
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// Issuer 使用 HS256 签发并校验某一类主体的令牌。
type Issuer struct {
	kind   TokenKind
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer 创建令牌签发器，ttl 为 0 表示令牌不过期。
func NewIssuer(kind TokenKind, secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%s token secret is empty", kind)
	}
	return &Issuer{kind: kind, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue 为主体签发令牌。
func (i *Issuer) Issue(subject string) (string, error) {
	now := i.now()
	claims := Claims{
		Kind: i.kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", i.kind, err)
	}
	return signed, nil
}

// Parse 校验令牌并返回主体 ID。
func (i *Issuer) Parse(token string) (string, error) {
	if token == "" {
		return "", ErrNoToken
	}
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case err != nil:
		return "", ErrMalformedToken
	}
	if claims.Kind != i.kind || claims.Subject == "" {
		return "", ErrMalformedToken
	}
	return claims.Subject, nil
}
