// Package session 签名会话 Cookie 与按会话存放的数据
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	user "github.com/wyfcoding/nexoshop/internal/user/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
	"github.com/wyfcoding/nexoshop/pkg/response"
)

const contextKey = "session.current"

// 提示消息级别
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

var ErrInvalidToken = errors.New("invalid session token")

// Claims 会话 Cookie 中的 JWT 声明
type Claims struct {
	SessionID string `json:"sid"`
	UserID    uint   `json:"uid,omitempty"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Options 会话 Cookie 参数
type Options struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager 签发与解析会话 Cookie
type Manager struct {
	store      Store
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "nexo_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{
		store:      store,
		secret:     []byte(opts.Secret),
		cookieName: opts.CookieName,
		ttl:        opts.TTL,
		secure:     opts.Secure,
		now:        time.Now,
	}
}

// CookieName Cookie 名称
func (m *Manager) CookieName() string { return m.cookieName }

// Sign 生成 HS256 令牌
func (m *Manager) Sign(claims Claims) (string, error) {
	now := m.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse 校验签名与过期时间
func (m *Manager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Middleware 加载或新建会话，并续期 Cookie
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var claims Claims
		if raw, err := c.Cookie(m.cookieName); err == nil && raw != "" {
			if parsed, err := m.Parse(raw); err == nil {
				claims = *parsed
			}
		}
		if claims.SessionID == "" {
			claims = Claims{SessionID: uuid.NewString()}
		}

		s := &Session{m: m, c: c, claims: claims}
		if err := s.writeCookie(); err != nil {
			logger.Error(c.Request.Context(), "issue session cookie failed", "error", err)
		}
		c.Set(contextKey, s)
		c.Set(response.FlashSourceKey, response.FlashSource(s.PopFlashes))
		c.Next()
	}
}

// FromContext 当前请求的会话，未经过中间件时返回 nil
func FromContext(c *gin.Context) *Session {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}

// Session 单个请求看到的会话
type Session struct {
	m      *Manager
	c      *gin.Context
	claims Claims
}

func (s *Session) ctx() context.Context { return s.c.Request.Context() }

func (s *Session) writeCookie() error {
	token, err := s.m.Sign(s.claims)
	if err != nil {
		return err
	}
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(s.m.cookieName, token, int(s.m.ttl.Seconds()), "/", "", s.m.secure, true)
	return nil
}

func (s *Session) ID() string { return s.claims.SessionID }
func (s *Session) UserID() uint { return s.claims.UserID }
func (s *Session) Role() string { return s.claims.Role }
func (s *Session) IsAdmin() bool { return s.claims.Role == user.RoleAdmin }
func (s *Session) LoggedIn() bool { return s.claims.UserID != 0 }
func (s *Session) Store() Store { return s.m.store }

// SetUser 登录：写入用户与角色，会话 ID 不变以保留购物车
func (s *Session) SetUser(userID uint, role string) error {
	s.claims.UserID = userID
	s.claims.Role = role
	return s.writeCookie()
}

// Logout 清空会话数据并换发新的会话 ID
func (s *Session) Logout() error {
	if err := s.m.store.Destroy(s.ctx(), s.claims.SessionID); err != nil {
		logger.Warn(s.ctx(), "destroy session data failed", "session_id", s.claims.SessionID, "error", err)
	}
	s.claims = Claims{SessionID: uuid.NewString()}
	return s.writeCookie()
}

func (s *Session) Get(key string, dest any) (bool, error) {
	return s.m.store.Get(s.ctx(), s.claims.SessionID, key, dest)
}

func (s *Session) Set(key string, value any) error {
	return s.m.store.Set(s.ctx(), s.claims.SessionID, key, value)
}

func (s *Session) Delete(key string) error {
	return s.m.store.Delete(s.ctx(), s.claims.SessionID, key)
}

// AddFlash 追加一条提示消息
func (s *Session) AddFlash(level, text string) {
	var flashes []response.Flash
	if _, err := s.Get(KeyFlash, &flashes); err != nil {
		logger.Warn(s.ctx(), "read flash messages failed", "error", err)
	}
	flashes = append(flashes, response.Flash{Level: level, Text: text})
	if err := s.Set(KeyFlash, flashes); err != nil {
		logger.Warn(s.ctx(), "store flash message failed", "error", err)
	}
}

// PopFlashes 读取并清空提示消息
func (s *Session) PopFlashes() []response.Flash {
	var flashes []response.Flash
	found, err := s.Get(KeyFlash, &flashes)
	if err != nil {
		logger.Warn(s.ctx(), "read flash messages failed", "error", err)
		return nil
	}
	if !found || len(flashes) == 0 {
		return nil
	}
	if err := s.Delete(KeyFlash); err != nil {
		logger.Warn(s.ctx(), "clear flash messages failed", "error", err)
	}
	return flashes
}

// Flash 向当前请求的会话追加提示消息，未经过会话中间件时忽略
func Flash(c *gin.Context, level, text string) {
	if s := FromContext(c); s != nil {
		s.AddFlash(level, text)
	}
}
