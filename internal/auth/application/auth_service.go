// Package application 登录、注册与调试登录
package application

import (
	"context"
	"errors"

	userapp "github.com/wyfcoding/nexoshop/internal/user/application"
	user "github.com/wyfcoding/nexoshop/internal/user/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
)

// DebugAdminID 调试登录使用的管理员 ID
const DebugAdminID = 1

var ErrDebugDisabled = errors.New("debug endpoints are disabled")

// Accounts 账户服务
type Accounts interface {
	Authenticate(ctx context.Context, email, password string) (*user.UserAccount, error)
	Register(ctx context.Context, cmd userapp.RegisterCommand) (*user.UserAccount, error)
	GetUser(ctx context.Context, id uint) (*user.UserAccount, error)
	CustomerFor(ctx context.Context, u *user.UserAccount) (*user.Customer, error)
}

// CartMerger 登录时合并保存的购物车
type CartMerger interface {
	MergeSaved(ctx context.Context, sid string, customerID uint) (int, error)
}

// SessionWriter 会话中与身份相关的操作
type SessionWriter interface {
	ID() string
	SetUser(userID uint, role string) error
	Logout() error
}

// AuthService 身份认证
type AuthService struct {
	accounts Accounts
	carts    CartMerger
	debug    bool
}

// NewAuthService debug 仅在调试模式且使用内存库时为 true
func NewAuthService(accounts Accounts, carts CartMerger, debug bool) *AuthService {
	return &AuthService{accounts: accounts, carts: carts, debug: debug}
}

// DebugEnabled 是否开放调试登录
func (s *AuthService) DebugEnabled() bool { return s.debug }

// Login 校验账户后写入会话，并合并顾客保存的购物车
func (s *AuthService) Login(ctx context.Context, sess SessionWriter, email, password string) (*user.UserAccount, error) {
	u, err := s.accounts.Authenticate(ctx, email, password)
	if err != nil {
		logger.Info(ctx, "login rejected", "email", user.NormalizeEmail(email), "reason", err.Error())
		return nil, err
	}
	if err := sess.SetUser(u.ID, u.Role); err != nil {
		return nil, err
	}
	logger.Info(ctx, "user logged in", "user_id", u.ID, "role", u.Role)

	c, err := s.accounts.CustomerFor(ctx, u)
	if err != nil {
		logger.Warn(ctx, "lookup customer profile failed", "user_id", u.ID, "error", err)
		return u, nil
	}
	if c != nil {
		if _, err := s.carts.MergeSaved(ctx, sess.ID(), c.ID); err != nil {
			logger.Warn(ctx, "merge saved cart failed", "customer_id", c.ID, "error", err)
		}
	}
	return u, nil
}

// Register 注册顾客并直接登录
func (s *AuthService) Register(ctx context.Context, sess SessionWriter, cmd userapp.RegisterCommand) (*user.UserAccount, error) {
	u, err := s.accounts.Register(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if err := sess.SetUser(u.ID, u.Role); err != nil {
		return nil, err
	}
	logger.Info(ctx, "customer registered", "user_id", u.ID)
	return u, nil
}

// Logout 退出登录
func (s *AuthService) Logout(_ context.Context, sess SessionWriter) error {
	return sess.Logout()
}

// DebugLoginAdmin 以管理员身份登录
func (s *AuthService) DebugLoginAdmin(ctx context.Context, sess SessionWriter) error {
	if !s.debug {
		return ErrDebugDisabled
	}
	logger.Warn(ctx, "debug admin login", "user_id", DebugAdminID)
	return sess.SetUser(DebugAdminID, user.RoleAdmin)
}

// DebugLogout 调试退出
func (s *AuthService) DebugLogout(ctx context.Context, sess SessionWriter) error {
	if !s.debug {
		return ErrDebugDisabled
	}
	return s.Logout(ctx, sess)
}

// CustomerID 已登录用户对应的顾客资料 ID，没有时返回 nil
func (s *AuthService) CustomerID(ctx context.Context, userID uint) (*uint, error) {
	if userID == 0 {
		return nil, nil
	}
	u, err := s.accounts.GetUser(ctx, userID)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c, err := s.accounts.CustomerFor(ctx, u)
	if err != nil || c == nil {
		return nil, err
	}
	id := c.ID
	return &id, nil
}
