package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// 账户角色
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrInvalidUser        = errors.New("invalid user")
)

// UserAccount 登录账户
type UserAccount struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"column:email;type:varchar(254);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255)" json:"-"`
	Role         string    `gorm:"column:role;type:varchar(20);not null;default:customer" json:"role"`
	FirstName    string    `gorm:"column:first_name;type:varchar(50)" json:"first_name"`
	LastName     string    `gorm:"column:last_name;type:varchar(50)" json:"last_name"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created"`
}

func (UserAccount) TableName() string { return "user_accounts" }

// FullName 姓名
func (u *UserAccount) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin 是否管理员
func (u *UserAccount) IsAdmin() bool { return u.Role == RoleAdmin }

// Customer 顾客资料
type Customer struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	FirstName  string `gorm:"column:first_name;type:varchar(50)" json:"first_name"`
	LastName   string `gorm:"column:last_name;type:varchar(50)" json:"last_name"`
	Email      string `gorm:"column:email;type:varchar(254);index" json:"email"`
	Phone      string `gorm:"column:phone;type:varchar(30)" json:"phone"`
	Address    string `gorm:"column:address;type:varchar(250)" json:"address"`
	City       string `gorm:"column:city;type:varchar(100)" json:"city"`
	PostalCode string `gorm:"column:postal_code;type:varchar(20)" json:"postal_code"`
}

func (Customer) TableName() string { return "customers" }

// ValidRole 角色是否合法
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCustomer
}

// NormalizeEmail 统一邮箱格式
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserRepository 账户仓储，未找到时返回 nil, nil
type UserRepository interface {
	Save(ctx context.Context, user *UserAccount) error
	GetByID(ctx context.Context, id uint) (*UserAccount, error)
	GetByEmail(ctx context.Context, email string) (*UserAccount, error)
	// List role 为空时返回全部
	List(ctx context.Context, role string) ([]*UserAccount, error)
	Delete(ctx context.Context, id uint) error
}

// CustomerRepository 顾客资料仓储
type CustomerRepository interface {
	Save(ctx context.Context, customer *Customer) error
	GetByID(ctx context.Context, id uint) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	List(ctx context.Context) ([]*Customer, error)
	Delete(ctx context.Context, id uint) error
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
