package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wyfcoding/nexoshop/internal/user/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// CustomerCommand 后台新建或编辑顾客账户
type CustomerCommand struct {
	Email     string
	Password  string
	Role      string
	FirstName string
	LastName  string
	IsActive  bool
}

// RegisterCommand 前台注册
type RegisterCommand struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Phone      string
	Address    string
	City       string
	PostalCode string
}

// UserService 账户与顾客资料服务
type UserService struct {
	users     domain.UserRepository
	customers domain.CustomerRepository
	publisher domain.EventPublisher
	validate  *validator.Validate
}

func NewUserService(users domain.UserRepository, customers domain.CustomerRepository, publisher domain.EventPublisher) *UserService {
	return &UserService{users: users, customers: customers, publisher: publisher, validate: validator.New()}
}

func (s *UserService) publish(ctx context.Context, topic string, id uint, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, strconv.FormatUint(uint64(id), 10), event); err != nil {
		logger.Warn(ctx, "publish user event failed", "topic", topic, "user_id", id, "error", err)
	}
}

func (s *UserService) checkEmail(ctx context.Context, email string, selfID uint) (string, error) {
	email = domain.NormalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: a valid email is required", domain.ErrInvalidUser)
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing != nil && existing.ID != selfID {
		return "", domain.ErrEmailTaken
	}
	return email, nil
}

func (s *UserService) nextUserID(ctx context.Context) (uint, error) {
	all, err := s.users.List(ctx, "")
	if err != nil {
		return 0, err
	}
	var maxID uint
	for _, u := range all {
		maxID = max(maxID, u.ID)
	}
	return maxID + 1, nil
}

// HashPassword bcrypt 哈希，空密码返回空串
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ListCustomers 角色为 customer 的账户
func (s *UserService) ListCustomers(ctx context.Context) ([]*domain.UserAccount, error) {
	return s.users.List(ctx, domain.RoleCustomer)
}

// GetCustomer 非顾客账户视为不存在
func (s *UserService) GetCustomer(ctx context.Context, id uint) (*domain.UserAccount, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Role != domain.RoleCustomer {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// GetUser 按 ID 获取任意账户
func (s *UserService) GetUser(ctx context.Context, id uint) (*domain.UserAccount, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// CreateCustomer 新建顾客账户，ID 为当前最大值加一
func (s *UserService) CreateCustomer(ctx context.Context, cmd CustomerCommand) (*domain.UserAccount, error) {
	email, err := s.checkEmail(ctx, cmd.Email, 0)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}
	id, err := s.nextUserID(ctx)
	if err != nil {
		return nil, err
	}

	u := &domain.UserAccount{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		FirstName:    strings.TrimSpace(cmd.FirstName),
		LastName:     strings.TrimSpace(cmd.LastName),
		IsActive:     cmd.IsActive,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	logger.Info(ctx, "customer account created", "user_id", u.ID, "email", u.Email)
	s.publish(ctx, domain.TopicUserCreated, u.ID, domain.UserCreatedEvent{UserID: u.ID, Email: u.Email, Role: u.Role, Timestamp: u.CreatedAt})
	return u, nil
}

// UpdateCustomer 更新邮箱、角色、姓名与启用状态；密码非空时一并更新
func (s *UserService) UpdateCustomer(ctx context.Context, id uint, cmd CustomerCommand) (*domain.UserAccount, error) {
	u, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	email, err := s.checkEmail(ctx, cmd.Email, u.ID)
	if err != nil {
		return nil, err
	}
	role := cmd.Role
	if role == "" {
		role = u.Role
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	u.Email = email
	u.Role = role
	u.FirstName = strings.TrimSpace(cmd.FirstName)
	u.LastName = strings.TrimSpace(cmd.LastName)
	u.IsActive = cmd.IsActive
	if cmd.Password != "" {
		if u.PasswordHash, err = HashPassword(cmd.Password); err != nil {
			return nil, err
		}
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	logger.Info(ctx, "customer account updated", "user_id", u.ID)
	s.publish(ctx, domain.TopicUserUpdated, u.ID, domain.UserUpdatedEvent{UserID: u.ID, Email: u.Email, Role: u.Role, IsActive: u.IsActive, Timestamp: time.Now()})
	return u, nil
}

// DeleteCustomer 删除顾客账户
func (s *UserService) DeleteCustomer(ctx context.Context, id uint) error {
	u, err := s.GetCustomer(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	logger.Info(ctx, "customer account deleted", "user_id", u.ID)
	s.publish(ctx, domain.TopicUserDeleted, u.ID, domain.UserDeletedEvent{UserID: u.ID, Timestamp: time.Now()})
	return nil
}

// CountCustomers 顾客账户数
func (s *UserService) CountCustomers(ctx context.Context) (int, error) {
	users, err := s.users.List(ctx, domain.RoleCustomer)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// Authenticate 校验邮箱与密码
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.UserAccount, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.Warn(ctx, "password hash not usable", "user_id", u.ID, "error", err)
		}
		return nil, domain.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, domain.ErrInactiveUser
	}
	return u, nil
}

// Register 注册顾客：同时建立顾客资料与账户
func (s *UserService) Register(ctx context.Context, cmd RegisterCommand) (*domain.UserAccount, error) {
	if len(cmd.Password) < 8 {
		return nil, fmt.Errorf("%w: password must have at least 8 characters", domain.ErrInvalidUser)
	}
	u, err := s.CreateCustomer(ctx, CustomerCommand{
		Email:     cmd.Email,
		Password:  cmd.Password,
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		IsActive:  true,
	})
	if err != nil {
		return nil, err
	}

	existing, err := s.customers.GetByEmail(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		c := &domain.Customer{
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			Email:      u.Email,
			Phone:      cmd.Phone,
			Address:    cmd.Address,
			City:       cmd.City,
			PostalCode: cmd.PostalCode,
		}
		if err := s.customers.Save(ctx, c); err != nil {
			return nil, fmt.Errorf("save customer: %w", err)
		}
	}
	return u, nil
}

// CustomerFor 与账户同邮箱的顾客资料，没有时返回 nil
func (s *UserService) CustomerFor(ctx context.Context, u *domain.UserAccount) (*domain.Customer, error) {
	if u == nil || u.Email == "" {
		return nil, nil
	}
	return s.customers.GetByEmail(ctx, u.Email)
}
