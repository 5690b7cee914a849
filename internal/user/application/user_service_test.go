package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	memdb "github.com/wyfcoding/nexoshop/internal/mockdb"
	"github.com/wyfcoding/nexoshop/internal/user/domain"
	repo "github.com/wyfcoding/nexoshop/internal/user/infrastructure/persistence/mockdb"
	"github.com/wyfcoding/nexoshop/pkg/mq"
)

type UserSuite struct {
	suite.Suite
	ctx   context.Context
	store *memdb.Store
	svc   *UserService
}

func (s *UserSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memdb.NewStore()
	s.store.Users.BulkSet([]domain.UserAccount{
		{ID: 1, Email: "admin@example.com", Role: domain.RoleAdmin, IsActive: true},
		{ID: 4, Email: "ana@example.com", Role: domain.RoleCustomer, FirstName: "Ana", IsActive: true},
	})
	s.store.Customers.BulkSet([]domain.Customer{{ID: 1, Email: "ana@example.com", FirstName: "Ana"}})
	s.svc = NewUserService(repo.NewUserRepository(s.store), repo.NewCustomerRepository(s.store), &mq.MemoryPublisher{})
}

func (s *UserSuite) TestCreateCustomer() {
	u, err := s.svc.CreateCustomer(s.ctx, CustomerCommand{Email: " Luis@Example.com ", FirstName: "Luis", IsActive: true})
	s.Require().NoError(err)
	s.Equal(uint(5), u.ID)
	s.Equal("luis@example.com", u.Email)
	s.Equal(domain.RoleCustomer, u.Role)

	got, err := s.svc.GetCustomer(s.ctx, 5)
	s.Require().NoError(err)
	s.Equal("Luis", got.FirstName)

	_, err = s.svc.CreateCustomer(s.ctx, CustomerCommand{Email: "ANA@example.com"})
	s.ErrorIs(err, domain.ErrEmailTaken)

	_, err = s.svc.CreateCustomer(s.ctx, CustomerCommand{Email: "not-an-email"})
	s.ErrorIs(err, domain.ErrInvalidUser)
}

func (s *UserSuite) TestGetCustomerRejectsAdmins() {
	_, err := s.svc.GetCustomer(s.ctx, 1)
	s.ErrorIs(err, domain.ErrUserNotFound)
	_, err = s.svc.UpdateCustomer(s.ctx, 1, CustomerCommand{Email: "x@example.com"})
	s.ErrorIs(err, domain.ErrUserNotFound)
}

func (s *UserSuite) TestUpdateCustomer() {
	u, err := s.svc.UpdateCustomer(s.ctx, 4, CustomerCommand{Email: "ana@example.com", Role: domain.RoleCustomer, FirstName: "Ana M", IsActive: false})
	s.Require().NoError(err)
	s.Equal("Ana M", u.FirstName)
	s.False(u.IsActive)

	_, err = s.svc.UpdateCustomer(s.ctx, 4, CustomerCommand{Email: "admin@example.com"})
	s.ErrorIs(err, domain.ErrEmailTaken)

	_, err = s.svc.UpdateCustomer(s.ctx, 4, CustomerCommand{Email: "ana@example.com", Role: "root"})
	s.ErrorIs(err, domain.ErrInvalidRole)
}

func (s *UserSuite) TestDeleteCustomer() {
	s.Require().NoError(s.svc.DeleteCustomer(s.ctx, 4))
	_, err := s.svc.GetCustomer(s.ctx, 4)
	s.ErrorIs(err, domain.ErrUserNotFound)

	n, err := s.svc.CountCustomers(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *UserSuite) TestRegisterAndAuthenticate() {
	u, err := s.svc.Register(s.ctx, RegisterCommand{Email: "eva@example.com", Password: "secreto123", FirstName: "Eva", City: "Bilbao"})
	s.Require().NoError(err)

	c, err := s.svc.CustomerFor(s.ctx, u)
	s.Require().NoError(err)
	s.Require().NotNil(c)
	s.Equal("Bilbao", c.City)

	got, err := s.svc.Authenticate(s.ctx, "EVA@example.com", "secreto123")
	s.Require().NoError(err)
	s.Equal(u.ID, got.ID)

	_, err = s.svc.Authenticate(s.ctx, "eva@example.com", "wrong")
	s.ErrorIs(err, domain.ErrInvalidCredentials)
	_, err = s.svc.Authenticate(s.ctx, "ana@example.com", "anything")
	s.ErrorIs(err, domain.ErrInvalidCredentials, "account without password cannot log in")

	_, err = s.svc.Register(s.ctx, RegisterCommand{Email: "short@example.com", Password: "123"})
	s.ErrorIs(err, domain.ErrInvalidUser)
}

func (s *UserSuite) TestInactiveUserCannotLogin() {
	_, err := s.svc.CreateCustomer(s.ctx, CustomerCommand{Email: "off@example.com", Password: "clave-segura", IsActive: false})
	s.Require().NoError(err)
	_, err = s.svc.Authenticate(s.ctx, "off@example.com", "clave-segura")
	s.ErrorIs(err, domain.ErrInactiveUser)
}

func TestUserSuite(t *testing.T) {
	suite.Run(t, new(UserSuite))
}
