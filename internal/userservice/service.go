// Package userservice manages business logic layer of users.
package userservice

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/IsaacValiente/Mobility.Payments/internal/domain"
	"github.com/IsaacValiente/Mobility.Payments/pkg/errorspkg"
	"github.com/IsaacValiente/Mobility.Payments/pkg/passpkg"
)

// Role-dependent starting balances: senders fund transfers.
var (
	initialSenderBalance   = decimal.NewFromInt(1000)
	initialReceiverBalance = decimal.NewFromInt(100)
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error)
	Get(ctx context.Context, username string) (domain.User, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo Repo
}

// New returns user service struct to manage user business logic.
func New(ur Repo) *Service {
	return &Service{
		repo: ur,
	}
}

// NewUserWithoutPassword returns user with removed sensitive data.
func NewUserWithoutPassword(u domain.User) domain.UserWithoutPassword {
	return domain.UserWithoutPassword{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Balance:   u.Balance,
		CreatedAt: u.CreatedAt,
	}
}

// StartingBalance returns the balance a newly registered user of the given role begins with.
func StartingBalance(role domain.Role) string {
	if role == domain.RoleSender {
		return initialSenderBalance.String()
	}

	return initialReceiverBalance.String()
}

// Create registers and returns a user with the role-dependent starting balance.
func (s *Service) Create(ctx context.Context, username, password, firstName, lastName string, role domain.Role) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var result domain.UserWithoutPassword

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	arg := domain.CreateUserParams{
		Username:       username,
		HashedPassword: hashedPassword,
		FirstName:      firstName,
		LastName:       lastName,
		Role:           role,
		Balance:        StartingBalance(role),
	}

	gotUser, err := s.repo.Create(ctx, arg)
	if err != nil {
		return result, err
	}

	result = NewUserWithoutPassword(gotUser)

	return result, nil
}

// Get returns the full user record with the given username.
func (s *Service) Get(ctx context.Context, username string) (domain.User, error) {
	return s.repo.Get(ctx, username)
}

// CheckPassword verifies the credentials for the given username.
//
// An unknown username and a wrong password are indistinguishable to the
// caller: both return ErrInvalidCredentials, and the unknown-user path
// still performs a hash derivation to avoid a timing side channel.
func (s *Service) CheckPassword(ctx context.Context, username, pass string) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var response domain.UserWithoutPassword

	gotUser, err := s.repo.Get(ctx, username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			passpkg.CheckDummy(pass)
			return response, domain.ErrInvalidCredentials
		}

		return response, err
	}

	if err := passpkg.Check(pass, gotUser.HashedPassword); err != nil {
		l.Warn().Err(err).Send()
		return response, domain.ErrInvalidCredentials
	}

	response = NewUserWithoutPassword(gotUser)

	return response, nil
}
