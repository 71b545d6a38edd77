// Package paymentservice manages business logic layer of payments.
package paymentservice

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/IsaacValiente/Mobility.Payments/internal/domain"
)

// Repo provides data access layer interface needed by payment service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package paymentservice
type Repo interface {
	CreateTx(ctx context.Context, arg domain.CreatePaymentParams) (domain.Payment, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Payment, error)
	List(ctx context.Context, arg domain.ListPaymentsParams) ([]domain.Payment, error)
	ConfirmTx(ctx context.Context, id uuid.UUID) (domain.Payment, error)
}

// UserService provides the user lookups needed for payment validation.
type UserService interface {
	Get(ctx context.Context, username string) (domain.User, error)
}

// Service facilitates payment service layer logic.
type Service struct {
	repo  Repo
	users UserService
}

// New returns payment service struct to manage payment business logic.
func New(pr Repo, us UserService) *Service {
	return &Service{
		repo:  pr,
		users: us,
	}
}

// validCreate checks the creation preconditions in a fixed order;
// the first failure wins and nothing is mutated before all checks pass.
func (s *Service) validCreate(ctx context.Context, sender, receiver, amount string) error {
	l := zerolog.Ctx(ctx)

	if strings.EqualFold(sender, receiver) {
		return domain.ErrSameSenderReceiver
	}

	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.ErrInvalidAmount
	}

	if amountDecimal.LessThanOrEqual(decimal.Zero) {
		return domain.ErrNonPositiveAmount
	}

	// Amounts are stored at a fixed scale of 4 fractional digits.
	if amountDecimal.Exponent() < -4 {
		return domain.ErrAmountScaleTooLarge
	}

	senderUser, err := s.users.Get(ctx, sender)
	if err != nil {
		l.Error().Err(err).Send()
		return err
	}

	receiverUser, err := s.users.Get(ctx, receiver)
	if err != nil {
		l.Info().Err(err).Send()
		return err
	}

	if receiverUser.Role != domain.RoleReceiver {
		return domain.ErrCannotAcceptPayments
	}

	senderBalance, err := decimal.NewFromString(senderUser.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return err
	}

	if senderBalance.LessThan(amountDecimal) {
		return domain.ErrInsufficientBalance
	}

	return nil
}

// Create validates the payment request and then reserves the funds:
// the sender is debited immediately and the payment awaits confirmation.
func (s *Service) Create(ctx context.Context, sender, receiver, amount string) (domain.Payment, error) {
	if err := s.validCreate(ctx, sender, receiver, amount); err != nil {
		return domain.Payment{}, err
	}

	arg := domain.CreatePaymentParams{
		Sender:   sender,
		Receiver: receiver,
		Amount:   amount,
	}

	return s.repo.CreateTx(ctx, arg)
}

// Get returns the payment if the actor is its sender or receiver.
func (s *Service) Get(ctx context.Context, actor string, id uuid.UUID) (domain.Payment, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}

	if !strings.EqualFold(actor, p.Sender) && !strings.EqualFold(actor, p.Receiver) {
		return domain.Payment{}, domain.ErrPaymentAccessDenied
	}

	return p, nil
}

// List returns all payments where the caller participates on their role side.
func (s *Service) List(ctx context.Context, identity domain.Identity) ([]domain.Payment, error) {
	arg := domain.ListPaymentsParams{
		Username: identity.Username,
		Role:     identity.Role,
	}

	return s.repo.List(ctx, arg)
}

// Confirm approves an awaiting payment and credits the receiver.
// Only the recorded receiver may confirm, and only once.
func (s *Service) Confirm(ctx context.Context, actor string, id uuid.UUID) (domain.Payment, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}

	if p.Status != domain.StatusAwaitingApproval {
		return domain.Payment{}, domain.ErrNotAwaitingApproval
	}

	if !strings.EqualFold(actor, p.Receiver) {
		return domain.Payment{}, domain.ErrWrongReceiver
	}

	return s.repo.ConfirmTx(ctx, id)
}
