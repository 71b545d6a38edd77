package domain

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrPaymentNotFound indicates that the payment is not found.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrSameSenderReceiver indicates a payment to oneself.
	ErrSameSenderReceiver = errors.New("sender and receiver cannot be the same")
	// ErrInvalidAmount indicates an unparseable amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNonPositiveAmount indicates a zero or negative amount.
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	// ErrAmountScaleTooLarge indicates an amount with more than 4 fractional digits.
	ErrAmountScaleTooLarge = errors.New("amount cannot have more than 4 decimal places")
	// ErrCannotAcceptPayments indicates that the receiver does not have the receiver role.
	ErrCannotAcceptPayments = errors.New("receiver cannot accept payments")
	// ErrInsufficientBalance indicates that the sender does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrNotAwaitingApproval indicates that the payment already left the awaiting state.
	ErrNotAwaitingApproval = errors.New("payment is not awaiting approval")
	// ErrWrongReceiver indicates that the confirming user is not the recorded receiver.
	ErrWrongReceiver = errors.New("payment is associated to another user")
	// ErrPaymentAccessDenied indicates that the user is neither sender nor receiver of the payment.
	ErrPaymentAccessDenied = errors.New("no permission to view this payment")
)

// Status is the payment lifecycle state.
type Status string

const (
	// StatusAwaitingApproval means the sender is debited and the receiver has not confirmed yet.
	StatusAwaitingApproval Status = "awaiting_approval"
	// StatusApproved is the terminal state: the receiver confirmed and was credited.
	StatusApproved Status = "approved"
)

// Payment holds a two-phase transfer between a sender and a receiver.
type Payment struct {
	ID       uuid.UUID `json:"id"`
	Amount   string    `json:"amount"` // must be positive
	Sender   string    `json:"sender"`
	Receiver string    `json:"receiver"`
	Status   Status    `json:"status"`
	Audit
}

// CreatePaymentParams is the input data for the payment creation transaction.
type CreatePaymentParams struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

// ListPaymentsParams selects payments by participant username and role side.
type ListPaymentsParams struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
