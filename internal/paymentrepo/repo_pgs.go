// Package paymentrepo manages repository layer of payments.
package paymentrepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/IsaacValiente/Mobility.Payments/internal/domain"
	"github.com/IsaacValiente/Mobility.Payments/pkg/dbpkg"
	"github.com/IsaacValiente/Mobility.Payments/pkg/errorspkg"
)

// RepoPGS facilitates payment repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns payment RepoPGS bound to an existing transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns payment RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const getQuery = `
SELECT
	id, amount, sender, receiver, status, is_deleted, created_at, modified_at
FROM payments
WHERE id = $1
`

// Get returns the payment with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Payment, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	p, err := scanPayment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return p, domain.ErrPaymentNotFound
		}

		l.Error().Err(err).Send()

		return p, errorspkg.ErrInternal
	}

	return p, nil
}

// roleFilterColumn maps a caller role to the payment column it is matched against.
var roleFilterColumn = map[domain.Role]string{
	domain.RoleSender:   "sender",
	domain.RoleReceiver: "receiver",
}

const listQueryPrefix = `
SELECT
	id, amount, sender, receiver, status, is_deleted, created_at, modified_at
FROM payments
WHERE `

// List returns all payments where the user participates on their role side.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListPaymentsParams) ([]domain.Payment, error) {
	l := zerolog.Ctx(ctx)

	column, ok := roleFilterColumn[arg.Role]
	if !ok {
		return nil, domain.ErrInvalidRole
	}

	query := listQueryPrefix + column + ` = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, arg.Username)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Payment{}

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, p)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const insertQuery = `
INSERT INTO
    payments (amount, sender, receiver)
VALUES
    ($1, $2, $3)
RETURNING id, amount, sender, receiver, status, is_deleted, created_at, modified_at
`

func (r *RepoPGS) insert(ctx context.Context, arg domain.CreatePaymentParams) (domain.Payment, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, insertQuery, arg.Amount, arg.Sender, arg.Receiver)

	p, err := scanPayment(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "payments_sender_fkey", "payments_receiver_fkey":
				return p, domain.ErrUserNotFound
			case "payments_amount_check":
				return p, domain.ErrNonPositiveAmount
			}
		}

		return p, errorspkg.ErrInternal
	}

	return p, nil
}

// debitQuery reserves funds: the balance guard makes two concurrent debits
// of the same sender serialize on the row instead of reading a stale balance.
const debitQuery = `
UPDATE users
SET balance = balance - $1, modified_at = now()
WHERE username = $2 AND balance >= $1
RETURNING username
`

func (r *RepoPGS) debit(ctx context.Context, amount, username string) error {
	l := zerolog.Ctx(ctx)

	var debited string

	err := r.db.QueryRowContext(ctx, debitQuery, amount, username).Scan(&debited)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrInsufficientBalance
		}

		l.Error().Err(err).Send()

		return errorspkg.ErrInternal
	}

	return nil
}

const creditQuery = `
UPDATE users
SET balance = balance + $1, modified_at = now()
WHERE username = $2
RETURNING username
`

func (r *RepoPGS) credit(ctx context.Context, amount, username string) error {
	l := zerolog.Ctx(ctx)

	var credited string

	err := r.db.QueryRowContext(ctx, creditQuery, amount, username).Scan(&credited)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		return errorspkg.ErrInternal
	}

	return nil
}

// approveQuery flips the status only out of the awaiting state so
// a concurrent second confirmation cannot apply twice.
const approveQuery = `
UPDATE payments
SET status = 'approved', modified_at = now()
WHERE id = $1 AND status = 'awaiting_approval'
RETURNING id, amount, sender, receiver, status, is_deleted, created_at, modified_at
`

func (r *RepoPGS) approve(ctx context.Context, id uuid.UUID) (domain.Payment, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, approveQuery, id)

	p, err := scanPayment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return p, domain.ErrNotAwaitingApproval
		}

		l.Error().Err(err).Send()

		return p, errorspkg.ErrInternal
	}

	return p, nil
}

// Create debits the sender and creates the awaiting payment on the current
// database handle. Callers that need atomicity should use CreateTx.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreatePaymentParams) (domain.Payment, error) {
	if err := r.debit(ctx, arg.Amount, arg.Sender); err != nil {
		return domain.Payment{}, err
	}

	return r.insert(ctx, arg)
}

// CreateTx debits the sender and creates the awaiting payment
// within a single database transaction.
func (r *RepoPGS) CreateTx(ctx context.Context, arg domain.CreatePaymentParams) (domain.Payment, error) {
	l := zerolog.Ctx(ctx)

	var result domain.Payment

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		_ = tx.Rollback()
	}()

	result, err = NewTxRepoPGS(tx).Create(ctx, arg)
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	return result, nil
}

// ConfirmTx approves the payment and credits its receiver
// within a single database transaction.
func (r *RepoPGS) ConfirmTx(ctx context.Context, id uuid.UUID) (domain.Payment, error) {
	l := zerolog.Ctx(ctx)

	var result domain.Payment

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		_ = tx.Rollback()
	}()

	txRepo := NewTxRepoPGS(tx)

	result, err = txRepo.approve(ctx, id)
	if err != nil {
		return result, err
	}

	if err := txRepo.credit(ctx, result.Amount, result.Receiver); err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(s rowScanner) (domain.Payment, error) {
	var (
		p          domain.Payment
		modifiedAt sql.NullTime
	)

	err := s.Scan(
		&p.ID,
		&p.Amount,
		&p.Sender,
		&p.Receiver,
		&p.Status,
		&p.IsDeleted,
		&p.CreatedAt,
		&modifiedAt,
	)
	if err != nil {
		return p, err
	}

	p.ModifiedAt = modifiedAt.Time

	return p, nil
}
