// Package userrepo manages repository layer of users.
package userrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/IsaacValiente/Mobility.Payments/internal/domain"
	"github.com/IsaacValiente/Mobility.Payments/pkg/dbpkg"
	"github.com/IsaacValiente/Mobility.Payments/pkg/errorspkg"
)

// RepoPGS facilitates user repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns user RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO users (
    username,
    hashed_password,
    first_name,
    last_name,
    role,
    balance
) VALUES (
    $1, $2, $3, $4, $5, $6
) RETURNING username, hashed_password, first_name, last_name, role, balance, is_deleted, created_at, modified_at
`

// Create creates the user and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Username,
		arg.HashedPassword,
		arg.FirstName,
		arg.LastName,
		arg.Role,
		arg.Balance,
	)

	u, err := scanUser(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "users_pkey" {
				return u, domain.ErrUsernameAlreadyExists
			}
		}

		return u, errorspkg.ErrInternal
	}

	return u, nil
}

const getQuery = `
SELECT
	username,
	hashed_password,
	first_name,
	last_name,
	role,
	balance,
	is_deleted,
	created_at,
	modified_at
FROM users
WHERE username = $1
`

// Get returns the user with the given username.
func (r *RepoPGS) Get(ctx context.Context, username string) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, username)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		return u, errorspkg.ErrInternal
	}

	return u, nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u          domain.User
		modifiedAt sql.NullTime
	)

	err := row.Scan(
		&u.Username,
		&u.HashedPassword,
		&u.FirstName,
		&u.LastName,
		&u.Role,
		&u.Balance,
		&u.IsDeleted,
		&u.CreatedAt,
		&modifiedAt,
	)
	if err != nil {
		return u, err
	}

	u.ModifiedAt = modifiedAt.Time

	return u, nil
}
