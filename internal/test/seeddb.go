// Package test provides shared test helpers.
package test

import (
	"context"
	"testing"

	"github.com/IsaacValiente/Mobility.Payments/internal/domain"
	"github.com/IsaacValiente/Mobility.Payments/internal/paymentrepo"
	"github.com/IsaacValiente/Mobility.Payments/internal/userrepo"
	"github.com/IsaacValiente/Mobility.Payments/pkg/dbpkg"
	"github.com/IsaacValiente/Mobility.Payments/pkg/passpkg"
	"github.com/IsaacValiente/Mobility.Payments/pkg/randompkg"
)

// SeedUser creates a random user with the given role and balance inside a test transaction.
func SeedUser(t *testing.T, tx dbpkg.SQLInterface, role domain.Role, balance string) domain.User {
	t.Helper()

	hashedPassword, err := passpkg.Hash(randompkg.String(32))
	if err != nil {
		t.Fatalf("passpkg.Hash(randompkg.String(32)) returned error: %v", err)
	}

	arg := domain.CreateUserParams{
		Username:       randompkg.Username(),
		HashedPassword: hashedPassword,
		FirstName:      randompkg.String(6),
		LastName:       randompkg.String(8),
		Role:           role,
		Balance:        balance,
	}

	userRepo := userrepo.NewRepoPGS(tx)

	user, err := userRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("userRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return user
}

// SeedSenderWith1000Balance creates a sender holding 1000 on balance.
func SeedSenderWith1000Balance(t *testing.T, tx dbpkg.SQLInterface) domain.User {
	t.Helper()

	return SeedUser(t, tx, domain.RoleSender, "1000")
}

// SeedReceiver creates a receiver holding 100 on balance.
func SeedReceiver(t *testing.T, tx dbpkg.SQLInterface) domain.User {
	t.Helper()

	return SeedUser(t, tx, domain.RoleReceiver, "100")
}

// SeedPayment debits the sender and creates an awaiting payment inside a test transaction.
func SeedPayment(t *testing.T, tx dbpkg.SQLInterface, sender, receiver, amount string) domain.Payment {
	t.Helper()

	paymentRepo := paymentrepo.NewTxRepoPGS(tx)

	arg := domain.CreatePaymentParams{
		Sender:   sender,
		Receiver: receiver,
		Amount:   amount,
	}

	payment, err := paymentRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("paymentRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return payment
}
