//go:build integration

package paymentrepo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/IsaacValiente/Mobility.Payments/internal/domain"
	"github.com/IsaacValiente/Mobility.Payments/internal/integrationtest"
	"github.com/IsaacValiente/Mobility.Payments/internal/paymentrepo"
	"github.com/IsaacValiente/Mobility.Payments/internal/test"
	"github.com/IsaacValiente/Mobility.Payments/internal/userrepo"
	"github.com/IsaacValiente/Mobility.Payments/pkg/configpkg"
)

var (
	dbDriver string
	dbSource string
)

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	dbDriver = config.DBDriver
	dbSource = config.DBSource

	os.Exit(m.Run())
}

func requireAmountEqual(t *testing.T, want, got string) {
	t.Helper()

	wantDecimal, err := decimal.NewFromString(want)
	require.NoError(t, err)

	gotDecimal, err := decimal.NewFromString(got)
	require.NoError(t, err)

	require.True(t, wantDecimal.Equal(gotDecimal),
		"want amount %v, got %v", wantDecimal, gotDecimal)
}

func TestCreate(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)

	sender := test.SeedSenderWith1000Balance(t, tx)
	receiver := test.SeedReceiver(t, tx)

	paymentRepo := paymentrepo.NewTxRepoPGS(tx)
	userRepo := userrepo.NewRepoPGS(tx)

	arg := domain.CreatePaymentParams{
		Sender:   sender.Username,
		Receiver: receiver.Username,
		Amount:   "250",
	}

	payment, err := paymentRepo.Create(context.Background(), arg)
	require.NoError(t, err)

	require.NotEqual(t, uuid.Nil, payment.ID)
	require.Equal(t, sender.Username, payment.Sender)
	require.Equal(t, receiver.Username, payment.Receiver)
	require.Equal(t, domain.StatusAwaitingApproval, payment.Status)
	require.NotZero(t, payment.CreatedAt)
	requireAmountEqual(t, arg.Amount, payment.Amount)

	// The sender is debited immediately, the receiver is not credited yet.
	debitedSender, err := userRepo.Get(context.Background(), sender.Username)
	require.NoError(t, err)
	requireAmountEqual(t, "750", debitedSender.Balance)

	pendingReceiver, err := userRepo.Get(context.Background(), receiver.Username)
	require.NoError(t, err)
	requireAmountEqual(t, "100", pendingReceiver.Balance)
}

func TestCreateInsufficientBalance(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)

	sender := test.SeedSenderWith1000Balance(t, tx)
	receiver := test.SeedReceiver(t, tx)

	paymentRepo := paymentrepo.NewTxRepoPGS(tx)
	userRepo := userrepo.NewRepoPGS(tx)

	arg := domain.CreatePaymentParams{
		Sender:   sender.Username,
		Receiver: receiver.Username,
		Amount:   "1000.0001",
	}

	payment, err := paymentRepo.Create(context.Background(), arg)
	require.EqualError(t, err, domain.ErrInsufficientBalance.Error())
	require.Empty(t, payment)

	// The failed debit leaves the balance untouched.
	untouchedSender, err := userRepo.Get(context.Background(), sender.Username)
	require.NoError(t, err)
	requireAmountEqual(t, "1000", untouchedSender.Balance)
}

func TestCreateReceiverNotFound(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)

	sender := test.SeedSenderWith1000Balance(t, tx)

	paymentRepo := paymentrepo.NewTxRepoPGS(tx)

	arg := domain.CreatePaymentParams{
		Sender:   sender.Username,
		Receiver: "nonexistent",
		Amount:   "250",
	}

	payment, err := paymentRepo.Create(context.Background(), arg)
	require.EqualError(t, err, domain.ErrUserNotFound.Error())
	require.Empty(t, payment)
}

func TestGet(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)

	sender := test.SeedSenderWith1000Balance(t, tx)
	receiver := test.SeedReceiver(t, tx)
	payment := test.SeedPayment(t, tx, sender.Username, receiver.Username, "250")

	paymentRepo := paymentrepo.NewTxRepoPGS(tx)

	got, err := paymentRepo.Get(context.Background(), payment.ID)
	require.NoError(t, err)
	require.Equal(t, payment.ID, got.ID)
	require.Equal(t, payment.Sender, got.Sender)
	require.Equal(t, payment.Receiver, got.Receiver)
	require.Equal(t, payment.Status, got.Status)
	requireAmountEqual(t, payment.Amount, got.Amount)

	// Not found
	_, err = paymentRepo.Get(context.Background(), uuid.New())
	require.EqualError(t, err, domain.ErrPaymentNotFound.Error())
}

func TestList(t *testing.T) {
	t.Parallel()

	const paymentsCount = 5

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)

	sender := test.SeedSenderWith1000Balance(t, tx)
	receiver := test.SeedReceiver(t, tx)

	want := make([]domain.Payment, paymentsCount)
	for i := range want {
		want[i] = test.SeedPayment(t, tx, sender.Username, receiver.Username, "10")
	}

	paymentRepo := paymentrepo.NewTxRepoPGS(tx)

	testCases := []struct {
		name string
		arg  domain.ListPaymentsParams
	}{
		{
			name: "SenderSide",
			arg:  domain.ListPaymentsParams{Username: sender.Username, Role: domain.RoleSender},
		},
		{
			name: "ReceiverSide",
			arg:  domain.ListPaymentsParams{Username: receiver.Username, Role: domain.RoleReceiver},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			got, err := paymentRepo.List(context.Background(), tc.arg)
			require.NoError(t, err)
			require.Len(t, got, paymentsCount)

			for i := range got {
				require.Equal(t, want[i].ID, got[i].ID)
				require.Equal(t, domain.StatusAwaitingApproval, got[i].Status)
			}
		})
	}

	t.Run("UnknownRole", func(t *testing.T) {
		_, err := paymentRepo.List(context.Background(), domain.ListPaymentsParams{
			Username: sender.Username,
			Role:     domain.Role("admin"),
		})
		require.EqualError(t, err, domain.ErrInvalidRole.Error())
	})

	t.Run("NoPayments", func(t *testing.T) {
		got, err := paymentRepo.List(context.Background(), domain.ListPaymentsParams{
			Username: "nonexistent",
			Role:     domain.RoleSender,
		})
		require.NoError(t, err)
		require.Empty(t, got)
	})
}

func TestConfirmTx(t *testing.T) {
	db := integrationtest.SetupDB(t, dbDriver, dbSource)

	sender := test.SeedSenderWith1000Balance(t, db)
	receiver := test.SeedReceiver(t, db)

	paymentRepo := paymentrepo.NewRepoPGS(db)
	userRepo := userrepo.NewRepoPGS(db)

	payment, err := paymentRepo.CreateTx(context.Background(), domain.CreatePaymentParams{
		Sender:   sender.Username,
		Receiver: receiver.Username,
		Amount:   "250",
	})
	require.NoError(t, err)

	confirmed, err := paymentRepo.ConfirmTx(context.Background(), payment.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, confirmed.Status)

	creditedReceiver, err := userRepo.Get(context.Background(), receiver.Username)
	require.NoError(t, err)
	requireAmountEqual(t, "350", creditedReceiver.Balance)

	// The approved state is terminal.
	_, err = paymentRepo.ConfirmTx(context.Background(), payment.ID)
	require.EqualError(t, err, domain.ErrNotAwaitingApproval.Error())

	// The second attempt must not credit again.
	creditedReceiver, err = userRepo.Get(context.Background(), receiver.Username)
	require.NoError(t, err)
	requireAmountEqual(t, "350", creditedReceiver.Balance)
}

func TestCreateTxConcurrent(t *testing.T) {
	db := integrationtest.SetupDB(t, dbDriver, dbSource)

	sender := test.SeedSenderWith1000Balance(t, db)
	receiver := test.SeedReceiver(t, db)

	paymentRepo := paymentrepo.NewRepoPGS(db)
	userRepo := userrepo.NewRepoPGS(db)

	// With a 1000 balance exactly 6 concurrent debits of 150 can succeed.
	n := 7
	arg := domain.CreatePaymentParams{
		Sender:   sender.Username,
		Receiver: receiver.Username,
		Amount:   "150",
	}

	errs := make(chan error)

	for i := 0; i < n; i++ {
		go func() {
			_, err := paymentRepo.CreateTx(context.Background(), arg)
			errs <- err
		}()
	}

	var insufficient int

	for i := 0; i < n; i++ {
		err := <-errs
		if err == nil {
			continue
		}

		require.EqualError(t, err, domain.ErrInsufficientBalance.Error())
		insufficient++
	}

	require.Equal(t, 1, insufficient)

	drainedSender, err := userRepo.Get(context.Background(), sender.Username)
	require.NoError(t, err)
	requireAmountEqual(t, "100", drainedSender.Balance)

	payments, err := paymentRepo.List(context.Background(), domain.ListPaymentsParams{
		Username: sender.Username,
		Role:     domain.RoleSender,
	})
	require.NoError(t, err)
	require.Len(t, payments, n-1)
}

func TestConfirmTxConcurrent(t *testing.T) {
	db := integrationtest.SetupDB(t, dbDriver, dbSource)

	sender := test.SeedSenderWith1000Balance(t, db)
	receiver := test.SeedReceiver(t, db)

	paymentRepo := paymentrepo.NewRepoPGS(db)
	userRepo := userrepo.NewRepoPGS(db)

	payment, err := paymentRepo.CreateTx(context.Background(), domain.CreatePaymentParams{
		Sender:   sender.Username,
		Receiver: receiver.Username,
		Amount:   "250",
	})
	require.NoError(t, err)

	// Only one of n concurrent confirmations may credit the receiver.
	n := 5
	errs := make(chan error)

	for i := 0; i < n; i++ {
		go func() {
			_, err := paymentRepo.ConfirmTx(context.Background(), payment.ID)
			errs <- err
		}()
	}

	var approved int

	for i := 0; i < n; i++ {
		err := <-errs
		if err == nil {
			approved++
			continue
		}

		require.EqualError(t, err, domain.ErrNotAwaitingApproval.Error())
	}

	require.Equal(t, 1, approved)

	creditedReceiver, err := userRepo.Get(context.Background(), receiver.Username)
	require.NoError(t, err)
	requireAmountEqual(t, "350", creditedReceiver.Balance)
}
