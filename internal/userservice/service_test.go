package userservice

import (
	"context"
	"fmt"
	reflect "reflect"
	"testing"

	gomock "github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"

	"github.com/IsaacValiente/Mobility.Payments/internal/domain"
	"github.com/IsaacValiente/Mobility.Payments/pkg/errorspkg"
	"github.com/IsaacValiente/Mobility.Payments/pkg/passpkg"
	"github.com/IsaacValiente/Mobility.Payments/pkg/randompkg"
)

func randomUser(t *testing.T, role domain.Role) (domain.User, string) {
	t.Helper()

	password := randompkg.String(10)

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		t.Fatalf("passpkg.Hash(%v) failed: %v", password, err)
	}

	user := domain.User{
		Username:       randompkg.Username(),
		HashedPassword: hashedPassword,
		FirstName:      randompkg.Username(),
		LastName:       randompkg.Username(),
		Role:           role,
		Balance:        StartingBalance(role),
	}

	return user, password
}

type eqCreateUserParamsMatcher struct {
	arg      domain.CreateUserParams
	password string
}

func (e eqCreateUserParamsMatcher) Matches(x interface{}) bool {
	arg, ok := x.(domain.CreateUserParams)
	if !ok {
		return false
	}

	err := passpkg.Check(e.password, arg.HashedPassword)
	if err != nil {
		return false
	}

	e.arg.HashedPassword = arg.HashedPassword

	return reflect.DeepEqual(e.arg, arg)
}

func (e eqCreateUserParamsMatcher) String() string {
	return fmt.Sprintf("matches arg %v and password %v", e.arg, e.password)
}

// EqCreateUserParams checks params equality while verifying the derived hash.
func EqCreateUserParams(arg domain.CreateUserParams, password string) gomock.Matcher {
	return eqCreateUserParamsMatcher{arg, password}
}

func TestCreate(t *testing.T) {
	t.Parallel()

	sender, senderPassword := randomUser(t, domain.RoleSender)
	receiver, receiverPassword := randomUser(t, domain.RoleReceiver)

	type input struct {
		username  string
		password  string
		firstName string
		lastName  string
		role      domain.Role
	}

	testCases := []struct {
		name          string
		input         input
		buildStubs    func(userRepo *MockRepo)
		checkResponse func(t *testing.T, got domain.UserWithoutPassword)
		wantError     error
	}{
		{
			name: "SenderStartsWith1000",
			input: input{
				sender.Username,
				senderPassword,
				sender.FirstName,
				sender.LastName,
				domain.RoleSender,
			},
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					Create(gomock.Any(), EqCreateUserParams(
						domain.CreateUserParams{
							Username:       sender.Username,
							HashedPassword: sender.HashedPassword,
							FirstName:      sender.FirstName,
							LastName:       sender.LastName,
							Role:           domain.RoleSender,
							Balance:        "1000",
						}, senderPassword)).
					Times(1).
					Return(sender, nil)
			},
			checkResponse: func(t *testing.T, got domain.UserWithoutPassword) {
				want := NewUserWithoutPassword(sender)

				if !cmp.Equal(got, want) {
					t.Errorf("domain.UserWithoutPassword = %+v, want %+v", got, want)
				}
			},
		},
		{
			name: "ReceiverStartsWith100",
			input: input{
				receiver.Username,
				receiverPassword,
				receiver.FirstName,
				receiver.LastName,
				domain.RoleReceiver,
			},
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					Create(gomock.Any(), EqCreateUserParams(
						domain.CreateUserParams{
							Username:       receiver.Username,
							HashedPassword: receiver.HashedPassword,
							FirstName:      receiver.FirstName,
							LastName:       receiver.LastName,
							Role:           domain.RoleReceiver,
							Balance:        "100",
						}, receiverPassword)).
					Times(1).
					Return(receiver, nil)
			},
			checkResponse: func(t *testing.T, got domain.UserWithoutPassword) {
				want := NewUserWithoutPassword(receiver)

				if !cmp.Equal(got, want) {
					t.Errorf("domain.UserWithoutPassword = %+v, want %+v", got, want)
				}
			},
		},
		{
			name: "UsernameAlreadyExists",
			input: input{
				sender.Username,
				senderPassword,
				sender.FirstName,
				sender.LastName,
				domain.RoleSender,
			},
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.User{}, domain.ErrUsernameAlreadyExists)
			},
			wantError: domain.ErrUsernameAlreadyExists,
		},
		{
			name: "CreateUserRepoErr",
			input: input{
				sender.Username,
				senderPassword,
				sender.FirstName,
				sender.LastName,
				domain.RoleSender,
			},
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.User{}, errorspkg.ErrInternal)
			},
			wantError: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			userRepo := NewMockRepo(ctrl)
			userService := New(userRepo)

			tc.buildStubs(userRepo)

			got, err := userService.Create(
				context.Background(),
				tc.input.username,
				tc.input.password,
				tc.input.firstName,
				tc.input.lastName,
				tc.input.role,
			)

			if err != tc.wantError {
				t.Fatalf("userService.Create() error = %v, want %v", err, tc.wantError)
			}

			if tc.checkResponse != nil {
				tc.checkResponse(t, got)
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	t.Parallel()

	user, password := randomUser(t, domain.RoleSender)

	testCases := []struct {
		name       string
		username   string
		password   string
		buildStubs func(userRepo *MockRepo)
		wantError  error
	}{
		{
			name:     "OK",
			username: user.Username,
			password: password,
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					Get(gomock.Any(), gomock.Eq(user.Username)).
					Times(1).
					Return(user, nil)
			},
		},
		{
			name:     "WrongPassword",
			username: user.Username,
			password: "wrongpassword",
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					Get(gomock.Any(), gomock.Eq(user.Username)).
					Times(1).
					Return(user, nil)
			},
			wantError: domain.ErrInvalidCredentials,
		},
		{
			name:     "UnknownUserSameError",
			username: "nosuchuser",
			password: password,
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					Get(gomock.Any(), gomock.Eq("nosuchuser")).
					Times(1).
					Return(domain.User{}, domain.ErrUserNotFound)
			},
			wantError: domain.ErrInvalidCredentials,
		},
		{
			name:     "RepoErr",
			username: user.Username,
			password: password,
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					Get(gomock.Any(), gomock.Eq(user.Username)).
					Times(1).
					Return(domain.User{}, errorspkg.ErrInternal)
			},
			wantError: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			userRepo := NewMockRepo(ctrl)
			userService := New(userRepo)

			tc.buildStubs(userRepo)

			got, err := userService.CheckPassword(context.Background(), tc.username, tc.password)

			if err != tc.wantError {
				t.Fatalf("userService.CheckPassword() error = %v, want %v", err, tc.wantError)
			}

			if tc.wantError == nil {
				want := NewUserWithoutPassword(user)
				if !cmp.Equal(got, want) {
					t.Errorf("domain.UserWithoutPassword = %+v, want %+v", got, want)
				}
			}
		})
	}
}
