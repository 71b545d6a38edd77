// Package userdelivery manages delivery layer of users.
package userdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/IsaacValiente/Mobility.Payments/internal/domain"
	"github.com/IsaacValiente/Mobility.Payments/pkg/errorspkg"
	"github.com/IsaacValiente/Mobility.Payments/pkg/tokenpkg"
	"github.com/IsaacValiente/Mobility.Payments/pkg/web"
)

// Service provides service layer interface needed by user delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package userdelivery
type Service interface {
	Create(ctx context.Context, username, password, firstName, lastName string, role domain.Role) (domain.UserWithoutPassword, error)
	CheckPassword(ctx context.Context, username, password string) (domain.UserWithoutPassword, error)
}

// Handler facilitates user delivery layer logic.
type Handler struct {
	service       Service
	tokenMaker    tokenpkg.Maker
	tokenDuration time.Duration
}

// NewHandler returns user handler.
func NewHandler(us Service, tm tokenpkg.Maker, tokenDuration time.Duration) *Handler {
	return &Handler{
		service:       us,
		tokenMaker:    tm,
		tokenDuration: tokenDuration,
	}
}

type createRequest struct {
	Username  string `json:"username" binding:"required,alphanum"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Role      string `json:"role" binding:"required,oneof=sender receiver"`
}

// Create handles http request to register a user.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	createdUser, err := h.service.Create(ctx, req.Username, req.Password, req.FirstName, req.LastName, role)
	if err != nil {
		if err == domain.ErrUsernameAlreadyExists {
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			User domain.UserWithoutPassword `json:"user"`
		}{
			User: createdUser,
		},
	}

	gctx.JSON(http.StatusCreated, res)
}

type loginRequest struct {
	Username string `json:"username" binding:"required,alphanum"`
	Password string `json:"password" binding:"required,min=6"`
}

// Login handles http login request and returns a bearer access token.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	user, err := h.service.CheckPassword(ctx, req.Username, req.Password)
	if err != nil {
		if err == domain.ErrInvalidCredentials {
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	accessToken, payload, err := h.tokenMaker.CreateToken(user.Username, string(user.Role), h.tokenDuration)
	if err != nil {
		l.Warn().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: payload.ExpiredAt.Format(time.RFC3339),
		Data: struct {
			User domain.UserWithoutPassword `json:"user"`
		}{
			User: user,
		},
	}

	gctx.JSON(http.StatusOK, res)
}
