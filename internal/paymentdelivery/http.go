// Package paymentdelivery manages delivery layer of payments.
package paymentdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/IsaacValiente/Mobility.Payments/internal/domain"
	"github.com/IsaacValiente/Mobility.Payments/internal/middleware"
	"github.com/IsaacValiente/Mobility.Payments/pkg/errorspkg"
	"github.com/IsaacValiente/Mobility.Payments/pkg/web"
)

var errInvalidPaymentID = errors.New("payment id must be a valid UUID")

// Service provides service layer interface needed by payment delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package paymentdelivery
type Service interface {
	Create(ctx context.Context, sender, receiver, amount string) (domain.Payment, error)
	Get(ctx context.Context, actor string, id uuid.UUID) (domain.Payment, error)
	List(ctx context.Context, identity domain.Identity) ([]domain.Payment, error)
	Confirm(ctx context.Context, actor string, id uuid.UUID) (domain.Payment, error)
}

// Handler facilitates payment delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns payment handler.
func NewHandler(ps Service) *Handler {
	return &Handler{
		service: ps,
	}
}

type createRequest struct {
	Receiver string `json:"receiver" binding:"required,alphanum"`
	Amount   string `json:"amount" binding:"required"`
}

type paymentData struct {
	Payment domain.Payment `json:"payment"`
}

// Create handles http request to create a payment to the given receiver.
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

	identity := middleware.Identity(gctx)

	payment, err := h.service.Create(ctx, identity.Username, req.Receiver, req.Amount)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrUserNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))

			return
		case
			domain.ErrSameSenderReceiver,
			domain.ErrInvalidAmount,
			domain.ErrNonPositiveAmount,
			domain.ErrAmountScaleTooLarge,
			domain.ErrCannotAcceptPayments,
			domain.ErrInsufficientBalance:
			gctx.JSON(http.StatusBadRequest, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: paymentData{payment},
	}

	gctx.JSON(http.StatusCreated, res)
}

// Get handles http request to fetch a single payment of the caller.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	id, err := uuid.Parse(gctx.Param("id"))
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(errInvalidPaymentID))

		return
	}

	identity := middleware.Identity(gctx)

	payment, err := h.service.Get(ctx, identity.Username, id)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrPaymentNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))

			return
		case domain.ErrPaymentAccessDenied:
			gctx.JSON(http.StatusUnauthorized, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: paymentData{payment},
	}

	gctx.JSON(http.StatusOK, res)
}

// List handles http request to list all payments of the caller.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	identity := middleware.Identity(gctx)

	payments, err := h.service.List(ctx, identity)
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Payments []domain.Payment `json:"payments"`
		}{
			Payments: payments,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

// Confirm handles http request to confirm an awaiting payment.
func (h *Handler) Confirm(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	id, err := uuid.Parse(gctx.Param("id"))
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(errInvalidPaymentID))

		return
	}

	identity := middleware.Identity(gctx)

	payment, err := h.service.Confirm(ctx, identity.Username, id)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrPaymentNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))

			return
		case
			domain.ErrNotAwaitingApproval,
			domain.ErrWrongReceiver:
			gctx.JSON(http.StatusBadRequest, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: paymentData{payment},
	}

	gctx.JSON(http.StatusOK, res)
}
