package handlers

import (
	"log/slog"
	"net/http"

	escrowResponse "github.com/LavaJover/shvark-escrow-service/internal/delivery/http/dto/escrow/response"
	paymentRequest "github.com/LavaJover/shvark-escrow-service/internal/delivery/http/dto/payment/request"
	paymentResponse "github.com/LavaJover/shvark-escrow-service/internal/delivery/http/dto/payment/response"
	"github.com/LavaJover/shvark-escrow-service/internal/delivery/http/middleware"
	paymentdto "github.com/LavaJover/shvark-escrow-service/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-escrow-service/internal/usecase/payment"
	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	uc     payment.PaymentUsecase
	logger *slog.Logger
}

func NewPaymentHandler(uc payment.PaymentUsecase, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{uc: uc, logger: logger}
}

func (h *PaymentHandler) InitiatePayment(c echo.Context) error {
	var req paymentRequest.InitiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	p, err := h.uc.InitiatePayment(c.Request().Context(), middleware.IdentityFrom(c), &paymentdto.InitiatePaymentInput{
		BookingID: req.BookingID,
		PayerID:   req.PayerID,
		PayeeID:   req.PayeeID,
		Amount:    req.Amount,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, paymentResponse.FromDomainPayment(p))
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	p, err := h.uc.GetPaymentByID(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, paymentResponse.FromDomainPayment(p))
}

func (h *PaymentHandler) GetPaymentByBooking(c echo.Context) error {
	p, err := h.uc.GetPaymentByBookingID(c.Request().Context(), middleware.IdentityFrom(c), c.Param("booking_id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, paymentResponse.FromDomainPayment(p))
}

func (h *PaymentHandler) ListPayments(c echo.Context) error {
	var query paymentRequest.ListPaymentsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		return badRequest(c, "malformed query")
	}
	output, err := h.uc.ListPayments(c.Request().Context(), middleware.IdentityFrom(c), &paymentdto.ListPaymentsInput{
		Status:    optional(query.Status),
		BookingID: optional(query.BookingID),
		PayerID:   optional(query.PayerID),
		Page:      query.Page,
		Limit:     query.Limit,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, paymentResponse.ListPaymentsResponse{
		Payments:   paymentResponse.FromDomainPayments(output.Payments),
		Pagination: escrowResponse.FromPagination(output.Pagination),
	})
}

func (h *PaymentHandler) HoldPayment(c echo.Context) error {
	p, err := h.uc.HoldPayment(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, paymentResponse.FromDomainPayment(p))
}

func (h *PaymentHandler) ReleasePayment(c echo.Context) error {
	p, err := h.uc.ReleasePayment(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, paymentResponse.FromDomainPayment(p))
}

func (h *PaymentHandler) RefundPayment(c echo.Context) error {
	p, err := h.uc.RefundPayment(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, paymentResponse.FromDomainPayment(p))
}
