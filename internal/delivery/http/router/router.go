package router

import (
	"log/slog"

	"github.com/LavaJover/shvark-escrow-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-escrow-service/internal/delivery/http/middleware"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	EscrowHandler  *handlers.EscrowHandler
	PaymentHandler *handlers.PaymentHandler
	HealthHandler  *handlers.HealthHandler
	JWTSecret      string
	Logger         *slog.Logger
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

func New(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))

	e.GET("/healthz", deps.HealthHandler.Health)
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api/v1", middleware.JWTAuth(deps.JWTSecret))
	staff := middleware.RequireStaff()

	escrows := api.Group("/escrows")
	escrows.POST("", deps.EscrowHandler.CreateEscrow, staff)
	escrows.GET("", deps.EscrowHandler.ListEscrows, staff)
	escrows.POST("/sweep", deps.EscrowHandler.SweepDueReleases, staff)
	escrows.GET("/summary", deps.EscrowHandler.GetSummary, staff)
	escrows.GET("/:id", deps.EscrowHandler.GetEscrow)
	escrows.POST("/:id/release", deps.EscrowHandler.ReleaseEscrow, staff)
	escrows.POST("/:id/refund", deps.EscrowHandler.RefundEscrow, staff)
	escrows.POST("/:id/dispute", deps.EscrowHandler.DisputeEscrow)

	api.GET("/me/escrows", deps.EscrowHandler.ListMyEscrows)

	payments := api.Group("/payments")
	payments.POST("", deps.PaymentHandler.InitiatePayment)
	payments.GET("", deps.PaymentHandler.ListPayments, staff)
	payments.GET("/:id", deps.PaymentHandler.GetPayment)
	payments.GET("/by-booking/:booking_id", deps.PaymentHandler.GetPaymentByBooking)
	payments.POST("/:id/hold", deps.PaymentHandler.HoldPayment, staff)
	payments.POST("/:id/release", deps.PaymentHandler.ReleasePayment, staff)
	payments.POST("/:id/refund", deps.PaymentHandler.RefundPayment, staff)

	return e
}
