package handlers

import (
	"log/slog"
	"net/http"

	escrowRequest "github.com/LavaJover/shvark-escrow-service/internal/delivery/http/dto/escrow/request"
	escrowResponse "github.com/LavaJover/shvark-escrow-service/internal/delivery/http/dto/escrow/response"
	"github.com/LavaJover/shvark-escrow-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	escrowdto "github.com/LavaJover/shvark-escrow-service/internal/usecase/dto/escrow"
	"github.com/LavaJover/shvark-escrow-service/internal/usecase/escrow"
	"github.com/labstack/echo/v4"
)

type EscrowHandler struct {
	uc     escrow.EscrowUsecase
	clock  domain.Clock
	logger *slog.Logger
}

func NewEscrowHandler(uc escrow.EscrowUsecase, clock domain.Clock, logger *slog.Logger) *EscrowHandler {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &EscrowHandler{uc: uc, clock: clock, logger: logger}
}

func (h *EscrowHandler) CreateEscrow(c echo.Context) error {
	var req escrowRequest.CreateEscrowRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	tx, err := h.uc.CreateEscrow(c.Request().Context(), middleware.IdentityFrom(c), &escrowdto.CreateEscrowInput{
		PayerID:     req.PayerID,
		ReceiverID:  req.ReceiverID,
		Amount:      req.Amount,
		Description: req.Description,
		ServiceID:   req.ServiceID,
		ReleaseAt:   req.ReleaseAt,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, escrowResponse.FromDomainEscrow(tx))
}

func (h *EscrowHandler) GetEscrow(c echo.Context) error {
	tx, err := h.uc.GetEscrowByID(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, escrowResponse.FromDomainEscrow(tx))
}

func (h *EscrowHandler) ListEscrows(c echo.Context) error {
	input, err := bindListEscrows(c)
	if err != nil {
		return badRequest(c, "malformed query")
	}
	output, err := h.uc.ListEscrows(c.Request().Context(), middleware.IdentityFrom(c), input)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toListResponse(output))
}

func (h *EscrowHandler) ListMyEscrows(c echo.Context) error {
	input, err := bindListEscrows(c)
	if err != nil {
		return badRequest(c, "malformed query")
	}
	output, err := h.uc.ListMyEscrows(c.Request().Context(), middleware.IdentityFrom(c), input)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toListResponse(output))
}

func (h *EscrowHandler) ReleaseEscrow(c echo.Context) error {
	tx, err := h.uc.ReleaseEscrow(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, escrowResponse.FromDomainEscrow(tx))
}

func (h *EscrowHandler) RefundEscrow(c echo.Context) error {
	tx, err := h.uc.RefundEscrow(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, escrowResponse.FromDomainEscrow(tx))
}

func (h *EscrowHandler) DisputeEscrow(c echo.Context) error {
	tx, err := h.uc.DisputeEscrow(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, escrowResponse.FromDomainEscrow(tx))
}

// SweepDueReleases runs an auto-release pass immediately.
func (h *EscrowHandler) SweepDueReleases(c echo.Context) error {
	if identity := middleware.IdentityFrom(c); !identity.IsStaff {
		return writeError(c, h.logger, domain.ErrForbidden)
	}
	released, err := h.uc.SweepDueReleases(c.Request().Context(), h.clock.Now())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, escrowResponse.SweepResponse{
		Released: escrowResponse.FromDomainEscrows(released),
		Count:    len(released),
	})
}

func (h *EscrowHandler) GetSummary(c echo.Context) error {
	summary, err := h.uc.GetSummary(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, escrowResponse.FromDomainSummary(summary))
}

func bindListEscrows(c echo.Context) (*escrowdto.ListEscrowsInput, error) {
	var query escrowRequest.ListEscrowsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		return nil, err
	}
	return &escrowdto.ListEscrowsInput{
		Status:     optional(query.Status),
		PayerID:    optional(query.PayerID),
		ReceiverID: optional(query.ReceiverID),
		Page:       query.Page,
		Limit:      query.Limit,
	}, nil
}

func toListResponse(output *escrowdto.ListEscrowsOutput) escrowResponse.ListEscrowsResponse {
	return escrowResponse.ListEscrowsResponse{
		Escrows:    escrowResponse.FromDomainEscrows(output.Escrows),
		Pagination: escrowResponse.FromPagination(output.Pagination),
	}
}
