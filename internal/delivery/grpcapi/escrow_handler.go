package grpcapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/LavaJover/shvark-escrow-service/internal/usecase/escrow"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// actorMetadataKey names the operator on whose behalf an admin call is made.
const actorMetadataKey = "x-actor-id"

const defaultActorID = "grpc-admin"

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

func (h *EscrowHandler) GetEscrow(ctx context.Context, r *wrapperspb.StringValue) (*structpb.Struct, error) {
	e, err := h.uc.GetEscrowByID(ctx, adminIdentity(ctx), r.GetValue())
	if err != nil {
		return nil, h.toStatus(err)
	}
	return escrowToStruct(e)
}

func (h *EscrowHandler) ReleaseEscrow(ctx context.Context, r *wrapperspb.StringValue) (*structpb.Struct, error) {
	e, err := h.uc.ReleaseEscrow(ctx, adminIdentity(ctx), r.GetValue())
	if err != nil {
		return nil, h.toStatus(err)
	}
	return escrowToStruct(e)
}

func (h *EscrowHandler) RefundEscrow(ctx context.Context, r *wrapperspb.StringValue) (*structpb.Struct, error) {
	e, err := h.uc.RefundEscrow(ctx, adminIdentity(ctx), r.GetValue())
	if err != nil {
		return nil, h.toStatus(err)
	}
	return escrowToStruct(e)
}

func (h *EscrowHandler) DisputeEscrow(ctx context.Context, r *wrapperspb.StringValue) (*structpb.Struct, error) {
	e, err := h.uc.DisputeEscrow(ctx, adminIdentity(ctx), r.GetValue())
	if err != nil {
		return nil, h.toStatus(err)
	}
	return escrowToStruct(e)
}

func (h *EscrowHandler) SweepDueReleases(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	released, err := h.uc.SweepDueReleases(ctx, h.clock.Now())
	if err != nil {
		return nil, h.toStatus(err)
	}
	items := make([]interface{}, 0, len(released))
	for _, e := range released {
		items = append(items, escrowToMap(e))
	}
	return structpb.NewStruct(map[string]interface{}{
		"released": items,
		"count":    len(released),
	})
}

func (h *EscrowHandler) GetSummary(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	summary, err := h.uc.GetSummary(ctx, adminIdentity(ctx))
	if err != nil {
		return nil, h.toStatus(err)
	}
	counts := make(map[string]interface{}, len(summary.CountByStatus))
	for s, n := range summary.CountByStatus {
		counts[string(s)] = float64(n)
	}
	return structpb.NewStruct(map[string]interface{}{
		"held_total":              summary.HeldTotal.StringFixed(2),
		"released_total":          summary.ReleasedTotal.StringFixed(2),
		"refunded_total":          summary.RefundedTotal.StringFixed(2),
		"disputed_total":          summary.DisputedTotal.StringFixed(2),
		"count_by_status":         counts,
		"payments_held_total":     summary.PaymentsHeldTotal.StringFixed(2),
		"payments_released_total": summary.PaymentsReleasedTotal.StringFixed(2),
		"calculated_at":           summary.CalculatedAt.Format(time.RFC3339),
	})
}

// adminIdentity trusts the caller: this API is only exposed on the internal network.
func adminIdentity(ctx context.Context) domain.Identity {
	actor := defaultActorID
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(actorMetadataKey); len(values) > 0 && values[0] != "" {
			actor = values[0]
		}
	}
	return domain.Identity{SubjectID: actor, IsAuthenticated: true, IsStaff: true}
}

func (h *EscrowHandler) toStatus(err error) error {
	var stateErr *domain.InvalidStateError
	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &stateErr):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	}
	h.logger.Error("grpc call failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func escrowToStruct(e *domain.EscrowTransaction) (*structpb.Struct, error) {
	return structpb.NewStruct(escrowToMap(e))
}

func escrowToMap(e *domain.EscrowTransaction) map[string]interface{} {
	m := map[string]interface{}{
		"id":          e.ID,
		"payer_id":    e.PayerID,
		"receiver_id": e.ReceiverID,
		"amount":      e.Amount.StringFixed(2),
		"description": e.Description,
		"status":      string(e.Status),
		"released":    e.Released,
		"disputed":    e.Disputed,
		"created_at":  e.CreatedAt.Format(time.RFC3339),
		"release_at":  e.ReleaseAt.Format(time.RFC3339),
		"released_at": nil,
		"refunded_at": nil,
		"service_id":  nil,
	}
	if e.ReleasedAt != nil {
		m["released_at"] = e.ReleasedAt.Format(time.RFC3339)
	}
	if e.RefundedAt != nil {
		m["refunded_at"] = e.RefundedAt.Format(time.RFC3339)
	}
	if e.ServiceID != nil {
		m["service_id"] = *e.ServiceID
	}
	return m
}

var _ EscrowAdminServer = (*EscrowHandler)(nil)
