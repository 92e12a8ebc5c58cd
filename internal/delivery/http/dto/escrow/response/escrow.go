package response

import (
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	escrowdto "github.com/LavaJover/shvark-escrow-service/internal/usecase/dto/escrow"
)

type EscrowResponse struct {
	ID          string     `json:"id"`
	PayerID     string     `json:"payer_id"`
	ReceiverID  string     `json:"receiver_id"`
	Amount      string     `json:"amount"`
	Description string     `json:"description"`
	ServiceID   *string    `json:"service_id"`
	Status      string     `json:"status"`
	Released    bool       `json:"released"`
	Disputed    bool       `json:"disputed"`
	CreatedAt   time.Time  `json:"created_at"`
	ReleaseAt   time.Time  `json:"release_at"`
	ReleasedAt  *time.Time `json:"released_at"`
	RefundedAt  *time.Time `json:"refunded_at"`
}

type PaginationResponse struct {
	CurrentPage  int32 `json:"current_page"`
	TotalPages   int32 `json:"total_pages"`
	TotalItems   int32 `json:"total_items"`
	ItemsPerPage int32 `json:"items_per_page"`
}

type ListEscrowsResponse struct {
	Escrows    []EscrowResponse   `json:"escrows"`
	Pagination PaginationResponse `json:"pagination"`
}

type SweepResponse struct {
	Released []EscrowResponse `json:"released"`
	Count    int              `json:"count"`
}

type SummaryResponse struct {
	HeldTotal             string           `json:"held_total"`
	ReleasedTotal         string           `json:"released_total"`
	RefundedTotal         string           `json:"refunded_total"`
	DisputedTotal         string           `json:"disputed_total"`
	CountByStatus         map[string]int64 `json:"count_by_status"`
	PaymentsHeldTotal     string           `json:"payments_held_total"`
	PaymentsReleasedTotal string           `json:"payments_released_total"`
	CalculatedAt          time.Time        `json:"calculated_at"`
}

func FromDomainEscrow(e *domain.EscrowTransaction) EscrowResponse {
	return EscrowResponse{
		ID:          e.ID,
		PayerID:     e.PayerID,
		ReceiverID:  e.ReceiverID,
		Amount:      e.Amount.StringFixed(2),
		Description: e.Description,
		ServiceID:   e.ServiceID,
		Status:      string(e.Status),
		Released:    e.Released,
		Disputed:    e.Disputed,
		CreatedAt:   e.CreatedAt,
		ReleaseAt:   e.ReleaseAt,
		ReleasedAt:  e.ReleasedAt,
		RefundedAt:  e.RefundedAt,
	}
}

func FromDomainEscrows(escrows []*domain.EscrowTransaction) []EscrowResponse {
	out := make([]EscrowResponse, len(escrows))
	for i, e := range escrows {
		out[i] = FromDomainEscrow(e)
	}
	return out
}

func FromPagination(p escrowdto.Pagination) PaginationResponse {
	return PaginationResponse{
		CurrentPage:  p.CurrentPage,
		TotalPages:   p.TotalPages,
		TotalItems:   p.TotalItems,
		ItemsPerPage: p.ItemsPerPage,
	}
}

func FromDomainSummary(s *domain.EscrowSummary) SummaryResponse {
	counts := make(map[string]int64, len(s.CountByStatus))
	for status, n := range s.CountByStatus {
		counts[string(status)] = n
	}
	return SummaryResponse{
		HeldTotal:             s.HeldTotal.StringFixed(2),
		ReleasedTotal:         s.ReleasedTotal.StringFixed(2),
		RefundedTotal:         s.RefundedTotal.StringFixed(2),
		DisputedTotal:         s.DisputedTotal.StringFixed(2),
		CountByStatus:         counts,
		PaymentsHeldTotal:     s.PaymentsHeldTotal.StringFixed(2),
		PaymentsReleasedTotal: s.PaymentsReleasedTotal.StringFixed(2),
		CalculatedAt:          s.CalculatedAt,
	}
}
