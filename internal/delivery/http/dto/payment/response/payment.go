package response

import (
	"time"

	escrowResponse "github.com/LavaJover/shvark-escrow-service/internal/delivery/http/dto/escrow/response"
	"github.com/LavaJover/shvark-escrow-service/internal/domain"
)

type PaymentResponse struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	PayerID   string    `json:"payer_id"`
	PayeeID   string    `json:"payee_id,omitempty"`
	Amount    string    `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListPaymentsResponse struct {
	Payments   []PaymentResponse                 `json:"payments"`
	Pagination escrowResponse.PaginationResponse `json:"pagination"`
}

func FromDomainPayment(p *domain.PaymentTransaction) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		BookingID: p.BookingID,
		PayerID:   p.PayerID,
		PayeeID:   p.PayeeID,
		Amount:    p.Amount.StringFixed(2),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func FromDomainPayments(payments []*domain.PaymentTransaction) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = FromDomainPayment(p)
	}
	return out
}
