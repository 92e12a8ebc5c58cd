package paymentdto

import (
	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	escrowdto "github.com/LavaJover/shvark-escrow-service/internal/usecase/dto/escrow"
)

type ListPaymentsOutput struct {
	Payments   []*domain.PaymentTransaction
	Pagination escrowdto.Pagination
}
