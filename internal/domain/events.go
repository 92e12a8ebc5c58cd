package domain

import "time"

const (
	EventEscrowCreated      = "escrow.created"
	EventEscrowReleased     = "escrow.released"
	EventEscrowAutoReleased = "escrow.auto_released"
	EventEscrowRefunded     = "escrow.refunded"
	EventEscrowDisputed     = "escrow.disputed"

	EventPaymentInitiated = "payment.initiated"
	EventPaymentHeld      = "payment.held"
	EventPaymentReleased  = "payment.released"
	EventPaymentRefunded  = "payment.refunded"
)

type EscrowEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	EscrowID   string    `json:"escrow_id"`
	PayerID    string    `json:"payer_id"`
	ReceiverID string    `json:"receiver_id"`
	Amount     string    `json:"amount"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type PaymentEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	PaymentID  string    `json:"payment_id"`
	BookingID  string    `json:"booking_id"`
	PayerID    string    `json:"payer_id"`
	PayeeID    string    `json:"payee_id,omitempty"`
	Amount     string    `json:"amount"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
