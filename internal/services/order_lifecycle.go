package services

import (
	"nyumba/internal/apperr"
	"nyumba/internal/domain"
)

var statusFlow = map[domain.OrderStatus][]domain.OrderStatus{
	domain.StatusPending:    {domain.StatusConfirmed, domain.StatusCancelled, domain.StatusRefunded},
	domain.StatusConfirmed:  {domain.StatusProcessing, domain.StatusCancelled, domain.StatusRefunded},
	domain.StatusProcessing: {domain.StatusShipped, domain.StatusCancelled, domain.StatusRefunded},
	domain.StatusShipped:    {domain.StatusDelivered, domain.StatusCancelled, domain.StatusRefunded},
	domain.StatusDelivered:  {domain.StatusRefunded},
}

var paymentFlow = map[domain.PaymentStatus][]domain.PaymentStatus{
	domain.PaymentPending: {domain.PaymentPaid, domain.PaymentFailed},
	domain.PaymentPaid:    {domain.PaymentRefunded},
	domain.PaymentFailed:  {domain.PaymentRefunded},
}

// CanTransition reports whether an order may move from one status to another.
// Staying in place is always allowed.
func CanTransition(from, to domain.OrderStatus) bool {
	if from == to {
		return true
	}
	for _, s := range statusFlow[from] {
		if s == to {
			return true
		}
	}
	return false
}

func CanTransitionPayment(from, to domain.PaymentStatus) bool {
	if from == to {
		return true
	}
	for _, s := range paymentFlow[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Cancellable reports whether Cancel accepts an order in status s.
func Cancellable(s domain.OrderStatus) bool {
	switch s {
	case domain.StatusDelivered, domain.StatusCancelled, domain.StatusRefunded:
		return false
	}
	return true
}

// Transition is a requested change to an order's lifecycle fields.
type Transition struct {
	Status        *domain.OrderStatus   `json:"status"`
	PaymentStatus *domain.PaymentStatus `json:"paymentStatus"`
	Notes         *string               `json:"notes"`
}

// applyTransition validates t against o, mutates o in place and returns the
// items whose stock must be given back. Each lifecycle stamp is written at
// most once.
func applyTransition(o *domain.Order, t Transition, now string) ([]domain.OrderItem, error) {
	var restock []domain.OrderItem

	if t.Status != nil {
		to := *t.Status
		if !to.Valid() {
			return nil, apperr.Validation("Invalid order status: %s", to)
		}
		if !CanTransition(o.Status, to) {
			return nil, apperr.Validation("Cannot change order status from %s to %s", o.Status, to)
		}
		if to != o.Status {
			switch to {
			case domain.StatusDelivered:
				if o.DeliveredAt == nil {
					o.DeliveredAt = ptr(now)
				}
			case domain.StatusCancelled:
				if o.CancelledAt == nil {
					o.CancelledAt = ptr(now)
					restock = o.Items
				}
			case domain.StatusRefunded:
				if o.RefundedAt == nil {
					o.RefundedAt = ptr(now)
				}
			}
			o.Status = to
		}
	}

	if t.PaymentStatus != nil {
		to := *t.PaymentStatus
		if !to.Valid() {
			return nil, apperr.Validation("Invalid payment status: %s", to)
		}
		if !CanTransitionPayment(o.PaymentStatus, to) {
			return nil, apperr.Validation("Cannot change payment status from %s to %s", o.PaymentStatus, to)
		}
		if to == domain.PaymentRefunded && o.RefundedAt == nil {
			o.RefundedAt = ptr(now)
		}
		o.PaymentStatus = to
	}

	if t.Notes != nil {
		o.Notes = *t.Notes
	}
	o.UpdatedAt = now
	return restock, nil
}
