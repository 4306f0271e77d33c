package domain

import (
	"fmt"
	"time"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// statusRank orders the forward path; cancelled sits outside it.
var statusRank = map[OrderStatus]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusShipped:   2,
	StatusDelivered: 3,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further change is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo allows staying put, moving forward along
// pending → confirmed → shipped → delivered (skipping is allowed),
// and cancelling from any non-terminal state.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !s.Valid() || !target.Valid() {
		return false
	}
	if s == target {
		return true
	}
	if s.Terminal() {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	return statusRank[target] > statusRank[s]
}

// PaymentStatus is the payment state of an order, independent of OrderStatus.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentPaid, PaymentFailed},
	PaymentPaid:     {PaymentRefunded},
	PaymentFailed:   {},
	PaymentRefunded: {},
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// CanTransitionTo allows staying put and the moves
// pending → paid → refunded and pending → failed.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	if !s.Valid() || !target.Valid() {
		return false
	}
	if s == target {
		return true
	}
	for _, next := range paymentTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Transition records one applied state change.
type Transition struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// StatusChange is a requested update of an order's state.
type StatusChange struct {
	Status OrderStatus
	// PaymentStatus is left unchanged when nil.
	PaymentStatus *PaymentStatus
	// Force skips transition rules. Values must still be known states.
	Force bool
}

// ApplyStatusChange validates the change against the state machines and applies it.
// On error the order is left untouched. Only real changes are returned.
func (o *Order) ApplyStatusChange(change StatusChange, now time.Time) ([]Transition, error) {
	if !change.Status.Valid() {
		return nil, NewValidationError(fmt.Sprintf("unknown status %q", change.Status))
	}
	if change.PaymentStatus != nil && !change.PaymentStatus.Valid() {
		return nil, NewValidationError(fmt.Sprintf("unknown payment status %q", *change.PaymentStatus))
	}

	if !change.Force {
		if !o.Status.CanTransitionTo(change.Status) {
			return nil, &InvalidTransitionError{Field: "status", From: string(o.Status), To: string(change.Status)}
		}
		if change.PaymentStatus != nil && !o.PaymentStatus.CanTransitionTo(*change.PaymentStatus) {
			return nil, &InvalidTransitionError{Field: "payment_status", From: string(o.PaymentStatus), To: string(*change.PaymentStatus)}
		}
	}

	var applied []Transition
	if o.Status != change.Status {
		applied = append(applied, Transition{Field: "status", From: string(o.Status), To: string(change.Status)})
		o.Status = change.Status
	}
	if change.PaymentStatus != nil && o.PaymentStatus != *change.PaymentStatus {
		applied = append(applied, Transition{Field: "payment_status", From: string(o.PaymentStatus), To: string(*change.PaymentStatus)})
		o.PaymentStatus = *change.PaymentStatus
	}
	o.UpdatedAt = now

	return applied, nil
}
