package entity

import "time"

// LineItem is a product line owned by exactly one parent entity
// (a delivery on a route, a returned product on a case).
type LineItem struct {
	Ref         Ref       `json:"-"`
	EntityID    int64     `json:"entity_id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChildRef returns the line item's explicit identity
func (li *LineItem) ChildRef() Ref {
	return li.Ref
}

// Payment is a payment record owned by exactly one parent entity.
// Amounts are in cents.
type Payment struct {
	Ref          Ref       `json:"-"`
	EntityID     int64     `json:"entity_id"`
	Method       string    `json:"method"`
	AmountCents  int64     `json:"amount_cents"`
	Installments int       `json:"installments"`
	Received     bool      `json:"received"`
	CreatedAt    time.Time `json:"created_at"`
}

// ChildRef returns the payment's explicit identity
func (p *Payment) ChildRef() Ref {
	return p.Ref
}
