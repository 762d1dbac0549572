package workflow

// Kind identifies the business module an entity belongs to
type Kind string

const (
	KindDeliveryRoute    Kind = "delivery-route"
	KindReturnCase       Kind = "return-case"
	KindExchangeSent     Kind = "exchange-sent"
	KindExchangeReceived Kind = "exchange-received"
	KindRefund           Kind = "refund"
	KindRecurringOrder   Kind = "recurring-order"
	KindCRMTicket        Kind = "crm-ticket"
)

var validKinds = map[Kind]bool{
	KindDeliveryRoute:    true,
	KindReturnCase:       true,
	KindExchangeSent:     true,
	KindExchangeReceived: true,
	KindRefund:           true,
	KindRecurringOrder:   true,
	KindCRMTicket:        true,
}

// IsValid returns true if the kind is a declared entity kind
func (k Kind) IsValid() bool {
	return validKinds[k]
}

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}
