package workflow

import (
	"context"
	"fmt"
)

// kindSpec declares one business module's lifecycle: its initial status,
// the status the rollover engine finalizes into, and the transition table.
type kindSpec struct {
	initial   Status
	final     Status
	configure func(b Builder)
}

type ctxKey string

const lineItemCountKey ctxKey = "line_item_count"

// WithLineItemCount records the parent's current line item count on the
// context so guards can evaluate it during a move.
func WithLineItemCount(ctx context.Context, count int) context.Context {
	return context.WithValue(ctx, lineItemCountKey, count)
}

func lineItemCount(ctx context.Context) int {
	if n, ok := ctx.Value(lineItemCountKey).(int); ok {
		return n
	}
	return 0
}

// hasLineItems gates return-case finalization: a case with nothing returned
// in it cannot be closed as finalized.
func hasLineItems(ctx context.Context) bool {
	return lineItemCount(ctx) > 0
}

var kindSpecs = map[Kind]kindSpec{
	KindCRMTicket: {
		initial: StatusOpen,
		final:   StatusFinalized,
		configure: func(b Builder) {
			b.Configure(StatusOpen).
				Permit(StatusMonitoring).
				Permit(StatusFinalized)
			b.Configure(StatusMonitoring).
				Permit(StatusOpen).
				Permit(StatusFinalized)
		},
	},
	KindExchangeSent: {
		initial: StatusAwaitingReturn,
		final:   StatusFinalized,
		configure: func(b Builder) {
			b.Configure(StatusAwaitingReturn).
				Permit(StatusFinalized).
				Permit(StatusCancelled)
		},
	},
	KindExchangeReceived: {
		initial: StatusCollected,
		final:   StatusFinalized,
		configure: func(b Builder) {
			b.Configure(StatusCollected).
				Permit(StatusFinalized).
				Permit(StatusCancelled)
		},
	},
	KindReturnCase: {
		initial: StatusPending,
		final:   StatusFinalized,
		configure: func(b Builder) {
			b.Configure(StatusPending).
				Permit(StatusInAnalysis).
				Permit(StatusCancelled)
			b.Configure(StatusInAnalysis).
				PermitIf(StatusFinalized, hasLineItems).
				Permit(StatusCancelled)
		},
	},
	KindRefund: {
		initial: StatusInAnalysis,
		final:   StatusPaid,
		configure: func(b Builder) {
			b.Configure(StatusInAnalysis).
				Permit(StatusApproved).
				Permit(StatusCancelled)
			b.Configure(StatusApproved).
				Permit(StatusPaid).
				Permit(StatusCancelled)
		},
	},
	KindRecurringOrder: {
		initial: StatusActive,
		final:   StatusCancelled,
		configure: func(b Builder) {
			b.Configure(StatusActive).
				Permit(StatusPaused).
				Permit(StatusCancelled)
			b.Configure(StatusPaused).
				Permit(StatusActive).
				Permit(StatusCancelled)
		},
	},
	KindDeliveryRoute: {
		initial: StatusPending,
		final:   StatusFinalized,
		configure: func(b Builder) {
			b.Configure(StatusPending).
				Permit(StatusInRoute).
				Permit(StatusCancelled)
			b.Configure(StatusInRoute).
				Permit(StatusFinalized).
				Permit(StatusCancelled)
		},
	},
}

// InitialStatus returns the status a freshly created entity of this kind carries
func InitialStatus(kind Kind) (Status, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return spec.initial, nil
}

// FinalStatus returns the terminal status the rollover engine moves this kind into
func FinalStatus(kind Kind) (Status, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return spec.final, nil
}

// NewMachine builds a state machine for the kind positioned at the current status
func NewMachine(kind Kind, current Status) (StateMachine, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if !current.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, current)
	}

	builder := NewBuilder()
	spec.configure(builder)
	return builder.Build(current), nil
}
