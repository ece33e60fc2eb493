// Package events defines the typed notifications the engine pushes through
// the broker for off-chain indexers and other subscribers.
package events

import (
	"context"

	uuid "github.com/satori/go.uuid"
)

type Type int

const (
	// All is used by subscribers that want every event, it has no payload.
	All Type = iota
	MarketCreatedEvent
	MarketUpdatedEvent
	VotesBoughtEvent
	VotesSoldEvent
	MarketGraduatedEvent
	FundsWithdrawnEvent
	DonationRecipientUpdatedEvent
	DonationWithdrawnEvent
	MarketConfigAddedEvent
	MarketConfigRemovedEvent
	FeesUpdatedEvent
)

var eventStrings = map[Type]string{
	All:                           "ALL",
	MarketCreatedEvent:            "MarketCreated",
	MarketUpdatedEvent:            "MarketUpdated",
	VotesBoughtEvent:              "VotesBought",
	VotesSoldEvent:                "VotesSold",
	MarketGraduatedEvent:          "MarketGraduated",
	FundsWithdrawnEvent:           "FundsWithdrawn",
	DonationRecipientUpdatedEvent: "DonationRecipientUpdated",
	DonationWithdrawnEvent:        "DonationWithdrawn",
	MarketConfigAddedEvent:        "MarketConfigAdded",
	MarketConfigRemovedEvent:      "MarketConfigRemoved",
	FeesUpdatedEvent:              "FeesUpdated",
}

func (t Type) String() string {
	s, ok := eventStrings[t]
	if !ok {
		return "UNKNOWN"
	}
	return s
}

type Event interface {
	Type() Type
	Context() context.Context
	TraceID() string
}

type traceIDKey struct{}

// WithTraceID attaches an explicit trace id to the context, every event
// created from that context will carry it.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func traceIDFromContext(ctx context.Context) (context.Context, string) {
	if tID, ok := ctx.Value(traceIDKey{}).(string); ok {
		return ctx, tID
	}
	tID := uuid.NewV4().String()
	return context.WithValue(ctx, traceIDKey{}, tID), tID
}

// Base is the common denominator all bus events share.
type Base struct {
	ctx     context.Context
	traceID string
	et      Type
}

func newBase(ctx context.Context, t Type) *Base {
	ctx, tID := traceIDFromContext(ctx)
	return &Base{
		ctx:     ctx,
		traceID: tID,
		et:      t,
	}
}

// TraceID returns the trace id shared by all events of one operation.
func (b Base) TraceID() string {
	return b.traceID
}

// Context returns the context the event was created from.
func (b Base) Context() context.Context {
	return b.ctx
}

// Type returns the event type.
func (b Base) Type() Type {
	return b.et
}
