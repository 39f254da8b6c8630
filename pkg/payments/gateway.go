package payments

import "context"

// LineItem is one priced line of a hosted checkout session. UnitAmount is in
// the smallest currency unit (cents).
type LineItem struct {
	Name       string
	ImageURL   string
	UnitAmount int64
	Quantity   int64
}

// SessionMetadata correlates a hosted session back to the order it pays for.
type SessionMetadata struct {
	OrderID string
	OwnerID string
}

// Session is a hosted checkout session created at the external processor.
type Session struct {
	ID  string
	URL string
}

// Event types surfaced from the processor's webhook, normalized away from the
// processor's own naming.
const (
	EventSessionCompleted = "session.completed"
	EventSessionFailed    = "session.failed"
	EventIgnored          = "ignored"
)

// Event is a verified webhook notification.
type Event struct {
	Type      string
	SessionID string
	Paid      bool
}

// Gateway abstracts the external payment processor. Implementations must
// verify webhook authenticity before returning an Event, and must honor the
// context deadline on session calls.
type Gateway interface {
	CreateSession(ctx context.Context, items []LineItem, meta SessionMetadata) (*Session, error)
	SessionPaid(ctx context.Context, sessionID string) (bool, error)
	VerifyWebhook(payload []byte, signatureHeader string) (*Event, error)
}
