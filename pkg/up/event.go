package up

// Event types Up delivers to webhook subscribers.
const (
	EventPing               = "PING"
	EventTransactionCreated = "TRANSACTION_CREATED"
	EventTransactionSettled = "TRANSACTION_SETTLED"
	EventTransactionDeleted = "TRANSACTION_DELETED"
)

// Action is the handling path chosen for an inbound webhook event.
type Action int

const (
	// ActionIgnore acknowledges an unrecognized event type without any
	// downstream call. Up treats any non-2xx as a failed delivery and
	// retries, so unknown events must still succeed.
	ActionIgnore Action = iota
	// ActionAcknowledge answers a PING immediately.
	ActionAcknowledge
	// ActionSkipDeleted acknowledges a deletion without importing. Only the
	// Up transaction id is known here, so deleting the matching Actual
	// transaction is intentionally unimplemented.
	ActionSkipDeleted
	// ActionProcess fetches, maps and imports the referenced transaction.
	ActionProcess
)

// Classify routes an event type to its handling path.
func Classify(eventType string) Action {
	switch eventType {
	case EventPing:
		return ActionAcknowledge
	case EventTransactionCreated, EventTransactionSettled:
		return ActionProcess
	case EventTransactionDeleted:
		return ActionSkipDeleted
	default:
		return ActionIgnore
	}
}

// WebhookEventAttributes describe the delivered event.
type WebhookEventAttributes struct {
	EventType string `json:"eventType"`
	CreatedAt string `json:"createdAt"`
}

// WebhookEventRelationships reference the subscription and, for transaction
// events, the transaction itself. Either may be absent.
type WebhookEventRelationships struct {
	Webhook     *Relationship `json:"webhook"`
	Transaction *Relationship `json:"transaction"`
}

type webhookEventData struct {
	Type          string                    `json:"type"`
	ID            string                    `json:"id"`
	Attributes    WebhookEventAttributes    `json:"attributes"`
	Relationships WebhookEventRelationships `json:"relationships"`
}

// WebhookEvent is the JSON:API envelope Up posts to the webhook endpoint.
type WebhookEvent struct {
	Data webhookEventData `json:"data"`
}

// EventType returns the delivered event type string.
func (e *WebhookEvent) EventType() string {
	return e.Data.Attributes.EventType
}

// TransactionID returns the referenced transaction id and whether the
// relationship is present.
func (e *WebhookEvent) TransactionID() (string, bool) {
	return e.Data.Relationships.Transaction.ID()
}

// WebhookID returns the subscription id and whether it is present.
func (e *WebhookEvent) WebhookID() (string, bool) {
	return e.Data.Relationships.Webhook.ID()
}
