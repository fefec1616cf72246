package up

import (
	"encoding/json"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		eventType string
		want      Action
	}{
		{"PING", ActionAcknowledge},
		{"TRANSACTION_CREATED", ActionProcess},
		{"TRANSACTION_SETTLED", ActionProcess},
		{"TRANSACTION_DELETED", ActionSkipDeleted},
		{"ACCOUNT_CREATED", ActionIgnore},
		{"", ActionIgnore},
		{"ping", ActionIgnore},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			if got := Classify(tt.eventType); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.eventType, got, tt.want)
			}
		})
	}
}

func TestWebhookEventDecoding(t *testing.T) {
	payload := `{
		"data": {
			"type": "webhook-events",
			"id": "evt-1",
			"attributes": {"eventType": "TRANSACTION_CREATED", "createdAt": "2024-01-05T10:00:00+10:00"},
			"relationships": {
				"webhook": {"data": {"type": "webhooks", "id": "wh-1"}},
				"transaction": {"data": {"type": "transactions", "id": "tx-1"}}
			}
		}
	}`

	var event WebhookEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if event.EventType() != "TRANSACTION_CREATED" {
		t.Errorf("EventType() = %q", event.EventType())
	}
	if id, ok := event.TransactionID(); !ok || id != "tx-1" {
		t.Errorf("TransactionID() = %q, %v", id, ok)
	}
	if id, ok := event.WebhookID(); !ok || id != "wh-1" {
		t.Errorf("WebhookID() = %q, %v", id, ok)
	}
}

func TestWebhookEventMissingRelationships(t *testing.T) {
	payloads := map[string]string{
		"no relationships":   `{"data": {"id": "evt-1", "attributes": {"eventType": "PING"}}}`,
		"null data":          `{"data": {"id": "evt-1", "attributes": {"eventType": "PING"}, "relationships": {"transaction": {"data": null}}}}`,
		"empty relationship": `{"data": {"id": "evt-1", "attributes": {"eventType": "PING"}, "relationships": {"transaction": {}}}}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			var event WebhookEvent
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if id, ok := event.TransactionID(); ok {
				t.Errorf("TransactionID() = %q, want absent", id)
			}
		})
	}
}
