package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/grdmnt/upbank-actual/pkg/actual"
	"github.com/grdmnt/upbank-actual/pkg/signature"
	"github.com/grdmnt/upbank-actual/pkg/up"
)

// handleWebhook processes one Up webhook delivery: verify the signature over
// the raw body, classify the event, then fetch, map and import the referenced
// transaction. Every recognized-but-unprocessable case still answers 2xx so Up
// does not retry-storm; only fetch/import failures return 5xx, making Up's
// redelivery the retry mechanism.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	// Signature covers the wire bytes exactly; the body must not be parsed
	// or re-serialized before verification.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to read body", err)
		return
	}

	sig := r.Header.Get("X-Up-Authenticity-Signature")
	if !signature.Verify(body, sig, s.config.UpWebhookSecret) {
		s.respondError(w, r, http.StatusUnauthorized, "Invalid signature", nil)
		return
	}

	var event up.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "Invalid JSON", err)
		return
	}

	eventType := event.EventType()
	txID, hasTxID := event.TransactionID()
	s.logger.Info("up event", "event", eventType, "tx", txID)

	action := up.Classify(eventType)
	switch action {
	case up.ActionAcknowledge:
		s.logger.Info("ping acknowledged")
		s.ok(w, map[string]any{"ok": true, "eventType": up.EventPing})
		return

	case up.ActionIgnore:
		s.logger.Info("ignored event", "event", eventType)
		s.ok(w, map[string]any{"ok": true, "ignored": true, "eventType": eventType})
		return
	}

	if !hasTxID {
		s.respondError(w, r, http.StatusBadRequest, "Missing transaction id in payload", nil)
		return
	}

	if action == up.ActionSkipDeleted {
		// Deletion is not propagated: only the Up id is known and Actual is
		// keyed by its own ids, so there is nothing safe to delete.
		s.logger.Info("deleted event skipped", "tx", txID)
		s.ok(w, map[string]any{"ok": true, "skipped": "deleted-event"})
		return
	}

	upTx, err := s.up.FetchTransaction(txID)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "Internal error", err)
		return
	}

	mapped, upAccountID, err := up.MapTransaction(upTx, s.config.AmountFlip)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "Internal error", err)
		return
	}

	actualAccountID, ok := s.config.AccountMap[upAccountID]
	if !ok {
		s.logger.Error("no mapping for Up account", "up_account_id", upAccountID)
		// 202 keeps Up from retrying while telling the operator what to add.
		if err := s.writeJSON(w, http.StatusAccepted, map[string]any{
			"ok":          true,
			"message":     "Up account is not mapped to an Actual account. Add to ACCOUNT_MAP and retry.",
			"upAccountId": upAccountID,
			"example":     map[string]string{upAccountID: "<actual-account-id>"},
		}); err != nil {
			s.logger.Warn("failed to write json response", "err", err)
		}
		return
	}

	s.logger.Info("importing transaction",
		"tx", mapped.ImportedID, "up_account_id", upAccountID, "actual_account_id", actualAccountID)

	result, err := s.actual.ImportTransactions(actualAccountID, []actual.ImportTransaction{mapped})
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "Internal error", err)
		return
	}

	s.logger.Info("import complete", "tx", mapped.ImportedID)
	s.ok(w, map[string]any{
		"ok":              true,
		"result":          result,
		"mapped":          mapped,
		"upAccountId":     upAccountID,
		"actualAccountId": actualAccountID,
	})
}

func (s *Server) ok(w http.ResponseWriter, body map[string]any) {
	if err := s.writeJSON(w, http.StatusOK, body); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}
