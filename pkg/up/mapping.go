package up

import (
	"errors"

	"github.com/grdmnt/upbank-actual/pkg/actual"
)

// ErrNoAccount is returned when a fetched transaction carries no account
// relationship, which should not happen for real Up transactions.
var ErrNoAccount = errors.New("transaction has no account relationship")

// MapTransaction converts an Up transaction into Actual's import format and
// returns the Up account id it belongs to. The mapping is pure: imported_id is
// always the Up transaction id, which Actual uses to deduplicate redeliveries.
//
// The date is the settlement date when present, otherwise the creation date,
// truncated to YYYY-MM-DD. Optional text fields stay unset when the source
// field is absent so Actual's own defaulting applies. When flip is set the
// amount is negated, for budgets that model the account polarity the other
// way around.
func MapTransaction(tx *Transaction, flip bool) (actual.ImportTransaction, string, error) {
	accountID, ok := tx.AccountID()
	if !ok {
		return actual.ImportTransaction{}, "", ErrNoAccount
	}

	attrs := tx.Attributes

	mapped := actual.ImportTransaction{
		ImportedID: tx.ID,
		Date:       pickDate(attrs),
		Amount:     int64(attrs.Amount.ValueInBaseUnits),
		PayeeName:  attrs.Description,
		Cleared:    attrs.Status == "SETTLED",
	}
	if attrs.RawText != nil {
		mapped.ImportedPayee = *attrs.RawText
	}
	if attrs.Message != nil {
		mapped.Notes = *attrs.Message
	}
	if flip {
		mapped.Amount = -mapped.Amount
	}

	return mapped, accountID, nil
}

// pickDate truncates the preferred timestamp to its date-only prefix.
func pickDate(attrs TransactionAttributes) string {
	ts := attrs.CreatedAt
	if attrs.SettledAt != nil && *attrs.SettledAt != "" {
		ts = *attrs.SettledAt
	}
	if len(ts) < 10 {
		return ts
	}
	return ts[:10]
}
