package up

import (
	"fmt"
	"strconv"
	"strings"
)

// BaseUnits is an amount in minor currency units (cents). Up documents
// valueInBaseUnits as a number but deliveries have been observed carrying it
// as an integer-valued string, so both forms are accepted.
type BaseUnits int64

func (b *BaseUnits) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*b = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("amount is not an integer: %q", s)
	}
	*b = BaseUnits(v)
	return nil
}

// Money is the Up money object attached to a transaction.
type Money struct {
	CurrencyCode     string    `json:"currencyCode"`
	Value            string    `json:"value"`
	ValueInBaseUnits BaseUnits `json:"valueInBaseUnits"`
}

// ResourceIdentifier is a JSON:API {type, id} pair.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship wraps a to-one relationship whose data may be absent or null.
type Relationship struct {
	Data *ResourceIdentifier `json:"data"`
}

// ID returns the related resource id and whether it is present.
func (r *Relationship) ID() (string, bool) {
	if r == nil || r.Data == nil || r.Data.ID == "" {
		return "", false
	}
	return r.Data.ID, true
}

// TransactionAttributes are the fields of an Up transaction this bridge reads.
// Nullable fields keep pointer types so absent and empty stay distinct.
type TransactionAttributes struct {
	Status      string  `json:"status"`
	RawText     *string `json:"rawText"`
	Description string  `json:"description"`
	Message     *string `json:"message"`
	Amount      Money   `json:"amount"`
	SettledAt   *string `json:"settledAt"`
	CreatedAt   string  `json:"createdAt"`
}

// TransactionRelationships carries the account the transaction belongs to.
type TransactionRelationships struct {
	Account *Relationship `json:"account"`
}

// Transaction is a single Up transaction resource.
type Transaction struct {
	Type          string                   `json:"type"`
	ID            string                   `json:"id"`
	Attributes    TransactionAttributes    `json:"attributes"`
	Relationships TransactionRelationships `json:"relationships"`
}

// AccountID returns the owning account id and whether the relationship is set.
func (t *Transaction) AccountID() (string, bool) {
	return t.Relationships.Account.ID()
}

// AccountAttributes are the fields of an Up account the CLI displays.
type AccountAttributes struct {
	DisplayName string `json:"displayName"`
	AccountType string `json:"accountType"`
	Balance     Money  `json:"balance"`
	CreatedAt   string `json:"createdAt"`
}

// Account is an Up account resource.
type Account struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Attributes AccountAttributes `json:"attributes"`
}

// WebhookAttributes describe a webhook subscription. SecretKey is only
// returned on creation.
type WebhookAttributes struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	SecretKey   string `json:"secretKey,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// Webhook is an Up webhook subscription resource.
type Webhook struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Attributes WebhookAttributes `json:"attributes"`
}

type pageLinks struct {
	Prev *string `json:"prev"`
	Next *string `json:"next"`
}
