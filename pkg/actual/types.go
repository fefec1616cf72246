package actual

// ImportTransaction is a single record in Actual's transaction import format.
// ImportedID is the dedup key: Actual skips records whose imported_id it has
// already seen, which is what makes webhook redelivery safe to process again.
type ImportTransaction struct {
	ImportedID    string `json:"imported_id"`
	Date          string `json:"date,omitempty"`
	Amount        int64  `json:"amount"`
	PayeeName     string `json:"payee_name,omitempty"`
	ImportedPayee string `json:"imported_payee,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Cleared       bool   `json:"cleared"`
}

// ImportResult reports what the importer did with a batch.
type ImportResult struct {
	Added   []string `json:"added"`
	Updated []string `json:"updated"`
}

// Account is an Actual account as returned by the accounts endpoint.
type Account struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Offbudget bool   `json:"offbudget"`
	Closed    bool   `json:"closed"`
}
