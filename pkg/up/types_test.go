package up

import (
	"encoding/json"
	"testing"
)

func TestBaseUnitsUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    BaseUnits
		wantErr bool
	}{
		{"number", `1500`, 1500, false},
		{"negative number", `-450`, -450, false},
		{"integer string", `"1500"`, 1500, false},
		{"negative string", `"-450"`, -450, false},
		{"null", `null`, 0, false},
		{"float", `15.5`, 0, true},
		{"word", `"heaps"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b BaseUnits
			err := json.Unmarshal([]byte(tt.raw), &b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err == nil && b != tt.want {
				t.Errorf("got %d, want %d", b, tt.want)
			}
		})
	}
}

func TestTransactionDecodingStringAmount(t *testing.T) {
	payload := `{
		"id": "tx-1",
		"attributes": {
			"status": "HELD",
			"description": "Grocer",
			"amount": {"currencyCode": "AUD", "value": "-15.00", "valueInBaseUnits": "-1500"},
			"createdAt": "2024-01-05T10:00:00+10:00"
		},
		"relationships": {"account": {"data": {"type": "accounts", "id": "acc-1"}}}
	}`

	var tx Transaction
	if err := json.Unmarshal([]byte(payload), &tx); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if tx.Attributes.Amount.ValueInBaseUnits != -1500 {
		t.Errorf("ValueInBaseUnits = %d, want -1500", tx.Attributes.Amount.ValueInBaseUnits)
	}
	if id, ok := tx.AccountID(); !ok || id != "acc-1" {
		t.Errorf("AccountID() = %q, %v", id, ok)
	}
}
