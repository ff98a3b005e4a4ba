package model

import (
	"encoding/json"
	"testing"
)

func TestRawBetRecordAcceptsQuotedAndBareScalars(t *testing.T) {
	payload := `{
		"id": "42",
		"options": ["0xdead"],
		"betType": 1,
		"name": "Derby",
		"result": null,
		"status": "2",
		"createdAt": 1700000000,
		"privateBet": true
	}`

	var record RawBetRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if record.ID != "42" {
		t.Fatalf("id mismatch: %q", record.ID)
	}
	if record.BetType != "1" {
		t.Fatalf("bet type mismatch: %q", record.BetType)
	}
	if record.Result != "" {
		t.Fatalf("null result should be empty, got %q", record.Result)
	}
	if record.CreatedAt != "1700000000" {
		t.Fatalf("created_at mismatch: %q", record.CreatedAt)
	}
	if record.PrivateBet != "true" {
		t.Fatalf("private_bet mismatch: %q", record.PrivateBet)
	}
	if string(record.Options) != `["0xdead"]` {
		t.Fatalf("options should stay raw, got %s", record.Options)
	}
	if record.UpdatedAt != "" {
		t.Fatalf("missing field should be empty, got %q", record.UpdatedAt)
	}
}
