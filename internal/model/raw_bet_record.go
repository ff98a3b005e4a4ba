package model

import (
	"bytes"
	"encoding/json"
)

// RawBetRecord is a bet as returned by the indexer, before any parsing.
type RawBetRecord struct {
	ID          FlexString      `json:"id"`
	Options     json.RawMessage `json:"options"`
	BetType     FlexString      `json:"betType"`
	Name        FlexString      `json:"name"`
	Description FlexString      `json:"description"`
	Image       FlexString      `json:"image"`
	Link        FlexString      `json:"link"`
	Owner       FlexString      `json:"owner"`
	Result      FlexString      `json:"result"`
	Status      FlexString      `json:"status"`
	CreatedAt   FlexString      `json:"createdAt"`
	UpdatedAt   FlexString      `json:"updatedAt"`
	BetDuration FlexString      `json:"betDuration"`
	PrivateBet  FlexString      `json:"privateBet"`
}

// FlexString keeps the transported text of a scalar field. The indexer sends
// numbers both quoted and bare depending on schema version.
type FlexString string

// UnmarshalJSON accepts a JSON string, number, boolean or null.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}

// String returns the transported text.
func (f FlexString) String() string {
	return string(f)
}
