package model

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// BetStatus is the lifecycle status of a market.
type BetStatus string

const (
	BetStatusOpen      BetStatus = "OPEN"
	BetStatusClosed    BetStatus = "CLOSED"
	BetStatusResolved  BetStatus = "RESOLVED"
	BetStatusCancelled BetStatus = "CANCELLED"
)

// BetType distinguishes one-on-one markets from group markets.
type BetType string

const (
	BetTypeSingle BetType = "SINGLE"
	BetTypeGroup  BetType = "GROUP"
)

// ResultUnset marks a bet whose result has not been decided.
const ResultUnset int64 = -1

// Bet is the canonical, strongly typed market.
type Bet struct {
	ID          string            `json:"id"`
	Options     []CanonicalOption `json:"options"`
	BetType     BetType           `json:"bet_type"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	Link        string            `json:"link"`
	Owner       string            `json:"owner"`
	Result      int64             `json:"result"`
	Status      BetStatus         `json:"status"`
	CreatedAt   int64             `json:"created_at"`
	UpdatedAt   int64             `json:"updated_at"`
	BetDuration int64             `json:"bet_duration"`
	PrivateBet  bool              `json:"private_bet"`
}

// CanonicalOption is one selectable outcome and the amount staked on it.
type CanonicalOption struct {
	Option      string
	TotalStaked *big.Int
}

type canonicalOptionJSON struct {
	Option      string `json:"option"`
	TotalStaked string `json:"total_staked"`
}

// MarshalJSON encodes TotalStaked as a decimal string.
func (o CanonicalOption) MarshalJSON() ([]byte, error) {
	staked := "0"
	if o.TotalStaked != nil {
		staked = o.TotalStaked.String()
	}
	return json.Marshal(canonicalOptionJSON{Option: o.Option, TotalStaked: staked})
}

// UnmarshalJSON decodes a CanonicalOption written by MarshalJSON.
func (o *CanonicalOption) UnmarshalJSON(data []byte) error {
	var raw canonicalOptionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	staked := big.NewInt(0)
	if raw.TotalStaked != "" {
		if _, ok := staked.SetString(raw.TotalStaked, 10); !ok {
			return fmt.Errorf("invalid total_staked: %s", raw.TotalStaked)
		}
	}
	o.Option = raw.Option
	o.TotalStaked = staked
	return nil
}
