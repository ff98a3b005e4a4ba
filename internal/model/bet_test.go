package model

import (
	"encoding/json"
	"math/big"
	"testing"
)

func TestCanonicalOptionJSONStringStake(t *testing.T) {
	staked, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	option := CanonicalOption{Option: "Yes", TotalStaked: staked}

	data, err := json.Marshal(option)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := decoded["total_staked"].(string); !ok {
		t.Fatalf("total_staked should be string")
	}

	var back CanonicalOption
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal option failed: %v", err)
	}
	if back.Option != "Yes" || back.TotalStaked.Cmp(staked) != 0 {
		t.Fatalf("option mismatch: %+v", back)
	}
}

func TestCanonicalOptionNilStakeEncodesZero(t *testing.T) {
	data, err := json.Marshal(CanonicalOption{Option: "No"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"option":"No","total_staked":"0"}` {
		t.Fatalf("unexpected encoding: %s", data)
	}
}
