package contract

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBetManagerABI(t *testing.T) {
	parsed, err := BetManagerABI()
	if err != nil {
		t.Fatalf("parse built-in abi: %v", err)
	}
	for _, name := range []string{"createBet", "placeBet", "resolveBet", "claimWinnings", "cancelBet"} {
		if _, ok := parsed.Methods[name]; !ok {
			t.Fatalf("missing method %s", name)
		}
	}
	if !parsed.Methods["placeBet"].IsPayable() {
		t.Fatalf("placeBet should be payable")
	}
	if _, ok := parsed.Events["BetPlaced"]; !ok {
		t.Fatalf("missing event BetPlaced")
	}
}

func TestLoadABIFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	body := `[{"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write abi: %v", err)
	}

	parsed, err := LoadABI(path)
	if err != nil {
		t.Fatalf("load abi: %v", err)
	}
	if _, ok := parsed.Methods["transfer"]; !ok {
		t.Fatalf("missing transfer method")
	}

	builtin, err := LoadABI("")
	if err != nil {
		t.Fatalf("load built-in abi: %v", err)
	}
	if _, ok := builtin.Methods["placeBet"]; !ok {
		t.Fatalf("empty path should select built-in abi")
	}

	if _, err := LoadABI(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
