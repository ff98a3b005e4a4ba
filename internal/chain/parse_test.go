package chain

import (
	"strings"
	"testing"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress(" 0x00000000000000000000000000000000000000aa ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.ToLower(addr.Hex()) != "0x00000000000000000000000000000000000000aa" {
		t.Fatalf("unexpected address: %s", addr.Hex())
	}

	if _, err := ParseAddress("0x1234"); err == nil {
		t.Fatalf("expected error for short address")
	}
}

func TestParseHash(t *testing.T) {
	if _, err := ParseHash("0x" + "ab"); err == nil {
		t.Fatalf("expected length error")
	}
	hash, err := ParseHash("0x0000000000000000000000000000000000000000000000000000000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash.Big().Int64() != 1 {
		t.Fatalf("unexpected hash: %s", hash.Hex())
	}
}

func TestParseWei(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "0"},
		{in: "1000000000000000000", want: "1000000000000000000"},
		{in: "0x10", want: "16"},
		{in: "-1", wantErr: true},
		{in: "1.5", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseWei(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.in, err)
		}
		if got.String() != tt.want {
			t.Fatalf("ParseWei(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
