package money

import (
	"encoding/json"
	"errors"
	"testing"

	"shopledger-backend/internal/domain"

	"github.com/shopspring/decimal"
)

func TestToMinorRoundTrip(t *testing.T) {
	cases := []string{"0", "0.01", "0.1", "1", "123.45", "2500.00", "99999999.99"}
	for _, in := range cases {
		d := decimal.RequireFromString(in)
		cents, err := ToMinor(d)
		if err != nil {
			t.Fatalf("ToMinor(%s) error: %v", in, err)
		}
		back := FromMinor(cents)
		if !back.Equal(d) {
			t.Fatalf("round trip %s -> %d -> %s", in, cents, back.String())
		}
	}
}

func TestToMinorRounds(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"123.45", 12345},
		{"0.005", 1},
		{"0.004", 0},
		{"10.999", 1100},
		{"-0", 0},
	}
	for _, tc := range cases {
		got, err := ToMinor(decimal.RequireFromString(tc.in))
		if err != nil {
			t.Fatalf("ToMinor(%s) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ToMinor(%s) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestToMinorRejectsNegative(t *testing.T) {
	_, err := ToMinor(decimal.RequireFromString("-0.01"))
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestToMinorRejectsAboveCeiling(t *testing.T) {
	if c, err := ToMinor(decimal.RequireFromString("10000000000000")); err != nil || c != MaxMinor {
		t.Fatalf("ceiling = %d, %v", c, err)
	}
	for _, in := range []string{"10000000000000.01", "46116860184273879.04", "1e30"} {
		if _, err := ToMinor(decimal.RequireFromString(in)); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("ToMinor(%s): expected ErrInvalidAmount, got %v", in, err)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{12345, "123.45"},
		{10000, "100.00"},
		{7, "0.07"},
	}
	for _, tc := range cases {
		if got := Format(FromMinor(tc.cents)); got != tc.want {
			t.Fatalf("Format(%d) = %s, want %s", tc.cents, got, tc.want)
		}
	}
}

func TestAmountUnmarshal(t *testing.T) {
	var in struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
		D Amount `json:"d"`
		E Amount `json:"e"`
	}
	body := `{"a": 123.45, "b": "10", "c": 0, "d": "ten"}`
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if c, err := in.A.Minor(); err != nil || c != 12345 {
		t.Fatalf("a = %d, %v", c, err)
	}
	if c, err := in.B.Minor(); err != nil || c != 1000 {
		t.Fatalf("b = %d, %v", c, err)
	}
	if !in.C.Set {
		t.Fatal("explicit zero must be marked as set")
	}
	if c, err := in.C.Minor(); err != nil || c != 0 {
		t.Fatalf("c = %d, %v", c, err)
	}
	if _, err := in.D.Minor(); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("d: expected ErrInvalidAmount, got %v", err)
	}
	if in.E.Set {
		t.Fatal("omitted field must not be marked as set")
	}
	if _, err := in.E.Minor(); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("e: expected ErrInvalidAmount, got %v", err)
	}
}

func TestNumberMarshalsAsJSONNumber(t *testing.T) {
	b, err := json.Marshal(map[string]any{"v": Number(FromMinor(12345))})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"v":123.45}` {
		t.Fatalf("got %s", b)
	}
}
