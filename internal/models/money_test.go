package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyUnmarshalAcceptsStringNumberAndNull(t *testing.T) {
	cases := map[string]string{
		`"48.505"`: "48.51",
		`60`:       "60.00",
		`null`:     "0.00",
		`""`:       "0.00",
	}
	for raw, want := range cases {
		var m Money
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			t.Fatalf("unmarshal %s failed: %v", raw, err)
		}
		if got := m.String(); got != want {
			t.Fatalf("unmarshal %s want %s got %s", raw, want, got)
		}
	}

	var bad Money
	if err := json.Unmarshal([]byte(`"abc"`), &bad); err == nil {
		t.Fatalf("expected error for non numeric string")
	}
}

func TestMoneyMarshalUsesFixedScale(t *testing.T) {
	payload, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{Price: NewMoneyFromFloat(30)})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(payload) != `{"price":"30.00"}` {
		t.Fatalf("unexpected json: %s", payload)
	}
}

func TestMoneyFormatting(t *testing.T) {
	m := MustMoney("48.5")
	if got := m.Plain(); got != "48.5" {
		t.Fatalf("plain want 48.5 got %s", got)
	}
	if got := m.Format("₹"); got != "₹48.50" {
		t.Fatalf("format want ₹48.50 got %s", got)
	}
	if got := m.Times(3); !got.Equal(decimal.RequireFromString("145.5")) {
		t.Fatalf("times want 145.5 got %s", got)
	}
	if got := m.Times(0); !got.IsZero() {
		t.Fatalf("times zero want 0 got %s", got)
	}
}

func TestMoneyScanRoundsAndHandlesNil(t *testing.T) {
	var m Money
	if err := m.Scan("12.345"); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if m.String() != "12.35" {
		t.Fatalf("scan want 12.35 got %s", m.String())
	}
	if err := m.Scan(nil); err != nil {
		t.Fatalf("scan nil failed: %v", err)
	}
	if !m.IsZero() {
		t.Fatalf("scan nil want zero got %s", m.String())
	}
}
