package poll

import (
	"testing"

	"github.com/mklemme/fhs280-bridge/internal/registers"
)

func TestSigned16(t *testing.T) {
	cases := []struct {
		raw  uint16
		want int
	}{
		{0x0000, 0},
		{0x0014, 20},
		{0x7FFF, 32767},
		{0x8000, -32768},
		{0xFFFF, -1},
		{0xFFCE, -50},
	}
	for _, c := range cases {
		if got := signed16(c.raw); got != c.want {
			t.Errorf("signed16(%#04x) = %d, want %d", c.raw, got, c.want)
		}
	}
}

func TestDecode_PlainRegisterStaysInteger(t *testing.T) {
	def := registers.Definition{Key: "x", Scale: 1, Precision: -1}

	v := decode(def, 0x0014)
	if got, ok := v.(int); !ok || got != 20 {
		t.Fatalf("decode(0x0014) = %v (%T), want int 20", v, v)
	}

	v = decode(def, 0xFFFF)
	if got, ok := v.(int); !ok || got != -1 {
		t.Fatalf("decode(0xFFFF) = %v (%T), want int -1", v, v)
	}
}

func TestDecode_ScaledRegisterRounds(t *testing.T) {
	def := registers.Definition{Key: "x", Scale: 0.1, Precision: 1}

	v := decode(def, 250)
	if got, ok := v.(float64); !ok || got != 25.0 {
		t.Fatalf("decode(250) = %v (%T), want 25.0", v, v)
	}

	v = decode(def, 65486) // 0xFFCE, signed -50
	if got, ok := v.(float64); !ok || got != -5.0 {
		t.Fatalf("decode(65486) = %v (%T), want -5.0", v, v)
	}
}

func TestDecode_ScaleWithoutPrecisionIsFloat(t *testing.T) {
	def := registers.Definition{Key: "x", Scale: 0.5, Precision: -1}

	v := decode(def, 3)
	if got, ok := v.(float64); !ok || got != 1.5 {
		t.Fatalf("decode(3) = %v (%T), want 1.5", v, v)
	}
}
