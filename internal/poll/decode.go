package poll

import (
	"math"

	"github.com/mklemme/fhs280-bridge/internal/registers"
)

// signed16 reinterprets a raw register as a two's-complement signed
// 16-bit integer.
func signed16(raw uint16) int {
	v := int(raw)
	if v > 0x7FFF {
		v -= 0x10000
	}
	return v
}

// decode applies the definition's scale and precision to a raw register.
// Unscaled registers without a precision stay plain integers.
func decode(def registers.Definition, raw uint16) interface{} {
	signed := signed16(raw)
	if def.Scale == 1 && def.Precision < 0 {
		return signed
	}

	v := float64(signed) * def.Scale
	if def.Precision >= 0 {
		shift := math.Pow(10, float64(def.Precision))
		v = math.Round(v*shift) / shift
	}
	return v
}
