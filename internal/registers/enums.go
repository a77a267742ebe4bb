package registers

// Unknown is the fallback label for unmapped codes or absent source data.
const Unknown = "Unknown"

// Enumeration labels as shown on the device display.

var TimerOptions = map[int]string{
	0: "Aus",
	1: "An",
}

var BetriebsartOptions = map[int]string{
	0: "Aus",
	1: "Nur Wärmepumpe",
	2: "Nur Heizstab",
	3: "Wärmepumpe + Heizstab",
	4: "Boiler",
	5: "Wärmepumpe + Boiler",
}

var LegionellenOptions = map[int]string{
	0: "Aus",
	1: "60C",
	2: "65C",
}

var PVModusOptions = map[int]string{
	0: "Aus",
	1: "Nur Wärmepumpe",
	2: "Nur Heizstab",
	3: "Heizstab + Wärmepumpe",
}

var FerienOptions = map[int]string{
	0: "Aus",
	1: "1 Woche",
	2: "2 Wochen",
	3: "3 Wochen",
	4: "3 Tage",
	5: "Manuell",
}

var AnAusOptions = map[int]string{
	0: "Aus",
	1: "An",
}

var VentilatorOptions = map[int]string{
	0: "Niedrig",
	1: "Hoch",
}

// EnumMappings maps each derived attribute to its code-to-label table.
var EnumMappings = map[string]map[int]string{
	"timer":       TimerOptions,
	"betriebsart": BetriebsartOptions,
	"legionellen": LegionellenOptions,
	"pv_modus":    PVModusOptions,
	"ferien":      FerienOptions,
	"kompressor":  AnAusOptions,
	"heizstab":    AnAusOptions,
	"ventilator":  VentilatorOptions,
	"boost":       AnAusOptions,
}

// EnumSources maps each derived attribute to the raw catalog key it is
// decoded from.
var EnumSources = map[string]string{
	"timer":       "timer_raw",
	"betriebsart": "betriebsart_raw",
	"legionellen": "legio_raw",
	"pv_modus":    "pv_modus_raw",
	"ferien":      "holiday_raw",
	"kompressor":  "kompressor_raw",
	"heizstab":    "heizstab_raw",
	"ventilator":  "ventilator_raw",
	"boost":       "boost_raw",
}

// Label resolves an enum code for the given attribute, falling back to
// Unknown for unmapped codes.
func Label(attr string, code int) string {
	mapping, ok := EnumMappings[attr]
	if !ok {
		return Unknown
	}
	label, ok := mapping[code]
	if !ok {
		return Unknown
	}
	return label
}

// Code resolves a label back to its enum code, for mapping user input to
// register writes.
func Code(attr, label string) (int, bool) {
	mapping, ok := EnumMappings[attr]
	if !ok {
		return 0, false
	}
	for code, l := range mapping {
		if l == label {
			return code, true
		}
	}
	return 0, false
}

// Composite operating-status labels derived from the compressor and
// heating-element flags.
const (
	StatusKey        = "betriebsstatus"
	StatusCompressor = "Wärmepumpe"
	StatusHeater     = "Heizstab"
	StatusBoth       = "Wärmepumpe + Heizstab"
	StatusOff        = "Aus"
)

// DeviceTimeKey is the derived clock display assembled from current_h and
// current_min.
const DeviceTimeKey = "device_time"
