package registers

// Space identifies one of the two Modbus register address spaces of the
// FHS280 controller. Holding registers are writable, input registers are
// read-only.
type Space int

const (
	Holding Space = iota
	Input
)

func (s Space) String() string {
	if s == Input {
		return "input"
	}
	return "holding"
}

// Definition describes one device register.
// Scale is applied to the signed raw value; Precision < 0 disables rounding.
type Definition struct {
	Key       string
	Address   uint16
	Space     Space
	Scale     float64
	Precision int
}

func reg(key string, addr uint16, space Space) Definition {
	return Definition{Key: key, Address: addr, Space: space, Scale: 1, Precision: -1}
}

func scaled(key string, addr uint16, space Space, scale float64, precision int) Definition {
	return Definition{Key: key, Address: addr, Space: space, Scale: scale, Precision: precision}
}

// catalog is the fixed register table of the FHS280.
// Order matters only for stable iteration; keys are unique.
var catalog = []Definition{
	reg("current_h", 0, Holding),
	reg("current_min", 1, Holding),
	reg("t_setpoint", 4, Holding),
	reg("t_min", 5, Holding),
	reg("t2_min", 6, Holding),
	reg("timer_raw", 7, Holding),
	reg("start_h", 8, Holding),
	reg("start_min", 9, Holding),
	reg("stop_h", 10, Holding),
	reg("stop_min", 11, Holding),
	reg("betriebsart_raw", 12, Holding),
	reg("legio_raw", 13, Holding),
	reg("ventilator_raw", 15, Holding),
	reg("pv_modus_raw", 17, Holding),
	reg("t_pv_wp", 18, Holding),
	reg("t_pv_el", 19, Holding),
	reg("holiday_raw", 20, Holding),
	reg("abwesenheits_tage", 21, Holding),
	reg("boost_raw", 22, Holding),
	reg("t_max", 28, Holding),
	reg("legionellen_tage", 33, Holding),
	scaled("t1", 7, Input, 0.1, 1),
	scaled("t2", 8, Input, 0.1, 1),
	reg("kompressor_raw", 9, Input),
	reg("heizstab_raw", 10, Input),
	reg("status_raw", 16, Input),
}

var byKey = func() map[string]Definition {
	m := make(map[string]Definition, len(catalog))
	for _, d := range catalog {
		m[d.Key] = d
	}
	return m
}()

// Catalog returns the full register table.
func Catalog() []Definition {
	return catalog
}

// ByKey looks up one definition by its key.
func ByKey(key string) (Definition, bool) {
	d, ok := byKey[key]
	return d, ok
}

// Count returns the number of registers in the catalog.
func Count() int {
	return len(catalog)
}
