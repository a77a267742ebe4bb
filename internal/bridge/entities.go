package bridge

// Entity tables mapping snapshot keys to Home Assistant components.
// Register addresses for the writable entities come from the catalog at
// runtime, never from duplicated literals.

type sensorEntity struct {
	key         string
	name        string
	deviceClass string
	unit        string
}

var sensors = []sensorEntity{
	{key: "t1", name: "Temperatur 1", deviceClass: "temperature", unit: "°C"},
	{key: "t2", name: "Temperatur 2", deviceClass: "temperature", unit: "°C"},
	{key: "t_max", name: "T max", deviceClass: "temperature", unit: "°C"},
	{key: "t_pv_wp", name: "PV Solltemperatur Wärmepumpe", deviceClass: "temperature", unit: "°C"},
	{key: "t_pv_el", name: "PV Solltemperatur Heizstab", deviceClass: "temperature", unit: "°C"},
	{key: "legionellen_tage", name: "Legionellen Intervall", unit: "d"},
	{key: "kompressor", name: "Kompressor"},
	{key: "heizstab", name: "Heizstab"},
	{key: "betriebsstatus", name: "Betriebsstatus"},
	{key: "ventilator", name: "Ventilator"},
	{key: "device_time", name: "Geräteuhrzeit"},
}

type numberEntity struct {
	key  string // catalog key, doubles as state key
	name string
	unit string
	min  int
	max  int
}

var numbers = []numberEntity{
	{key: "t_setpoint", name: "Solltemperatur", unit: "°C", min: 20, max: 65},
	{key: "t_min", name: "T min", unit: "°C", min: 20, max: 80},
	{key: "t2_min", name: "T2 min", unit: "°C", min: 20, max: 80},
	{key: "abwesenheits_tage", name: "Abwesenheitstage", unit: "d", min: 0, max: 30},
}

// selectEntity exposes one enum attribute; the register written is the
// attribute's raw source register.
type selectEntity struct {
	attr string
	name string
}

var selects = []selectEntity{
	{attr: "betriebsart", name: "Betriebsart"},
	{attr: "legionellen", name: "Legionellen"},
	{attr: "pv_modus", name: "PV Modus"},
	{attr: "ferien", name: "Ferienmodus"},
}

type switchEntity struct {
	attr string
	name string
}

var switches = []switchEntity{
	{attr: "timer", name: "Timer"},
	{attr: "boost", name: "Boost"},
}

// timeEntity maps one HH:MM pair to two holding registers.
type timeEntity struct {
	key       string
	name      string
	hourKey   string
	minuteKey string
}

var times = []timeEntity{
	{key: "start_time", name: "Startzeit", hourKey: "start_h", minuteKey: "start_min"},
	{key: "stop_time", name: "Stoppzeit", hourKey: "stop_h", minuteKey: "stop_min"},
	{key: "current_time", name: "Aktuelle Uhrzeit", hourKey: "current_h", minuteKey: "current_min"},
}
