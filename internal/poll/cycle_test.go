package poll

import (
	"errors"
	"testing"

	"github.com/mklemme/fhs280-bridge/internal/hub"
	"github.com/mklemme/fhs280-bridge/internal/registers"
)

// fakeHub serves register values from a map and fails anything listed in
// failAddr. When failBlocks is set, every batched read fails so the poll
// must fall back to single reads.
type fakeHub struct {
	holding    map[uint16]uint16
	input      map[uint16]uint16
	failBlocks bool
	failAddr   map[uint16]bool
	failAll    bool

	blockReads  int
	singleReads int
}

func (f *fakeHub) space(s registers.Space) map[uint16]uint16 {
	if s == registers.Input {
		return f.input
	}
	return f.holding
}

func (f *fakeHub) ReadRegisters(space registers.Space, start, count uint16) ([]uint16, error) {
	if count == 0 {
		return nil, nil
	}
	if count > 1 {
		f.blockReads++
		if f.failBlocks || f.failAll {
			return nil, errors.New("block read failed")
		}
	} else if f.failAll {
		return nil, errors.New("read failed")
	}

	values := make([]uint16, count)
	for i := range values {
		addr := start + uint16(i)
		if f.failAddr[addr] {
			return nil, errors.New("bad register")
		}
		values[i] = f.space(space)[addr]
	}
	return values, nil
}

func (f *fakeHub) ReadRegister(space registers.Space, addr uint16) (uint16, error) {
	f.singleReads++
	if f.failAll || f.failAddr[addr] {
		return 0, errors.New("read failed")
	}
	return f.space(space)[addr], nil
}

func (f *fakeHub) WriteRegister(addr uint16, value int) error {
	f.space(registers.Holding)[addr] = uint16(value & 0xFFFF)
	return nil
}

func (f *fakeHub) Close() error { return nil }

func fullDevice() *fakeHub {
	f := &fakeHub{
		holding:  make(map[uint16]uint16),
		input:    make(map[uint16]uint16),
		failAddr: make(map[uint16]bool),
	}
	for _, d := range registers.Catalog() {
		f.space(d.Space)[d.Address] = 0
	}
	f.holding[4] = 50    // t_setpoint
	f.holding[12] = 1    // betriebsart: Nur Wärmepumpe
	f.input[7] = 250     // t1 = 25.0
	f.input[8] = 65486   // t2 = -5.0
	f.input[9] = 1       // kompressor on
	f.holding[0] = 7     // current_h
	f.holding[1] = 5     // current_min
	return f
}

func TestRun_FullCycle(t *testing.T) {
	f := fullDevice()
	snap, err := New(f).Run()
	if err != nil {
		t.Fatalf("Run() err=%v", err)
	}

	if v, _ := snap.Int("t_setpoint"); v != 50 {
		t.Errorf("t_setpoint = %d, want 50", v)
	}
	if v, _ := snap.Float("t1"); v != 25.0 {
		t.Errorf("t1 = %v, want 25.0", v)
	}
	if v, _ := snap.Float("t2"); v != -5.0 {
		t.Errorf("t2 = %v, want -5.0", v)
	}
	if v, _ := snap.Label("betriebsart"); v != "Nur Wärmepumpe" {
		t.Errorf("betriebsart = %q", v)
	}
	if v, _ := snap.Label(registers.StatusKey); v != registers.StatusCompressor {
		t.Errorf("betriebsstatus = %q, want %q", v, registers.StatusCompressor)
	}
	if v, _ := snap.Label(registers.DeviceTimeKey); v != "07:05" {
		t.Errorf("device_time = %q, want 07:05", v)
	}
	if f.singleReads != 0 {
		t.Errorf("expected batched reads only, got %d single reads", f.singleReads)
	}
}

func TestRun_BlockFailureFallsBackPerRegister(t *testing.T) {
	f := fullDevice()
	f.failBlocks = true
	f.failAddr[5] = true // t_min keeps failing even individually

	snap, err := New(f).Run()
	if err != nil {
		t.Fatalf("Run() err=%v", err)
	}

	if _, ok := snap.Values["t_min"]; ok {
		t.Error("t_min should be absent after persistent failure")
	}
	// Siblings of the failing register survive via the fallback.
	if v, ok := snap.Int("t_setpoint"); !ok || v != 50 {
		t.Errorf("t_setpoint = %d (present=%v), want 50", v, ok)
	}
	if v, ok := snap.Int("t2_min"); !ok || v != 0 {
		t.Errorf("t2_min = %d (present=%v), want 0", v, ok)
	}
	if f.singleReads == 0 {
		t.Error("expected per-register fallback reads")
	}
}

func TestRun_AllRegistersFailing(t *testing.T) {
	f := fullDevice()
	f.failAll = true

	_, err := New(f).Run()
	if !errors.Is(err, hub.ErrUpdateFailed) {
		t.Fatalf("err=%v, want ErrUpdateFailed", err)
	}
}

func TestRun_AbsentEnumSourceIsUnknown(t *testing.T) {
	f := fullDevice()
	f.failBlocks = true
	f.failAddr[12] = true // betriebsart_raw

	snap, err := New(f).Run()
	if err != nil {
		t.Fatalf("Run() err=%v", err)
	}
	if v, _ := snap.Label("betriebsart"); v != registers.Unknown {
		t.Errorf("betriebsart = %q, want %q", v, registers.Unknown)
	}
}

func TestOperatingStatus(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]interface{}
		want   string
	}{
		{"compressor only", map[string]interface{}{"kompressor_raw": 1, "heizstab_raw": 0}, registers.StatusCompressor},
		{"heater only", map[string]interface{}{"kompressor_raw": 0, "heizstab_raw": 1}, registers.StatusHeater},
		{"both on", map[string]interface{}{"kompressor_raw": 1, "heizstab_raw": 1}, registers.StatusBoth},
		{"both off", map[string]interface{}{"kompressor_raw": 0, "heizstab_raw": 0}, registers.StatusOff},
		{"both absent", map[string]interface{}{}, registers.Unknown},
		{"heater absent, compressor on", map[string]interface{}{"kompressor_raw": 1}, registers.StatusCompressor},
	}
	for _, c := range cases {
		if got := operatingStatus(c.values); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}
