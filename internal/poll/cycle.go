package poll

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mklemme/fhs280-bridge/internal/hub"
	"github.com/mklemme/fhs280-bridge/internal/registers"
)

// Cycle reads the full register catalog from one hub and assembles a
// snapshot. Contiguous registers are read in batched blocks; a failed
// block degrades to per-register reads so one bad register does not blank
// its neighbours.
type Cycle struct {
	hub hub.Hub
}

func New(h hub.Hub) *Cycle {
	return &Cycle{hub: h}
}

// Run performs one full poll. It fails with hub.ErrUpdateFailed only when
// every catalog register was unreadable; otherwise failed keys are simply
// absent from the snapshot.
func (c *Cycle) Run() (*Snapshot, error) {
	values := make(map[string]interface{}, registers.Count())
	failed := 0

	for _, space := range []registers.Space{registers.Holding, registers.Input} {
		for _, block := range registers.Blocks(space) {
			failed += c.readBlock(block, values)
		}
	}

	if failed == registers.Count() {
		return nil, hub.ErrUpdateFailed
	}

	derive(values)

	return &Snapshot{At: time.Now(), Values: values}, nil
}

// readBlock reads one contiguous block, batched first and register by
// register on batch failure. Returns the number of registers that could
// not be read either way.
func (c *Cycle) readBlock(block registers.Block, values map[string]interface{}) int {
	raw, err := c.hub.ReadRegisters(block.Space, block.Start, block.Count())
	if err == nil {
		for _, def := range block.Defs {
			values[def.Key] = decode(def, raw[def.Address-block.Start])
		}
		return 0
	}

	log.WithFields(log.Fields{
		"space":   block.Space.String(),
		"address": block.Start,
		"count":   block.Count(),
	}).WithError(err).Debug("block read failed, falling back to single reads")

	failed := 0
	for _, def := range block.Defs {
		v, err := c.hub.ReadRegister(def.Space, def.Address)
		if err != nil {
			log.WithFields(log.Fields{
				"key":     def.Key,
				"address": def.Address,
			}).WithError(err).Debug("register read failed")
			failed++
			continue
		}
		values[def.Key] = decode(def, v)
	}
	return failed
}

// derive adds the enum labels and composite fields computed from the raw
// register values.
func derive(values map[string]interface{}) {
	for attr, source := range registers.EnumSources {
		raw, ok := values[source].(int)
		if !ok {
			values[attr] = registers.Unknown
			continue
		}
		values[attr] = registers.Label(attr, raw)
	}

	values[registers.StatusKey] = operatingStatus(values)

	if t, ok := deviceTime(values); ok {
		values[registers.DeviceTimeKey] = t
	}
}

// operatingStatus combines the compressor and heating-element flags into
// one display label.
func operatingStatus(values map[string]interface{}) string {
	compressor, okC := values["kompressor_raw"].(int)
	heater, okH := values["heizstab_raw"].(int)

	if !okC && !okH {
		return registers.Unknown
	}
	switch {
	case compressor > 0 && heater > 0:
		return registers.StatusBoth
	case heater > 0:
		return registers.StatusHeater
	case compressor > 0:
		return registers.StatusCompressor
	}
	return registers.StatusOff
}

// deviceTime renders the controller clock as HH:MM when both halves are
// present and plausible.
func deviceTime(values map[string]interface{}) (string, bool) {
	hour, okH := values["current_h"].(int)
	minute, okM := values["current_min"].(int)
	if !okH || !okM {
		return "", false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}
