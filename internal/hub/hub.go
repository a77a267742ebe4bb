package hub

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mklemme/fhs280-bridge/internal/registers"
)

// Hub is the register access surface shared by the dedicated and shared
// connection variants.
type Hub interface {
	// ReadRegisters reads count contiguous registers starting at start.
	// count == 0 returns an empty result without touching the wire.
	ReadRegisters(space registers.Space, start, count uint16) ([]uint16, error)
	// ReadRegister reads a single register.
	ReadRegister(space registers.Space, addr uint16) (uint16, error)
	// WriteRegister writes one holding register. The value is masked to
	// the 16-bit wire domain; out-of-range inputs wrap.
	WriteRegister(addr uint16, value int) error
	Close() error
}

// RegisterConn is the raw read/write capability both hub variants drive.
// goburrow's modbus.Client satisfies it.
type RegisterConn interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
	WriteSingleRegister(address, value uint16) ([]byte, error)
}

// Config identifies one physical controller.
type Config struct {
	Host    string
	Port    int
	SlaveID byte
	Timeout time.Duration
}

// DedicatedHub owns two TCP connections to the device: one for polling
// reads, one for control writes. Faulted channels are reset and redialed
// on the next use; every operation retries exactly once after a reset.
type DedicatedHub struct {
	provider channelProvider

	readMu  sync.Mutex
	writeMu sync.Mutex
}

// NewDedicated builds a hub with its own transport. No connection is made
// until the first read or write.
func NewDedicated(cfg Config) *DedicatedHub {
	return &DedicatedHub{
		provider: newTransport(cfg.Host, cfg.Port, cfg.SlaveID, cfg.Timeout),
	}
}

func (h *DedicatedHub) ReadRegisters(space registers.Space, start, count uint16) ([]uint16, error) {
	if count == 0 {
		return nil, nil
	}

	h.readMu.Lock()
	defer h.readMu.Unlock()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		conn, err := h.provider.ensure(readChannel)
		if err != nil {
			lastErr = err
			h.provider.reset(readChannel)
			continue
		}

		values, err := readOp(conn, space, start, count)
		if err == nil {
			return values, nil
		}
		if _, final := err.(*NonRetryableError); final {
			return nil, err
		}

		lastErr = err
		h.provider.reset(readChannel)
		log.WithFields(log.Fields{
			"space":   space.String(),
			"address": start,
			"count":   count,
		}).WithError(err).Debug("register read failed, channel reset")
	}

	return nil, fmt.Errorf("read %s registers %d..%d: %w", space, start, start+count-1, lastErr)
}

func (h *DedicatedHub) ReadRegister(space registers.Space, addr uint16) (uint16, error) {
	values, err := h.ReadRegisters(space, addr, 1)
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

func (h *DedicatedHub) WriteRegister(addr uint16, value int) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		conn, err := h.provider.ensure(writeChannel)
		if err != nil {
			lastErr = err
			h.provider.reset(writeChannel)
			continue
		}

		err = writeOp(conn, addr, value)
		if err == nil {
			return nil
		}
		if _, final := err.(*NonRetryableError); final {
			return err
		}

		lastErr = err
		h.provider.reset(writeChannel)
	}

	return fmt.Errorf("write register %d: %w", addr, lastErr)
}

// Close tears down both channels. Idempotent.
func (h *DedicatedHub) Close() error {
	h.readMu.Lock()
	defer h.readMu.Unlock()
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	return h.provider.close()
}

// SharedHub provides the same access surface over a connection whose
// lifecycle belongs to someone else. Faults are retried once but the
// connection is never reset or closed here.
type SharedHub struct {
	conn RegisterConn

	readMu  sync.Mutex
	writeMu sync.Mutex
}

// NewShared wraps an externally managed register connection.
func NewShared(conn RegisterConn) *SharedHub {
	return &SharedHub{conn: conn}
}

func (h *SharedHub) ReadRegisters(space registers.Space, start, count uint16) ([]uint16, error) {
	if count == 0 {
		return nil, nil
	}

	h.readMu.Lock()
	defer h.readMu.Unlock()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		values, err := readOp(h.conn, space, start, count)
		if err == nil {
			return values, nil
		}
		if _, final := err.(*NonRetryableError); final {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("read %s registers %d..%d: %w", space, start, start+count-1, lastErr)
}

func (h *SharedHub) ReadRegister(space registers.Space, addr uint16) (uint16, error) {
	values, err := h.ReadRegisters(space, addr, 1)
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

func (h *SharedHub) WriteRegister(addr uint16, value int) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		err := writeOp(h.conn, addr, value)
		if err == nil {
			return nil
		}
		if _, final := err.(*NonRetryableError); final {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("write register %d: %w", addr, lastErr)
}

// Close is a no-op: the shared connection is opened and closed by its
// owner.
func (h *SharedHub) Close() error { return nil }

// readOp performs one read attempt and unpacks the big-endian payload.
func readOp(conn RegisterConn, space registers.Space, start, count uint16) ([]uint16, error) {
	var raw []byte
	var err error

	if space == registers.Input {
		raw, err = conn.ReadInputRegisters(start, count)
	} else {
		raw, err = conn.ReadHoldingRegisters(start, count)
	}
	if err != nil {
		return nil, classify(start, err)
	}
	if len(raw) != int(count)*2 {
		return nil, &ProtocolError{
			Address: start,
			Err:     fmt.Errorf("short response: got %d bytes, want %d", len(raw), int(count)*2),
		}
	}

	values := make([]uint16, count)
	for i := range values {
		values[i] = uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
	}
	return values, nil
}

// writeOp performs one write attempt, masking the value to the register's
// unsigned 16-bit domain.
func writeOp(conn RegisterConn, addr uint16, value int) error {
	if _, err := conn.WriteSingleRegister(addr, uint16(value&0xFFFF)); err != nil {
		return classify(addr, err)
	}
	return nil
}
