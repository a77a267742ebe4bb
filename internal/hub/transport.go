package hub

import (
	"fmt"
	"time"

	"github.com/goburrow/modbus"
)

// channel selects one of the two independent TCP connections to the
// device. Reads and writes never share a socket, so a long poll cannot
// starve a control write.
type channel int

const (
	readChannel channel = iota
	writeChannel
)

func (c channel) String() string {
	if c == writeChannel {
		return "write"
	}
	return "read"
}

// connectMargin is added to the configured I/O timeout when dialing and
// waiting for responses.
const connectMargin = 2 * time.Second

// channelProvider hands out connected register channels and tears them
// down after faults. Implemented by transport; faked in tests.
type channelProvider interface {
	ensure(ch channel) (RegisterConn, error)
	reset(ch channel)
	close() error
}

// transport owns the TCP client handlers for one device identity.
// Channel state is guarded by the hub's per-channel locks; transport
// itself holds no mutex.
type transport struct {
	addr    string
	slaveID byte
	timeout time.Duration

	channels [2]*transportChannel
}

type transportChannel struct {
	handler   *modbus.TCPClientHandler
	client    modbus.Client
	connected bool
}

func newTransport(host string, port int, slaveID byte, timeout time.Duration) *transport {
	t := &transport{
		addr:    fmt.Sprintf("%s:%d", host, port),
		slaveID: slaveID,
		timeout: timeout,
	}
	for i := range t.channels {
		t.channels[i] = &transportChannel{}
	}
	return t
}

// ensure returns a connected client for the channel, dialing lazily on
// first use or after a reset. Idempotent while the channel is healthy.
func (t *transport) ensure(ch channel) (RegisterConn, error) {
	c := t.channels[ch]
	if c.connected {
		return c.client, nil
	}

	h := modbus.NewTCPClientHandler(t.addr)
	h.Timeout = t.timeout + connectMargin
	h.SlaveId = t.slaveID

	if err := h.Connect(); err != nil {
		return nil, &ConnectionError{Channel: ch.String(), Err: err}
	}

	c.handler = h
	c.client = modbus.NewClient(h)
	c.connected = true
	return c.client, nil
}

// reset unconditionally closes the channel so the next access dials a
// fresh connection. Used after any I/O fault to avoid reusing a socket in
// an unknown state.
func (t *transport) reset(ch channel) {
	c := t.channels[ch]
	if !c.connected {
		return
	}
	_ = c.handler.Close()
	c.handler = nil
	c.client = nil
	c.connected = false
}

// close closes both channels. Safe to call repeatedly and before any
// connection was made.
func (t *transport) close() error {
	var first error
	for ch := range t.channels {
		c := t.channels[ch]
		if !c.connected {
			continue
		}
		if err := c.handler.Close(); err != nil && first == nil {
			first = err
		}
		c.handler = nil
		c.client = nil
		c.connected = false
	}
	return first
}
