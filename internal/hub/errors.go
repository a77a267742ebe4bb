package hub

import (
	"errors"
	"fmt"

	"github.com/goburrow/modbus"
)

// ErrUpdateFailed signals that an entire poll cycle yielded no usable
// register.
var ErrUpdateFailed = errors.New("no register could be read from the device")

// ConnectionError reports a channel that could not be established or kept
// alive. Recoverable by reconnecting.
type ConnectionError struct {
	Channel string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("modbus %s channel: %v", e.Channel, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolError reports a malformed or short response, or a device
// exception the request is worth repeating for (busy, acknowledge,
// gateway faults). Retried once after a channel reset.
type ProtocolError struct {
	Address uint16
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("modbus protocol fault at address %d: %v", e.Address, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// NonRetryableError reports an explicit device rejection. Resending the
// identical request cannot succeed, so it surfaces without a retry.
type NonRetryableError struct {
	Address uint16
	Code    byte
	Err     error
}

func (e *NonRetryableError) Error() string {
	msg, ok := exceptionMessages[e.Code]
	if !ok {
		msg = fmt.Sprintf("exception code %d", e.Code)
	}
	if e.Code == excIllegalDataValue {
		return fmt.Sprintf(
			"device rejected request at address %d: %s (value outside the device's accepted range or current operating mode)",
			e.Address, msg,
		)
	}
	return fmt.Sprintf("device rejected request at address %d: %s", e.Address, msg)
}

func (e *NonRetryableError) Unwrap() error { return e.Err }

// Modbus exception codes reported by the device.
const (
	excIllegalFunction    byte = 1
	excIllegalDataAddress byte = 2
	excIllegalDataValue   byte = 3
	excDeviceFailure      byte = 4
	excAcknowledge        byte = 5
	excDeviceBusy         byte = 6
	excMemoryParityError  byte = 8
	excGatewayUnavailable byte = 10
	excGatewayNoResponse  byte = 11
)

var exceptionMessages = map[byte]string{
	excIllegalFunction:    "illegal function",
	excIllegalDataAddress: "illegal data address",
	excIllegalDataValue:   "illegal data value",
	excDeviceFailure:      "device failure",
	excAcknowledge:        "acknowledge",
	excDeviceBusy:         "device busy",
	excMemoryParityError:  "memory parity error",
	excGatewayUnavailable: "gateway path unavailable",
	excGatewayNoResponse:  "gateway target failed to respond",
}

// classify sorts a failed register call into the retry taxonomy.
// Exception frames for bad function/address/value and internal device
// failure are final; everything else is retried once.
func classify(addr uint16, err error) error {
	var me *modbus.ModbusError
	if errors.As(err, &me) {
		switch me.ExceptionCode {
		case excIllegalFunction, excIllegalDataAddress, excIllegalDataValue, excDeviceFailure:
			return &NonRetryableError{Address: addr, Code: me.ExceptionCode, Err: err}
		}
	}
	return &ProtocolError{Address: addr, Err: err}
}
