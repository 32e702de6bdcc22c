package nrf24

import "errors"

var (
	// ErrMaxRetries is returned by TxMode.FlushQueue when the chip exhausted its
	// automatic retransmissions without receiving an ACK. The bus is healthy;
	// the unsent payload is still in the TX FIFO and may be retried.
	ErrMaxRetries = errors.New("nrf24: maximum retransmissions exceeded")
	// ErrFlushTimeout is returned by TxMode.FlushQueue when Config.FlushTimeout
	// is set and elapses before the TX FIFO drains.
	ErrFlushTimeout = errors.New("nrf24: timeout waiting for TX FIFO to drain")
	// ErrModeReleased is returned by every operation on a mode value that has
	// already transitioned to another mode or powered down.
	ErrModeReleased = errors.New("nrf24: mode released by a transition")
	// ErrNotConnected is returned by Dev.PowerUp when SETUP_AW reads back an
	// illegal address width, which usually means no chip answers on the bus.
	ErrNotConnected = errors.New("nrf24: device not connected")
	// ErrDeviceBusy is returned when a mode is requested for a Dev that is
	// already held by a live mode value.
	ErrDeviceBusy = errors.New("nrf24: device held by another mode")
	// ErrBadPayloadWidth is returned by RxMode.Read when the chip reports a
	// payload width above 32 bytes. The RX FIFO is flushed in that case.
	ErrBadPayloadWidth = errors.New("nrf24: corrupt RX payload width")
	errBadFrame        = errors.New("nrf24: command frame length out of range")
	errConfigOwned     = errors.New("nrf24: CONFIG is written only by mode transitions")
)

// BusError wraps a failure of the SPI transport. It is returned unchanged by
// every operation that touches the bus; the driver never retries.
type BusError struct {
	// Op is the command being executed, e.g. "W_REGISTER".
	Op  string
	Err error
}

func (e *BusError) Error() string { return "nrf24: bus error during " + e.Op + ": " + e.Err.Error() }

func (e *BusError) Unwrap() error { return e.Err }

// IsTransportError reports whether err was caused by the SPI transport, as
// opposed to a radio level condition such as ErrMaxRetries.
func IsTransportError(err error) bool {
	var be *BusError
	return errors.As(err, &be)
}
