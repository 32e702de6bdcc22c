package nrf24

import (
	"log/slog"

	"github.com/soypat/nrf24/nrfspi"
)

// RxMode is the chip with PRIM_RX set and CE high, listening on its enabled
// pipes.
type RxMode struct {
	mode
}

// Standby drops CE and returns to Standby-I. It returns nil if r was already
// released.
func (r *RxMode) Standby() *StandbyMode {
	if r.dev == nil {
		return nil
	}
	r.transition("rx", "standby")
	return newStandby(r.take())
}

// CanRead reports whether a payload is waiting and which pipe it arrived on.
// Availability comes from FIFO_STATUS; the pipe from the STATUS byte clocked
// out during that read.
func (r *RxMode) CanRead() (pipe uint8, ok bool, err error) {
	d, err := r.device()
	if err != nil {
		return 0, false, err
	}
	status, fifo, err := ReadRegister[nrfspi.FIFOStatus](d)
	if err != nil || fifo.RxEmpty() {
		return 0, false, err
	}
	pipe = status.RxPipe()
	// 0b110 is unused by the chip; treat it as empty like 0b111.
	if pipe >= nrfspi.PipeCount {
		return 0, false, nil
	}
	return pipe, true, nil
}

// IsEmpty reports whether the RX FIFO is empty.
func (r *RxMode) IsEmpty() (bool, error) {
	fifo, err := r.FIFOStatus()
	return fifo.RxEmpty(), err
}

// IsFull reports whether all three RX FIFO slots are occupied.
func (r *RxMode) IsFull() (bool, error) {
	fifo, err := r.FIFOStatus()
	return fifo.RxFull(), err
}

// Read pops the payload at the head of the RX FIFO. Dynamic payload length
// must be enabled on the pipe. A corrupt width flushes the RX FIFO and
// returns ErrBadPayloadWidth.
func (r *RxMode) Read() (nrfspi.Payload, error) {
	var p nrfspi.Payload
	d, err := r.device()
	if err != nil {
		return p, err
	}
	_, data, err := d.Execute(nrfspi.ReadRxPayloadWidth())
	if err != nil {
		return p, err
	}
	if len(data) < 1 {
		return p, nrfspi.ErrShortResponse
	}
	width := int(data[0])
	cmd, err := nrfspi.ReadRxPayload(width)
	if err != nil {
		r.opts.warn("rx:badwidth", slog.Int("width", width))
		_, _, ferr := d.Execute(nrfspi.FlushRx())
		return p, errjoin(ErrBadPayloadWidth, ferr)
	}
	_, data, err = d.Execute(cmd)
	if err != nil {
		return p, err
	}
	return nrfspi.NewPayload(data)
}

// FlushRx discards every payload in the RX FIFO.
func (r *RxMode) FlushRx() error {
	d, err := r.device()
	if err != nil {
		return err
	}
	_, _, err = d.Execute(nrfspi.FlushRx())
	return err
}

// ReceivedPower reports whether a carrier above -64dBm was present on the
// channel during the last 40µs of listening.
func (r *RxMode) ReceivedPower() (bool, error) {
	d, err := r.device()
	if err != nil {
		return false, err
	}
	_, rpd, err := ReadRegister[nrfspi.RPD](d)
	return rpd.Detected(), err
}

// WriteAckPayload queues data to be carried by the next ACK sent on pipe.
// Requires RadioConfig.AckPayload.
func (r *RxMode) WriteAckPayload(pipe uint8, data []byte) error {
	d, err := r.device()
	if err != nil {
		return err
	}
	cmd, err := nrfspi.WriteAckPayload(pipe, data)
	if err != nil {
		return err
	}
	_, _, err = d.Execute(cmd)
	return err
}
