package nrf24

import (
	"log/slog"
	"time"

	"github.com/soypat/nrf24/nrfspi"
)

// TxMode is the chip with PRIM_RX cleared. CE is low except while FlushQueue
// is draining the TX FIFO, so payloads may be queued without being sent.
type TxMode struct {
	mode
}

// Standby drains the TX FIFO and returns to Standby-I. If the drain fails the
// TX FIFO is flushed, discarding unsent payloads, and the transition still
// succeeds. Only if that flush fails too is an error returned; t then remains
// live and Standby may be called again.
func (t *TxMode) Standby() (*StandbyMode, error) {
	d, err := t.device()
	if err != nil {
		return nil, err
	}
	if err = t.FlushQueue(); err != nil {
		t.opts.warn("tx:standby discarding queue", slog.String("err", err.Error()))
		if _, _, ferr := d.Execute(nrfspi.FlushTx()); ferr != nil {
			d.CEDisable()
			return nil, errjoin(err, ferr)
		}
	}
	t.transition("tx", "standby")
	return newStandby(t.take()), nil
}

// IsEmpty reports whether the TX FIFO is empty.
func (t *TxMode) IsEmpty() (bool, error) {
	fifo, err := t.FIFOStatus()
	return fifo.TxEmpty(), err
}

// IsFull reports whether all three TX FIFO slots are occupied.
func (t *TxMode) IsFull() (bool, error) {
	fifo, err := t.FIFOStatus()
	return fifo.TxFull(), err
}

// Enqueue pushes data onto the TX FIFO. It is not sent until FlushQueue. The
// returned status reports TX_FULL as it was before the write; writing to a
// full FIFO is ignored by the chip.
func (t *TxMode) Enqueue(data []byte) (nrfspi.Status, error) {
	cmd, err := nrfspi.WriteTxPayload(data)
	if err != nil {
		return 0, err
	}
	return t.enqueue(cmd)
}

// EnqueueNoAck is Enqueue for a payload the receiver must not acknowledge.
// Requires RadioConfig.DynamicAck.
func (t *TxMode) EnqueueNoAck(data []byte) (nrfspi.Status, error) {
	cmd, err := nrfspi.WriteTxPayloadNoAck(data)
	if err != nil {
		return 0, err
	}
	return t.enqueue(cmd)
}

func (t *TxMode) enqueue(cmd nrfspi.Command) (nrfspi.Status, error) {
	d, err := t.device()
	if err != nil {
		return 0, err
	}
	status, _, err := d.Execute(cmd)
	return status, err
}

// FlushQueue raises CE and blocks until the TX FIFO is empty. It returns
// ErrMaxRetries if a payload went unacknowledged after all automatic
// retransmissions; that payload is left at the head of the FIFO. CE is low
// when FlushQueue returns.
func (t *TxMode) FlushQueue() error {
	d, err := t.device()
	if err != nil {
		return err
	}
	var deadline time.Time
	if t.opts.flushTimeout > 0 {
		deadline = t.opts.now().Add(t.opts.flushTimeout)
	}
	d.CEEnable()
	t.opts.sleep(SettleDelay)
	polls := 0
	for {
		status, fifo, err := ReadRegister[nrfspi.FIFOStatus](d)
		polls++
		if err != nil {
			d.CEDisable()
			return err
		}
		if status.MaxRT() {
			d.CEDisable()
			_, werr := WriteRegister(d, nrfspi.StatusTxDS|nrfspi.StatusMaxRT)
			d.CEDisable()
			t.opts.debug("tx:maxrt", slog.Int("polls", polls))
			return errjoin(ErrMaxRetries, werr)
		}
		if fifo.TxEmpty() {
			d.CEDisable()
			t.opts.trace("tx:flushed", slog.Int("polls", polls))
			return nil
		}
		if !deadline.IsZero() && t.opts.now().After(deadline) {
			d.CEDisable()
			return ErrFlushTimeout
		}
	}
}

// FlushTx discards every payload in the TX FIFO.
func (t *TxMode) FlushTx() error {
	d, err := t.device()
	if err != nil {
		return err
	}
	_, _, err = d.Execute(nrfspi.FlushTx())
	return err
}

// ReuseLast makes the chip resend the last transmitted payload on every
// subsequent CE pulse until FlushTx or a new Enqueue.
func (t *TxMode) ReuseLast() error {
	d, err := t.device()
	if err != nil {
		return err
	}
	_, _, err = d.Execute(nrfspi.ReuseTxPayload())
	return err
}

// Observe reads the lost packet and retransmit counters.
func (t *TxMode) Observe() (nrfspi.ObserveTx, error) {
	d, err := t.device()
	if err != nil {
		return 0, err
	}
	_, obs, err := ReadRegister[nrfspi.ObserveTx](d)
	return obs, err
}
