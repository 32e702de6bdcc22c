package nrf24

import (
	"errors"
	"testing"
	"time"

	"github.com/soypat/nrf24/nrfspi"
)

// poll is the chip state returned by one FIFO_STATUS read.
type poll struct {
	status nrfspi.Status
	fifo   nrfspi.FIFOStatus
}

// fakeBus emulates the nRF24L01 register file behind a drivers.SPI.
type fakeBus struct {
	t      *testing.T
	regs   [0x20][nrfspi.MaxAddrWidth]byte
	status nrfspi.Status
	// polls are consumed by FIFO_STATUS reads, after which the register keeps
	// its last value.
	polls    []poll
	rx       [][]byte
	badWidth byte
	fail     func(frame []byte) error

	frames [][]byte
	ce     bool
	csn    bool
	ceHigh int // Number of rising CE edges.
	sleeps []time.Duration
	clock  time.Time
}

func newFakeBus(t *testing.T) *fakeBus {
	b := &fakeBus{t: t, csn: true, status: 0x0e, clock: time.Unix(0, 0)}
	b.regs[nrfspi.AddrConfig][0] = byte(nrfspi.ConfigReset)
	b.regs[nrfspi.AddrSetupAw][0] = 0b11
	b.regs[nrfspi.AddrFIFOStatus][0] = byte(nrfspi.FIFOReset)
	return b
}

// newTestDev returns a Dev wired to a fake bus with a fake clock.
func newTestDev(t *testing.T) (*Dev, *fakeBus) {
	b := newFakeBus(t)
	d := New(b, b.setCE, b.setCSN)
	d.sleep = b.sleep
	d.now = b.now
	return d, b
}

// powerUp returns a Standby mode with the bus log cleared.
func powerUp(t *testing.T, cfg Config) (*Dev, *fakeBus, *StandbyMode) {
	t.Helper()
	d, b := newTestDev(t)
	s, err := d.PowerUp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b.frames = nil
	b.sleeps = nil
	return d, b, s
}

func (b *fakeBus) setCE(level bool) {
	if level && !b.ce {
		b.ceHigh++
	}
	b.ce = level
}

func (b *fakeBus) setCSN(level bool) { b.csn = level }

func (b *fakeBus) sleep(d time.Duration) { b.sleeps = append(b.sleeps, d) }

func (b *fakeBus) now() time.Time {
	b.clock = b.clock.Add(time.Millisecond)
	return b.clock
}

func (b *fakeBus) Transfer(w byte) (byte, error) {
	var r [1]byte
	err := b.Tx([]byte{w}, r[:])
	return r[0], err
}

func (b *fakeBus) Tx(w, r []byte) error {
	if len(w) != len(r) {
		b.t.Fatalf("Tx length mismatch %d != %d", len(w), len(r))
	}
	if b.csn {
		b.t.Error("transaction with CSN high")
	}
	b.frames = append(b.frames, append([]byte(nil), w...))
	if b.fail != nil {
		if err := b.fail(w); err != nil {
			return err
		}
	}
	op := nrfspi.Opcode(w[0])
	switch op.Base() {
	case nrfspi.OpReadRegister:
		addr := op.Arg()
		if addr == nrfspi.AddrFIFOStatus && len(b.polls) > 0 {
			p := b.polls[0]
			b.polls = b.polls[1:]
			b.status = p.status
			b.regs[addr][0] = byte(p.fifo)
		}
		if addr == nrfspi.AddrStatus {
			b.regs[addr][0] = byte(b.status)
		}
		copy(r[1:], b.regs[addr][:])
	case nrfspi.OpWriteRegister:
		addr := op.Arg()
		if addr == nrfspi.AddrStatus {
			b.status &^= nrfspi.Status(w[1]) & nrfspi.StatusClearIRQs
		} else {
			copy(b.regs[addr][:], w[1:])
		}
	case nrfspi.OpReadRxPayloadWid:
		switch {
		case b.badWidth != 0:
			r[1] = b.badWidth
		case len(b.rx) > 0:
			r[1] = byte(len(b.rx[0]))
		}
	case nrfspi.OpReadRxPayload:
		if len(b.rx) > 0 {
			copy(r[1:], b.rx[0])
			b.rx = b.rx[1:]
		}
	case nrfspi.OpFlushRx:
		b.rx = nil
	}
	r[0] = byte(b.status)
	return nil
}

// count returns how many recorded frames start with op.
func (b *fakeBus) count(op nrfspi.Opcode) int {
	n := 0
	for _, f := range b.frames {
		if f[0] == byte(op) {
			n++
		}
	}
	return n
}

// writes returns the data of every W_REGISTER frame to addr.
func (b *fakeBus) writes(addr uint8) (data [][]byte) {
	for _, f := range b.frames {
		if f[0] == byte(nrfspi.OpWriteRegister)|addr {
			data = append(data, f[1:])
		}
	}
	return data
}

var errInjected = errors.New("injected bus failure")

func failAll([]byte) error { return errInjected }

// failOp fails every frame starting with op.
func failOp(op nrfspi.Opcode) func([]byte) error {
	return func(frame []byte) error {
		if frame[0] == byte(op) {
			return errInjected
		}
		return nil
	}
}
