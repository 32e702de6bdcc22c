package nrf24

import (
	"log/slog"
	"time"

	"github.com/soypat/nrf24/nrfspi"
)

// modeOpts is shared by a chain of modes born from one PowerUp.
type modeOpts struct {
	logstate
	sleep        func(time.Duration)
	now          func() time.Time
	flushTimeout time.Duration
}

func defaultModeOpts() *modeOpts {
	return &modeOpts{sleep: time.Sleep, now: time.Now}
}

// mode holds the device on behalf of StandbyMode, RxMode and TxMode. A nil dev
// means the value was released by a transition.
type mode struct {
	dev  Device
	opts *modeOpts
}

func (m *mode) device() (Device, error) {
	if m.dev == nil {
		return nil, ErrModeReleased
	}
	return m.dev, nil
}

// take moves ownership out of m into the returned mode.
func (m *mode) take() mode {
	t := *m
	m.dev = nil
	return t
}

// Status reads the STATUS register with a NOP.
func (m *mode) Status() (nrfspi.Status, error) {
	d, err := m.device()
	if err != nil {
		return 0, err
	}
	status, _, err := d.Execute(nrfspi.Nop())
	return status, err
}

// FIFOStatus reads the FIFO_STATUS register.
func (m *mode) FIFOStatus() (nrfspi.FIFOStatus, error) {
	d, err := m.device()
	if err != nil {
		return 0, err
	}
	_, fifo, err := ReadRegister[nrfspi.FIFOStatus](d)
	return fifo, err
}

// ClearInterrupts writes back the interrupt flags set in irqs, which clears them.
func (m *mode) ClearInterrupts(irqs nrfspi.Status) error {
	d, err := m.device()
	if err != nil {
		return err
	}
	_, err = WriteRegister(d, irqs&nrfspi.StatusClearIRQs)
	return err
}

// Configure writes rc to the chip. It never changes PRIM_RX or PWR_UP so the
// current mode stays valid.
func (m *mode) Configure(rc RadioConfig) error {
	d, err := m.device()
	if err != nil {
		return err
	}
	return Configure(d, rc)
}

// ReadRegister reads n bytes starting at register addr. The returned slice is
// a copy.
func (m *mode) ReadRegister(addr uint8, n int) (nrfspi.Status, []byte, error) {
	d, err := m.device()
	if err != nil {
		return 0, nil, err
	}
	status, data, err := d.Execute(nrfspi.ReadRegister(addr, n))
	if err != nil {
		return status, nil, err
	}
	return status, append([]byte(nil), data...), nil
}

// WriteRegister writes r. CONFIG is refused since PRIM_RX and PWR_UP encode
// the current mode.
func (m *mode) WriteRegister(r nrfspi.Register) (nrfspi.Status, error) {
	d, err := m.device()
	if err != nil {
		return 0, err
	}
	if r.Addr() == nrfspi.AddrConfig {
		return 0, errConfigOwned
	}
	return WriteRegister(d, r)
}

func (m *mode) transition(from, to string) {
	m.opts.debug("mode:transition", slog.String("from", from), slog.String("to", to))
}
