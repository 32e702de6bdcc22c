// Package nrf24 is a driver for the Nordic nRF24L01(+) 2.4GHz transceiver.
//
// The chip's operating modes are represented by distinct types: StandbyMode,
// RxMode and TxMode. Each exposes only the operations that are legal in that
// mode and the transitions out of it. A transition returns the new mode and
// releases the old value; any later call on a released value returns
// ErrModeReleased without touching the bus.
//
//	dev := nrf24.New(spi, cePin.Set, csnPin.Set)
//	standby, err := dev.PowerUp(nrf24.DefaultConfig())
//	tx, err := standby.Tx()
//	tx.Enqueue([]byte("hello"))
//	err = tx.FlushQueue() // errors.Is(err, nrf24.ErrMaxRetries) on no ACK.
//	standby, err = tx.Standby()
package nrf24

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/soypat/nrf24/nrfspi"
	"tinygo.org/x/drivers"
)

const (
	// SettleDelay is the minimum CE high pulse that starts a transmission.
	SettleDelay = 10 * time.Microsecond
	// PowerUpDelay is the start up time from power down to standby (Tpd2stby
	// with an external clock is 1.5ms worst case).
	PowerUpDelay = 1500 * time.Microsecond
)

// OutputPin sets the level of a GPIO output. It must not fail.
type OutputPin func(level bool)

// Config configures Dev.PowerUp.
type Config struct {
	// Logger receives driver logs. Nil disables logging. Bus transactions are
	// logged below slog.LevelDebug.
	Logger *slog.Logger
	// Radio is written to the chip before it leaves power down. Nil leaves the
	// chip's register values untouched.
	Radio *RadioConfig
	// FlushTimeout bounds TxMode.FlushQueue in software. Zero relies only on the
	// hardware retransmit limit.
	FlushTimeout time.Duration
}

// DefaultConfig returns a Config that applies DefaultRadioConfig.
func DefaultConfig() Config {
	rc := DefaultRadioConfig()
	return Config{Radio: &rc}
}

// Dev is a Device backed by an SPI bus and the CE and CSN pins.
type Dev struct {
	mu     sync.Mutex
	spi    drivers.SPI
	ce     OutputPin
	csn    OutputPin
	config nrfspi.Config
	held   bool
	// Frame buffers sized for the longest frame; Execute returns slices of rbuf.
	wbuf [nrfspi.MaxFrameLen]byte
	rbuf [nrfspi.MaxFrameLen]byte
	logstate
	sleep func(time.Duration)
	now   func() time.Time
}

var _ Device = (*Dev)(nil)

// New binds the bus and pins. The cached CONFIG starts at its reset value with
// all interrupts masked; nothing is written to the chip until PowerUp.
func New(spi drivers.SPI, ce, csn OutputPin) *Dev {
	return &Dev{
		spi:    spi,
		ce:     ce,
		csn:    csn,
		config: initialConfig(),
		sleep:  time.Sleep,
		now:    time.Now,
	}
}

func initialConfig() nrfspi.Config {
	c := nrfspi.ConfigReset
	c.SetMaskRxDR(true)
	c.SetMaskTxDS(true)
	c.SetMaskMaxRT(true)
	return c
}

// Config returns the cached CONFIG register.
func (d *Dev) Config() nrfspi.Config { return d.config }

func (d *Dev) CEEnable() { d.ce(true) }

func (d *Dev) CEDisable() { d.ce(false) }

func (d *Dev) Execute(cmd nrfspi.Command) (nrfspi.Status, []byte, error) {
	n := cmd.Len()
	if n < 1 || n > nrfspi.MaxFrameLen {
		return 0, nil, errBadFrame
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	w, r := d.wbuf[:n], d.rbuf[:n]
	cmd.Encode(w)
	clear(r)

	d.csn(false)
	err := d.spi.Tx(w, r)
	d.csn(true)
	if err != nil {
		op := nrfspi.Opcode(w[0]).String()
		d.logerr("spi:tx", slog.String("op", op), slog.String("err", err.Error()))
		return 0, nil, &BusError{Op: op, Err: err}
	}
	status, data := nrfspi.SplitResponse(r)
	if d._traceenabled {
		d.trace("spi:tx",
			slog.String("op", nrfspi.Opcode(w[0]).String()),
			slog.Int("len", n),
			slog.String("status", status.String()),
		)
	}
	return status, data, nil
}

func (d *Dev) UpdateConfig(fn func(*nrfspi.Config)) error {
	old := d.config
	fn(&d.config)
	if d.config == old {
		return nil
	}
	_, err := WriteRegister(d, d.config)
	if err != nil {
		d.config = old // The write did not land; keep the cache equal to the chip.
		return err
	}
	d.debug("config:update", slog.String("config", d.config.String()))
	return nil
}

// IsConnected reads SETUP_AW back and checks it holds a legal address width.
// It checks the wiring, not the chip identity.
func (d *Dev) IsConnected() (bool, error) {
	_, aw, err := ReadRegister[nrfspi.SetupAw](d)
	if err != nil {
		return false, err
	}
	return aw.Valid(), nil
}

// PowerUp initialises the chip and returns it in Standby-I. The Dev may not be
// powered up again until the returned mode (or its successors) powers down.
func (d *Dev) PowerUp(cfg Config) (*StandbyMode, error) {
	if err := d.claim(); err != nil {
		return nil, err
	}
	d.logstate = newLogstate(cfg.Logger)
	start := d.now()
	d.info("PowerUp:start")
	err := d.powerUp(cfg)
	if err != nil {
		d.unclaim()
		d.logerr("PowerUp:failed", slog.String("err", err.Error()))
		return nil, err
	}
	d.info("PowerUp:done", slog.Duration("took", d.now().Sub(start)))
	m := mode{
		dev: d,
		opts: &modeOpts{
			logstate:     d.logstate,
			sleep:        d.sleep,
			now:          d.now,
			flushTimeout: cfg.FlushTimeout,
		},
	}
	return newStandby(m), nil
}

func (d *Dev) powerUp(cfg Config) error {
	d.ce(false)
	d.csn(true)

	reset := initialConfig()
	if _, err := WriteRegister(d, reset); err != nil {
		return err
	}
	d.config = reset
	if _, err := WriteRegister(d, nrfspi.StatusClearIRQs); err != nil {
		return err
	}
	if cfg.Radio != nil {
		if err := Configure(d, *cfg.Radio); err != nil {
			return err
		}
	}
	if err := d.UpdateConfig(func(c *nrfspi.Config) { c.SetPowerUp(true) }); err != nil {
		return err
	}
	connected, err := d.IsConnected()
	if err != nil {
		return err
	} else if !connected {
		return ErrNotConnected
	}
	d.sleep(PowerUpDelay)
	return nil
}

func (d *Dev) claim() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.held {
		return ErrDeviceBusy
	}
	d.held = true
	return nil
}

func (d *Dev) unclaim() {
	d.mu.Lock()
	d.held = false
	d.mu.Unlock()
}

// errjoin joins the non-nil errors. A single non-nil error is returned as is.
func errjoin(errs ...error) error {
	var first error
	n := 0
	for _, err := range errs {
		if err != nil {
			if n == 0 {
				first = err
			}
			n++
		}
	}
	if n <= 1 {
		return first
	}
	return errors.Join(errs...)
}
