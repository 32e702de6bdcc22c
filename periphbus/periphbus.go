// Package periphbus binds the nrf24 driver to a Linux host (Raspberry Pi and
// similar) through periph.io: a spidev port for the bus and sysfs/memory
// mapped GPIO for CE and, optionally, CSN.
package periphbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soypat/nrf24"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

// Config selects the host resources.
type Config struct {
	// SPI is the spidev port name, e.g. "/dev/spidev0.0". Empty picks the first port.
	SPI       string
	Frequency physic.Frequency
	// CE is the GPIO name of the chip enable line, e.g. "GPIO25".
	CE string
	// CSN is the GPIO name of the chip select line. Empty means the kernel
	// drives chip select and the returned CSN pin does nothing.
	CSN    string
	Logger *slog.Logger
}

// DefaultConfig matches the usual Raspberry Pi wiring: SPI0 CE0 and GPIO25.
func DefaultConfig() Config {
	return Config{
		SPI:       "/dev/spidev0.0",
		Frequency: 4 * physic.MegaHertz,
		CE:        "GPIO25",
	}
}

type txer interface {
	Tx(w, r []byte) error
}

type outer interface {
	Out(l gpio.Level) error
}

// Bus is a drivers.SPI over a periph.io SPI connection plus the CE and CSN pins.
type Bus struct {
	conn   txer
	port   spi.PortCloser
	ce     outer
	csn    outer
	logger *slog.Logger
}

var _ drivers.SPI = (*Bus)(nil)

// Open initialises the periph.io host drivers and opens the port and pins.
func Open(cfg Config) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periphbus: host init: %w", err)
	}
	if cfg.Frequency == 0 {
		cfg.Frequency = DefaultConfig().Frequency
	}
	ce := gpioreg.ByName(cfg.CE)
	if ce == nil {
		return nil, fmt.Errorf("periphbus: CE pin %q not found", cfg.CE)
	}
	var csn gpio.PinIO
	if cfg.CSN != "" {
		csn = gpioreg.ByName(cfg.CSN)
		if csn == nil {
			return nil, fmt.Errorf("periphbus: CSN pin %q not found", cfg.CSN)
		}
	}
	port, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, fmt.Errorf("periphbus: open %q: %w", cfg.SPI, err)
	}
	// nRF24L01 samples on the rising edge with the clock idle low.
	conn, err := port.Connect(cfg.Frequency, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("periphbus: connect: %w", err)
	}
	b := newBus(conn, ce, nil, cfg.Logger)
	if csn != nil {
		b.csn = csn
	}
	b.port = port
	return b, nil
}

func newBus(conn txer, ce, csn outer, logger *slog.Logger) *Bus {
	return &Bus{conn: conn, ce: ce, csn: csn, logger: logger}
}

// Tx performs a full duplex transfer. w and r must have the same length.
func (b *Bus) Tx(w, r []byte) error {
	if len(w) != len(r) {
		return errors.New("periphbus: half duplex transfers not supported")
	}
	return b.conn.Tx(w, r)
}

func (b *Bus) Transfer(w byte) (byte, error) {
	var buf [2]byte
	buf[0] = w
	err := b.conn.Tx(buf[:1], buf[1:])
	return buf[1], err
}

// CE returns the chip enable pin.
func (b *Bus) CE() nrf24.OutputPin { return b.outputPin("CE", b.ce) }

// CSN returns the chip select pin.
func (b *Bus) CSN() nrf24.OutputPin {
	if b.csn == nil {
		return func(bool) {}
	}
	return b.outputPin("CSN", b.csn)
}

func (b *Bus) outputPin(name string, p outer) nrf24.OutputPin {
	return func(level bool) {
		if err := p.Out(gpio.Level(level)); err != nil && b.logger != nil {
			b.logger.LogAttrs(context.Background(), slog.LevelError, "periphbus:pin",
				slog.String("pin", name), slog.Bool("level", level), slog.String("err", err.Error()))
		}
	}
}

// Close releases the SPI port.
func (b *Bus) Close() error {
	if b.port == nil {
		return nil
	}
	return b.port.Close()
}
