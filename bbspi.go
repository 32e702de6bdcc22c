package nrf24

import (
	"errors"

	"tinygo.org/x/drivers"
)

// SPIbb is a bit-bang implementation of a mode 0, MSB first SPI master, which
// is what the nRF24L01 speaks. It is useful when the hardware SPI peripheral
// is taken or the radio sits on arbitrary pins.
type SPIbb struct {
	SCK OutputPin
	SDO OutputPin
	SDI func() bool
	// Delay waits a quarter clock period. Nil clocks as fast as the pins toggle;
	// the chip tolerates up to 10MHz.
	Delay func()
}

var _ drivers.SPI = (*SPIbb)(nil)

// Tx shifts out w while shifting in r. r may be nil to discard the response,
// otherwise it must have the length of w.
func (s *SPIbb) Tx(w, r []byte) error {
	switch {
	case len(r) == 0:
		for _, b := range w {
			s.transfer(b)
		}
	case len(r) == len(w):
		for i, b := range w {
			r[i] = s.transfer(b)
		}
	default:
		return errors.New("nrf24: SPIbb buffer length mismatch")
	}
	return nil
}

// Transfer shifts out a single byte and returns the byte shifted in.
func (s *SPIbb) Transfer(b byte) (byte, error) {
	return s.transfer(b), nil
}

func (s *SPIbb) transfer(b byte) (out byte) {
	for bit := 7; bit >= 0; bit-- {
		out |= b2u8(s.bitTransfer(b&(1<<bit) != 0)) << bit
	}
	return out
}

// bitTransfer sets up SDO while SCK is low and samples SDI on the rising edge.
func (s *SPIbb) bitTransfer(b bool) bool {
	s.SDO(b)
	s.delay()
	s.SCK(true)
	s.delay()
	inputBit := s.SDI()
	s.delay()
	s.SCK(false)
	s.delay()
	return inputBit
}

func (s *SPIbb) delay() {
	if s.Delay != nil {
		s.Delay()
	}
}

func b2u8(b bool) byte {
	if b {
		return 1
	}
	return 0
}
