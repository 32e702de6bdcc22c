package nrf24

import (
	"github.com/soypat/nrf24/nrfspi"
)

// StandbyMode is the chip powered up with CE low (Standby-I). It is the hub
// all other modes are reached from.
type StandbyMode struct {
	mode
}

// NewStandbyMode wraps an already powered up Device. It drives CE low.
// Most users obtain a StandbyMode from Dev.PowerUp instead.
func NewStandbyMode(d Device) (*StandbyMode, error) {
	if c, ok := d.(claimer); ok {
		if err := c.claim(); err != nil {
			return nil, err
		}
	}
	return newStandby(mode{dev: d, opts: defaultModeOpts()}), nil
}

func newStandby(m mode) *StandbyMode {
	m.dev.CEDisable()
	return &StandbyMode{mode: m}
}

// Rx sets PRIM_RX and raises CE. The chip listens 130µs after this returns.
func (s *StandbyMode) Rx() (*RxMode, error) {
	d, err := s.device()
	if err != nil {
		return nil, err
	}
	err = d.UpdateConfig(func(c *nrfspi.Config) { c.SetPrimRx(true) })
	if err != nil {
		return nil, err
	}
	d.CEEnable()
	s.transition("standby", "rx")
	return &RxMode{mode: s.take()}, nil
}

// Tx clears PRIM_RX. CE stays low until the queue is flushed.
func (s *StandbyMode) Tx() (*TxMode, error) {
	d, err := s.device()
	if err != nil {
		return nil, err
	}
	d.CEDisable()
	err = d.UpdateConfig(func(c *nrfspi.Config) { c.SetPrimRx(false) })
	if err != nil {
		return nil, err
	}
	s.transition("standby", "tx")
	return &TxMode{mode: s.take()}, nil
}

// PowerDown clears PWR_UP and hands back the Device. A *Dev may be powered up
// again afterwards.
func (s *StandbyMode) PowerDown() (Device, error) {
	d, err := s.device()
	if err != nil {
		return nil, err
	}
	err = d.UpdateConfig(func(c *nrfspi.Config) { c.SetPowerUp(false) })
	if err != nil {
		return nil, err
	}
	s.transition("standby", "powerdown")
	s.take()
	if c, ok := d.(claimer); ok {
		c.unclaim()
	}
	return d, nil
}
