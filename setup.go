package nrf24

import (
	"errors"
	"time"

	"github.com/soypat/nrf24/nrfspi"
)

// DataRate is the air data rate.
type DataRate uint8

const (
	DataRate1M DataRate = iota
	DataRate2M
	DataRate250K // nRF24L01+ only.
)

func (r DataRate) String() string {
	switch r {
	case DataRate1M:
		return "1Mbps"
	case DataRate2M:
		return "2Mbps"
	case DataRate250K:
		return "250kbps"
	}
	return "DataRate(?)"
}

// PALevel is the transmitter output power.
type PALevel uint8

const (
	PAMin  PALevel = iota // -18dBm
	PALow                 // -12dBm
	PAHigh                // -6dBm
	PAMax                 // 0dBm
)

// CRC is the packet CRC length.
type CRC uint8

const (
	CRCDisabled CRC = iota
	CRC1Byte
	CRC2Byte
)

const (
	MaxChannel         = 125
	minRetransmitDelay = 250 * time.Microsecond
	maxRetransmitDelay = 4000 * time.Microsecond
	maxRetransmitCount = 15
)

var (
	errBadChannel      = errors.New("nrf24: channel above 125")
	errBadAddrWidth    = errors.New("nrf24: address width must be 3, 4 or 5")
	errBadRetrDelay    = errors.New("nrf24: retransmit delay must be 250µs..4ms in 250µs steps")
	errBadRetrCount    = errors.New("nrf24: retransmit count above 15")
	errBadPayloadWidth = errors.New("nrf24: static payload width above 32")
	errBadEnum         = errors.New("nrf24: invalid data rate, PA level or CRC")
	errCRCRequired     = errors.New("nrf24: auto acknowledgement requires CRC")
)

// RadioConfig holds every register that sets up the radio link. Both ends of
// a link must agree on channel, data rate, CRC and address width.
// Addresses are least significant byte first, as sent on the wire.
type RadioConfig struct {
	// Channel is the RF channel, 2400MHz + Channel MHz. Max 125.
	Channel  uint8
	DataRate DataRate
	PALevel  PALevel
	CRC      CRC
	// AddressWidth in bytes, 3 to 5.
	AddressWidth uint8
	// AutoRetransmitDelay is the wait for an ACK before retransmitting.
	AutoRetransmitDelay time.Duration
	// AutoRetransmitCount of 0 disables retransmission.
	AutoRetransmitCount uint8
	AutoAck             nrfspi.Pipes
	// RxPipes are the enabled receive pipes.
	RxPipes        nrfspi.Pipes
	DynamicPayload nrfspi.Pipes
	// PayloadWidth is the static payload width of pipes without dynamic payloads.
	PayloadWidth uint8
	// AckPayload allows RxMode.WriteAckPayload. Requires dynamic payloads on the pipe.
	AckPayload bool
	// DynamicAck allows TxMode.EnqueueNoAck.
	DynamicAck bool
	TxAddr     [nrfspi.MaxAddrWidth]byte
	// RxAddrs of pipes 2..5 use only their first byte; the rest is shared with pipe 1.
	RxAddrs [nrfspi.PipeCount][nrfspi.MaxAddrWidth]byte
}

// DefaultRadioConfig returns the chip's reset addresses on channel 76 at
// 1Mbps, full power, 2 byte CRC, auto acknowledgement and dynamic payloads on
// all pipes, and 15 retransmissions 1.5ms apart.
func DefaultRadioConfig() RadioConfig {
	return RadioConfig{
		Channel:             76,
		DataRate:            DataRate1M,
		PALevel:             PAMax,
		CRC:                 CRC2Byte,
		AddressWidth:        5,
		AutoRetransmitDelay: 1500 * time.Microsecond,
		AutoRetransmitCount: 15,
		AutoAck:             nrfspi.PAll,
		RxPipes:             nrfspi.P0 | nrfspi.P1,
		DynamicPayload:      nrfspi.PAll,
		PayloadWidth:        nrfspi.MaxPayloadLen,
		TxAddr:              [5]byte{0xe7, 0xe7, 0xe7, 0xe7, 0xe7},
		RxAddrs: [6][5]byte{
			{0xe7, 0xe7, 0xe7, 0xe7, 0xe7},
			{0xc2, 0xc2, 0xc2, 0xc2, 0xc2},
			{0xc3}, {0xc4}, {0xc5}, {0xc6},
		},
	}
}

// Validate checks rc holds values the chip accepts.
func (rc *RadioConfig) Validate() error {
	switch {
	case rc.Channel > MaxChannel:
		return errBadChannel
	case rc.AddressWidth < nrfspi.MinAddrWidth || rc.AddressWidth > nrfspi.MaxAddrWidth:
		return errBadAddrWidth
	case rc.AutoRetransmitDelay < minRetransmitDelay || rc.AutoRetransmitDelay > maxRetransmitDelay ||
		rc.AutoRetransmitDelay%minRetransmitDelay != 0:
		return errBadRetrDelay
	case rc.AutoRetransmitCount > maxRetransmitCount:
		return errBadRetrCount
	case rc.PayloadWidth > nrfspi.MaxPayloadLen:
		return errBadPayloadWidth
	case rc.DataRate > DataRate250K || rc.PALevel > PAMax || rc.CRC > CRC2Byte:
		return errBadEnum
	case rc.AutoAck&nrfspi.PAll != 0 && rc.CRC == CRCDisabled:
		return errCRCRequired
	}
	return nil
}

func (rc *RadioConfig) rfSetup() nrfspi.RfSetup {
	var r nrfspi.RfSetup
	switch rc.DataRate {
	case DataRate2M:
		r |= nrfspi.RfDRHigh
	case DataRate250K:
		r |= nrfspi.RfDRLow
	}
	r.SetPower(uint8(rc.PALevel))
	return r
}

func (rc *RadioConfig) feature() nrfspi.Feature {
	var f nrfspi.Feature
	if rc.DynamicPayload&nrfspi.PAll != 0 {
		f |= nrfspi.FeatureDPL
	}
	if rc.AckPayload {
		f |= nrfspi.FeatureAckPay
	}
	if rc.DynamicAck {
		f |= nrfspi.FeatureDynAck
	}
	return f
}

// Configure validates rc and writes it to the chip. Only the CRC bits of
// CONFIG are touched, so Configure is legal in any mode. It is not atomic: a
// bus error leaves the registers before it written.
func Configure(d Device, rc RadioConfig) error {
	if err := rc.Validate(); err != nil {
		return err
	}
	regs := []nrfspi.Register{
		nrfspi.RfCh(rc.Channel),
		rc.rfSetup(),
		nrfspi.NewSetupAw(int(rc.AddressWidth)),
		nrfspi.NewSetupRetr(int(rc.AutoRetransmitDelay/time.Microsecond), int(rc.AutoRetransmitCount)),
		nrfspi.EnAA(rc.AutoAck),
		nrfspi.EnRxAddr(rc.RxPipes),
		nrfspi.TxAddr{Width: rc.AddressWidth, Address: rc.TxAddr},
	}
	for pipe := uint8(0); pipe < nrfspi.PipeCount; pipe++ {
		regs = append(regs,
			nrfspi.RxAddr{Pipe: pipe, Width: rc.AddressWidth, Address: rc.RxAddrs[pipe]},
			nrfspi.RxPw{Pipe: pipe, Width: rc.PayloadWidth},
		)
	}
	// FEATURE must be set before DYNPD takes effect.
	regs = append(regs, rc.feature(), nrfspi.Dynpd(rc.DynamicPayload))
	for _, r := range regs {
		if _, err := WriteRegister(d, r); err != nil {
			return err
		}
	}
	return d.UpdateConfig(func(c *nrfspi.Config) {
		c.SetEnCRC(rc.CRC != CRCDisabled)
		c.SetCRCO(rc.CRC == CRC2Byte)
	})
}
