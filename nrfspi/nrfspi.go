// Package nrfspi implements the nRF24L01(+) SPI command set: opcodes, command
// frames, register encodings and the status words returned on every transaction.
//
// A frame is one opcode byte followed by 0..32 data bytes. The chip shifts out
// its STATUS register while the opcode is shifted in, so byte 0 of every
// response is a Status regardless of the command.
//
// The package performs no I/O.
package nrfspi

import "errors"

const (
	// MaxPayloadLen is the size of a single TX or RX FIFO slot.
	MaxPayloadLen = 32
	// MaxFrameLen is the longest frame on the wire: opcode plus payload.
	MaxFrameLen = 1 + MaxPayloadLen
	// PipeCount is the number of RX data pipes.
	PipeCount = 6
	// MinAddrWidth and MaxAddrWidth bound the configurable address width in bytes.
	MinAddrWidth = 3
	MaxAddrWidth = 5
)

var (
	ErrPayloadTooLong = errors.New("nrfspi: payload longer than 32 bytes")
	ErrShortResponse  = errors.New("nrfspi: response shorter than expected")
)

// Opcode is the first byte of a command frame. For register and ACK payload
// commands the low bits carry the register address or pipe number.
type Opcode uint8

const (
	OpReadRegister        Opcode = 0x00
	OpWriteRegister       Opcode = 0x20
	OpReadRxPayloadWid    Opcode = 0x60
	OpReadRxPayload       Opcode = 0x61
	OpWriteTxPayload      Opcode = 0xa0
	OpWriteAckPayload     Opcode = 0xa8
	OpWriteTxPayloadNoAck Opcode = 0xb0
	OpFlushTx             Opcode = 0xe1
	OpFlushRx             Opcode = 0xe2
	OpReuseTxPayload      Opcode = 0xe3
	OpNop                 Opcode = 0xff

	registerMask = 0x1f
	pipeMask     = 0x07
)

// Base strips the register address or pipe number from op.
func (op Opcode) Base() Opcode {
	switch {
	case op&^registerMask == OpReadRegister:
		return OpReadRegister
	case op&^registerMask == OpWriteRegister:
		return OpWriteRegister
	case op&^pipeMask == OpWriteAckPayload && op&pipeMask < PipeCount:
		return OpWriteAckPayload
	}
	return op
}

// Arg returns the register address or pipe number carried in op.
func (op Opcode) Arg() uint8 {
	switch op.Base() {
	case OpReadRegister, OpWriteRegister:
		return uint8(op & registerMask)
	case OpWriteAckPayload:
		return uint8(op & pipeMask)
	}
	return 0
}

func (op Opcode) String() (s string) {
	switch op.Base() {
	case OpReadRegister:
		s = "R_REGISTER"
	case OpWriteRegister:
		s = "W_REGISTER"
	case OpReadRxPayloadWid:
		s = "R_RX_PL_WID"
	case OpReadRxPayload:
		s = "R_RX_PAYLOAD"
	case OpWriteTxPayload:
		s = "W_TX_PAYLOAD"
	case OpWriteAckPayload:
		s = "W_ACK_PAYLOAD"
	case OpWriteTxPayloadNoAck:
		s = "W_TX_PAYLOAD_NOACK"
	case OpFlushTx:
		s = "FLUSH_TX"
	case OpFlushRx:
		s = "FLUSH_RX"
	case OpReuseTxPayload:
		s = "REUSE_TX_PL"
	case OpNop:
		s = "NOP"
	default:
		s = "unknown"
	}
	return s
}

// Register addresses.
const (
	AddrConfig     uint8 = 0x00
	AddrEnAA       uint8 = 0x01
	AddrEnRxAddr   uint8 = 0x02
	AddrSetupAw    uint8 = 0x03
	AddrSetupRetr  uint8 = 0x04
	AddrRfCh       uint8 = 0x05
	AddrRfSetup    uint8 = 0x06
	AddrStatus     uint8 = 0x07
	AddrObserveTx  uint8 = 0x08
	AddrRPD        uint8 = 0x09
	AddrRxAddrP0   uint8 = 0x0a
	AddrTxAddr     uint8 = 0x10
	AddrRxPwP0     uint8 = 0x11
	AddrFIFOStatus uint8 = 0x17
	AddrDynpd      uint8 = 0x1c
	AddrFeature    uint8 = 0x1d
)

// RegisterName returns the datasheet mnemonic of the register at addr.
func RegisterName(addr uint8) string {
	switch {
	case addr >= AddrRxAddrP0 && addr < AddrRxAddrP0+PipeCount:
		return "RX_ADDR_P" + string('0'+rune(addr-AddrRxAddrP0))
	case addr >= AddrRxPwP0 && addr < AddrRxPwP0+PipeCount:
		return "RX_PW_P" + string('0'+rune(addr-AddrRxPwP0))
	}
	switch addr {
	case AddrConfig:
		return "CONFIG"
	case AddrEnAA:
		return "EN_AA"
	case AddrEnRxAddr:
		return "EN_RXADDR"
	case AddrSetupAw:
		return "SETUP_AW"
	case AddrSetupRetr:
		return "SETUP_RETR"
	case AddrRfCh:
		return "RF_CH"
	case AddrRfSetup:
		return "RF_SETUP"
	case AddrStatus:
		return "STATUS"
	case AddrObserveTx:
		return "OBSERVE_TX"
	case AddrRPD:
		return "RPD"
	case AddrTxAddr:
		return "TX_ADDR"
	case AddrFIFOStatus:
		return "FIFO_STATUS"
	case AddrDynpd:
		return "DYNPD"
	case AddrFeature:
		return "FEATURE"
	}
	return "reserved"
}
