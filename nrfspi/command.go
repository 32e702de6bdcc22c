package nrfspi

import "errors"

// Command is a frame that can be shifted out over SPI. The response frame has
// the same length as the command frame.
type Command interface {
	// Len is the total frame length including the opcode byte.
	Len() int
	// Encode writes the frame into frame[:Len()].
	Encode(frame []byte)
}

// SplitResponse separates the status byte from the command specific data of
// a response frame.
func SplitResponse(frame []byte) (Status, []byte) {
	if len(frame) == 0 {
		return 0, nil
	}
	return Status(frame[0]), frame[1:]
}

type opOnly Opcode

func (opOnly) Len() int { return 1 }
func (c opOnly) Encode(frame []byte) { frame[0] = byte(c) }

// FlushTx discards every payload in the TX FIFO.
func FlushTx() Command { return opOnly(OpFlushTx) }

// FlushRx discards every payload in the RX FIFO.
func FlushRx() Command { return opOnly(OpFlushRx) }

// ReuseTxPayload makes the PTX resend the last payload while CE is high.
func ReuseTxPayload() Command { return opOnly(OpReuseTxPayload) }

// Nop only clocks out the Status register.
func Nop() Command { return opOnly(OpNop) }

type readRegister struct {
	addr uint8
	n    uint8
}

// ReadRegister requests n data bytes of the register at addr. The response
// data holds the register bytes, least significant byte first.
func ReadRegister(addr uint8, n int) Command {
	if n < 1 || n > MaxAddrWidth {
		panic("nrfspi: bad register length")
	}
	return readRegister{addr: addr & registerMask, n: uint8(n)}
}

func (c readRegister) Len() int { return 1 + int(c.n) }

func (c readRegister) Encode(frame []byte) {
	frame[0] = byte(OpReadRegister) | c.addr
	clear(frame[1:c.Len()])
}

type writeRegister struct {
	addr uint8
	n    uint8
	data [MaxAddrWidth]byte
}

// WriteRegister writes r. The response carries only the status byte.
func WriteRegister(r Register) Command {
	n := r.Len()
	if n < 1 || n > MaxAddrWidth {
		panic("nrfspi: bad register length")
	}
	c := writeRegister{addr: r.Addr() & registerMask, n: uint8(n)}
	r.Encode(c.data[:n])
	return c
}

func (c writeRegister) Len() int { return 1 + int(c.n) }

func (c writeRegister) Encode(frame []byte) {
	frame[0] = byte(OpWriteRegister) | c.addr
	copy(frame[1:c.Len()], c.data[:c.n])
}

type readPayloadWidth struct{}

// ReadRxPayloadWidth requests the width of the payload at the head of the RX
// FIFO. The response data is a single byte. A width above 32 means the
// payload is corrupt and the RX FIFO must be flushed.
func ReadRxPayloadWidth() Command { return readPayloadWidth{} }

func (readPayloadWidth) Len() int { return 2 }

func (readPayloadWidth) Encode(frame []byte) {
	frame[0] = byte(OpReadRxPayloadWid)
	frame[1] = 0
}

type readPayload struct {
	width uint8
}

// ReadRxPayload pops width bytes off the RX FIFO. The width must come from a
// preceding ReadRxPayloadWidth (or the static RX_PW_Pn of the pipe).
func ReadRxPayload(width int) (Command, error) {
	if width < 0 || width > MaxPayloadLen {
		return nil, ErrPayloadTooLong
	}
	return readPayload{width: uint8(width)}, nil
}

func (c readPayload) Len() int { return 1 + int(c.width) }

func (c readPayload) Encode(frame []byte) {
	frame[0] = byte(OpReadRxPayload)
	clear(frame[1:c.Len()])
}

type writePayload struct {
	op   Opcode
	data []byte
}

func newWritePayload(op Opcode, data []byte) (Command, error) {
	if len(data) > MaxPayloadLen {
		return nil, ErrPayloadTooLong
	}
	return writePayload{op: op, data: data}, nil
}

// WriteTxPayload pushes data onto the TX FIFO. Transmission starts when CE is
// held high. The frame references data until it is encoded.
func WriteTxPayload(data []byte) (Command, error) {
	return newWritePayload(OpWriteTxPayload, data)
}

// WriteTxPayloadNoAck is WriteTxPayload with auto acknowledgement disabled for
// this packet. Requires FEATURE.EN_DYN_ACK.
func WriteTxPayloadNoAck(data []byte) (Command, error) {
	return newWritePayload(OpWriteTxPayloadNoAck, data)
}

// WriteAckPayload queues data to be sent along with the next ACK on pipe.
// Requires FEATURE.EN_ACK_PAY.
func WriteAckPayload(pipe uint8, data []byte) (Command, error) {
	if pipe >= PipeCount {
		return nil, errors.New("nrfspi: pipe number out of range")
	}
	return newWritePayload(OpWriteAckPayload|Opcode(pipe), data)
}

func (c writePayload) Len() int { return 1 + len(c.data) }

func (c writePayload) Encode(frame []byte) {
	frame[0] = byte(c.op)
	copy(frame[1:c.Len()], c.data)
}

// Payload is the content of one FIFO slot.
type Payload struct {
	buf [MaxPayloadLen]byte
	n   uint8
}

// NewPayload copies b into a Payload.
func NewPayload(b []byte) (Payload, error) {
	var p Payload
	if len(b) > MaxPayloadLen {
		return p, ErrPayloadTooLong
	}
	p.n = uint8(copy(p.buf[:], b))
	return p, nil
}

// Bytes returns the payload data. The slice aliases p.
func (p *Payload) Bytes() []byte { return p.buf[:p.n] }

// Len returns the payload length in bytes.
func (p Payload) Len() int { return int(p.n) }
