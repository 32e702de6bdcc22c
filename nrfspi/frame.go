package nrfspi

import (
	"encoding/hex"
	"strconv"
)

// Frame is a decoded bus transaction as seen by a logic analyzer: the bytes
// the host shifted out (MOSI) and the bytes the chip returned (MISO).
type Frame struct {
	Op Opcode
	// Arg is the register address of R_REGISTER/W_REGISTER or the pipe of
	// W_ACK_PAYLOAD.
	Arg uint8
	// Status is the first MISO byte. Valid when HasStatus is set.
	Status    Status
	HasStatus bool
	// Data is the meaningful half of the transaction: MOSI data for writes,
	// MISO data for reads.
	Data []byte
}

// DecodeFrame classifies a captured transaction. miso may be nil when only
// the host side was captured.
func DecodeFrame(mosi, miso []byte) (f Frame) {
	if len(mosi) == 0 {
		return f
	}
	op := Opcode(mosi[0])
	f.Op = op.Base()
	f.Arg = op.Arg()
	if len(miso) > 0 {
		f.Status = Status(miso[0])
		f.HasStatus = true
	}
	if f.IsRead() {
		if len(miso) > 1 {
			f.Data = miso[1:]
		}
	} else {
		f.Data = mosi[1:]
	}
	return f
}

// IsRead reports whether the command carries its data on MISO.
func (f Frame) IsRead() bool {
	switch f.Op {
	case OpReadRegister, OpReadRxPayload, OpReadRxPayloadWid:
		return true
	}
	return false
}

func (f Frame) String() string {
	s := f.Op.String()
	switch f.Op {
	case OpReadRegister, OpWriteRegister:
		s += " " + RegisterName(f.Arg)
	case OpWriteAckPayload:
		s += " pipe=" + strconv.Itoa(int(f.Arg))
	}
	if len(f.Data) > 0 {
		s += " data=" + hex.EncodeToString(f.Data)
	}
	if f.HasStatus {
		s += " [" + f.Status.String() + "]"
	}
	return s
}
