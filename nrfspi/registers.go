package nrfspi

import (
	"strconv"

	"golang.org/x/exp/constraints"
)

// Register is a chip register that can be written with W_REGISTER.
type Register interface {
	// Addr is the 5 bit register address.
	Addr() uint8
	// Len is the number of data bytes the register occupies on the wire.
	Len() int
	// Encode writes the register value into dst[:Len()].
	Encode(dst []byte)
}

// RegisterDecoder is a Register that can also be decoded from the bytes
// returned by R_REGISTER. Decode must not depend on the receiver's value other
// than through Addr and Len, so that the zero value of single byte registers
// can be used as a template.
type RegisterDecoder[R any] interface {
	Register
	Decode(src []byte) R
}

func setbit[T constraints.Unsigned](v *T, mask T, b bool) {
	if b {
		*v |= mask
	} else {
		*v &^= mask
	}
}

func setfield[T constraints.Unsigned](v *T, shift, width uint, val T) {
	mask := T(1)<<width - 1
	*v = *v&^(mask<<shift) | (val&mask)<<shift
}

// flags renders the bits selected by mask in the format given by f. Every '+'
// in f is replaced by '+' or '-' depending on the next set bit of mask
// starting from the most significant one.
func flags(f string, mask, b byte) string {
	buf := make([]byte, len(f))
	m := byte(0x80)
	for i := range buf {
		if f[i] != '+' {
			buf[i] = f[i]
			continue
		}
		for mask&m == 0 {
			m >>= 1
		}
		if b&m == 0 {
			buf[i] = '-'
		} else {
			buf[i] = '+'
		}
		m >>= 1
	}
	return string(buf)
}

// Config is the CONFIG register.
type Config uint8

const (
	ConfigPrimRx    Config = 1 << iota // RX/TX control 1: PRX, 0: PTX.
	ConfigPwrUp                        // 1: power up, 0: power down.
	ConfigCRCO                         // CRC encoding scheme 0: one byte, 1: two bytes.
	ConfigEnCRC                        // Enable CRC. Forced high if any bit of EN_AA is set.
	ConfigMaskMaxRT                    // Mask interrupt caused by MAX_RT.
	ConfigMaskTxDS                     // Mask interrupt caused by TX_DS.
	ConfigMaskRxDR                     // Mask interrupt caused by RX_DR.

	// ConfigReset is the value of CONFIG after power on reset.
	ConfigReset = ConfigEnCRC
)

func (Config) Addr() uint8 { return AddrConfig }
func (Config) Len() int { return 1 }
func (c Config) Encode(dst []byte) { dst[0] = byte(c) }
func (Config) Decode(src []byte) Config { return Config(src[0]) }
func (c Config) PrimRx() bool { return c&ConfigPrimRx != 0 }
func (c Config) PowerUp() bool { return c&ConfigPwrUp != 0 }
func (c Config) CRCO() bool { return c&ConfigCRCO != 0 }
func (c Config) EnCRC() bool { return c&ConfigEnCRC != 0 }
func (c Config) MaskMaxRT() bool { return c&ConfigMaskMaxRT != 0 }
func (c Config) MaskTxDS() bool { return c&ConfigMaskTxDS != 0 }
func (c Config) MaskRxDR() bool { return c&ConfigMaskRxDR != 0 }
func (c *Config) SetPrimRx(b bool) { setbit(c, ConfigPrimRx, b) }
func (c *Config) SetPowerUp(b bool) { setbit(c, ConfigPwrUp, b) }
func (c *Config) SetCRCO(b bool) { setbit(c, ConfigCRCO, b) }
func (c *Config) SetEnCRC(b bool) { setbit(c, ConfigEnCRC, b) }
func (c *Config) SetMaskMaxRT(b bool) { setbit(c, ConfigMaskMaxRT, b) }
func (c *Config) SetMaskTxDS(b bool) { setbit(c, ConfigMaskTxDS, b) }
func (c *Config) SetMaskRxDR(b bool) { setbit(c, ConfigMaskRxDR, b) }

func (c Config) String() string {
	return flags("Mask(RxDR+ TxDS+ MaxRT+) EnCRC+ CRCO+ PwrUp+ PrimRx+", 0x7f, byte(c))
}

// Status is the STATUS register. The chip shifts it out as the first byte of
// every transaction. Writing a 1 to RX_DR, TX_DS or MAX_RT clears that flag.
type Status uint8

const (
	StatusTxFull Status = 1 << 0 // TX FIFO full.
	StatusMaxRT  Status = 1 << 4 // Maximum number of TX retransmits interrupt.
	StatusTxDS   Status = 1 << 5 // Data sent interrupt.
	StatusRxDR   Status = 1 << 6 // Data ready interrupt.

	// StatusClearIRQs clears every interrupt flag when written.
	StatusClearIRQs = StatusRxDR | StatusTxDS | StatusMaxRT

	// RxPipeEmpty is the RX_P_NO value reported while the RX FIFO is empty.
	RxPipeEmpty = 0b111
)

func (Status) Addr() uint8 { return AddrStatus }
func (Status) Len() int { return 1 }
func (s Status) Encode(dst []byte) { dst[0] = byte(s) }
func (Status) Decode(src []byte) Status { return Status(src[0]) }
func (s Status) TxFull() bool { return s&StatusTxFull != 0 }
func (s Status) MaxRT() bool { return s&StatusMaxRT != 0 }
func (s Status) TxDS() bool { return s&StatusTxDS != 0 }
func (s Status) RxDR() bool { return s&StatusRxDR != 0 }
func (s *Status) SetMaxRT(b bool) { setbit(s, StatusMaxRT, b) }
func (s *Status) SetTxDS(b bool) { setbit(s, StatusTxDS, b) }
func (s *Status) SetRxDR(b bool) { setbit(s, StatusRxDR, b) }

// RxPipe is the data pipe number of the payload at the head of the RX FIFO,
// or RxPipeEmpty.
func (s Status) RxPipe() uint8 { return uint8(s>>1) & 0b111 }

func (s *Status) SetRxPipe(pipe uint8) { setfield(s, 1, 3, Status(pipe)) }

func (s Status) String() string {
	return flags("RxDR+ TxDS+ MaxRT+ TxFull+ RxPipe:", 0x71, byte(s)) +
		strconv.Itoa(int(s.RxPipe()))
}

// FIFOStatus is the FIFO_STATUS register.
type FIFOStatus uint8

const (
	FIFORxEmpty FIFOStatus = 1 << 0
	FIFORxFull  FIFOStatus = 1 << 1
	FIFOTxEmpty FIFOStatus = 1 << 4
	FIFOTxFull  FIFOStatus = 1 << 5
	FIFOTxReuse FIFOStatus = 1 << 6

	// FIFOReset is the value of FIFO_STATUS with both queues empty.
	FIFOReset = FIFORxEmpty | FIFOTxEmpty
)

func (FIFOStatus) Addr() uint8 { return AddrFIFOStatus }
func (FIFOStatus) Len() int { return 1 }
func (f FIFOStatus) Encode(dst []byte) { dst[0] = byte(f) }
func (FIFOStatus) Decode(src []byte) FIFOStatus { return FIFOStatus(src[0]) }
func (f FIFOStatus) RxEmpty() bool { return f&FIFORxEmpty != 0 }
func (f FIFOStatus) RxFull() bool { return f&FIFORxFull != 0 }
func (f FIFOStatus) TxEmpty() bool { return f&FIFOTxEmpty != 0 }
func (f FIFOStatus) TxFull() bool { return f&FIFOTxFull != 0 }
func (f FIFOStatus) TxReuse() bool { return f&FIFOTxReuse != 0 }

func (f FIFOStatus) String() string {
	return flags("TxReuse+ TxFull+ TxEmpty+ RxFull+ RxEmpty+", 0x73, byte(f))
}

// Pipes is a bitfield with one bit per RX data pipe. It is the layout of
// EN_AA, EN_RXADDR and DYNPD.
type Pipes uint8

const (
	P0 Pipes = 1 << iota
	P1
	P2
	P3
	P4
	P5
	PAll = P0 | P1 | P2 | P3 | P4 | P5
)

// Pipe returns the bit of pipe n.
func Pipe(n uint8) Pipes {
	checkPipe(n)
	return 1 << n
}

func (p Pipes) Has(n uint8) bool { return n < PipeCount && p&(1<<n) != 0 }

func (p Pipes) String() string {
	return flags("P5+ P4+ P3+ P2+ P1+ P0+", 0x3f, byte(p))
}

// EnAA is the EN_AA register (Enhanced ShockBurst auto acknowledgement).
type EnAA Pipes

func (EnAA) Addr() uint8 { return AddrEnAA }
func (EnAA) Len() int { return 1 }
func (e EnAA) Encode(dst []byte) { dst[0] = byte(e) }
func (EnAA) Decode(src []byte) EnAA { return EnAA(src[0]) }
func (e EnAA) String() string { return "EN_AA " + Pipes(e).String() }

// EnRxAddr is the EN_RXADDR register.
type EnRxAddr Pipes

func (EnRxAddr) Addr() uint8 { return AddrEnRxAddr }
func (EnRxAddr) Len() int { return 1 }
func (e EnRxAddr) Encode(dst []byte) { dst[0] = byte(e) }
func (EnRxAddr) Decode(src []byte) EnRxAddr { return EnRxAddr(src[0]) }
func (e EnRxAddr) String() string { return "EN_RXADDR " + Pipes(e).String() }

// Dynpd is the DYNPD register enabling dynamic payload length per pipe.
type Dynpd Pipes

func (Dynpd) Addr() uint8 { return AddrDynpd }
func (Dynpd) Len() int { return 1 }
func (d Dynpd) Encode(dst []byte) { dst[0] = byte(d) }
func (Dynpd) Decode(src []byte) Dynpd { return Dynpd(src[0]) }
func (d Dynpd) String() string { return "DYNPD " + Pipes(d).String() }

// SetupAw is the SETUP_AW register.
type SetupAw uint8

// NewSetupAw returns the SETUP_AW value for an address width of w bytes.
// Widths outside 3..5 encode the illegal value 0.
func NewSetupAw(w int) SetupAw {
	if w < MinAddrWidth || w > MaxAddrWidth {
		return 0
	}
	return SetupAw(w - 2)
}

func (SetupAw) Addr() uint8 { return AddrSetupAw }
func (SetupAw) Len() int { return 1 }
func (s SetupAw) Encode(dst []byte) { dst[0] = byte(s) }
func (SetupAw) Decode(src []byte) SetupAw { return SetupAw(src[0]) }

// Width returns the address width in bytes, or 0 for the illegal setting.
func (s SetupAw) Width() int {
	aw := int(s & 0b11)
	if aw == 0 {
		return 0
	}
	return aw + 2
}

// Valid reports whether the register holds a legal address width.
func (s SetupAw) Valid() bool {
	w := s.Width()
	return w >= MinAddrWidth && w <= MaxAddrWidth
}

// SetupRetr is the SETUP_RETR register.
type SetupRetr uint8

// NewSetupRetr encodes an auto retransmit delay in microseconds (250..4000,
// rounded down to a multiple of 250) and count (0..15).
func NewSetupRetr(delayus, count int) SetupRetr {
	ard := delayus/250 - 1
	if ard < 0 {
		ard = 0
	} else if ard > 15 {
		ard = 15
	}
	if count < 0 {
		count = 0
	} else if count > 15 {
		count = 15
	}
	return SetupRetr(ard<<4 | count)
}

func (SetupRetr) Addr() uint8 { return AddrSetupRetr }
func (SetupRetr) Len() int { return 1 }
func (s SetupRetr) Encode(dst []byte) { dst[0] = byte(s) }
func (SetupRetr) Decode(src []byte) SetupRetr { return SetupRetr(src[0]) }
func (s SetupRetr) Count() int { return int(s & 0xf) }
func (s SetupRetr) DelayMicros() int { return (int(s>>4) + 1) * 250 }

// RfCh is the RF_CH register. The channel frequency is 2400+RfCh MHz. Bit 7
// is reserved and must be written as 0; valid channels are 0..125.
type RfCh uint8

func (RfCh) Addr() uint8 { return AddrRfCh }
func (RfCh) Len() int { return 1 }
func (r RfCh) Encode(dst []byte) { dst[0] = byte(r) }
func (RfCh) Decode(src []byte) RfCh { return RfCh(src[0]) }

// RfSetup is the RF_SETUP register.
type RfSetup uint8

const (
	RfLNAHC  RfSetup = 1 << 0 // LNA gain (nRF24L01 only).
	RfDRHigh RfSetup = 1 << 3 // Select 2Mbps.
	RfPLL    RfSetup = 1 << 4 // Force PLL lock, test only.
	RfDRLow  RfSetup = 1 << 5 // Select 250kbps.
	RfWave   RfSetup = 1 << 7 // Continuous carrier transmit.
)

func (RfSetup) Addr() uint8 { return AddrRfSetup }
func (RfSetup) Len() int { return 1 }
func (r RfSetup) Encode(dst []byte) { dst[0] = byte(r) }
func (RfSetup) Decode(src []byte) RfSetup { return RfSetup(src[0]) }

// Power returns the RF output power level 0 (-18dBm) to 3 (0dBm).
func (r RfSetup) Power() uint8 { return uint8(r>>1) & 0b11 }

func (r *RfSetup) SetPower(level uint8) { setfield(r, 1, 2, RfSetup(level)) }

func (r RfSetup) String() string {
	return flags("Wave+ DRLow+ Lock+ DRHigh+ LNAHC+ Pwr:", 0xb9, byte(r)) +
		strconv.Itoa(3*2*int(r.Power())-18) + "dBm"
}

// ObserveTx is the OBSERVE_TX register holding transmit counters.
type ObserveTx uint8

func (ObserveTx) Addr() uint8 { return AddrObserveTx }
func (ObserveTx) Len() int { return 1 }
func (o ObserveTx) Encode(dst []byte) { dst[0] = byte(o) }
func (ObserveTx) Decode(src []byte) ObserveTx { return ObserveTx(src[0]) }

// LostPackets counts packets lost after MAX_RT. Reset by writing RF_CH.
func (o ObserveTx) LostPackets() int { return int(o >> 4) }

// Retransmits counts retransmissions of the current packet.
func (o ObserveTx) Retransmits() int { return int(o & 0xf) }

func (o ObserveTx) String() string {
	return "PLOS:" + strconv.Itoa(o.LostPackets()) + " ARC:" + strconv.Itoa(o.Retransmits())
}

// RPD is the received power detector register.
type RPD uint8

func (RPD) Addr() uint8 { return AddrRPD }
func (RPD) Len() int { return 1 }
func (r RPD) Encode(dst []byte) { dst[0] = byte(r) }
func (RPD) Decode(src []byte) RPD { return RPD(src[0]) }

// Detected reports received power above -64dBm.
func (r RPD) Detected() bool { return r&1 != 0 }

// Feature is the FEATURE register.
type Feature uint8

const (
	FeatureDynAck Feature = 1 << iota // Enables W_TX_PAYLOAD_NOACK.
	FeatureAckPay                     // Enables payload with ACK.
	FeatureDPL                        // Enables dynamic payload length.
)

func (Feature) Addr() uint8 { return AddrFeature }
func (Feature) Len() int { return 1 }
func (f Feature) Encode(dst []byte) { dst[0] = byte(f) }
func (Feature) Decode(src []byte) Feature { return Feature(src[0]) }

func (f Feature) String() string {
	return flags("DPL+ AckPay+ DynAck+", 7, byte(f))
}

// RxAddr is one of the RX_ADDR_Pn registers. Pipes 0 and 1 hold a full
// address of Width bytes, pipes 2..5 hold only the least significant byte and
// share the rest with pipe 1. Address is least significant byte first, as on
// the wire. Decode fills the first Len bytes and leaves the rest as they are
// in the receiver.
type RxAddr struct {
	Pipe    uint8
	Width   uint8
	Address [MaxAddrWidth]byte
}

func (r RxAddr) Addr() uint8 {
	checkPipe(r.Pipe)
	return AddrRxAddrP0 + r.Pipe
}

func (r RxAddr) Len() int {
	if r.Pipe > 1 {
		return 1
	}
	return addrLen(r.Width)
}

func (r RxAddr) Encode(dst []byte) { copy(dst[:r.Len()], r.Address[:]) }

func (r RxAddr) Decode(src []byte) RxAddr {
	copy(r.Address[:r.Len()], src)
	return r
}

// TxAddr is the TX_ADDR register. Decode behaves as RxAddr's.
type TxAddr struct {
	Width   uint8
	Address [MaxAddrWidth]byte
}

func (TxAddr) Addr() uint8 { return AddrTxAddr }
func (t TxAddr) Len() int { return addrLen(t.Width) }
func (t TxAddr) Encode(dst []byte) { copy(dst[:t.Len()], t.Address[:]) }

func (t TxAddr) Decode(src []byte) TxAddr {
	copy(t.Address[:t.Len()], src)
	return t
}

// RxPw is one of the RX_PW_Pn registers: static payload width of a pipe.
// Bits 6 and 7 are reserved; valid widths are 0..MaxPayloadLen.
type RxPw struct {
	Pipe  uint8
	Width uint8
}

func (r RxPw) Addr() uint8 {
	checkPipe(r.Pipe)
	return AddrRxPwP0 + r.Pipe
}
func (RxPw) Len() int { return 1 }
func (r RxPw) Encode(dst []byte) { dst[0] = r.Width }

func (r RxPw) Decode(src []byte) RxPw {
	r.Width = src[0]
	return r
}

func addrLen(w uint8) int {
	if w < MinAddrWidth || w > MaxAddrWidth {
		return MaxAddrWidth
	}
	return int(w)
}

func checkPipe(n uint8) {
	if n >= PipeCount {
		panic("nrfspi: pipe number out of range")
	}
}
