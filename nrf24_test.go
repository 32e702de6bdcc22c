package nrf24

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/soypat/nrf24/nrfspi"
)

func TestPowerUpSequence(t *testing.T) {
	d, b := newTestDev(t)
	b.ce = true
	b.csn = false
	_, err := d.PowerUp(Config{})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]byte{
		{0x20, 0x78}, // CONFIG reset value with IRQs masked.
		{0x27, 0x70}, // Clear RX_DR, TX_DS and MAX_RT.
		{0x20, 0x7a}, // PWR_UP.
		{0x03, 0x00}, // SETUP_AW connectivity check.
	}
	if len(b.frames) != len(want) {
		t.Fatalf("got %d frames %#x, want %d", len(b.frames), b.frames, len(want))
	}
	for i := range want {
		if !bytes.Equal(b.frames[i], want[i]) {
			t.Errorf("frame %d: got %#x, want %#x", i, b.frames[i], want[i])
		}
	}
	if b.ce || !b.csn {
		t.Errorf("pins after power up: ce=%v csn=%v", b.ce, b.csn)
	}
	if len(b.sleeps) != 1 || b.sleeps[0] < PowerUpDelay {
		t.Errorf("expected power up delay, got sleeps %v", b.sleeps)
	}
	if !d.Config().PowerUp() || d.Config().PrimRx() {
		t.Error("bad cached config", d.Config())
	}
}

func TestPowerUpRadioConfig(t *testing.T) {
	rc := DefaultRadioConfig()
	rc.Channel = 100
	rc.DataRate = DataRate2M
	d, b, _ := powerUp(t, Config{Radio: &rc})
	if b.regs[nrfspi.AddrRfCh][0] != 100 {
		t.Error("channel not written")
	}
	if nrfspi.RfSetup(b.regs[nrfspi.AddrRfSetup][0]) != nrfspi.RfDRHigh|0b110 {
		t.Errorf("bad RF_SETUP %#x", b.regs[nrfspi.AddrRfSetup][0])
	}
	if got := nrfspi.Config(b.regs[nrfspi.AddrConfig][0]); got != 0x7e || got != d.Config() {
		t.Errorf("chip CONFIG %v, cached %v", got, d.Config())
	}
	if b.regs[nrfspi.AddrFeature][0] != byte(nrfspi.FeatureDPL) || b.regs[nrfspi.AddrDynpd][0] != byte(nrfspi.PAll) {
		t.Error("dynamic payloads not enabled")
	}
	if !bytes.Equal(b.regs[nrfspi.AddrRxAddrP0+1][:], []byte{0xc2, 0xc2, 0xc2, 0xc2, 0xc2}) {
		t.Errorf("bad pipe 1 address %#x", b.regs[nrfspi.AddrRxAddrP0+1])
	}
	if b.regs[nrfspi.AddrRxAddrP0+3][0] != 0xc4 {
		t.Error("bad pipe 3 address")
	}
}

func TestPowerUpNotConnected(t *testing.T) {
	d, b := newTestDev(t)
	b.regs[nrfspi.AddrSetupAw][0] = 0
	_, err := d.PowerUp(Config{})
	if !errors.Is(err, ErrNotConnected) {
		t.Fatal("expected ErrNotConnected, got", err)
	}
	// Failed power up must not leave the Dev held.
	b.regs[nrfspi.AddrSetupAw][0] = 0b11
	if _, err = d.PowerUp(Config{}); err != nil {
		t.Fatal(err)
	}
}

func TestDeviceBusy(t *testing.T) {
	d, _, s := powerUp(t, Config{})
	if _, err := d.PowerUp(Config{}); !errors.Is(err, ErrDeviceBusy) {
		t.Error("expected ErrDeviceBusy, got", err)
	}
	if _, err := NewStandbyMode(d); !errors.Is(err, ErrDeviceBusy) {
		t.Error("expected ErrDeviceBusy, got", err)
	}
	dev, err := s.PowerDown()
	if err != nil {
		t.Fatal(err)
	}
	if dev != Device(d) {
		t.Error("PowerDown returned a different device")
	}
	if d.Config().PowerUp() {
		t.Error("PWR_UP still set after power down")
	}
	if _, err := d.PowerUp(Config{}); err != nil {
		t.Error("power up after power down:", err)
	}
}

func TestPowerUpWriteFailureKeepsCache(t *testing.T) {
	d, b, s := powerUp(t, Config{})
	rx, err := s.Rx()
	if err != nil {
		t.Fatal(err)
	}
	if _, err = rx.Standby().PowerDown(); err != nil {
		t.Fatal(err)
	}
	before := d.Config()
	b.fail = failOp(nrfspi.OpWriteRegister | nrfspi.Opcode(nrfspi.AddrConfig))
	if _, err = d.PowerUp(Config{}); !errors.Is(err, errInjected) {
		t.Fatal("expected injected error, got", err)
	}
	if d.Config() != before || byte(d.Config()) != b.regs[nrfspi.AddrConfig][0] {
		t.Errorf("cache %v diverged from chip %#x", d.Config(), b.regs[nrfspi.AddrConfig][0])
	}
	b.fail = nil
	if _, err = d.PowerUp(Config{}); err != nil {
		t.Error(err)
	}
}

func TestUpdateConfigNoop(t *testing.T) {
	d, b, _ := powerUp(t, Config{})
	err := d.UpdateConfig(func(c *nrfspi.Config) { c.SetPowerUp(true) })
	if err != nil {
		t.Fatal(err)
	}
	if len(b.frames) != 0 {
		t.Errorf("unchanged config caused %d transactions", len(b.frames))
	}
	wasRx, err := UpdateConfig(d, func(c *nrfspi.Config) bool {
		old := c.PrimRx()
		c.SetPrimRx(true)
		return old
	})
	if err != nil || wasRx {
		t.Fatal(wasRx, err)
	}
	if len(b.frames) != 1 || !bytes.Equal(b.frames[0], []byte{0x20, 0x7b}) {
		t.Errorf("expected a single CONFIG write, got %#x", b.frames)
	}
}

func TestUpdateConfigFailureKeepsCache(t *testing.T) {
	d, b, _ := powerUp(t, Config{})
	before := d.Config()
	b.fail = failAll
	err := d.UpdateConfig(func(c *nrfspi.Config) { c.SetPrimRx(true) })
	if !IsTransportError(err) {
		t.Fatal("expected bus error, got", err)
	}
	if d.Config() != before {
		t.Errorf("cache changed on failed write: %v -> %v", before, d.Config())
	}
	_, err = UpdateConfig(d, func(c *nrfspi.Config) int { c.SetPrimRx(true); return 1 })
	if err == nil {
		t.Error("expected error from generic UpdateConfig")
	}
}

func TestBusError(t *testing.T) {
	d, b := newTestDev(t)
	b.fail = failAll
	_, err := d.IsConnected()
	var be *BusError
	if !errors.As(err, &be) {
		t.Fatal("expected *BusError, got", err)
	}
	if be.Op != "R_REGISTER" || !errors.Is(err, errInjected) {
		t.Error("bad bus error", be)
	}
	if !b.csn {
		t.Error("CSN left low after failed transaction")
	}
	if errors.Is(err, ErrMaxRetries) {
		t.Error("bus error must be distinct from max retries")
	}
}

func TestModeTransitions(t *testing.T) {
	d, b, s := powerUp(t, Config{})
	rx, err := s.Rx()
	if err != nil {
		t.Fatal(err)
	}
	if !b.ce || !d.Config().PrimRx() {
		t.Errorf("rx mode: ce=%v config=%v", b.ce, d.Config())
	}
	s = rx.Standby()
	if s == nil || b.ce {
		t.Fatal("standby must drive CE low")
	}
	if !d.Config().PrimRx() {
		t.Error("rx->standby should not touch CONFIG")
	}
	tx, err := s.Tx()
	if err != nil {
		t.Fatal(err)
	}
	if b.ce || d.Config().PrimRx() {
		t.Errorf("tx mode: ce=%v config=%v", b.ce, d.Config())
	}
	s, err = tx.Standby()
	if err != nil {
		t.Fatal(err)
	}
	if b.ce {
		t.Error("CE high in standby")
	}
	if _, err = s.PowerDown(); err != nil {
		t.Fatal(err)
	}
}

func TestFailedTransitionKeepsSource(t *testing.T) {
	_, b, s := powerUp(t, Config{})
	b.fail = failAll
	if _, err := s.Rx(); !IsTransportError(err) {
		t.Fatal("expected bus error, got", err)
	}
	b.fail = nil
	if _, err := s.Rx(); err != nil {
		t.Fatal("standby should still be usable:", err)
	}
}

func TestReleasedMode(t *testing.T) {
	_, b, s := powerUp(t, Config{})
	rx, err := s.Rx()
	if err != nil {
		t.Fatal(err)
	}
	s2 := rx.Standby()
	tx, err := s2.Tx()
	if err != nil {
		t.Fatal(err)
	}
	b.frames = nil
	rc := DefaultRadioConfig()
	for name, call := range map[string]func() error{
		"standby.Rx":        func() error { _, err := s.Rx(); return err },
		"standby.Tx":        func() error { _, err := s.Tx(); return err },
		"standby.PowerDown": func() error { _, err := s.PowerDown(); return err },
		"standby.Status":    func() error { _, err := s.Status(); return err },
		"standby.Configure": func() error { return s.Configure(rc) },
		"standby.Clear":     func() error { return s.ClearInterrupts(nrfspi.StatusClearIRQs) },
		"rx.CanRead":        func() error { _, _, err := rx.CanRead(); return err },
		"rx.Read":           func() error { _, err := rx.Read(); return err },
		"rx.IsEmpty":        func() error { _, err := rx.IsEmpty(); return err },
		"rx.IsFull":         func() error { _, err := rx.IsFull(); return err },
		"rx.FlushRx":        rx.FlushRx,
		"rx.ReceivedPower":  func() error { _, err := rx.ReceivedPower(); return err },
		"rx.AckPayload":     func() error { return rx.WriteAckPayload(1, []byte{1}) },
		"s2.Rx":             func() error { _, err := s2.Rx(); return err },
		"s2.FIFOStatus":     func() error { _, err := s2.FIFOStatus(); return err },
		"rx.ReadRegister":   func() error { _, _, err := rx.ReadRegister(nrfspi.AddrRfCh, 1); return err },
		"s.WriteRegister":   func() error { _, err := s.WriteRegister(nrfspi.RfCh(2)); return err },
	} {
		if err := call(); !errors.Is(err, ErrModeReleased) {
			t.Errorf("%s: expected ErrModeReleased, got %v", name, err)
		}
	}
	if rx.Standby() != nil {
		t.Error("released rx returned a standby")
	}
	if len(b.frames) != 0 {
		t.Errorf("released modes touched the bus: %#x", b.frames)
	}
	// The live mode is unaffected.
	if _, err := tx.Enqueue([]byte{1}); err != nil {
		t.Error(err)
	}
}

func TestModeRegisterAccess(t *testing.T) {
	d, b, s := powerUp(t, Config{})
	tx, err := s.Tx()
	if err != nil {
		t.Fatal(err)
	}
	if _, err = tx.WriteRegister(nrfspi.RfCh(40)); err != nil {
		t.Fatal(err)
	}
	_, data, err := tx.ReadRegister(nrfspi.AddrRfCh, 1)
	if err != nil || !bytes.Equal(data, []byte{40}) {
		t.Errorf("RF_CH read back %#x, %v", data, err)
	}
	b.frames = nil
	cfg := d.Config()
	cfg.SetPrimRx(true)
	if _, err = tx.WriteRegister(cfg); !errors.Is(err, errConfigOwned) {
		t.Error("expected CONFIG write refused, got", err)
	}
	if len(b.frames) != 0 || d.Config().PrimRx() {
		t.Error("refused CONFIG write reached the chip")
	}
}

func TestCanRead(t *testing.T) {
	_, b, s := powerUp(t, Config{})
	rx, err := s.Rx()
	if err != nil {
		t.Fatal(err)
	}
	var pending nrfspi.Status = 0x0e
	pending.SetRxPipe(2)
	pending.SetRxDR(true)
	var stale nrfspi.Status = 0x0e
	stale.SetRxPipe(2)
	b.polls = []poll{
		{status: pending, fifo: nrfspi.FIFOTxEmpty},
		// Pipe field not yet cleared but the FIFO is drained.
		{status: stale, fifo: nrfspi.FIFOReset},
		{status: 0x0e, fifo: nrfspi.FIFOReset},
	}
	b.frames = nil
	pipe, ok, err := rx.CanRead()
	if err != nil || !ok || pipe != 2 {
		t.Errorf("got pipe=%d ok=%v err=%v", pipe, ok, err)
	}
	for i := 0; i < 2; i++ {
		if pipe, ok, err = rx.CanRead(); ok || err != nil {
			t.Errorf("empty FIFO: pipe=%d ok=%v err=%v", pipe, ok, err)
		}
	}
	fifoRead := nrfspi.OpReadRegister | nrfspi.Opcode(nrfspi.AddrFIFOStatus)
	if len(b.frames) != 3 || b.count(fifoRead) != 3 {
		t.Errorf("expected one FIFO_STATUS read per call, got %#x", b.frames)
	}
	b.status = pending
	if err := rx.ClearInterrupts(nrfspi.StatusRxDR); err != nil || b.status.RxDR() {
		t.Error("RX_DR not cleared", err)
	}
}

func TestRead(t *testing.T) {
	_, b, s := powerUp(t, Config{})
	rx, err := s.Rx()
	if err != nil {
		t.Fatal(err)
	}
	b.rx = [][]byte{[]byte("hello")}
	b.frames = nil
	p, err := rx.Read()
	if err != nil {
		t.Fatal(err)
	}
	if string(p.Bytes()) != "hello" {
		t.Errorf("got payload %q", p.Bytes())
	}
	if len(b.frames) != 2 || !bytes.Equal(b.frames[0], []byte{0x60, 0}) || len(b.frames[1]) != 6 || b.frames[1][0] != 0x61 {
		t.Errorf("bad read frames %#x", b.frames)
	}
}

func TestReadBadWidth(t *testing.T) {
	_, b, s := powerUp(t, Config{})
	rx, err := s.Rx()
	if err != nil {
		t.Fatal(err)
	}
	b.rx = [][]byte{[]byte("junk")}
	b.badWidth = 40
	_, err = rx.Read()
	if !errors.Is(err, ErrBadPayloadWidth) {
		t.Fatal("expected ErrBadPayloadWidth, got", err)
	}
	if b.count(nrfspi.OpFlushRx) != 1 || len(b.rx) != 0 {
		t.Error("RX FIFO not flushed")
	}
}

func TestRxExtras(t *testing.T) {
	_, b, s := powerUp(t, Config{})
	rx, err := s.Rx()
	if err != nil {
		t.Fatal(err)
	}
	b.regs[nrfspi.AddrRPD][0] = 1
	if rpd, err := rx.ReceivedPower(); err != nil || !rpd {
		t.Errorf("RPD: got %v, %v", rpd, err)
	}
	b.rx = [][]byte{{1}, {2}}
	if err = rx.FlushRx(); err != nil || len(b.rx) != 0 {
		t.Error("RX FIFO not flushed", err)
	}
	b.frames = nil
	if err = rx.WriteAckPayload(3, []byte{0xaa, 0xbb}); err != nil {
		t.Fatal(err)
	}
	if len(b.frames) != 1 || !bytes.Equal(b.frames[0], []byte{0xab, 0xaa, 0xbb}) {
		t.Errorf("bad ACK payload frame %#x", b.frames)
	}
}

func TestFlushQueue(t *testing.T) {
	_, b, s := powerUp(t, Config{})
	tx, err := s.Tx()
	if err != nil {
		t.Fatal(err)
	}
	status, err := tx.Enqueue([]byte("ping"))
	if err != nil || status.TxFull() {
		t.Fatal(status, err)
	}
	b.frames = nil
	b.polls = []poll{
		{status: 0x0e, fifo: nrfspi.FIFORxEmpty},
		{status: 0x0e, fifo: nrfspi.FIFORxEmpty},
		{status: 0x2e, fifo: nrfspi.FIFOReset},
	}
	edges := b.ceHigh
	if err = tx.FlushQueue(); err != nil {
		t.Fatal(err)
	}
	if got := b.count(nrfspi.OpReadRegister | nrfspi.Opcode(nrfspi.AddrFIFOStatus)); got != 3 {
		t.Errorf("expected 3 FIFO_STATUS polls, got %d", got)
	}
	if b.ceHigh != edges+1 || b.ce {
		t.Errorf("CE must pulse high once and end low: edges=%d ce=%v", b.ceHigh-edges, b.ce)
	}
	if len(b.sleeps) != 1 || b.sleeps[0] < SettleDelay {
		t.Errorf("expected settle delay, got %v", b.sleeps)
	}
}

func TestFlushQueueMaxRetries(t *testing.T) {
	_, b, s := powerUp(t, Config{})
	tx, err := s.Tx()
	if err != nil {
		t.Fatal(err)
	}
	b.polls = []poll{
		{status: 0x0e, fifo: nrfspi.FIFORxEmpty},
		{status: 0x1e, fifo: nrfspi.FIFORxEmpty},
	}
	err = tx.FlushQueue()
	if !errors.Is(err, ErrMaxRetries) {
		t.Fatal("expected ErrMaxRetries, got", err)
	}
	if IsTransportError(err) {
		t.Error("max retries reported as transport error")
	}
	if got := b.count(nrfspi.OpReadRegister | nrfspi.Opcode(nrfspi.AddrFIFOStatus)); got != 2 {
		t.Errorf("expected 2 polls, got %d", got)
	}
	w := b.writes(nrfspi.AddrStatus)
	if len(w) != 1 || !bytes.Equal(w[0], []byte{0x30}) {
		t.Errorf("expected one STATUS write of 0x30, got %#x", w)
	}
	if b.ce || b.status.MaxRT() {
		t.Errorf("ce=%v status=%v", b.ce, b.status)
	}
}

func TestFlushQueueTimeout(t *testing.T) {
	_, b, s := powerUp(t, Config{FlushTimeout: 5 * time.Millisecond})
	tx, err := s.Tx()
	if err != nil {
		t.Fatal(err)
	}
	b.regs[nrfspi.AddrFIFOStatus][0] = byte(nrfspi.FIFORxEmpty) // TX never drains.
	if err = tx.FlushQueue(); !errors.Is(err, ErrFlushTimeout) {
		t.Fatal("expected ErrFlushTimeout, got", err)
	}
	if b.ce {
		t.Error("CE high after timeout")
	}
}

func TestFlushQueueBusError(t *testing.T) {
	_, b, s := powerUp(t, Config{})
	tx, err := s.Tx()
	if err != nil {
		t.Fatal(err)
	}
	b.fail = failAll
	if err = tx.FlushQueue(); !IsTransportError(err) {
		t.Fatal("expected bus error, got", err)
	}
	if b.ce {
		t.Error("CE high after bus error")
	}
}

func TestTxStandbyFallback(t *testing.T) {
	_, b, s := powerUp(t, Config{})
	tx, err := s.Tx()
	if err != nil {
		t.Fatal(err)
	}
	b.polls = []poll{{status: 0x1e, fifo: nrfspi.FIFORxEmpty}}
	s, err = tx.Standby()
	if err != nil || s == nil {
		t.Fatal("fallback flush should succeed:", err)
	}
	if b.count(nrfspi.OpFlushTx) != 1 || b.ce {
		t.Errorf("flushes=%d ce=%v", b.count(nrfspi.OpFlushTx), b.ce)
	}
}

func TestTxStandbyFallbackFails(t *testing.T) {
	_, b, s := powerUp(t, Config{})
	tx, err := s.Tx()
	if err != nil {
		t.Fatal(err)
	}
	b.fail = failAll
	s, err = tx.Standby()
	if s != nil || !errors.Is(err, errInjected) {
		t.Fatal("expected error, got", s, err)
	}
	if b.ce {
		t.Error("CE high after failed standby")
	}
	// TxMode stays live so the caller can retry.
	b.fail = nil
	if s, err = tx.Standby(); err != nil || s == nil {
		t.Fatal("retry failed:", err)
	}
}

func TestEnqueue(t *testing.T) {
	_, b, s := powerUp(t, Config{})
	tx, err := s.Tx()
	if err != nil {
		t.Fatal(err)
	}
	if _, err = tx.Enqueue(make([]byte, 33)); !errors.Is(err, nrfspi.ErrPayloadTooLong) {
		t.Error("expected ErrPayloadTooLong, got", err)
	}
	if len(b.frames) != 0 {
		t.Error("oversized payload reached the bus")
	}
	if _, err = tx.EnqueueNoAck([]byte{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err = tx.ReuseLast(); err != nil {
		t.Fatal(err)
	}
	if err = tx.FlushTx(); err != nil {
		t.Fatal(err)
	}
	want := [][]byte{{0xb0, 1, 2}, {0xe3}, {0xe1}}
	for i := range want {
		if !bytes.Equal(b.frames[i], want[i]) {
			t.Errorf("frame %d: got %#x, want %#x", i, b.frames[i], want[i])
		}
	}
	b.regs[nrfspi.AddrObserveTx][0] = 0x35
	obs, err := tx.Observe()
	if err != nil || obs.LostPackets() != 3 || obs.Retransmits() != 5 {
		t.Errorf("observe: %v %v", obs, err)
	}
}

func TestConfigureValidation(t *testing.T) {
	for _, tc := range []struct {
		name string
		mod  func(*RadioConfig)
		ok   bool
	}{
		{"default", func(*RadioConfig) {}, true},
		{"channel 125", func(rc *RadioConfig) { rc.Channel = 125 }, true},
		{"channel 126", func(rc *RadioConfig) { rc.Channel = 126 }, false},
		{"width 2", func(rc *RadioConfig) { rc.AddressWidth = 2 }, false},
		{"width 3", func(rc *RadioConfig) { rc.AddressWidth = 3 }, true},
		{"width 6", func(rc *RadioConfig) { rc.AddressWidth = 6 }, false},
		{"delay 4ms", func(rc *RadioConfig) { rc.AutoRetransmitDelay = 4 * time.Millisecond }, true},
		{"delay 300us", func(rc *RadioConfig) { rc.AutoRetransmitDelay = 300 * time.Microsecond }, false},
		{"delay 0", func(rc *RadioConfig) { rc.AutoRetransmitDelay = 0 }, false},
		{"count 16", func(rc *RadioConfig) { rc.AutoRetransmitCount = 16 }, false},
		{"payload 33", func(rc *RadioConfig) { rc.PayloadWidth = 33 }, false},
		{"ack without crc", func(rc *RadioConfig) { rc.CRC = CRCDisabled }, false},
		{"no ack no crc", func(rc *RadioConfig) { rc.CRC = CRCDisabled; rc.AutoAck = 0 }, true},
		{"bad rate", func(rc *RadioConfig) { rc.DataRate = 7 }, false},
	} {
		d, b, _ := powerUp(t, Config{})
		rc := DefaultRadioConfig()
		tc.mod(&rc)
		err := Configure(d, rc)
		if tc.ok != (err == nil) {
			t.Errorf("%s: got err=%v", tc.name, err)
		}
		if !tc.ok && len(b.frames) != 0 {
			t.Errorf("%s: invalid config reached the bus", tc.name)
		}
	}
}

func TestConfigureKeepsMode(t *testing.T) {
	d, b, s := powerUp(t, Config{})
	rx, err := s.Rx()
	if err != nil {
		t.Fatal(err)
	}
	rc := DefaultRadioConfig()
	rc.CRC = CRC1Byte
	if err = rx.Configure(rc); err != nil {
		t.Fatal(err)
	}
	c := d.Config()
	if !c.PrimRx() || !c.PowerUp() || c.CRCO() || !c.EnCRC() {
		t.Errorf("bad config after Configure: %v", c)
	}
	if nrfspi.Config(b.regs[nrfspi.AddrConfig][0]) != c {
		t.Error("chip and cached config diverged")
	}
	if !b.ce {
		t.Error("Configure dropped CE in rx mode")
	}
}

func TestTraceLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: levelTrace}))
	_, b, s := powerUp(t, Config{Logger: logger})
	if _, err := s.Tx(); err != nil {
		t.Fatal(err)
	}
	b.fail = failAll
	d := New(b, b.setCE, b.setCSN)
	d.logstate = newLogstate(logger)
	d.IsConnected()
	log := buf.String()
	for _, want := range []string{"PowerUp:done", "spi:tx", "op=W_REGISTER", "mode:transition", "to=tx", "level=ERROR"} {
		if !strings.Contains(log, want) {
			t.Errorf("log missing %q", want)
		}
	}
	if newLogstate(nil)._traceenabled {
		t.Error("nil logger must not trace")
	}
}
