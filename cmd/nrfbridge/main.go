// nrfbridge listens on an nRF24L01 attached to a Linux host and publishes
// every received payload to an MQTT broker on <topic>/pipe<N>.
//
//	nrfbridge -spi /dev/spidev0.0 -ce GPIO25 -ch 76 -broker test.mosquitto.org:1883
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"os"
	"slices"
	"time"

	mqtt "github.com/soypat/natiu-mqtt"
	"github.com/soypat/nrf24"
	"github.com/soypat/nrf24/nrfspi"
	"github.com/soypat/nrf24/periphbus"
)

func main() {
	spiPath := flag.String("spi", "/dev/spidev0.0", "SPI device.")
	cePin := flag.String("ce", "GPIO25", "CE pin name.")
	csnPin := flag.String("csn", "", "CSN pin name. Empty uses kernel chip select.")
	channel := flag.Uint("ch", 76, "RF channel 0..125.")
	addr := flag.String("addr", "e7e7e7e7e7", "Pipe 0 address in hex, most significant byte first.")
	broker := flag.String("broker", "test.mosquitto.org:1883", "MQTT broker address.")
	topic := flag.String("topic", "nrf24", "MQTT topic prefix.")
	clientID := flag.String("id", "nrfbridge", "MQTT client ID.")
	pollEvery := flag.Duration("poll", 5*time.Millisecond, "RX FIFO poll interval.")
	verbose := flag.Bool("v", false, "Log bus transactions.")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug - 1
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	rc := nrf24.DefaultRadioConfig()
	rc.Channel = uint8(*channel)
	address, err := parseAddress(*addr)
	if err != nil {
		log.Fatal(err)
	}
	rc.AddressWidth = uint8(len(address))
	copy(rc.RxAddrs[0][:], address)
	rc.RxPipes = nrfspi.P0

	pcfg := periphbus.DefaultConfig()
	pcfg.SPI = *spiPath
	pcfg.CE = *cePin
	pcfg.CSN = *csnPin
	pcfg.Logger = logger
	bus, err := periphbus.Open(pcfg)
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	dev := nrf24.New(bus, bus.CE(), bus.CSN())
	standby, err := dev.PowerUp(nrf24.Config{Logger: logger, Radio: &rc})
	if err != nil {
		log.Fatal(err)
	}
	rx, err := standby.Rx()
	if err != nil {
		log.Fatal(err)
	}

	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(*clientID))
	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 1024)},
		OnPub: func(mqtt.Header, mqtt.VariablesPublish, io.Reader) error {
			return nil
		},
	})
	br, err := newBridge(rx, client, *topic, logger)
	if err != nil {
		log.Fatal(err)
	}
	for {
		conn, err := net.Dial("tcp", *broker)
		if err != nil {
			logger.Error("tcp:dial", slog.String("err", err.Error()))
			time.Sleep(5 * time.Second)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = client.Connect(ctx, conn, &varconn)
		cancel()
		if err != nil {
			logger.Error("mqtt:connect", slog.String("err", err.Error()))
			conn.Close()
			time.Sleep(5 * time.Second)
			continue
		}
		logger.Info("mqtt:connected", slog.String("broker", *broker))
		for client.IsConnected() {
			conn.SetDeadline(time.Now().Add(5 * time.Second))
			_, err = br.forward()
			if err != nil && !errors.Is(err, errPublish) {
				log.Fatal(err) // Radio failure.
			}
			time.Sleep(*pollEvery)
		}
		logger.Error("mqtt:disconnected", slog.Any("reason", client.Err()))
		conn.Close()
	}
}

var errPublish = errors.New("publish failed")

type publisher interface {
	PublishPayload(flags mqtt.PacketFlags, vp mqtt.VariablesPublish, payload []byte) error
}

// bridge moves payloads from the RX FIFO to MQTT.
type bridge struct {
	rx       *nrf24.RxMode
	pub      publisher
	flags    mqtt.PacketFlags
	topics   [nrfspi.PipeCount][]byte
	packetID uint16
	logger   *slog.Logger
}

func newBridge(rx *nrf24.RxMode, pub publisher, topic string, logger *slog.Logger) (*bridge, error) {
	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		return nil, err
	}
	b := &bridge{rx: rx, pub: pub, flags: flags, logger: logger}
	for i := range b.topics {
		b.topics[i] = []byte(fmt.Sprintf("%s/pipe%d", topic, i))
	}
	return b, nil
}

// forward drains the RX FIFO and publishes each payload. It returns the
// number of payloads published.
func (b *bridge) forward() (n int, err error) {
	for {
		pipe, ok, err := b.rx.CanRead()
		if err != nil || !ok {
			return n, err
		}
		payload, err := b.rx.Read()
		if errors.Is(err, nrf24.ErrBadPayloadWidth) {
			b.logger.Warn("rx:dropped corrupt payload")
			continue
		} else if err != nil {
			return n, err
		}
		if err = b.rx.ClearInterrupts(nrfspi.StatusRxDR); err != nil {
			return n, err
		}
		b.packetID++
		vp := mqtt.VariablesPublish{TopicName: b.topics[pipe], PacketIdentifier: b.packetID}
		if err = b.pub.PublishPayload(b.flags, vp, payload.Bytes()); err != nil {
			return n, errors.Join(errPublish, err)
		}
		n++
		b.logger.Debug("published", slog.Int("pipe", int(pipe)), slog.Int("len", payload.Len()))
	}
}

func parseAddress(s string) ([]byte, error) {
	addr, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(addr) < nrfspi.MinAddrWidth || len(addr) > nrfspi.MaxAddrWidth {
		return nil, errors.New("address must be 3 to 5 bytes")
	}
	slices.Reverse(addr) // Least significant byte goes first on the wire.
	return addr, nil
}
