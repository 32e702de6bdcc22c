package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/soypat/nrf24/nrfspi"
	"github.com/soypat/saleae"
	"github.com/soypat/saleae/analyzers"
	"golang.org/x/exp/constraints"
)

type Filter struct {
	OmitNop   bool
	OmitRead  bool
	OmitWrite bool
	// MaxFrame truncates frames longer than this many bytes. Zero keeps all.
	MaxFrame int
}

func main() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(handler))
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "nrfanalyze - Decode Saleae digital binary captures of nRF24L01 SPI transactions.\n\tUsage:\n")
		flag.PrintDefaults()
	}
	mosi := flag.String("f-mosi", "digital_1.bin", "Input filename: SPI MOSI data.")
	miso := flag.String("f-miso", "digital_3.bin", "Input filename: SPI MISO data.")
	csn := flag.String("f-csn", "digital_0.bin", "Input filename: SPI CSN data.")
	clk := flag.String("f-clk", "digital_2.bin", "Input filename: SPI clock data.")
	output := flag.String("o", "commands.txt", "Output filename of nRF24 command listing. Use - for stdout.")
	omitNop := flag.Bool("omit-nop", false, "Omit NOP (status poll) commands.")
	omitRead := flag.Bool("omit-read", false, "Omit commands that read data from the chip.")
	omitWrite := flag.Bool("omit-write", false, "Omit commands that write data to the chip.")
	maxFrame := flag.Int("max-frame", 0, "Truncate frames to n bytes; glitches on CSN can merge frames.")
	flag.Parse()
	f := Filter{
		OmitNop:   *omitNop,
		OmitRead:  *omitRead,
		OmitWrite: *omitWrite,
		MaxFrame:  *maxFrame,
	}
	if f.OmitRead && f.OmitWrite {
		log.Fatal("cannot omit both read and write commands")
	}
	start := time.Now()
	txs, err := processSpiFiles(*mosi, *miso, *clk, *csn)
	if errors.Is(err, errScanIncomplete) && len(txs) > 0 {
		// Truncated captures are common; list what was decoded.
		slog.Warn("scan:incomplete", slog.String("err", err.Error()))
	} else if err != nil {
		log.Fatal(err.Error())
	}
	slog.Debug("scan", slog.Int("transactions", len(txs)))
	var w io.Writer = os.Stdout
	if *output != "-" {
		fp, err := os.Create(*output)
		if err != nil {
			log.Fatal(err.Error())
		}
		defer fp.Close()
		w = fp
	}
	if err = f.write(w, f.process(txs)); err != nil {
		log.Fatal(err.Error())
	}
	log.Println("finished in", time.Since(start))
}

// rawtx is one CSN-delimited transaction.
type rawtx struct {
	MOSI  []byte
	MISO  []byte
	Start float64
}

type nrftx struct {
	Num   int
	Frame nrfspi.Frame
	Start float64
}

func processSpiFiles(fmosi, fmiso, fclk, fcsn string) ([]rawtx, error) {
	mosi, err := opendigital(fmosi)
	if err != nil {
		return nil, err
	}
	miso, err := opendigital(fmiso)
	if err != nil {
		return nil, err
	}
	clk, err := opendigital(fclk)
	if err != nil {
		return nil, err
	}
	csn, err := opendigital(fcsn)
	if err != nil {
		return nil, err
	}
	spi := analyzers.SPI{}
	return scanned(spi.Scan(clk, csn, mosi, miso))
}

var errScanIncomplete = errors.New("SPI scan stopped early")

// scanned converts analyzer output. On a scan error the transactions decoded
// so far are returned along with an error wrapping errScanIncomplete.
func scanned(txs []analyzers.TxSPI, err error) ([]rawtx, error) {
	raw := make([]rawtx, len(txs))
	for i := range txs {
		raw[i] = rawtx{MOSI: txs[i].SDO, MISO: txs[i].SDI, Start: txs[i].StartTime()}
	}
	if err != nil {
		return raw, fmt.Errorf("%w after %d transactions: %w", errScanIncomplete, len(raw), err)
	}
	return raw, nil
}

func opendigital(filename string) (*saleae.DigitalFile, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return saleae.ReadDigitalFile(fp)
}

// process decodes transactions and merges runs of identical frames, which
// are common while polling FIFO_STATUS.
func (f *Filter) process(txs []rawtx) (out []nrftx) {
	for i := 0; i < len(txs); i++ {
		frame := f.decode(txs[i])
		n := 1
		for j := i + 1; j < len(txs); j++ {
			next := f.decode(txs[j])
			if !sameFrame(frame, next) {
				break
			}
			n++
			i = j
		}
		if f.omit(frame) {
			continue
		}
		out = append(out, nrftx{Num: n, Frame: frame, Start: txs[i-n+1].Start})
	}
	return out
}

func (f *Filter) decode(tx rawtx) nrfspi.Frame {
	mosi, miso := tx.MOSI, tx.MISO
	if f.MaxFrame > 0 {
		mosi = mosi[:min(len(mosi), f.MaxFrame)]
		miso = miso[:min(len(miso), f.MaxFrame)]
	}
	return nrfspi.DecodeFrame(mosi, miso)
}

func (f *Filter) omit(frame nrfspi.Frame) bool {
	if f.OmitNop && frame.Op == nrfspi.OpNop {
		return true
	}
	// NOP only reads STATUS.
	read := frame.IsRead() || frame.Op == nrfspi.OpNop
	return (f.OmitRead && read) || (f.OmitWrite && !read)
}

func (f *Filter) write(w io.Writer, txs []nrftx) error {
	for _, tx := range txs {
		_, err := fmt.Fprintf(w, "t=%.6f cmd×%-3d %s\n", tx.Start, tx.Num, tx.Frame.String())
		if err != nil {
			return err
		}
	}
	return nil
}

func sameFrame(a, b nrfspi.Frame) bool {
	return a.Op == b.Op && a.Arg == b.Arg && a.Status == b.Status &&
		a.HasStatus == b.HasStatus && bytes.Equal(a.Data, b.Data)
}

func min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
