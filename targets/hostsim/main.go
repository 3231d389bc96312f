//go:build !tinygo

// Command hostsim runs the sequencer firmware on a PC. Command bytes come
// from stdin or a serial port; diagnostics go back the same way.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"

	"github.com/golang/glog"

	"testseq/config"
	"testseq/core"
	"testseq/host/serial"
)

var (
	configPath = flag.String("config", "", "YAML config file")
	useSerial  = flag.Bool("serial", false, "Talk over the configured serial device instead of stdin/stdout")
	device     = flag.String("device", "", "Serial device path (implies -serial)")
	dutStatus  = flag.Uint("dut-status", 0x00, "Status byte the simulated DUT reports")
	withDUT    = flag.Bool("dut", true, "Attach a simulated device under test")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			glog.Exitf("%v", err)
		}
	}
	if *device != "" {
		cfg.Serial.Device = *device
		*useSerial = true
	}

	var in io.Reader = os.Stdin
	var out io.Writer = os.Stdout
	if *useSerial {
		port, err := serial.Open(serial.FromConfig(cfg.Serial))
		if err != nil {
			glog.Exitf("%v", err)
		}
		defer port.Close()
		in, out = port, port
	}

	hw := core.Hardware{
		GPIO: newSimGPIO(cfg.Pins),
		Diag: lineSink(out),
		Halt: func(err *core.FatalError) {
			glog.Fatalf("halt: %v", err)
		},
	}
	if *withDUT {
		hw.DUT = &simDUT{status: byte(*dutStatus)}
	}
	if cfg.Stimulus.Enabled {
		hw.Stimulus = &simStimulus{period: cfg.Stimulus.Period}
	}

	fw, err := core.NewFirmware(cfg, hw)
	if err != nil {
		glog.Exitf("firmware: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go feed(ctx, in, *useSerial, fw.Commands)

	glog.Infof("sequencer running, tick %v, queue %d", cfg.TickPeriod, cfg.QueueCapacity)
	if err := fw.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		glog.Errorf("run: %v", err)
	}
	logStats(fw.Stats())
}

// feed is the receive interrupt: every byte read goes to the command source.
// With timeouts set, io.EOF means a read timeout rather than end of input.
func feed(ctx context.Context, r io.Reader, timeouts bool, cmds *core.CommandSource) {
	buf := make([]byte, 64)
	for ctx.Err() == nil {
		n, err := r.Read(buf)
		if n > 0 {
			cmds.Write(buf[:n])
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF) && timeouts:
		case errors.Is(err, io.EOF):
			glog.V(1).Infof("input closed")
			return
		default:
			glog.Warningf("input: %v", err)
			return
		}
	}
}

// lineSink writes CRLF terminated diagnostic lines to w.
func lineSink(w io.Writer) core.LineSink {
	return func(line string) {
		if _, err := io.WriteString(w, line+"\r\n"); err != nil {
			glog.Warningf("diag write: %v", err)
		}
	}
}

func logStats(st core.Stats) {
	glog.Infof("state %s, %d transitions, %d ignored, %d ticks", st.State, st.Transitions, st.Ignored, st.Ticks)
	glog.Infof("bytes %d received, %d discarded; diag dropped %d", st.BytesReceived, st.BytesDiscarded, st.DiagDropped)
	q := st.Queue
	glog.Infof("queue posted %d, overflows %d, ticks coalesced %d, ticks dropped %d",
		q.Posted, q.Overflows, q.TicksCoalesced, q.TicksDropped)
}
