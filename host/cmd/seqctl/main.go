// Command seqctl drives a sequencer board from a console, or bridges it to
// an MQTT broker.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"testseq/config"
	"testseq/host/board"
	"testseq/host/bridge"
	"testseq/host/serial"
)

var (
	device     = flag.String("device", "", "Serial device path (overrides config)")
	baud       = flag.Int("baud", 0, "Baud rate (overrides config, ignored for USB CDC)")
	configPath = flag.String("config", "", "YAML config file")
	mqttURL    = flag.String("mqtt", "", "Bridge to this MQTT broker URL instead of starting the console")
)

func init() {
	if val := os.Getenv("SEQ_MQTT_URL"); val != "" {
		*mqttURL = val
	}
}

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
	portCfg := serial.FromConfig(cfg.Serial)
	if *device != "" {
		portCfg.Device = *device
	}
	if *baud > 0 {
		portCfg.Baud = *baud
	}

	glog.Infof("connecting to board on %s", portCfg.Device)
	b, err := board.Connect(portCfg)
	if err != nil {
		glog.Exitf("%v", err)
	}
	defer b.Close()

	if *mqttURL != "" {
		if err := runBridge(b, *mqttURL); err != nil && err != context.Canceled {
			glog.Errorf("bridge: %v", err)
		}
		return
	}

	sh := newShell(b)
	if args := flag.Args(); len(args) > 0 {
		if err := sh.Process(args...); err != nil {
			glog.Errorf("%v", err)
		}
		return
	}
	go printLines(sh, b)
	sh.Run()
}

func runBridge(b *board.Board, brokerURL string) error {
	opts, prefix, err := bridge.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return err
	}
	client := paho.NewClient(opts)
	if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
		return tok.Error()
	}
	defer client.Disconnect(250)
	glog.Infof("bridging board to %s (prefix %q)", brokerURL, prefix)

	br := bridge.New(client, prefix, b)
	if err := br.Subscribe(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return br.Run(ctx, b.Lines())
}
