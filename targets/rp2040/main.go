//go:build rp2040

package main

import (
	"context"
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"testseq/config"
	"testseq/core"
	"testseq/dut"
	"testseq/targets/pio"
)

func main() {
	// CRITICAL: Disable watchdog on boot to clear any previous state
	// This prevents issues with watchdog persisting across resets
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	cfg := config.Default()
	cfg.DUT.Enabled = true
	cfg.Stimulus.Enabled = true

	uart := uartx.UART0
	sink := core.UARTSink(uart)
	if err := uart.Configure(uartx.UARTConfig{
		BaudRate: uint32(cfg.Serial.Baud),
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	}); err != nil {
		bootFailure(sink, "uart", err)
	}

	gpio := NewRPGPIODriver()
	hw := core.Hardware{
		GPIO: gpio,
		Diag: sink,
		Halt: watchdogReset,
	}

	if cfg.DUT.Enabled {
		bus, err := configureDUTBus(cfg.DUT.Frequency)
		if err != nil {
			bootFailure(sink, "dut spi", err)
		}
		link := dut.New(bus, gpio, core.Pin(cfg.Pins.DUTSelect))
		if err := link.Configure(); err != nil {
			bootFailure(sink, "dut select", err)
		}
		hw.DUT = link
	}

	if cfg.Stimulus.Enabled {
		stim, err := pio.NewStimulus(0, 0, machine.Pin(cfg.Pins.Stimulus), cfg.Stimulus.Period)
		if err != nil {
			bootFailure(sink, "stimulus", err)
		}
		hw.Stimulus = stim
	}

	fw, err := core.NewFirmware(cfg, hw)
	if err != nil {
		bootFailure(sink, "firmware", err)
	}

	ctx := context.Background()
	// uartx wakes the receive goroutine from the RX IRQ.
	go fw.Commands.Pump(ctx, uart, core.RecvErrorBackoff)
	fw.Run(ctx)
}

// bootFailure reports a setup error and resets the board.
func bootFailure(sink core.LineSink, what string, err error) {
	ferr := &core.FatalError{Reason: what + ": " + err.Error()}
	sink(ferr.Error())
	watchdogReset(ferr)
}

// watchdogReset is the firmware's HaltFunc. It arms a 1ms watchdog and
// spins until the board resets.
func watchdogReset(*core.FatalError) {
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1}); err == nil {
		_ = machine.Watchdog.Start()
	}
	// Wait for reset (should happen in ~1ms)
	for {
		time.Sleep(1 * time.Millisecond)
	}
}
