package core

import (
	"context"

	"testseq/config"
)

// Hardware bundles the board collaborators the firmware needs.
// DUT, Stimulus and Halt are optional.
type Hardware struct {
	GPIO     GPIODriver
	Diag     LineSink
	DUT      DeviceUnderTest
	Stimulus Stimulus
	Halt     HaltFunc
}

// Firmware is the booted sequencer: queue, machine, interrupt sources and
// diagnostics wired together.
type Firmware struct {
	cfg config.Config

	Diag      *Diagnostics
	Queue     *EventQueue
	Machine   *Machine
	Ticks     *TickSource
	Commands  *CommandSource
	Sequencer *Sequencer

	loop *Loop
}

// NewFirmware performs the one-time peripheral setup and builds the
// firmware in StateIdle. Nothing runs until Run.
func NewFirmware(cfg config.Config, hw Hardware) (*Firmware, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if hw.GPIO == nil {
		return nil, ErrNoGPIO
	}
	table := DefaultTransitionTable()
	if cfg.NoTickEvents && usesTicks(table) {
		return nil, ErrTickRequired
	}

	q, err := NewEventQueue(cfg.QueueCapacity)
	if err != nil {
		return nil, err
	}

	diag := NewDiagnostics(hw.Diag, cfg.DiagDepth)
	diag.SetVerbose(cfg.Verbose)

	seq := NewSequencer(hw.GPIO, SequencerPins{
		Ready: pinOf(cfg.Pins.Ready),
		Busy:  pinOf(cfg.Pins.Busy),
		Abort: pinOf(cfg.Pins.Abort),
		Done:  pinOf(cfg.Pins.Done),
	}, hw.DUT, hw.Stimulus, diag)
	if err := seq.Configure(); err != nil {
		return nil, err
	}

	ticks := NewTickSource(q, hw.GPIO, pinOf(cfg.Pins.Status), !cfg.NoTickEvents)
	if err := ticks.status.configure(false); err != nil {
		return nil, err
	}

	m, err := NewMachine(table, seq.Actions(), diag, hw.Halt)
	if err != nil {
		return nil, err
	}

	return &Firmware{
		cfg:       cfg,
		Diag:      diag,
		Queue:     q,
		Machine:   m,
		Ticks:     ticks,
		Commands:  NewCommandSource(q),
		Sequencer: seq,
		loop:      NewLoop(q, m, diag),
	}, nil
}

// Run enters Idle, enables the tick source and runs the main loop until ctx
// is done. The command source is fed by the target's receive path.
func (f *Firmware) Run(ctx context.Context) error {
	go f.Diag.Run(ctx)
	f.Machine.Start()
	go f.Ticks.Run(ctx, f.cfg.TickPeriod)
	return f.loop.Run(ctx)
}

// Stats is a snapshot of every firmware counter.
type Stats struct {
	State          State
	Transitions    uint32
	Ignored        uint32
	Ticks          uint32
	BytesReceived  uint32
	BytesDiscarded uint32
	RecvErrors     uint32
	DiagDropped    uint32
	Queue          QueueStats
}

// Stats returns the current counters.
func (f *Firmware) Stats() Stats {
	transitions, ignored := f.Machine.Counts()
	received, discarded := f.Commands.Counts()
	return Stats{
		State:          f.Machine.Current(),
		Transitions:    transitions,
		Ignored:        ignored,
		Ticks:          f.Ticks.Count(),
		BytesReceived:  received,
		BytesDiscarded: discarded,
		RecvErrors:     f.Commands.RecvErrors(),
		DiagDropped:    f.Diag.Dropped(),
		Queue:          f.Queue.Stats(),
	}
}

func pinOf(n int) Pin {
	if n < 0 {
		return NoPin
	}
	return Pin(n)
}

func usesTicks(t *TransitionTable) bool {
	for _, row := range t.rows {
		if row.Event == EventTick {
			return true
		}
	}
	return false
}
