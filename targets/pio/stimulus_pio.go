//go:build rp2040

package pio

// PIO stimulus: a free-running square wave on one pin, hardware timed so
// the main loop never has to service it.

import (
	"errors"
	"machine"
	"time"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// Both instructions hold the pin for 32 cycles, so one wave period is
// cyclesPerPeriod state machine cycles.
const (
	halfPeriodDelay = 31
	cyclesPerPeriod = 2 * (halfPeriodDelay + 1)
)

var ErrStimulusPeriod = errors.New("stimulus period out of range")

// delay encodes the delay field of an instruction (no side-set bits in use).
func delay(cycles uint8) uint16 {
	return uint16(cycles&0x1f) << 8
}

// buildStimulusProgram creates the square wave program
func buildStimulusProgram() []uint16 {
	return []uint16{
		// .wrap_target
		rp2pio.EncodeSet(rp2pio.SrcDestPins, 1) | delay(halfPeriodDelay), // 0: set pins, 1 [31]
		rp2pio.EncodeSet(rp2pio.SrcDestPins, 0) | delay(halfPeriodDelay), // 1: set pins, 0 [31]
		// .wrap
	}
}

// Stimulus drives the test signal from a PIO state machine.
type Stimulus struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	offset uint8
}

// NewStimulus loads the program on PIO pioNum, state machine smNum, and
// leaves the pin low and the state machine stopped.
func NewStimulus(pioNum, smNum uint8, pin machine.Pin, period time.Duration) (*Stimulus, error) {
	pioHW := rp2pio.PIO0
	if pioNum != 0 {
		pioHW = rp2pio.PIO1
	}
	s := &Stimulus{pio: pioHW, sm: pioHW.StateMachine(smNum), pin: pin}

	cycle := period.Nanoseconds() / cyclesPerPeriod
	if cycle <= 0 || cycle > int64(^uint32(0)) {
		return nil, ErrStimulusPeriod
	}
	whole, frac, err := rp2pio.ClkDivFromPeriod(uint32(cycle), machine.CPUFrequency())
	if err != nil {
		return nil, err
	}

	// CRITICAL: Claim the state machine first!
	s.sm.TryClaim()

	program := buildStimulusProgram()
	offset, err := s.pio.AddProgram(program, -1)
	if err != nil {
		return nil, err
	}
	s.offset = offset

	s.pin.Configure(machine.PinConfig{Mode: s.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(s.pin, 1)
	cfg.SetWrap(offset, offset+uint8(len(program))-1)
	cfg.SetClkDivIntFrac(whole, frac)

	// Initialize state machine FIRST
	s.sm.Init(offset, cfg)

	// THEN set pin directions (must be after Init!)
	s.sm.SetPindirsConsecutive(s.pin, 1, true)
	s.sm.SetPinsConsecutive(s.pin, 1, false)
	return s, nil
}

// Start begins the pulse train.
func (s *Stimulus) Start() error {
	s.sm.Restart()
	s.sm.SetEnabled(true)
	return nil
}

// Stop halts the pulse train and leaves the pin low.
func (s *Stimulus) Stop() error {
	s.sm.SetEnabled(false)
	s.sm.SetPinsConsecutive(s.pin, 1, false)
	return nil
}
