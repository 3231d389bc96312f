package core

// DeviceUnderTest is the link to the board being tested.
type DeviceUnderTest interface {
	Begin() error
	Abort() error
	Status() (byte, error)
}

// Stimulus drives the test signal applied to the device under test.
type Stimulus interface {
	Start() error
	Stop() error
}

// SequencerPins are the handshake outputs. Use NoPin for unconnected lines.
type SequencerPins struct {
	Ready Pin
	Busy  Pin
	Abort Pin
	Done  Pin
}

// Sequencer provides the entry actions of the test sequencer.
// DUT and stimulus are optional.
type Sequencer struct {
	ready, busy, abort, done output

	dut  DeviceUnderTest
	stim Stimulus
	diag *Diagnostics

	status byte
}

// NewSequencer creates the sequencer actions.
func NewSequencer(gpio GPIODriver, pins SequencerPins, dut DeviceUnderTest, stim Stimulus, diag *Diagnostics) *Sequencer {
	return &Sequencer{
		ready: output{gpio: gpio, pin: pins.Ready},
		busy:  output{gpio: gpio, pin: pins.Busy},
		abort: output{gpio: gpio, pin: pins.Abort},
		done:  output{gpio: gpio, pin: pins.Done},
		dut:   dut,
		stim:  stim,
		diag:  diag,
	}
}

// Configure sets every handshake line up as a low output.
func (s *Sequencer) Configure() error {
	for _, o := range []output{s.ready, s.busy, s.abort, s.done} {
		if err := o.configure(false); err != nil {
			return err
		}
	}
	return nil
}

// Actions returns the action table for NewMachine.
func (s *Sequencer) Actions() ActionTable {
	return ActionTable{
		StateIdle:     ActionFunc(s.enterIdle),
		StateTesting:  ActionFunc(s.enterTesting),
		StateAborting: ActionFunc(s.enterAborting),
		StateFinished: ActionFunc(s.enterFinished),
	}
}

// LastStatus returns the DUT status byte read on entry to Finished.
func (s *Sequencer) LastStatus() byte { return s.status }

func (s *Sequencer) enterIdle(State) {
	s.busy.set(false)
	s.abort.set(false)
	s.done.set(false)
	s.ready.set(true)
	s.post("system ready")
}

func (s *Sequencer) enterTesting(State) {
	s.ready.set(false)
	s.busy.set(true)
	if s.dut != nil {
		s.check("dut begin", s.dut.Begin())
	}
	if s.stim != nil {
		s.check("stimulus start", s.stim.Start())
	}
}

func (s *Sequencer) enterAborting(State) {
	s.stopStimulus()
	if s.dut != nil {
		s.check("dut abort", s.dut.Abort())
	}
	s.abort.set(true)
	s.busy.set(false)
}

func (s *Sequencer) enterFinished(from State) {
	s.stopStimulus()
	s.busy.set(false)
	s.done.set(true)

	line := "test finished"
	if from == StateAborting {
		line = "test aborted"
	}
	if s.dut != nil {
		status, err := s.dut.Status()
		if err != nil {
			s.check("dut status", err)
		} else {
			s.status = status
			line += " status=" + hexByte(status)
		}
	}
	s.post(line)
}

func (s *Sequencer) stopStimulus() {
	if s.stim != nil {
		s.check("stimulus stop", s.stim.Stop())
	}
}

func (s *Sequencer) check(what string, err error) {
	if err != nil {
		s.post(what + ": " + err.Error())
	}
}

func (s *Sequencer) post(line string) {
	if s.diag != nil {
		s.diag.Post(line)
	}
}
