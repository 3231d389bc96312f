// Package board is the host side of a sequencer connection: it sends
// command bytes and collects the board's diagnostic lines.
package board

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"testseq/host/serial"
	"testseq/protocol"
)

// MaxLine is the longest diagnostic line kept in one piece.
const MaxLine = 256

// statePrefix starts the line the firmware prints on every state entry.
const statePrefix = "STATE "

var (
	ErrClosed         = errors.New("board: connection closed")
	ErrUnknownCommand = errors.New("board: unknown command")
)

// idleBackoff is how long the reader sleeps after a read timeout.
var idleBackoff = 10 * time.Millisecond

// Board represents a connection to a sequencer board
type Board struct {
	port serial.Port

	writeMu sync.Mutex
	lines   chan string
	state   atomic.Value // string
	dropped atomic.Uint32
	closed  atomic.Bool
	done    chan struct{}
}

// Connect opens the serial port described by cfg.
func Connect(cfg *serial.Config) (*Board, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to board: %w", err)
	}
	return New(port), nil
}

// New wraps an open port and starts reading from it.
func New(port serial.Port) *Board {
	b := &Board{
		port:  port,
		lines: make(chan string, 64),
		done:  make(chan struct{}),
	}
	b.state.Store("")
	go b.readLoop()
	return b
}

// Send writes the byte for cmd.
func (b *Board) Send(cmd protocol.Command) error {
	code, ok := protocol.Encode(cmd)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
	return b.SendRaw([]byte{code})
}

// SendRaw writes arbitrary bytes. The firmware discards unmapped ones.
func (b *Board) SendRaw(data []byte) error {
	if b.closed.Load() {
		return ErrClosed
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if _, err := b.port.Write(data); err != nil {
		return fmt.Errorf("failed to write to board: %w", err)
	}
	return nil
}

// Lines delivers diagnostic lines. It is closed when the reader stops.
func (b *Board) Lines() <-chan string {
	return b.lines
}

// State returns the state name from the last STATE line, or "".
func (b *Board) State() string {
	return b.state.Load().(string)
}

// Dropped returns the number of lines lost because Lines was not drained.
func (b *Board) Dropped() uint32 {
	return b.dropped.Load()
}

// Done is closed when the reader has stopped.
func (b *Board) Done() <-chan struct{} {
	return b.done
}

// Close closes the port and waits for the reader to stop.
func (b *Board) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	err := b.port.Close()
	<-b.done
	return err
}

func (b *Board) readLoop() {
	defer close(b.done)
	defer close(b.lines)

	splitter := protocol.NewLineSplitter(MaxLine)
	buf := make([]byte, 128)
	for {
		n, err := b.port.Read(buf)
		if n > 0 {
			for _, line := range splitter.Feed(buf[:n]) {
				b.deliver(line)
			}
		}
		if err == nil {
			continue
		}
		if b.closed.Load() {
			return
		}
		if errors.Is(err, io.EOF) {
			// read timeout
			time.Sleep(idleBackoff)
			continue
		}
		glog.Warningf("board read failed: %v", err)
		return
	}
}

func (b *Board) deliver(line string) {
	if name, ok := ParseState(line); ok {
		b.state.Store(name)
	}
	if glog.V(2) {
		glog.Infof("RX %q", line)
	}
	select {
	case b.lines <- line:
	default:
		b.dropped.Add(1)
	}
}

// ParseState extracts the state name from a STATE line.
func ParseState(line string) (string, bool) {
	if !strings.HasPrefix(line, statePrefix) {
		return "", false
	}
	name := strings.TrimSpace(line[len(statePrefix):])
	return name, name != ""
}
