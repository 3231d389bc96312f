// Command byte protocol between a host and the sequencer.
// One byte per command. Byte values are part of protocol version 1 and must
// never be renumbered; new commands take new bytes.
package protocol

// Version is the command byte protocol version.
const Version = 1

// Command identifies a host command.
type Command uint8

const (
	CmdNone Command = iota
	CmdStart
	CmdAbort
	CmdComplete
)

// Wire bytes. Printable so the board can be driven from a plain terminal.
const (
	StartByte    byte = 'S' // 0x53
	AbortByte    byte = 'A' // 0x41
	CompleteByte byte = 'C' // 0x43
)

var commandNames = [...]string{
	CmdNone:     "none",
	CmdStart:    "start",
	CmdAbort:    "abort",
	CmdComplete: "complete",
}

func (c Command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return "unknown"
}

// Decode maps a received byte to a command.
// Unmapped bytes return false and must be discarded by the caller.
func Decode(b byte) (Command, bool) {
	switch b {
	case StartByte:
		return CmdStart, true
	case AbortByte:
		return CmdAbort, true
	case CompleteByte:
		return CmdComplete, true
	}
	return CmdNone, false
}

// Encode returns the wire byte for a command.
func Encode(c Command) (byte, bool) {
	switch c {
	case CmdStart:
		return StartByte, true
	case CmdAbort:
		return AbortByte, true
	case CmdComplete:
		return CompleteByte, true
	}
	return 0, false
}

// ParseCommand resolves a command by its name as used by host tools.
func ParseCommand(name string) (Command, bool) {
	for i, n := range commandNames {
		if i != int(CmdNone) && n == name {
			return Command(i), true
		}
	}
	return CmdNone, false
}
