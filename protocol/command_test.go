package protocol

import "testing"

func TestDecodeKnownBytes(t *testing.T) {
	tests := []struct {
		b    byte
		want Command
	}{
		{0x53, CmdStart},
		{0x41, CmdAbort},
		{0x43, CmdComplete},
	}

	for _, tt := range tests {
		got, ok := Decode(tt.b)
		if !ok {
			t.Errorf("Decode(0x%02x) not recognized", tt.b)
			continue
		}
		if got != tt.want {
			t.Errorf("Decode(0x%02x) = %v, want %v", tt.b, got, tt.want)
		}
	}
}

func TestDecodeDiscardsUnknownBytes(t *testing.T) {
	for b := 0; b < 256; b++ {
		switch byte(b) {
		case StartByte, AbortByte, CompleteByte:
			continue
		}
		if cmd, ok := Decode(byte(b)); ok {
			t.Fatalf("Decode(0x%02x) = %v, expected discard", b, cmd)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, cmd := range []Command{CmdStart, CmdAbort, CmdComplete} {
		b, ok := Encode(cmd)
		if !ok {
			t.Fatalf("Encode(%v) failed", cmd)
		}
		back, ok := Decode(b)
		if !ok || back != cmd {
			t.Errorf("Decode(Encode(%v)) = %v, %v", cmd, back, ok)
		}
	}

	if _, ok := Encode(CmdNone); ok {
		t.Error("CmdNone must not have a wire byte")
	}
}

func TestParseCommand(t *testing.T) {
	cmd, ok := ParseCommand("abort")
	if !ok || cmd != CmdAbort {
		t.Errorf("ParseCommand(abort) = %v, %v", cmd, ok)
	}
	if _, ok := ParseCommand("none"); ok {
		t.Error("none must not parse as a command")
	}
	if _, ok := ParseCommand("reboot"); ok {
		t.Error("unknown names must not parse")
	}
}
