package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testseq/protocol"
)

type fakeSender struct {
	cmds  []protocol.Command
	raw   []byte
	state string
}

func (f *fakeSender) Send(cmd protocol.Command) error {
	f.cmds = append(f.cmds, cmd)
	return nil
}

func (f *fakeSender) SendRaw(data []byte) error {
	f.raw = append(f.raw, data...)
	return nil
}

func (f *fakeSender) State() string { return f.state }

func TestCommandTable(t *testing.T) {
	cmds := commands(&fakeSender{})
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		require.NotNil(t, c.Func, c.Name)
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"start", "abort", "complete", "state", "raw"}, names)
}

func TestCurrentState(t *testing.T) {
	f := &fakeSender{}
	_, err := currentState(f)
	assert.ErrorIs(t, err, errNoState)

	f.state = "TESTING"
	state, err := currentState(f)
	require.NoError(t, err)
	assert.Equal(t, "TESTING", state)
}

func TestRawBytes(t *testing.T) {
	assert.Equal(t, []byte("SAx"), rawBytes([]string{"S", "Ax"}))
	assert.Empty(t, rawBytes(nil))
}
