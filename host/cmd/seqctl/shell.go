package main

import (
	"errors"
	"strings"

	"github.com/abiosoft/ishell"

	"testseq/host/board"
	"testseq/protocol"
)

// sender is the part of board.Board the console commands use.
type sender interface {
	Send(cmd protocol.Command) error
	SendRaw(data []byte) error
	State() string
}

var errNoState = errors.New("no STATE line received yet")

func newShell(b *board.Board) *ishell.Shell {
	sh := ishell.New()
	sh.SetPrompt("seq> ")
	for _, cmd := range commands(b) {
		sh.AddCmd(cmd)
	}
	return sh
}

func commands(s sender) []*ishell.Cmd {
	send := func(cmd protocol.Command) func(c *ishell.Context) {
		return func(c *ishell.Context) {
			if err := s.Send(cmd); err != nil {
				c.Err(err)
				return
			}
			c.Println("sent", cmd)
		}
	}
	return []*ishell.Cmd{
		{
			Name:    "start",
			Aliases: []string{"s"},
			Help:    "start a test",
			Func:    send(protocol.CmdStart),
		},
		{
			Name:    "abort",
			Aliases: []string{"a"},
			Help:    "abort the running test",
			Func:    send(protocol.CmdAbort),
		},
		{
			Name:    "complete",
			Aliases: []string{"c"},
			Help:    "signal test completion",
			Func:    send(protocol.CmdComplete),
		},
		{
			Name: "state",
			Help: "show the last reported state",
			Func: func(c *ishell.Context) {
				state, err := currentState(s)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(state)
			},
		},
		{
			Name: "raw",
			Help: "send raw bytes, e.g. raw SA",
			Func: func(c *ishell.Context) {
				if err := s.SendRaw(rawBytes(c.Args)); err != nil {
					c.Err(err)
				}
			},
		},
	}
}

func currentState(s sender) (string, error) {
	state := s.State()
	if state == "" {
		return "", errNoState
	}
	return state, nil
}

func rawBytes(args []string) []byte {
	return []byte(strings.Join(args, ""))
}

// printLines echoes board output above the prompt.
func printLines(sh *ishell.Shell, b *board.Board) {
	for line := range b.Lines() {
		sh.Println(line)
	}
}
