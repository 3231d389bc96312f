// Package bridge mirrors a sequencer board onto an MQTT broker.
//
// Topics, relative to the broker URL path:
//
//	<prefix>diag   every diagnostic line
//	<prefix>state  current state name, retained
//	<prefix>cmd    start | abort | complete
package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"testseq/host/board"
	"testseq/protocol"
)

const (
	TopicDiag  = "diag"
	TopicState = "state"
	TopicCmd   = "cmd"
)

// AppID salts the machine id used as MQTT client id.
const AppID = "testseq"

var ErrBadPayload = errors.New("bridge: unknown command payload")

// Client is the part of paho.Client the bridge uses.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// Commander sends commands to the board.
type Commander interface {
	Send(cmd protocol.Command) error
}

// ClientOptionsFromURL creates ClientOptions from URL and returns the topic
// prefix taken from its path. A client-id query parameter overrides the
// machine derived id.
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	var server string
	if u.Scheme == "" || u.Scheme == "mqtt" {
		server = "tcp"
	} else {
		server = u.Scheme
	}
	server += "://" + u.Host

	prefix := strings.TrimPrefix(u.Path, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}

	clientID := u.Query().Get("client-id")
	if clientID == "" {
		clientID = ClientID()
	}
	opts.SetClientID(clientID)

	return opts, prefix, nil
}

// ClientID derives a stable client id from the host's machine id.
func ClientID() string {
	id, err := machineid.ProtectedID(AppID)
	if err != nil {
		glog.Warningf("machine id unavailable, using random client id: %v", err)
		return ""
	}
	if len(id) > 16 {
		id = id[:16]
	}
	return AppID + "-" + id
}

// ParseCommand maps a cmd payload to a command.
func ParseCommand(payload []byte) (protocol.Command, error) {
	name := strings.ToLower(strings.TrimSpace(string(payload)))
	cmd, ok := protocol.ParseCommand(name)
	if !ok {
		return protocol.CmdNone, fmt.Errorf("%w: %q", ErrBadPayload, name)
	}
	return cmd, nil
}

// Bridge forwards board lines to the broker and broker commands to the board.
type Bridge struct {
	client Client
	prefix string
	board  Commander

	lastState string
}

// New creates a bridge. The client must already be connected.
func New(client Client, prefix string, b Commander) *Bridge {
	return &Bridge{client: client, prefix: prefix, board: b}
}

// Subscribe starts accepting commands.
func (b *Bridge) Subscribe() error {
	topic := b.prefix + TopicCmd
	if glog.V(2) {
		glog.Infof("SUB %q", topic)
	}
	tok := b.client.Subscribe(topic, 1, b.onCommand)
	tok.Wait()
	return tok.Error()
}

func (b *Bridge) onCommand(_ paho.Client, msg paho.Message) {
	if err := b.HandleCommand(msg.Payload()); err != nil {
		glog.Warningf("command from %s: %v", msg.Topic(), err)
	}
}

// HandleCommand decodes a cmd payload and sends it to the board.
func (b *Bridge) HandleCommand(payload []byte) error {
	cmd, err := ParseCommand(payload)
	if err != nil {
		return err
	}
	glog.Infof("command %s", cmd)
	return b.board.Send(cmd)
}

// Publish forwards one diagnostic line. STATE lines also update the
// retained state topic.
func (b *Bridge) Publish(line string) error {
	if err := b.publish(TopicDiag, false, line); err != nil {
		return err
	}
	state, ok := board.ParseState(line)
	if !ok || state == b.lastState {
		return nil
	}
	b.lastState = state
	return b.publish(TopicState, true, state)
}

func (b *Bridge) publish(topic string, retain bool, payload string) error {
	tok := b.client.Publish(b.prefix+topic, 0, retain, []byte(payload))
	tok.Wait()
	return tok.Error()
}

// Run publishes lines until lines is closed or ctx is done.
func (b *Bridge) Run(ctx context.Context, lines <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := b.Publish(line); err != nil {
				glog.Warningf("publish %q: %v", line, err)
			}
		}
	}
}
