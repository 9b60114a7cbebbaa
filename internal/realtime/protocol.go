package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Engine.IO v4 packet types.
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
)

// Socket.IO packet types, carried inside an Engine.IO message.
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioConnectError = '4'
)

// payloadSeparator splits packets in a long-polling payload.
const payloadSeparator = "\x1e"

var errBadPacket = errors.New("malformed packet")

// openPacket is the Engine.IO handshake sent by the server.
type openPacket struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
	MaxPayload   int      `json:"maxPayload"`
}

// readTimeout is how long the client waits for the next packet before
// assuming the server is gone.
func (o openPacket) readTimeout() time.Duration {
	if o.PingInterval <= 0 {
		return 0
	}
	return time.Duration(o.PingInterval+o.PingTimeout) * time.Millisecond
}

func parseOpen(packet string) (openPacket, error) {
	var o openPacket
	if len(packet) < 2 || packet[0] != eioOpen {
		return o, fmt.Errorf("%w: expected open, got %q", errBadPacket, truncate(packet))
	}
	if err := json.Unmarshal([]byte(packet[1:]), &o); err != nil {
		return o, fmt.Errorf("%w: decode open: %v", errBadPacket, err)
	}
	return o, nil
}

// connectPacket builds the namespace CONNECT carrying the auth payload.
func connectPacket(token string) (string, error) {
	auth, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return "", fmt.Errorf("encode auth: %w", err)
	}
	return string([]byte{eioMessage, sioConnect}) + string(auth), nil
}

// splitPayload splits a long-polling response body into packets.
func splitPayload(body string) []string {
	if body == "" {
		return nil
	}
	return strings.Split(body, payloadSeparator)
}

// parseEvent decodes the body of a Socket.IO EVENT packet (the part after
// "42"). An optional ack id precedes the array. Only the first argument is
// returned.
func parseEvent(body string) (string, json.RawMessage, error) {
	body = strings.TrimLeft(body, "0123456789")
	var args []json.RawMessage
	if err := json.Unmarshal([]byte(body), &args); err != nil {
		return "", nil, fmt.Errorf("%w: decode event: %v", errBadPacket, err)
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: empty event", errBadPacket)
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return "", nil, fmt.Errorf("%w: event name: %v", errBadPacket, err)
	}
	payload := json.RawMessage("null")
	if len(args) > 1 {
		payload = args[1]
	}
	return name, payload, nil
}

// connectErrorMessage extracts the message of a CONNECT_ERROR packet body.
func connectErrorMessage(body string) string {
	var v struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &v); err == nil && v.Message != "" {
		return v.Message
	}
	if body == "" {
		return "connection refused"
	}
	return body
}

func truncate(s string) string {
	if len(s) > 64 {
		return s[:64] + "..."
	}
	return s
}
