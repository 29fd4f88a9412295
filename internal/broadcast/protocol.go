package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
)

// Event names carried in the envelope's "event" field.
const (
	EventTaskUpdated    = "task_updated"
	EventUpdateTaskList = "update_task_list"
)

var (
	ErrEmptyFrame    = errors.New("empty frame")
	ErrMissingEvent  = errors.New("frame has no event name")
	nullData         = json.RawMessage("null")
	envelopeOverhead = len(`{"event":"","data":}`)
)

// Envelope is the JSON object exchanged over the socket:
//
//	{"event":"task_updated","data":{...}}
//
// Data is kept as the raw bytes found on the wire.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// DecodeEnvelope parses one inbound text frame.
func DecodeEnvelope(frame []byte) (Envelope, error) {
	if len(frame) == 0 {
		return Envelope{}, ErrEmptyFrame
	}

	var env Envelope
	if err := sonic.ConfigStd.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, ErrMissingEvent
	}
	return env, nil
}

// EncodeEvent builds an outbound frame by splicing data into the envelope
// verbatim. Missing data is sent as null.
func EncodeEvent(event string, data json.RawMessage) []byte {
	if len(data) == 0 {
		data = nullData
	}

	buf := make([]byte, 0, envelopeOverhead+len(event)+len(data))
	buf = append(buf, `{"event":`...)
	buf = strconv.AppendQuote(buf, event)
	buf = append(buf, `,"data":`...)
	buf = append(buf, data...)
	buf = append(buf, '}')
	return buf
}
