package broadcast

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name      string
		frame     string
		wantEvent string
		wantData  string
		wantErr   bool
	}{
		{name: "object data kept verbatim", frame: `{"event":"task_updated","data":{"b": 2, "a":1}}`, wantEvent: "task_updated", wantData: `{"b": 2, "a":1}`},
		{name: "scalar data", frame: `{"event":"task_updated","data":"abc"}`, wantEvent: "task_updated", wantData: `"abc"`},
		{name: "missing data", frame: `{"event":"task_updated"}`, wantEvent: "task_updated"},
		{name: "other event", frame: `{"event":"ping","data":1}`, wantEvent: "ping", wantData: `1`},
		{name: "empty", frame: ``, wantErr: true},
		{name: "not json", frame: `hello`, wantErr: true},
		{name: "array", frame: `[1,2]`, wantErr: true},
		{name: "no event name", frame: `{"data":{}}`, wantErr: true},
		{name: "event not a string", frame: `{"event":5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope([]byte(tt.frame))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEvent, env.Event)
			assert.Equal(t, tt.wantData, string(env.Data))
		})
	}
}

func TestEncodeEvent(t *testing.T) {
	assert.Equal(t,
		`{"event":"update_task_list","data":{"x": [1, 2]}}`,
		string(EncodeEvent(EventUpdateTaskList, json.RawMessage(`{"x": [1, 2]}`))),
	)
	assert.Equal(t, `{"event":"update_task_list","data":null}`, string(EncodeEvent(EventUpdateTaskList, nil)))
}

func TestEncodeEvent_IsValidJSON(t *testing.T) {
	frame := EncodeEvent(EventUpdateTaskList, json.RawMessage(`{"title":"a \"quoted\" title"}`))
	assert.True(t, json.Valid(frame))

	env, err := DecodeEnvelope(frame)
	require.NoError(t, err)
	assert.Equal(t, EventUpdateTaskList, env.Event)
	assert.JSONEq(t, `{"title":"a \"quoted\" title"}`, string(env.Data))
}
