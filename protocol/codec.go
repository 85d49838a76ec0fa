package protocol

import (
	"encoding/json"
	"fmt"
)

func Encode(cmd *Command) ([]byte, error) {
	if cmd == nil {
		return nil, fmt.Errorf("cannot encode nil command")
	}
	if cmd.Event == "" {
		return nil, fmt.Errorf("command has no event name")
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s command: %w", cmd.Event, err)
	}
	return data, nil
}

// Decode parses one inbound frame. Only the event name is required; context
// and action of the wrong type are treated as absent and the payload is kept
// raw until a handler asks for it.
func Decode(frame []byte) (*Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(frame, &fields); err != nil {
		return nil, NewDecodeError("invalid JSON frame", err)
	}

	raw, ok := fields["event"]
	if !ok || isNull(raw) {
		return nil, NewDecodeError("missing event field", nil)
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return nil, NewDecodeError("event field is not a string", err)
	}

	event := &Event{
		Name:    name,
		Context: optionalString(fields["context"]),
		Action:  optionalString(fields["action"]),
	}
	if payload, ok := fields["payload"]; ok && !isNull(payload) {
		event.Payload = payload
	}
	return event, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func optionalString(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// objectField returns key from a JSON object. A value that is not an object
// has no fields.
func objectField(raw json.RawMessage, key string) (json.RawMessage, bool) {
	if isNull(raw) {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	value, ok := fields[key]
	if !ok || isNull(value) {
		return nil, false
	}
	return value, true
}
