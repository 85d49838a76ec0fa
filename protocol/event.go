package protocol

import "encoding/json"

const (
	EventKeyDown            = "keyDown"
	EventWillAppear         = "willAppear"
	EventDidReceiveSettings = "didReceiveSettings"
)

type Kind int

const (
	KindUnrecognized Kind = iota
	KindKeyDown
	KindWillAppear
	KindDidReceiveSettings
)

func (k Kind) String() string {
	switch k {
	case KindKeyDown:
		return EventKeyDown
	case KindWillAppear:
		return EventWillAppear
	case KindDidReceiveSettings:
		return EventDidReceiveSettings
	default:
		return "unrecognized"
	}
}

// Event is one decoded inbound frame. Every field except Name is optional and
// nil when the host left it out. Payload stays undecoded so events that never
// read it are not rejected over its shape.
type Event struct {
	Name    string
	Context *string
	Action  *string
	Payload json.RawMessage
}

func (e *Event) Kind() Kind {
	switch e.Name {
	case EventKeyDown:
		return KindKeyDown
	case EventWillAppear:
		return KindWillAppear
	case EventDidReceiveSettings:
		return KindDidReceiveSettings
	default:
		return KindUnrecognized
	}
}

func (e *Event) ContextID() (string, bool) {
	if e.Context == nil {
		return "", false
	}
	return *e.Context, true
}

func (e *Event) ActionID() (string, bool) {
	if e.Action == nil {
		return "", false
	}
	return *e.Action, true
}

// SettingsCount returns payload.settings.count and whether it was present at
// every level. A payload or settings value that is not an object counts as
// absent; a count that is not an integer is a DecodeError.
func (e *Event) SettingsCount() (int, bool, error) {
	settings, ok := objectField(e.Payload, "settings")
	if !ok {
		return 0, false, nil
	}
	raw, ok := objectField(settings, "count")
	if !ok {
		return 0, false, nil
	}

	var count int
	if err := json.Unmarshal(raw, &count); err != nil {
		return 0, false, NewDecodeError("settings count is not an integer", err)
	}
	return count, true, nil
}
