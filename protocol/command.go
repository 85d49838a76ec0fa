package protocol

const (
	CommandGetSettings = "getSettings"
	CommandSetSettings = "setSettings"
	CommandSetTitle    = "setTitle"
)

// TargetHardwareAndSoftware addresses both the device key and the on-screen
// preview when setting a title.
const TargetHardwareAndSoftware = 0

// Command is one outbound frame. Empty fields are left off the wire.
type Command struct {
	Event   string `json:"event"`
	Context string `json:"context,omitempty"`
	UUID    string `json:"uuid,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

type SetTitlePayload struct {
	Title  string `json:"title"`
	Target int    `json:"target"`
}

type SetSettingsPayload struct {
	Count int `json:"count"`
}

func NewRegister(registerEvent, pluginUUID string) *Command {
	return &Command{Event: registerEvent, UUID: pluginUUID}
}

func NewGetSettings(context string) *Command {
	return &Command{Event: CommandGetSettings, Context: context}
}

func NewSetSettings(context string, count int) *Command {
	return &Command{
		Event:   CommandSetSettings,
		Context: context,
		Payload: &SetSettingsPayload{Count: count},
	}
}

func NewSetTitle(context, title string, target int) *Command {
	return &Command{
		Event:   CommandSetTitle,
		Context: context,
		Payload: &SetTitlePayload{Title: title, Target: target},
	}
}
