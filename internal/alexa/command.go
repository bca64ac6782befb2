// Package alexa translates between the Alexa skill request/response JSON and
// the skill's command vocabulary. ParseCommand normalizes inbound requests
// into commands, and SkillHandler maps each command to a spoken response.
package alexa

// CommandKind identifies one entry of the closed command vocabulary. Every
// inbound request normalizes to exactly one kind; unrecognized input becomes
// CommandUnknown rather than an error.
type CommandKind string

const (
	CommandAddItem CommandKind = "add_item"
	CommandHelp    CommandKind = "help"
	CommandCancel  CommandKind = "cancel"
	CommandStop    CommandKind = "stop"
	CommandLaunch  CommandKind = "launch"
	CommandUnknown CommandKind = "unknown"
)

// Command is one normalized Alexa request.
type Command struct {
	Kind CommandKind

	// ItemName is the raw slot value for CommandAddItem. It may be empty
	// when the user did not say an item; validation happens downstream.
	ItemName string

	// SessionID is the Alexa session identifier, empty when absent.
	SessionID string
}
