package alexa

import "github.com/tidwall/gjson"

// Alexa request types and intent names from the skill's interaction model.
const (
	requestTypeLaunch       = "LaunchRequest"
	requestTypeIntent       = "IntentRequest"
	requestTypeSessionEnded = "SessionEndedRequest"

	intentAddItem  = "AddItemIntent"
	intentHelp     = "AMAZON.HelpIntent"
	intentCancel   = "AMAZON.CancelIntent"
	intentStop     = "AMAZON.StopIntent"
	intentFallback = "AMAZON.FallbackIntent"

	slotItem = "Item"
)

// ParseCommand normalizes one Alexa request body into a Command. Malformed
// JSON, unexpected request types and unknown intents all map to
// CommandUnknown; ParseCommand never fails.
func ParseCommand(body []byte) Command {
	command := Command{
		Kind:      CommandUnknown,
		SessionID: gjson.GetBytes(body, "session.sessionId").String(),
	}

	switch gjson.GetBytes(body, "request.type").String() {
	case requestTypeLaunch:
		command.Kind = CommandLaunch
	case requestTypeSessionEnded:
		// Alexa already closed the session; treat it like a stop so the
		// response stays consistent.
		command.Kind = CommandStop
	case requestTypeIntent:
		switch gjson.GetBytes(body, "request.intent.name").String() {
		case intentAddItem:
			command.Kind = CommandAddItem
			// The slot value may be missing when the user said nothing
			// usable; downstream validation turns that into a re-prompt.
			command.ItemName = gjson.GetBytes(body, "request.intent.slots."+slotItem+".value").String()
		case intentHelp:
			command.Kind = CommandHelp
		case intentCancel:
			command.Kind = CommandCancel
		case intentStop:
			command.Kind = CommandStop
		case intentFallback:
			command.Kind = CommandUnknown
		}
	}
	return command
}
