package alexa

const (
	responseVersion     = "1.0"
	speechTypePlainText = "PlainText"
)

// Spoken texts for commands that do not reach the shopping service. The
// skill's interaction model is German (de-DE).
const (
	welcomeMessage = "Willkommen bei der Cookidoo Einkaufsliste. Du kannst Artikel hinzufügen, indem du zum Beispiel sagst: Füge Milch hinzu."
	helpMessage    = "Du kannst Artikel zu deiner Cookidoo Einkaufsliste hinzufügen. Sage zum Beispiel: Füge Milch hinzu, oder: Ich brauche Eier. Was möchtest du hinzufügen?"
	goodbyeMessage = "Auf Wiedersehen!"
	unknownMessage = "Das habe ich leider nicht verstanden. Bitte sage zum Beispiel: Füge Milch hinzu."
)

// Response is the Alexa skill response envelope.
type Response struct {
	Version string       `json:"version"`
	Body    ResponseBody `json:"response"`
}

// ResponseBody carries the spoken output and the session directive.
type ResponseBody struct {
	OutputSpeech     OutputSpeech `json:"outputSpeech"`
	ShouldEndSession bool         `json:"shouldEndSession"`
}

// OutputSpeech is the plain-text speech block of a response.
type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewSpeechResponse builds a plain-text response with the given session
// directive.
func NewSpeechResponse(text string, endSession bool) Response {
	return Response{
		Version: responseVersion,
		Body: ResponseBody{
			OutputSpeech: OutputSpeech{
				Type: speechTypePlainText,
				Text: text,
			},
			ShouldEndSession: endSession,
		},
	}
}
