package alexa

import (
	"context"

	"github.com/router-for-me/AlexaCookidooSkill/internal/logging"
	"github.com/router-for-me/AlexaCookidooSkill/internal/metrics"
	"github.com/router-for-me/AlexaCookidooSkill/internal/shopping"
	log "github.com/sirupsen/logrus"
)

// SkillHandler turns Alexa requests into spoken responses. Add-item commands
// go through the shopping service; everything else is answered from the
// static response texts.
type SkillHandler struct {
	service *shopping.AddItemService
	metrics *metrics.Collector
}

// NewSkillHandler creates the skill handler on top of the add-item service.
func NewSkillHandler(service *shopping.AddItemService, collector *metrics.Collector) *SkillHandler {
	return &SkillHandler{service: service, metrics: collector}
}

// Handle processes one Alexa request body and always produces a speakable
// response, no matter how broken the input is.
func (h *SkillHandler) Handle(ctx context.Context, body []byte) Response {
	command := ParseCommand(body)
	h.metrics.RecordCommand(string(command.Kind))
	logWithRequestID(ctx).WithFields(log.Fields{
		"command":    command.Kind,
		"session_id": command.SessionID,
	}).Info("handling alexa command")

	switch command.Kind {
	case CommandAddItem:
		outcome := h.service.Execute(ctx, command.ItemName)
		return NewSpeechResponse(outcome.Message, true)
	case CommandLaunch:
		return NewSpeechResponse(welcomeMessage, false)
	case CommandHelp:
		return NewSpeechResponse(helpMessage, false)
	case CommandStop, CommandCancel:
		return NewSpeechResponse(goodbyeMessage, true)
	default:
		// Keep the session open so the user can rephrase.
		return NewSpeechResponse(unknownMessage, false)
	}
}

func logWithRequestID(ctx context.Context) *log.Entry {
	if id := logging.GetRequestID(ctx); id != "" {
		return log.WithField("request_id", id)
	}
	return log.NewEntry(log.StandardLogger())
}
