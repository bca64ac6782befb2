package shopping

import (
	"context"
	"errors"
	"fmt"

	"github.com/router-for-me/AlexaCookidooSkill/internal/logging"
	log "github.com/sirupsen/logrus"
)

// Repository stores shopping list items for the configured account.
type Repository interface {
	// AddItem appends one item to the shopping list. Implementations return
	// *AuthFailedError or *RequestFailedError so callers can pick the right
	// user-facing message.
	AddItem(ctx context.Context, item Item) error
}

// Outcome is the user-facing result of an add-item attempt. Message is
// always safe to speak: it never carries transport or authentication
// internals.
type Outcome struct {
	Success bool
	Message string
}

// Spoken outcome messages. The skill's interaction model is German (de-DE).
const (
	msgMissingItem   = "Ich habe keinen Artikel verstanden. Bitte sage zum Beispiel: Füge Milch hinzu."
	msgInvalidItem   = "Der Artikelname ist leider zu lang. Bitte versuche es mit einem kürzeren Namen."
	msgAuthFailed    = "Die Anmeldung bei Cookidoo ist fehlgeschlagen. Bitte überprüfe deine Zugangsdaten."
	msgRequestFailed = "Der Artikel konnte nicht hinzugefügt werden. Bitte versuche es später erneut."
)

func confirmationMessage(name string) string {
	return fmt.Sprintf("%s wurde zur Einkaufsliste hinzugefügt.", name)
}

// AddItemService coordinates validation, repository access and user-facing
// messaging for add-item requests.
type AddItemService struct {
	repo Repository
}

// NewAddItemService creates the add-item service on top of the given
// repository.
func NewAddItemService(repo Repository) *AddItemService {
	return &AddItemService{repo: repo}
}

// Execute adds the named item to the shopping list. It never returns an
// error: every input maps to a speakable Outcome, and technical detail goes
// to the log instead of the user.
func (s *AddItemService) Execute(ctx context.Context, rawName string) Outcome {
	item, errItem := NewItem(rawName)
	if errItem != nil {
		logWithRequestID(ctx).WithField("error", errItem).Debug("rejected item name")
		var invalid *InvalidNameError
		if errors.As(errItem, &invalid) && invalid.Missing {
			return Outcome{Message: msgMissingItem}
		}
		return Outcome{Message: msgInvalidItem}
	}

	if errAdd := s.repo.AddItem(ctx, item); errAdd != nil {
		logWithRequestID(ctx).WithFields(log.Fields{
			"item":  item.Name(),
			"error": errAdd,
		}).Error("failed to add item to shopping list")
		var authErr *AuthFailedError
		if errors.As(errAdd, &authErr) {
			return Outcome{Message: msgAuthFailed}
		}
		return Outcome{Message: msgRequestFailed}
	}

	logWithRequestID(ctx).WithField("item", item.Name()).Info("item added to shopping list")
	return Outcome{Success: true, Message: confirmationMessage(item.Name())}
}

func logWithRequestID(ctx context.Context) *log.Entry {
	if id := logging.GetRequestID(ctx); id != "" {
		return log.WithField("request_id", id)
	}
	return log.NewEntry(log.StandardLogger())
}
