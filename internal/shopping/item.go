// Package shopping holds the domain model of the skill: validated shopping
// list items, the repository port, and the service that turns a spoken item
// name into a user-safe outcome.
package shopping

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxItemNameLength bounds item names accepted from voice input. Alexa slot
// values are short; anything longer indicates a broken request.
const maxItemNameLength = 200

// Item is a validated shopping list entry. The zero value is not usable;
// construct items with NewItem.
type Item struct {
	name string
}

// NewItem normalizes and validates a raw item name. Surrounding whitespace
// is trimmed; the result must be between 1 and 200 characters.
func NewItem(raw string) (Item, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return Item{}, &InvalidNameError{Reason: "name is empty", Missing: true}
	}
	if utf8.RuneCountInString(name) > maxItemNameLength {
		return Item{}, &InvalidNameError{Reason: fmt.Sprintf("name exceeds %d characters", maxItemNameLength)}
	}
	return Item{name: name}, nil
}

// Name returns the normalized item name.
func (i Item) Name() string { return i.name }
