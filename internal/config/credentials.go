package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Credentials holds the Cookidoo account secrets. They are supplied through
// environment variables only, never through the YAML file, and their values
// must never be written to log output.
type Credentials struct {
	// Email is the Cookidoo account email address.
	Email string `envconfig:"COOKIDOO_EMAIL"`

	// Password is the Cookidoo account password.
	Password string `envconfig:"COOKIDOO_PASSWORD"`

	// ClientID identifies the OAuth client used for the password grant.
	ClientID string `envconfig:"COOKIDOO_CLIENT_ID"`
}

// LoadCredentials reads the Cookidoo account credentials from the
// environment. Every missing variable is reported at once so a misconfigured
// deployment can be fixed in a single pass.
func LoadCredentials() (*Credentials, error) {
	var creds Credentials
	if err := envconfig.Process("", &creds); err != nil {
		return nil, fmt.Errorf("config: failed to read credentials from environment: %w", err)
	}

	var missing []string
	if strings.TrimSpace(creds.Email) == "" {
		missing = append(missing, "COOKIDOO_EMAIL")
	}
	if strings.TrimSpace(creds.Password) == "" {
		missing = append(missing, "COOKIDOO_PASSWORD")
	}
	if strings.TrimSpace(creds.ClientID) == "" {
		missing = append(missing, "COOKIDOO_CLIENT_ID")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("config: missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return &creds, nil
}
