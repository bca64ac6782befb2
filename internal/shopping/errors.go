package shopping

import "fmt"

// InvalidNameError reports an item name that failed validation. It is
// user-correctable: the spoken response should prompt for a new name rather
// than apologize for a technical failure.
type InvalidNameError struct {
	// Reason is a short technical description for logs.
	Reason string
	// Missing is true when the name was empty after trimming, which gets a
	// dedicated spoken response.
	Missing bool
}

func (e *InvalidNameError) Error() string {
	return "invalid item name: " + e.Reason
}

// AuthFailedError reports that Cookidoo rejected the account credentials.
// This covers a failed password login, an exhausted refresh-then-login cycle,
// and a retry that was still unauthorized after a forced token refill.
type AuthFailedError struct {
	Cause error
}

func (e *AuthFailedError) Error() string {
	if e.Cause == nil {
		return "cookidoo authentication failed"
	}
	return "cookidoo authentication failed: " + e.Cause.Error()
}

func (e *AuthFailedError) Unwrap() error { return e.Cause }

// RequestFailedError reports a transport or HTTP failure unrelated to
// authentication. StatusCode is zero when the request never produced a
// response.
type RequestFailedError struct {
	StatusCode int
	Cause      error
}

func (e *RequestFailedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("cookidoo request failed with status %d", e.StatusCode)
	}
	if e.Cause != nil {
		return "cookidoo request failed: " + e.Cause.Error()
	}
	return "cookidoo request failed"
}

func (e *RequestFailedError) Unwrap() error { return e.Cause }
