package bluecloud

import "fmt"

// AuthError reports a token request that failed before or at the identity
// provider: an audience outside the allow-list, missing credentials, or a
// rejection by the provider itself.
type AuthError struct {
	Audience string
	Reason   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication for %q failed: %s", e.Audience, e.Reason)
}

// RemoteError reports an unexpected status from the catalogue or the
// identity provider.
type RemoteError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Operation, e.StatusCode, e.Body)
}
